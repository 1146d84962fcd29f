package service

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	apperr "staybook/pkg/common/errors"
	"staybook/pkg/core/auth"
	"staybook/pkg/core/user/model"
	"staybook/pkg/core/user/repository/dao"
)

type UserService struct {
	repo   dao.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
}

func NewUserService(repo dao.UserRepository, hasher *auth.PasswordHasher, tokens *auth.TokenManager) *UserService {
	return &UserService{repo: repo, hasher: hasher, tokens: tokens}
}

// Register 邮箱已存在时返回 ErrDuplicateEntry
func (s *UserService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	user := &model.User{Name: name, Email: email}
	user.Normalize()

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hashed

	if err := user.Validate(); err != nil {
		return nil, err
	}

	// 检查邮箱重复，唯一索引兜底并发注册
	exists, err := s.repo.IsEmailExists(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ErrDuplicateEntry
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	hlog.CtxInfof(ctx, "user registered id=%s", user.ID)
	return user, nil
}

// Login 返回用户与签发的令牌；用户不存在返回 ErrUserNotFound，密码错误返回 ErrInvalidPassword
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	lookup := model.User{Email: email}
	lookup.Normalize()

	user, err := s.repo.FindByEmail(ctx, lookup.Email)
	if err != nil {
		return nil, "", err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Profile 根据 cookie 中的令牌加载当前用户
func (s *UserService) Profile(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.ID)
	if err != nil {
		// 令牌有效但用户已不存在，按未授权处理
		if apperr.Is(err, apperr.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", apperr.ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}
