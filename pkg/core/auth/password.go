package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperr "staybook/pkg/common/errors"
)

// PasswordHasher bcrypt 加盐哈希
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher cost 超出 bcrypt 允许范围时使用默认值
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password is required", apperr.ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare 密码不匹配返回 ErrInvalidPassword
func (h *PasswordHasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return apperr.ErrInvalidPassword
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
