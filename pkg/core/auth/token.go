package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"staybook/pkg/common/config"
	apperr "staybook/pkg/common/errors"
)

// IdentityKey 令牌中用户 id 的字段名，鉴权中间件以同名 key 写入请求上下文
const IdentityKey = "id"

// Claims 写入令牌的用户身份
type Claims struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager 签发与校验放在 cookie 里的 JWT
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewTokenManager(cfg config.JWTAuthConfig) *TokenManager {
	method := jwt.GetSigningMethod(cfg.SigningMethod)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	ttl := cfg.ExpireDuration
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// TTL 令牌有效期，同时用作 cookie 的 Max-Age
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issuer 签发方，为空时不校验
func (m *TokenManager) Issuer() string {
	return m.issuer
}

// Algorithm 实际使用的签名算法名
func (m *TokenManager) Algorithm() string {
	return m.method.Alg()
}

func (m *TokenManager) Issue(id, email string) (string, error) {
	now := m.now()
	claims := Claims{
		ID:    id,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify 空令牌返回 ErrNoToken，签名、算法、签发方或过期校验失败返回 ErrUnauthorized
func (m *TokenManager) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, apperr.ErrNoToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, apperr.ErrUnauthorized
	}
	return claims, nil
}
