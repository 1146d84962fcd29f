// pkg/common/errors/errors.go

/*
  - 使用实例
    // 错误示例:
    if err.(*hzte.Error).Meta != nil { // 可能 panic
    // ...
    }

    // 正确方式:
    if hzteErr, ok := err.(*hzte.Error); ok {
    // 安全访问 Meta
    }

    // 判断错误类别统一使用 errors.Is:
    if errors.Is(err, apperr.ErrPlaceNotFound) { ... }
*/
package errors

import (
	"errors"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// 定义原始错误
var (
	rawErrUserNotFound     = errors.New("not found")
	rawErrPlaceNotFound    = errors.New("place not found")
	rawErrDuplicateEntry   = errors.New("email already registered")
	rawErrInvalidPassword  = errors.New("invalid password")
	rawErrInvalidInput     = errors.New("invalid input")
	rawErrNoToken          = errors.New("no token")
	rawErrUnauthorized     = errors.New("invalid or expired token")
	rawErrForbidden        = errors.New("forbidden")
	rawErrDatabaseInternal = errors.New("database internal error")
)

// 包装成 Hertz 错误类型
var (
	ErrUserNotFound     = hzte.New(rawErrUserNotFound, hzte.ErrorTypePublic, nil)
	ErrPlaceNotFound    = hzte.New(rawErrPlaceNotFound, hzte.ErrorTypePublic, nil)
	ErrDuplicateEntry   = hzte.New(rawErrDuplicateEntry, hzte.ErrorTypePublic, nil)
	ErrInvalidPassword  = hzte.New(rawErrInvalidPassword, hzte.ErrorTypePublic, nil)
	ErrInvalidInput     = hzte.New(rawErrInvalidInput, hzte.ErrorTypePublic, nil)
	ErrNoToken          = hzte.New(rawErrNoToken, hzte.ErrorTypePublic, nil)
	ErrUnauthorized     = hzte.New(rawErrUnauthorized, hzte.ErrorTypePublic, nil)
	ErrForbidden        = hzte.New(rawErrForbidden, hzte.ErrorTypePublic, nil)
	ErrDatabaseInternal = hzte.New(rawErrDatabaseInternal, hzte.ErrorTypePrivate, nil)
)

// Is 同时匹配包装后的 Hertz 错误及其原始错误
func Is(err error, target *hzte.Error) bool {
	return errors.Is(err, target) || errors.Is(err, target.Err)
}
