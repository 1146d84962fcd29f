package errors

import (
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// region 错误处理工具函数

// WrapGormError 将底层数据库错误转变为业务可识别错误
// 参数说明：
//   - rawErr: 原始GORM错误
//   - notFound: 记录不存在时返回的业务错误
//
// 返回值：
//   - error: 标准化错误类型
func WrapGormError(rawErr error, notFound error) error {
	if rawErr == nil {
		return nil
	}

	// 处理预定义的GORM错误
	switch {
	case errors.Is(rawErr, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(rawErr, gorm.ErrDuplicatedKey):
		return ErrDuplicateEntry
	}

	// 处理MySQL驱动错误
	var mysqlErr *mysql.MySQLError
	if errors.As(rawErr, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062: // 唯一性约束冲突
			return ErrDuplicateEntry
		case 1045, 1049, 1146: // 数据库连接、表不存在等错误
			return fmt.Errorf("%w: %s", ErrDatabaseInternal, mysqlErr.Message)
		}
	}

	// 兜底处理：附加原始错误信息
	return fmt.Errorf("%w: %v", ErrDatabaseInternal, rawErr)
}

// WrapMongoError 将 MongoDB 驱动错误转变为业务可识别错误
func WrapMongoError(rawErr error, notFound error) error {
	if rawErr == nil {
		return nil
	}

	switch {
	case errors.Is(rawErr, mongo.ErrNoDocuments):
		return notFound
	case mongo.IsDuplicateKeyError(rawErr):
		return ErrDuplicateEntry
	}

	return fmt.Errorf("%w: %v", ErrDatabaseInternal, rawErr)
}

// IsDuplicateError 判断是否为重复记录错误
func IsDuplicateError(err error) bool {
	return Is(err, ErrDuplicateEntry) || errors.Is(err, gorm.ErrDuplicatedKey) || mongo.IsDuplicateKeyError(err)
}

// HTTPStatus 业务错误到HTTP状态码的映射
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return consts.StatusOK
	case Is(err, ErrInvalidInput):
		return consts.StatusBadRequest
	case Is(err, ErrDuplicateEntry), Is(err, ErrInvalidPassword):
		return consts.StatusUnprocessableEntity
	case Is(err, ErrNoToken), Is(err, ErrUnauthorized):
		return consts.StatusUnauthorized
	case Is(err, ErrForbidden):
		return consts.StatusForbidden
	case Is(err, ErrUserNotFound), Is(err, ErrPlaceNotFound):
		return consts.StatusNotFound
	default:
		return consts.StatusInternalServerError
	}
}

// PublicMessage 返回可以暴露给客户端的错误描述，内部错误统一隐藏
func PublicMessage(err error) string {
	if HTTPStatus(err) == consts.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}

// endregion
