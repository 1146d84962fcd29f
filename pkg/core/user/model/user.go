package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperr "staybook/pkg/common/errors"
)

type User struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password;type:varchar(255);not null" json:"-"` // 哈希不对外暴露
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 定义映射表名
func (User) TableName() string {
	return "users"
}

// BeforeCreate SQL 后端使用 UUID 作为主键
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.Set("gorm:table_options", "COMMENT='registered users'").
		AutoMigrate(&User{})
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Normalize 清理输入中的空白并统一邮箱大小写
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// Validate 持久化前的结构校验
func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	}
	if !emailRegex.MatchString(u.Email) {
		return fmt.Errorf("%w: email is malformed", apperr.ErrInvalidInput)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("%w: password is required", apperr.ErrInvalidInput)
	}
	return nil
}

// Profile 登录与个人信息接口返回的公开字段
type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
