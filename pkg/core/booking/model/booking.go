package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperr "staybook/pkg/common/errors"
)

// Booking 用户对房源的一次预订记录
type Booking struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"_id"`
	Place     string    `gorm:"column:place_id;type:varchar(36);index;not null" json:"place"`
	User      string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user"`
	CheckIn   time.Time `gorm:"not null" json:"checkIn"`
	CheckOut  time.Time `gorm:"not null" json:"checkOut"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Phone     string    `gorm:"type:varchar(50);not null" json:"phone"`
	Price     float64   `gorm:"not null;default:0" json:"price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.Set("gorm:table_options", "COMMENT='place bookings'").
		AutoMigrate(&Booking{})
}

// 前端日期控件提交 YYYY-MM-DD，其余客户端提交 RFC 3339
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// ParseDate 解析预订日期
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", apperr.ErrInvalidInput, field)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s is not a date", apperr.ErrInvalidInput, field)
}

// Validate 持久化前的结构校验。不检查房源是否存在，也不检查日期冲突
func (b *Booking) Validate() error {
	switch {
	case b.Place == "":
		return fmt.Errorf("%w: place is required", apperr.ErrInvalidInput)
	case b.User == "":
		return fmt.Errorf("%w: user is required", apperr.ErrInvalidInput)
	case strings.TrimSpace(b.Name) == "":
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidInput)
	case strings.TrimSpace(b.Phone) == "":
		return fmt.Errorf("%w: phone is required", apperr.ErrInvalidInput)
	case b.Price < 0:
		return fmt.Errorf("%w: price must not be negative", apperr.ErrInvalidInput)
	}
	return nil
}
