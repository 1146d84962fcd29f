package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperr "staybook/pkg/common/errors"
)

// Place 一条可预订的房源
type Place struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"_id"`
	Owner       string    `gorm:"type:varchar(36);index;not null" json:"owner"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Address     string    `gorm:"type:varchar(255)" json:"address"`
	Photos      []string  `gorm:"serializer:json;type:json" json:"photos"`
	Description string    `gorm:"type:text" json:"description"`
	Perks       []string  `gorm:"serializer:json;type:json" json:"perks"`
	MaxGuests   int       `gorm:"not null;default:0" json:"maxGuests"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Place) TableName() string {
	return "places"
}

func (p *Place) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.Set("gorm:table_options", "COMMENT='listed places'").
		AutoMigrate(&Place{})
}

// Fields 房源中允许所有者修改的部分
type Fields struct {
	Title       string
	Address     string
	Photos      []string
	Description string
	Perks       []string
	MaxGuests   int
	Price       float64
}

// Apply 用新字段整体覆盖房源内容，Owner 与 ID 保持不变
func (p *Place) Apply(f Fields) {
	p.Title = strings.TrimSpace(f.Title)
	p.Address = strings.TrimSpace(f.Address)
	p.Photos = nonNil(f.Photos)
	p.Description = f.Description
	p.Perks = nonNil(f.Perks)
	p.MaxGuests = f.MaxGuests
	p.Price = f.Price
}

// Validate 持久化前的结构校验
func (p *Place) Validate() error {
	switch {
	case p.Owner == "":
		return fmt.Errorf("%w: owner is required", apperr.ErrInvalidInput)
	case p.Title == "":
		return fmt.Errorf("%w: title is required", apperr.ErrInvalidInput)
	case p.MaxGuests < 0:
		return fmt.Errorf("%w: maxGuests must not be negative", apperr.ErrInvalidInput)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", apperr.ErrInvalidInput)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
