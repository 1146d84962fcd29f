package model

import (
	placemodel "staybook/pkg/core/place/model"
)

// PlaceReq 创建与更新房源共用，更新时 ID 指定目标房源
type PlaceReq struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	AddedPhotos []string `json:"addedPhotos"`
	Description string   `json:"description"`
	Perks       []string `json:"perks"`
	MaxGuests   int      `json:"maxGuests"`
	Price       float64  `json:"price"`
}

func (r *PlaceReq) Fields() placemodel.Fields {
	return placemodel.Fields{
		Title:       r.Title,
		Address:     r.Address,
		Photos:      r.AddedPhotos,
		Description: r.Description,
		Perks:       r.Perks,
		MaxGuests:   r.MaxGuests,
		Price:       r.Price,
	}
}

// UpdatePlaceRes 更新成功后的响应
type UpdatePlaceRes struct {
	PlaceDoc *placemodel.Place `json:"placeDoc"`
}

type UploadLinkReq struct {
	Link string `json:"link"`
}
