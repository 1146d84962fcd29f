package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	bookingservice "staybook/pkg/core/booking/service"
)

// Ref 引用另一条记录，可以是 id 字符串，也可以是带 _id 的完整对象
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref(id)
		return nil
	}

	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("reference must be an id or an object with _id: %w", err)
	}
	*r = Ref(doc.ID)
	return nil
}

type BookingReq struct {
	Place    Ref     `json:"place"`
	User     Ref     `json:"user"`
	CheckIn  string  `json:"checkIn"`
	CheckOut string  `json:"checkOut"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Price    float64 `json:"price"`
}

func (r *BookingReq) Input() bookingservice.CreateInput {
	return bookingservice.CreateInput{
		Place:    string(r.Place),
		User:     string(r.User),
		CheckIn:  r.CheckIn,
		CheckOut: r.CheckOut,
		Name:     r.Name,
		Phone:    r.Phone,
		Price:    r.Price,
	}
}
