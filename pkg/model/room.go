package model

import (
	"slices"
	"strings"
)

type RoomType string

const (
	RoomTypeSingle RoomType = "Single"
	RoomTypeDouble RoomType = "Double"
	RoomTypeDeluxe RoomType = "Deluxe"
	RoomTypeSuite  RoomType = "Suite"
)

var roomTypes = []RoomType{RoomTypeSingle, RoomTypeDouble, RoomTypeDeluxe, RoomTypeSuite}

func AllRoomTypes() []RoomType {
	return slices.Clone(roomTypes)
}

func (t RoomType) Valid() bool {
	return slices.Contains(roomTypes, t)
}

func ParseRoomType(s string) (RoomType, bool) {
	t := RoomType(s)
	return t, t.Valid()
}

func RoomTypeNames() string {
	names := make([]string, len(roomTypes))
	for i, t := range roomTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

type Room struct {
	ID       string   `json:"id" bson:"_id"`
	HotelID  string   `json:"hotelId" bson:"hotelId"`
	RoomType RoomType `json:"roomType" bson:"roomType"`
	// Price is the nightly rate. Nil means the rate is unknown.
	Price        *float64 `json:"price" bson:"price,omitempty"`
	Availability bool     `json:"availability" bson:"availability"`
}

type RoomCreate struct {
	HotelID      string   `json:"hotelId" validate:"required,mongodb"`
	RoomType     RoomType `json:"roomType" validate:"required,roomtype"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Availability *bool    `json:"availability,omitempty"`
}

func (c *RoomCreate) ToRoom() *Room {
	available := true
	if c.Availability != nil {
		available = *c.Availability
	}
	price := *c.Price
	return &Room{
		ID:           NewID(),
		HotelID:      c.HotelID,
		RoomType:     c.RoomType,
		Price:        &price,
		Availability: available,
	}
}

// RoomUpdate holds a partial update; nil fields are left unchanged.
type RoomUpdate struct {
	RoomType     *RoomType `json:"roomType,omitempty" validate:"omitempty,roomtype"`
	Price        *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Availability *bool     `json:"availability,omitempty"`
}

func (u *RoomUpdate) IsEmpty() bool {
	return u.RoomType == nil && u.Price == nil && u.Availability == nil
}

func (u *RoomUpdate) Apply(r *Room) {
	if u.RoomType != nil {
		r.RoomType = *u.RoomType
	}
	if u.Price != nil {
		price := *u.Price
		r.Price = &price
	}
	if u.Availability != nil {
		r.Availability = *u.Availability
	}
}

// RoomFilter selects rooms by exact match. Zero fields match everything.
type RoomFilter struct {
	HotelID   string
	RoomType  RoomType
	Available *bool
}

func (f RoomFilter) Matches(r *Room) bool {
	if f.HotelID != "" && r.HotelID != f.HotelID {
		return false
	}
	if f.RoomType != "" && r.RoomType != f.RoomType {
		return false
	}
	if f.Available != nil && r.Availability != *f.Available {
		return false
	}
	return true
}
