package model

type Hotel struct {
	ID       string   `json:"id" bson:"_id"`
	Name     string   `json:"name" bson:"name"`
	Location string   `json:"location" bson:"location"`
	Rooms    []string `json:"rooms" bson:"rooms"`
}

type HotelCreate struct {
	Name     string   `json:"name" validate:"required,min=3,max=100"`
	Location string   `json:"location" validate:"required,min=3,max=100"`
	Rooms    []string `json:"rooms,omitempty" validate:"omitempty,dive,mongodb"`
}

// HotelUpdate holds a partial update; nil fields are left unchanged.
type HotelUpdate struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Location *string  `json:"location,omitempty" validate:"omitempty,min=3,max=100"`
	Rooms    []string `json:"rooms,omitempty" validate:"omitempty,dive,mongodb"`
}

func (u *HotelUpdate) IsEmpty() bool {
	return u.Name == nil && u.Location == nil && u.Rooms == nil
}

func (u *HotelUpdate) Apply(h *Hotel) {
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Location != nil {
		h.Location = *u.Location
	}
	if u.Rooms != nil {
		h.Rooms = u.Rooms
	}
}
