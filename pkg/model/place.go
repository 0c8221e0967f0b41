package model

import (
	"strings"
	"time"
)

type Place struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name       string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Details    string     `json:"details,omitempty" bson:"details,omitempty" validate:"omitempty,max=2000"`
	Location   string     `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Capacity   int        `json:"capacity" bson:"capacity" validate:"required,min=1,max=100000"`
	Facilities []Facility `json:"facilities" bson:"facilities" validate:"omitempty,max=50,dive"`
	Status     string     `json:"status" bson:"status" validate:"required,oneof=available unavailable"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// HasFacility reports whether the place offers a facility with the given
// name, ignoring case.
func (p *Place) HasFacility(name string) bool {
	for _, f := range p.Facilities {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

type PlaceUpdate struct {
	Name       string      `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Details    *string     `json:"details,omitempty" validate:"omitempty,max=2000"`
	Location   *string     `json:"location,omitempty" validate:"omitempty,max=200"`
	Capacity   *int        `json:"capacity,omitempty" validate:"omitempty,min=1,max=100000"`
	Facilities *[]Facility `json:"facilities,omitempty" validate:"omitempty,max=50,dive"`
	Status     string      `json:"status,omitempty" validate:"omitempty,oneof=available unavailable"`
}
