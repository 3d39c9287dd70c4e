package model

import "time"

type Table struct {
	ID           string    `json:"id" bson:"_id" validate:"omitempty,uuid"`
	RestaurantID string    `json:"restaurant_id" bson:"restaurant_id" validate:"required,uuid"`
	Number       string    `json:"number" bson:"number" validate:"required,min=1,max=20"`
	Capacity     int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=100"`
	Zone         string    `json:"zone,omitempty" bson:"zone,omitempty" validate:"omitempty,max=50"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	SortOrder    int       `json:"sort_order" bson:"sort_order" validate:"min=0"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

type TableUpdate struct {
	Number    string  `json:"number,omitempty" validate:"omitempty,min=1,max=20"`
	Capacity  *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=100"`
	Zone      *string `json:"zone,omitempty" validate:"omitempty,max=50"`
	IsActive  *bool   `json:"is_active,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty" validate:"omitempty,min=0"`
}
