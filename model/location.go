package model

import "time"

type Location struct {
	Base
	Name    string `gorm:"size:255;not null" json:"name"`
	Address string `gorm:"size:500" json:"address"`
}

func NewLocation(name, address string, now time.Time) *Location {
	return &Location{Base: newBase(now), Name: name, Address: address}
}

func (*Location) EntityName() string { return "location" }

func (*Location) Relations() []Relation { return nil }

type CreateLocationInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"omitempty,max=500"`
}

type BulkLocationInput struct {
	Locations []CreateLocationInput `json:"locations" validate:"required,min=1,dive"`
}
