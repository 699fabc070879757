package model

import "time"

type Booking struct {
	Base
	EventID         uint      `gorm:"not null;index" json:"eventId"`
	Event           *Event    `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
	NumberOfTickets int       `gorm:"not null" json:"numberOfTickets"`
	BookingDate     time.Time `gorm:"not null;index" json:"bookingDate"`
	Tickets         []*Ticket `gorm:"foreignKey:BookingID;constraint:OnDelete:SET NULL" json:"tickets,omitempty"`
}

func NewBooking(event *Event, numberOfTickets int, now time.Time) *Booking {
	b := &Booking{Base: newBase(now), Event: event, NumberOfTickets: numberOfTickets, BookingDate: now.UTC()}
	if event != nil {
		b.EventID = event.ID
	}
	return b
}

func (*Booking) EntityName() string { return "booking" }

func (*Booking) Relations() []Relation { return []Relation{RelationEvent, RelationTickets} }

// Tickets belong to the event; a booking only points at them.
func (*Booking) ReferencedRelations() []Relation { return []Relation{RelationEvent, RelationTickets} }

type CreateBookingInput struct {
	EventID         uint `json:"eventId" validate:"required,gt=0"`
	NumberOfTickets int  `json:"numberOfTickets" validate:"required,gt=0"`
}
