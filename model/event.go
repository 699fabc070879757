package model

import "time"

const (
	RelationTickets  Relation = "Tickets"
	RelationLocation Relation = "Location"
	RelationEvent    Relation = "Event"
	RelationBooking  Relation = "Booking"
)

type Event struct {
	Base
	Name       string    `gorm:"size:255;not null" json:"name"`
	LocationID uint      `gorm:"not null;index" json:"locationId"`
	Location   *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Date       time.Time `gorm:"not null;index" json:"date"`
	Tickets    []*Ticket `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"tickets,omitempty"`
}

func NewEvent(name string, location *Location, date time.Time, now time.Time) *Event {
	e := &Event{Base: newBase(now), Name: name, Date: date.UTC(), Location: location}
	if location != nil {
		e.LocationID = location.ID
	}
	return e
}

func (*Event) EntityName() string { return "event" }

func (*Event) Relations() []Relation { return []Relation{RelationTickets, RelationLocation} }

func (*Event) OwnedRelations() []Relation { return []Relation{RelationTickets} }

func (*Event) ReferencedRelations() []Relation { return []Relation{RelationLocation} }

// Touch stamps the event and its already stored tickets, which an update rewrites with it.
func (e *Event) Touch(now time.Time) (restore func()) {
	restores := []func(){e.Base.Touch(now)}
	for _, tk := range e.Tickets {
		if tk != nil && !tk.IsNew() {
			restores = append(restores, tk.Touch(now))
		}
	}
	return func() {
		for _, r := range restores {
			r()
		}
	}
}

func (e *Event) AvailableTickets() []*Ticket {
	return e.ticketsWith(Free)
}

func (e *Event) BookedTickets() []*Ticket {
	return e.ticketsWith(Booked)
}

// IsSoldOut is false for an event without tickets.
func (e *Event) IsSoldOut() bool {
	return len(e.Tickets) > 0 && len(e.AvailableTickets()) == 0
}

func (e *Event) ticketsWith(status BookingStatus) []*Ticket {
	var out []*Ticket
	for _, t := range e.Tickets {
		if t.BookingStatus == status {
			out = append(out, t)
		}
	}
	return out
}

type CreateEventInput struct {
	Name            string    `json:"name"`
	Date            time.Time `json:"date"`
	LocationID      uint      `json:"locationId"`
	NumberOfTickets int       `json:"numberOfTickets"`
}

type EventsByDateInput struct {
	Date          string `query:"date" validate:"required"`
	OnlyAvailable bool   `query:"onlyAvailable"`
}
