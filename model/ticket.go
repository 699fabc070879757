package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	Free   BookingStatus = "Free"
	Booked BookingStatus = "Booked"
	Selled BookingStatus = "Selled"
)

var ErrInvalidTransition = errors.New("invalid booking status transition")

type TransitionError struct {
	TicketID uint
	From     BookingStatus
	To       BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("ticket %d: cannot change status from %s to %s", e.TicketID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, st := range []BookingStatus{Free, Booked, Selled} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

type Ticket struct {
	Base
	Number        string        `gorm:"size:32;not null;uniqueIndex:idx_ticket_event_number" json:"number"`
	EventID       uint          `gorm:"not null;uniqueIndex:idx_ticket_event_number" json:"eventId"`
	BookingID     *uint         `gorm:"index" json:"bookingId"`
	BookingStatus BookingStatus `gorm:"size:16;not null;default:'Free';index" json:"bookingStatus"`
	BookingDate   *time.Time    `json:"bookingDate"`
	SellingDate   *time.Time    `json:"sellingDate"`
}

func NewTicket(number string, now time.Time) *Ticket {
	return &Ticket{Base: newBase(now), Number: number, BookingStatus: Free}
}

func (*Ticket) EntityName() string { return "ticket" }

func (*Ticket) Relations() []Relation { return nil }

func (t *Ticket) IsFree() bool   { return t.BookingStatus == Free }
func (t *Ticket) IsBooked() bool { return t.BookingStatus == Booked }
func (t *Ticket) IsSelled() bool { return t.BookingStatus == Selled }

// SetBookingStatus assigns status and derives the booking and selling dates from it.
// It is the only place those dates are written.
func (t *Ticket) SetBookingStatus(status BookingStatus, now time.Time) {
	ts := now.UTC()
	t.BookingStatus = status
	switch status {
	case Free:
		t.BookingDate = nil
		t.SellingDate = nil
	case Booked:
		t.BookingDate = &ts
		t.SellingDate = nil
	case Selled:
		t.SellingDate = &ts
	}
}

// Transition applies status if policy allows the change from the current status.
func (t *Ticket) Transition(to BookingStatus, policy TransitionPolicy, now time.Time) error {
	if !policy.Allows(t.BookingStatus, to) {
		return &TransitionError{TicketID: t.ID, From: t.BookingStatus, To: to}
	}
	t.SetBookingStatus(to, now)
	return nil
}

// TicketNumber left-pads i with zeros to the printed width of count.
func TicketNumber(i, count int) string {
	width := len(fmt.Sprint(count))
	return fmt.Sprintf("%0*d", width, i)
}

type ChangeTicketStatusInput struct {
	Status string `json:"status" validate:"required,oneof=Free Booked Selled"`
}
