package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event_ticketing/clock"
	"event_ticketing/model"
	"event_ticketing/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingService struct {
	db       *gorm.DB
	events   *repository.Repository[model.Event, *model.Event]
	tickets  *repository.Repository[model.Ticket, *model.Ticket]
	bookings *repository.Repository[model.Booking, *model.Booking]
	policy   model.TransitionPolicy
	clock    clock.Clock
	log      *zap.Logger
}

func NewBookingService(deps Deps) *BookingService {
	deps = deps.withDefaults()
	bookings := repository.MustLookup[model.Booking](deps.Registry)
	return &BookingService{
		db:       bookings.DB(),
		events:   repository.MustLookup[model.Event](deps.Registry),
		tickets:  repository.MustLookup[model.Ticket](deps.Registry),
		bookings: bookings,
		policy:   deps.Policy,
		clock:    deps.Clock,
		log:      deps.Log.With(zap.String("service", "booking")),
	}
}

// reserveLock locks the tickets being reserved and skips rows another booking already holds.
var reserveLock = clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked}

// CreateBooking reserves the n lowest-numbered free tickets of an upcoming event.
func (s *BookingService) CreateBooking(ctx context.Context, eventID uint, n int) (*model.Booking, error) {
	now := s.clock.Now()
	verr := &ValidationError{}

	if n <= 0 {
		verr.Addf("Invalid number of tickets: %d.", n)
	}
	ev, err := s.events.LoadByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	switch {
	case ev == nil:
		verr.Addf("Event with id %d was not found.", eventID)
	case !ev.Date.After(now):
		verr.Add("Event has already taken place.")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		var free []*model.Ticket
		err := tx.Clauses(reserveLock).
			Where("event_id = ? AND booking_status = ?", eventID, model.Free).
			Order("number").
			Limit(n).
			Find(&free).Error
		if err != nil {
			return err
		}
		if len(free) < n {
			return &ValidationError{
				Violations: []string{fmt.Sprintf("Not enough available tickets: requested %d, available %d.", n, len(free))},
				Cause:      ErrNotEnoughTickets,
			}
		}

		b := model.NewBooking(ev, n, now)
		if err := s.bookings.WithTx(tx).Save(ctx, b); err != nil {
			return err
		}
		tickets := s.tickets.WithTx(tx)
		for _, tk := range free {
			if err := tk.Transition(model.Booked, s.policy, now); err != nil {
				return err
			}
			tk.BookingID = &b.ID
			if err := tickets.Save(ctx, tk); err != nil {
				return err
			}
		}
		b.Tickets = free
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking created", zap.Uint("id", booking.ID), zap.Uint("event", eventID), zap.Int("tickets", n))
	return booking, nil
}

// SellBooking marks every ticket of the booking as sold. A missing booking yields nil and no error.
func (s *BookingService) SellBooking(ctx context.Context, id uint) (*model.Booking, error) {
	var booking *model.Booking
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		b, err := s.bookings.WithTx(tx).LoadByIDWithRelated(ctx, id, model.RelationTickets)
		if err != nil || b == nil {
			return err
		}
		now := s.clock.Now()
		tickets := s.tickets.WithTx(tx)
		for _, tk := range b.Tickets {
			if err := tk.Transition(model.Selled, s.policy, now); err != nil {
				return err
			}
			if err := tickets.Save(ctx, tk); err != nil {
				return err
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteBooking frees the booking's tickets and removes it. A missing booking is a no-op.
func (s *BookingService) DeleteBooking(ctx context.Context, id uint) error {
	return repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		bookings := s.bookings.WithTx(tx)
		b, err := bookings.LoadByIDWithRelated(ctx, id, model.RelationTickets)
		if err != nil || b == nil {
			return err
		}
		now := s.clock.Now()
		tickets := s.tickets.WithTx(tx)
		for _, tk := range b.Tickets {
			if err := tk.Transition(model.Free, s.policy, now); err != nil {
				return err
			}
			tk.BookingID = nil
			if err := tickets.Save(ctx, tk); err != nil {
				return err
			}
		}
		return bookings.Delete(ctx, b)
	})
}

func (s *BookingService) GetBooking(ctx context.Context, id uint) (*model.Booking, error) {
	return s.bookings.LoadByIDWithRelated(ctx, id, model.RelationEvent, model.RelationTickets)
}

func (s *BookingService) GetBookings(ctx context.Context) ([]*model.Booking, error) {
	return s.bookings.GetAll(ctx)
}

// ExpireStale deletes bookings older than ttl that still hold booked tickets and returns how many went.
// Sold bookings are kept.
func (s *BookingService) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.clock.Now().Add(-ttl)
	stale, err := s.bookings.GetAll(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("bookings.booking_date < ?", cutoff).
			Where("EXISTS (?)", ticketsIn(db, "booking_id", "bookings", model.Booked))
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	var errs []error
	for _, b := range stale {
		if err := s.DeleteBooking(ctx, b.ID); err != nil {
			errs = append(errs, fmt.Errorf("booking %d: %w", b.ID, err))
			continue
		}
		expired++
	}
	if expired > 0 {
		s.log.Info("expired stale bookings", zap.Int("count", expired))
	}
	return expired, errors.Join(errs...)
}
