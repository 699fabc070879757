package service

import (
	"context"
	"strings"
	"time"

	"event_ticketing/clock"
	"event_ticketing/constants"
	"event_ticketing/messaging"
	"event_ticketing/model"
	"event_ticketing/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EventService struct {
	events    *repository.Repository[model.Event, *model.Event]
	locations *repository.Repository[model.Location, *model.Location]
	tickets   *repository.Repository[model.Ticket, *model.Ticket]
	sink      messaging.Sink
	policy    model.TransitionPolicy
	clock     clock.Clock
	log       *zap.Logger
	validate  *validator.Validate
}

func NewEventService(deps Deps) *EventService {
	deps = deps.withDefaults()
	return &EventService{
		events:    repository.MustLookup[model.Event](deps.Registry),
		locations: repository.MustLookup[model.Location](deps.Registry),
		tickets:   repository.MustLookup[model.Ticket](deps.Registry),
		sink:      deps.Sink,
		policy:    deps.Policy,
		clock:     deps.Clock,
		log:       deps.Log.With(zap.String("service", "event")),
		validate:  validator.New(),
	}
}

// CreateEvent validates the request, reporting every broken rule at once, then stores the event
// together with ticketCount free tickets numbered 1..ticketCount.
func (s *EventService) CreateEvent(ctx context.Context, name string, date time.Time, locationID uint, ticketCount int) (*model.Event, error) {
	now := s.clock.Now()
	verr := &ValidationError{}

	if err := s.validate.Var(strings.TrimSpace(name), "required"); err != nil {
		verr.Add("Invalid event name.")
	}
	if !date.After(now) {
		verr.Add("Event date must be in the future.")
	}
	location, err := s.locations.LoadByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		verr.Addf("Location with id %d was not found.", locationID)
	}
	if err := s.validate.Var(ticketCount, "gt=0"); err != nil {
		verr.Addf("Invalid number of tickets: %d.", ticketCount)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	ev := model.NewEvent(name, location, date, now)
	ev.Tickets = make([]*model.Ticket, 0, ticketCount)
	for i := 1; i <= ticketCount; i++ {
		ev.Tickets = append(ev.Tickets, model.NewTicket(model.TicketNumber(i, ticketCount), now))
	}

	if err := s.events.Save(ctx, ev); err != nil {
		return nil, err
	}
	s.log.Info("event created", zap.Uint("id", ev.ID), zap.Int("tickets", ticketCount))

	s.publishCreated(ctx, ev)
	return ev, nil
}

func (s *EventService) publishCreated(ctx context.Context, ev *model.Event) {
	env, err := messaging.NewEnvelope(constants.MESSAGE_EVENT_CREATED, messaging.EventCreated{
		EventID:    ev.ID,
		Name:       ev.Name,
		LocationID: ev.LocationID,
		Date:       ev.Date,
		Tickets:    len(ev.Tickets),
	}, s.clock.Now())
	if err == nil {
		var msg string
		if msg, err = env.Encode(); err == nil {
			err = s.sink.Publish(ctx, msg)
		}
	}
	if err != nil {
		s.log.Warn("failed to publish event.created", zap.Uint("id", ev.ID), zap.Error(err))
	}
}

func (s *EventService) GetEvents(ctx context.Context) ([]*model.Event, error) {
	return s.events.GetAll(ctx)
}

func (s *EventService) GetEventsWithRelated(ctx context.Context, relations ...model.Relation) ([]*model.Event, error) {
	return s.events.GetAllWithRelated(ctx, relations)
}

// GetEvent returns nil when there is no such event.
func (s *EventService) GetEvent(ctx context.Context, id uint, relations ...model.Relation) (*model.Event, error) {
	return s.events.LoadByIDWithRelated(ctx, id, relations...)
}

// GetAvailableTicketCount returns 0 for an unknown event.
func (s *EventService) GetAvailableTicketCount(ctx context.Context, eventID uint) (int, error) {
	ev, err := s.events.LoadByIDWithRelated(ctx, eventID, model.RelationTickets)
	if err != nil {
		return 0, err
	}
	if ev == nil {
		s.log.Error("event not found while counting tickets", zap.Uint("id", eventID))
		return 0, nil
	}
	return len(ev.AvailableTickets()), nil
}

// GetAvailableEvents lists events that have not started and still have a free ticket.
func (s *EventService) GetAvailableEvents(ctx context.Context) ([]*model.Event, error) {
	now := s.clock.Now()
	return s.events.GetAll(ctx,
		func(db *gorm.DB) *gorm.DB { return db.Where("events.date >= ?", now) },
		withFreeTickets,
	)
}

// GetEventsByDate matches the exact UTC instant of date.
func (s *EventService) GetEventsByDate(ctx context.Context, date time.Time, onlyAvailable bool) ([]*model.Event, error) {
	filters := []repository.Filter{
		func(db *gorm.DB) *gorm.DB { return db.Where("events.date = ?", date.UTC()) },
	}
	if onlyAvailable {
		filters = append(filters, withFreeTickets)
	}
	return s.events.GetAll(ctx, filters...)
}

// ChangeTicketStatus moves a ticket to status under the configured policy.
// A missing ticket yields nil and no error.
func (s *EventService) ChangeTicketStatus(ctx context.Context, ticketID uint, status model.BookingStatus) (*model.Ticket, error) {
	tk, err := s.tickets.LoadByID(ctx, ticketID)
	if err != nil || tk == nil {
		return nil, err
	}
	if err := tk.Transition(status, s.policy, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.tickets.Save(ctx, tk); err != nil {
		return nil, err
	}
	return tk, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint) error {
	return s.events.DeleteByID(ctx, id)
}

func withFreeTickets(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (?)", ticketsIn(db, "event_id", "events", model.Free))
}
