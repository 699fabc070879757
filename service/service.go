package service

import (
	"event_ticketing/clock"
	"event_ticketing/messaging"
	"event_ticketing/model"
	"event_ticketing/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by the services. Zero values fall back to
// no messaging, the permissive policy, the system clock and a no-op logger.
type Deps struct {
	Registry *repository.Registry
	Sink     messaging.Sink
	Policy   model.TransitionPolicy
	Clock    clock.Clock
	Log      *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Sink == nil {
		d.Sink = messaging.NopSink{}
	}
	if d.Policy == nil {
		d.Policy = model.PermissivePolicy
	}
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return d
}

// ticketsIn selects the tickets in status whose fk column points at outer.id, for use in EXISTS.
func ticketsIn(db *gorm.DB, fk, outer string, status model.BookingStatus) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&model.Ticket{}).
		Select("1").
		Where("tickets."+fk+" = "+outer+".id AND tickets.booking_status = ?", status)
}
