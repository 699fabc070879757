package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"event_ticketing/clock"
	"event_ticketing/model"
	"event_ticketing/repository"
	"event_ticketing/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var start = time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db        *gorm.DB
	clk       *clock.Fixed
	locations *repository.Repository[model.Location, *model.Location]
	events    *repository.Repository[model.Event, *model.Event]
	tickets   *repository.Repository[model.Ticket, *model.Ticket]
}

func setup(t *testing.T) fixture {
	db := testutil.NewDB(t)
	clk := &clock.Fixed{T: start}
	log := zap.NewNop()
	return fixture{
		db:        db,
		clk:       clk,
		locations: repository.New[model.Location](db, log, repository.WithClock(clk)),
		events:    repository.New[model.Event](db, log, repository.WithClock(clk)),
		tickets:   repository.New[model.Ticket](db, log, repository.WithClock(clk)),
	}
}

func (f fixture) event(t *testing.T, tickets int) *model.Event {
	ctx := context.Background()
	loc := model.NewLocation("Arena", "Main st", start)
	require.NoError(t, f.locations.Save(ctx, loc))

	ev := model.NewEvent("Gala", loc, start.Add(48*time.Hour), start)
	for i := 1; i <= tickets; i++ {
		ev.Tickets = append(ev.Tickets, model.NewTicket(model.TicketNumber(i, tickets), start))
	}
	require.NoError(t, f.events.Save(ctx, ev))
	return ev
}

func TestSaveAssignsIDAndStampsChangeDate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loc := model.NewLocation("Arena", "Main st", start)
	require.NoError(t, f.locations.Save(ctx, loc))
	require.NotZero(t, loc.ID)
	assert.Nil(t, loc.ChangeDate)
	id := loc.ID

	f.clk.Advance(time.Minute)
	loc.Name = "Arena 2"
	require.NoError(t, f.locations.Save(ctx, loc))
	require.NotNil(t, loc.ChangeDate)
	first := *loc.ChangeDate
	assert.Equal(t, id, loc.ID)

	f.clk.Advance(time.Minute)
	require.NoError(t, f.locations.Save(ctx, loc))
	assert.False(t, loc.ChangeDate.Before(first))

	stored, err := f.locations.LoadByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Arena 2", stored.Name)
	require.NotNil(t, stored.ChangeDate)
	assert.True(t, stored.ChangeDate.Equal(*loc.ChangeDate))
	assert.True(t, stored.CreationDate.Equal(start))
}

func TestSaveInsertFailureResetsID(t *testing.T) {
	f := setup(t)

	tk := model.NewTicket("1", start)
	tk.EventID = 9999
	err := f.tickets.Save(context.Background(), tk)

	var perr *repository.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "ticket", perr.Entity)
	assert.Equal(t, "insert", perr.Op)
	assert.Zero(t, tk.ID)
}

func TestSaveDoesNotWriteThroughReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 2)

	ev.Location.Name = "Renamed"
	ev.Name = "Gala night"
	require.NoError(t, f.events.Save(ctx, ev))

	loc, err := f.locations.LoadByID(ctx, ev.LocationID)
	require.NoError(t, err)
	assert.Equal(t, "Arena", loc.Name)

	stored, err := f.events.LoadByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gala night", stored.Name)
}

func TestSaveUpdatesOwnedTickets(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 3)

	ev.Tickets[1].SetBookingStatus(model.Booked, start)
	require.NoError(t, f.events.Save(ctx, ev))

	tk, err := f.tickets.LoadByID(ctx, ev.Tickets[1].ID)
	require.NoError(t, err)
	assert.True(t, tk.IsBooked())
	assert.NotNil(t, tk.BookingDate)
}

func TestSaveBatchIsAllOrNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 0)

	batch := make([]*model.Ticket, 0, 5)
	for _, n := range []string{"1", "2", "3", "4", "1"} {
		tk := model.NewTicket(n, start)
		tk.EventID = ev.ID
		batch = append(batch, tk)
	}

	err := f.tickets.SaveBatch(ctx, batch, 2)
	var perr *repository.PersistenceError
	require.ErrorAs(t, err, &perr)

	var count int64
	require.NoError(t, f.db.Model(&model.Ticket{}).Count(&count).Error)
	assert.Zero(t, count)
	for _, tk := range batch {
		assert.Zero(t, tk.ID)
	}
}

func TestSaveBatchChunks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var batch []*model.Location
	for i := 0; i < 5; i++ {
		batch = append(batch, model.NewLocation(model.TicketNumber(i, 10), "", start))
	}
	require.NoError(t, f.locations.SaveBatch(ctx, batch, 2))

	all, err := f.locations.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	for _, l := range batch {
		assert.NotZero(t, l.ID)
	}

	assert.NoError(t, f.locations.SaveBatch(ctx, nil, 2))
}

func TestSaveBatchDefaultSize(t *testing.T) {
	f := setup(t)
	batch := []*model.Location{model.NewLocation("a", "", start)}
	require.NoError(t, f.locations.SaveBatch(context.Background(), batch, 0))
	assert.NotZero(t, batch[0].ID)
}

func TestLoadMissingIsNotAnError(t *testing.T) {
	f := setup(t)
	ev, err := f.events.LoadByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, ev)

	e, found, err := f.events.Find(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, e)
}

func TestLoadWithRelated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 3)

	plain, err := f.events.LoadByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Empty(t, plain.Tickets)
	assert.Nil(t, plain.Location)

	full, err := f.events.LoadByIDWithRelated(ctx, ev.ID, model.RelationTickets, model.RelationLocation)
	require.NoError(t, err)
	require.Len(t, full.Tickets, 3)
	assert.Equal(t, "1", full.Tickets[0].Number)
	require.NotNil(t, full.Location)
	assert.Equal(t, "Arena", full.Location.Name)

	_, err = f.events.LoadByIDWithRelated(ctx, ev.ID, model.Relation("Sponsors"))
	assert.ErrorIs(t, err, repository.ErrUnknownRelation)

	all, err := f.events.GetAllWithRelated(ctx, []model.Relation{model.RelationTickets})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Tickets, 3)
}

func TestGetAllWithFilter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, f.locations.Save(ctx, model.NewLocation(name, "", start)))
	}

	got, err := f.locations.GetAll(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("name <> ?", "b")
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)
}

func TestExistsIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	loc := model.NewLocation("a", "", start)
	require.NoError(t, f.locations.Save(ctx, loc))

	for _, id := range []uint{loc.ID, loc.ID + 100} {
		first, err := f.locations.Exists(ctx, id)
		require.NoError(t, err)
		second, err := f.locations.Exists(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}

	got, found, err := f.locations.Find(ctx, loc.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, model.Equal(loc, got))
}

func TestDeleteEventCascadesToTickets(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 4)

	require.NoError(t, f.events.DeleteByID(ctx, ev.ID))

	for _, tk := range ev.Tickets {
		got, err := f.tickets.LoadByID(ctx, tk.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	exists, err := f.locations.Exists(ctx, ev.LocationID)
	require.NoError(t, err)
	assert.True(t, exists, "locations outlive their events")

	assert.NoError(t, f.events.DeleteByID(ctx, ev.ID))
	assert.NoError(t, f.events.Delete(ctx, nil))
	assert.NoError(t, f.events.Delete(ctx, &model.Event{}))
}

func TestDeleteRangeIsAtomic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 0)

	free := model.NewLocation("free", "", start)
	require.NoError(t, f.locations.Save(ctx, free))

	// the event's location is still referenced, so the whole range must stay
	err := f.locations.DeleteRange(ctx, []*model.Location{free, ev.Location})
	var perr *repository.PersistenceError
	require.ErrorAs(t, err, &perr)

	exists, err := f.locations.Exists(ctx, free.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, f.locations.DeleteRange(ctx, []*model.Location{free}))
	exists, err = f.locations.Exists(ctx, free.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, f.locations.DeleteRange(ctx, nil))
}

func TestTransactionRejectsNesting(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	err := repository.Transaction(ctx, f.db, func(tx *gorm.DB) error {
		return repository.Transaction(ctx, tx, func(*gorm.DB) error { return nil })
	})
	assert.True(t, errors.Is(err, gorm.ErrInvalidTransaction))

	err = repository.Transaction(ctx, f.db, func(tx *gorm.DB) error {
		return f.locations.WithTx(tx).SaveBatch(ctx, []*model.Location{model.NewLocation("x", "", start)}, 1)
	})
	assert.ErrorIs(t, err, gorm.ErrInvalidTransaction)
}

func TestTransactionRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repository.Transaction(ctx, f.db, func(tx *gorm.DB) error {
		if err := f.locations.WithTx(tx).Save(ctx, model.NewLocation("x", "", start)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := f.locations.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.Panics(t, func() {
		_ = repository.Transaction(ctx, f.db, func(tx *gorm.DB) error {
			_ = f.locations.WithTx(tx).Save(ctx, model.NewLocation("y", "", start))
			panic("oops")
		})
	})
	all, err = f.locations.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveAfterDeleteDoesNotResurrect(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	loc := model.NewLocation("Arena", "Main st", start)
	require.NoError(t, f.locations.Save(ctx, loc))
	require.NoError(t, f.locations.DeleteByID(ctx, loc.ID))

	f.clk.Advance(time.Minute)
	loc.Name = "Arena 2"
	err := f.locations.Save(ctx, loc)

	var perr *repository.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "update", perr.Op)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, loc.ChangeDate, "a failed update keeps the previous change date")

	exists, err := f.locations.Exists(ctx, loc.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveStampsStoredTicketsOfEvent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 2)

	f.clk.Advance(time.Hour)
	ev.Tickets[0].SetBookingStatus(model.Booked, f.clk.Now())
	require.NoError(t, f.events.Save(ctx, ev))

	for _, want := range ev.Tickets {
		tk, err := f.tickets.LoadByID(ctx, want.ID)
		require.NoError(t, err)
		require.NotNil(t, tk.ChangeDate)
		assert.True(t, tk.ChangeDate.Equal(f.clk.Now()))
	}
}

func TestDeleteLocationInUseIsForeignKeyViolation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ev := f.event(t, 1)

	err := f.locations.DeleteByID(ctx, ev.LocationID)
	var perr *repository.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	exists, err := f.locations.Exists(ctx, ev.LocationID)
	require.NoError(t, err)
	assert.True(t, exists)
}
