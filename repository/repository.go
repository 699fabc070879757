package repository

import (
	"context"
	"errors"
	"fmt"

	"event_ticketing/clock"
	"event_ticketing/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultBatchSize = 1000

// Filter narrows a query, e.g. func(db *gorm.DB) *gorm.DB { return db.Where("name = ?", n) }.
type Filter = func(*gorm.DB) *gorm.DB

// EntityPtr constrains PT to a pointer to T that implements model.Entity.
type EntityPtr[T any] interface {
	*T
	model.Entity
}

type options struct {
	clock clock.Clock
}

type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Repository persists one entity type. It never retries; callers own retry policy.
type Repository[T any, PT EntityPtr[T]] struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	name  string
}

func New[T any, PT EntityPtr[T]](db *gorm.DB, log *zap.Logger, opts ...Option) *Repository[T, PT] {
	o := options{clock: clock.System{}}
	for _, opt := range opts {
		opt(&o)
	}
	name := PT(new(T)).EntityName()
	return &Repository[T, PT]{
		db:    db,
		log:   log.With(zap.String("entity", name)),
		clock: o.clock,
		name:  name,
	}
}

func (r *Repository[T, PT]) Name() string { return r.name }

func (r *Repository[T, PT]) DB() *gorm.DB { return r.db }

// WithTx returns a copy bound to tx so several repositories can share one unit of work.
func (r *Repository[T, PT]) WithTx(tx *gorm.DB) *Repository[T, PT] {
	cp := *r
	cp.db = tx
	return &cp
}

// Save inserts an unpersisted entity, assigning its id, or updates a persisted one and stamps its change date.
// Updating an entity whose row no longer exists fails with gorm.ErrRecordNotFound and leaves the entity as it was.
func (r *Repository[T, PT]) Save(ctx context.Context, e PT) error {
	db := r.db.WithContext(ctx).Omit(referenced(e)...)

	if e.IsNew() {
		if err := db.Create(e).Error; err != nil {
			e.ResetID()
			return r.fail("insert", 0, err)
		}
		return nil
	}

	// an explicit Select keeps gorm from turning an update of a missing row into an insert
	restore := e.Touch(r.clock.Now())
	res := db.Session(&gorm.Session{FullSaveAssociations: true}).Select("*").Save(e)
	if res.Error == nil && res.RowsAffected == 0 {
		res.Error = gorm.ErrRecordNotFound
	}
	if res.Error != nil {
		restore()
		return r.fail("update", e.GetID(), res.Error)
	}
	return nil
}

// SaveBatch inserts entities in chunks of batchSize inside a single transaction.
// Either every entity is stored or none is; chunking only bounds the size of each statement.
func (r *Repository[T, PT]) SaveBatch(ctx context.Context, entities []PT, batchSize int) error {
	if len(entities) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	fresh := make([]PT, 0, len(entities))
	for _, e := range entities {
		if e.IsNew() {
			fresh = append(fresh, e)
		}
	}
	rollback := func(tx *gorm.DB, err error) error {
		tx.Rollback()
		for _, e := range fresh {
			e.ResetID()
		}
		return r.fail("save batch", 0, err)
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return r.fail("save batch", 0, tx.Error)
	}

	omit := referenced(entities[0])
	for start := 0; start < len(entities); start += batchSize {
		end := min(start+batchSize, len(entities))
		// a new statement per chunk keeps nothing from the previous chunk alive
		chunk := tx.Session(&gorm.Session{NewDB: true}).Omit(omit...)
		if err := chunk.Create(entities[start:end]).Error; err != nil {
			r.log.Debug("batch chunk failed", zap.Int("from", start), zap.Int("to", end))
			return rollback(tx, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return rollback(tx, err)
	}
	return nil
}

// LoadByID returns nil and no error when the entity does not exist.
func (r *Repository[T, PT]) LoadByID(ctx context.Context, id uint) (PT, error) {
	return r.LoadByIDWithRelated(ctx, id)
}

func (r *Repository[T, PT]) LoadByIDWithRelated(ctx context.Context, id uint, relations ...model.Relation) (PT, error) {
	q, err := r.preload(r.db.WithContext(ctx), relations)
	if err != nil {
		return nil, err
	}

	e := PT(new(T))
	if err := q.First(e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s %d: %w", r.name, id, err)
	}
	return e, nil
}

func (r *Repository[T, PT]) GetAll(ctx context.Context, filters ...Filter) ([]PT, error) {
	return r.GetAllWithRelated(ctx, nil, filters...)
}

func (r *Repository[T, PT]) GetAllWithRelated(ctx context.Context, relations []model.Relation, filters ...Filter) ([]PT, error) {
	q, err := r.preload(r.db.WithContext(ctx), relations)
	if err != nil {
		return nil, err
	}

	var out []PT
	err = q.Scopes(filters...).
		Order(clause.OrderByColumn{Column: clause.PrimaryColumn}).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.name, err)
	}
	return out, nil
}

// Delete removes e and the relations it owns. Unpersisted or already deleted entities are a no-op.
func (r *Repository[T, PT]) Delete(ctx context.Context, e PT) error {
	if e == nil || e.IsNew() {
		return nil
	}

	db := r.db.WithContext(ctx)
	if owner, ok := any(e).(model.Owner); ok {
		if owned := names(owner.OwnedRelations()); len(owned) > 0 {
			db = db.Select(owned)
		}
	}
	if err := db.Delete(e).Error; err != nil {
		return r.fail("delete", e.GetID(), err)
	}
	return nil
}

func (r *Repository[T, PT]) DeleteByID(ctx context.Context, id uint) error {
	e, err := r.LoadByID(ctx, id)
	if err != nil {
		return err
	}
	return r.Delete(ctx, e)
}

// DeleteRange deletes all entities in one transaction; a single failure keeps every one of them.
func (r *Repository[T, PT]) DeleteRange(ctx context.Context, entities []PT) error {
	if len(entities) == 0 {
		return nil
	}
	err := Transaction(ctx, r.db, func(tx *gorm.DB) error {
		txRepo := r.WithTx(tx)
		for _, e := range entities {
			if err := txRepo.Delete(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	var perr *PersistenceError
	if err != nil && !errors.As(err, &perr) {
		return r.fail("delete range", 0, err)
	}
	return err
}

func (r *Repository[T, PT]) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(PT(new(T))).
		Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("exists %s %d: %w", r.name, id, err)
	}
	return n > 0, nil
}

// Find is Exists that also hands back the loaded entity.
func (r *Repository[T, PT]) Find(ctx context.Context, id uint) (PT, bool, error) {
	e, err := r.LoadByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return e, e != nil, nil
}

func (r *Repository[T, PT]) preload(q *gorm.DB, relations []model.Relation) (*gorm.DB, error) {
	probe := PT(new(T))
	for _, rel := range relations {
		if !model.Supports(probe, rel) {
			return nil, fmt.Errorf("%w %q on %s", ErrUnknownRelation, rel, r.name)
		}
		q = q.Preload(string(rel), func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.PrimaryColumn})
		})
	}
	return q, nil
}

func (r *Repository[T, PT]) fail(op string, id uint, err error) error {
	r.log.Error("persistence failed", zap.String("op", op), zap.Uint("id", id), zap.Error(err))
	return &PersistenceError{Op: op, Entity: r.name, ID: id, Err: err}
}

func referenced(e model.Entity) []string {
	if ref, ok := e.(model.Referrer); ok {
		return names(ref.ReferencedRelations())
	}
	return nil
}

func names(rels []model.Relation) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = string(r)
	}
	return out
}
