package repository

import (
	"fmt"
	"sort"

	"event_ticketing/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry maps entity names to their repositories. It is filled once at startup.
type Registry struct {
	repos map[string]any
}

func NewRegistry() *Registry {
	return &Registry{repos: map[string]any{}}
}

// NewDefaultRegistry registers a repository for every persisted entity type.
func NewDefaultRegistry(db *gorm.DB, log *zap.Logger, opts ...Option) *Registry {
	reg := NewRegistry()
	Register(reg, New[model.Location](db, log, opts...))
	Register(reg, New[model.Event](db, log, opts...))
	Register(reg, New[model.Ticket](db, log, opts...))
	Register(reg, New[model.Booking](db, log, opts...))
	return reg
}

func Register[T any, PT EntityPtr[T]](reg *Registry, repo *Repository[T, PT]) {
	reg.repos[repo.Name()] = repo
}

func Lookup[T any, PT EntityPtr[T]](reg *Registry) (*Repository[T, PT], error) {
	name := PT(new(T)).EntityName()
	repo, ok := reg.repos[name].(*Repository[T, PT])
	if !ok {
		return nil, fmt.Errorf("no repository registered for %s", name)
	}
	return repo, nil
}

// MustLookup is Lookup for wiring code, where a missing repository is a programming error.
func MustLookup[T any, PT EntityPtr[T]](reg *Registry) *Repository[T, PT] {
	repo, err := Lookup[T, PT](reg)
	if err != nil {
		panic(err)
	}
	return repo
}

func (reg *Registry) Names() []string {
	out := make([]string, 0, len(reg.repos))
	for name := range reg.repos {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
