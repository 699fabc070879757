package repository

import (
	"errors"
	"fmt"
)

var ErrUnknownRelation = errors.New("unknown relation")

// PersistenceError reports a write the storage backend rejected. The enclosing transaction has been rolled back.
type PersistenceError struct {
	Op     string
	Entity string
	ID     uint
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
