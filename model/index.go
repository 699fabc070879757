package model

import (
	"fmt"
	"time"
)

// Relation names an association that can be eagerly loaded with its owner.
type Relation string

type Entity interface {
	GetID() uint
	IsNew() bool
	EntityName() string
	Relations() []Relation
	Touch(now time.Time) (restore func())
	ResetID()
}

// Owner is implemented by aggregate roots whose owned relations are removed together with them.
type Owner interface {
	OwnedRelations() []Relation
}

// Referrer lists relations that are only referenced and must never be written through the entity.
type Referrer interface {
	ReferencedRelations() []Relation
}

type Base struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CreationDate time.Time  `gorm:"<-:create;not null;autoCreateTime" json:"creationDate"`
	ChangeDate   *time.Time `json:"changeDate"`
}

func (b *Base) GetID() uint { return b.ID }

func (b *Base) IsNew() bool { return b.ID == 0 }

// Touch stamps the change date. restore puts the previous value back.
func (b *Base) Touch(now time.Time) (restore func()) {
	prev := b.ChangeDate
	t := now.UTC()
	b.ChangeDate = &t
	return func() { b.ChangeDate = prev }
}

// ResetID forgets an id that was assigned by an insert that was later rolled back.
func (b *Base) ResetID() { b.ID = 0 }

func newBase(now time.Time) Base {
	return Base{CreationDate: now.UTC()}
}

// Key identifies an entity by concrete type and id, usable as a map key.
type Key struct {
	Entity string
	ID     uint
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Entity, k.ID)
}

func KeyOf(e Entity) Key {
	return Key{Entity: e.EntityName(), ID: e.GetID()}
}

// Equal reports whether a and b are the same concrete type with the same id.
func Equal(a, b Entity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return KeyOf(a) == KeyOf(b)
}

func hasRelation(rels []Relation, r Relation) bool {
	for _, x := range rels {
		if x == r {
			return true
		}
	}
	return false
}

// Supports reports whether e declares r as a loadable relation.
func Supports(e Entity, r Relation) bool {
	return hasRelation(e.Relations(), r)
}
