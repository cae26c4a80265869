package ecs

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrComponentGone is returned when a weak component reference is retrieved
// after its slot has been removed from the owning store.
var ErrComponentGone = eris.New("ecs: component no longer exists")

// BorrowKind identifies the kind of borrow that was requested.
type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	BorrowExclusive
)

func (k BorrowKind) String() string {
	if k == BorrowExclusive {
		return "exclusive"
	}
	return "shared"
}

// BorrowError reports a borrow that conflicts with one that is still live.
type BorrowError struct {
	Kind   BorrowKind
	Target string
	Entity EntityId
}

func (e *BorrowError) Error() string {
	held := "exclusive"
	if e.Kind == BorrowExclusive {
		held = "shared or exclusive"
	}
	return fmt.Sprintf("ecs: cannot take %s borrow of %s on entity %d: already held as %s", e.Kind, e.Target, e.Entity, held)
}
