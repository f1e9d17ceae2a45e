package catalog

import (
	"errors"
	"fmt"
)

// Entity names the collection an error refers to.
type Entity string

const (
	EntityBook   Entity = "book"
	EntityReader Entity = "reader"
)

// Link conflicts inside Checkout/Return.
var (
	ErrAlreadyLinked = errors.New("book already linked to reader")
	ErrNotLinked     = errors.New("book not linked to reader")
)

// NotFoundError is returned by use-case operations when a key is absent.
// Plain lookups report absence as a bool instead.
type NotFoundError struct {
	Entity Entity
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// DeleteForbiddenError rejects removal of an entity that still participates
// in a taken relationship.
type DeleteForbiddenError struct {
	Entity Entity
	Key    string
	Reason string
}

func (e *DeleteForbiddenError) Error() string {
	return fmt.Sprintf("cannot delete %s %q: %s", e.Entity, e.Key, e.Reason)
}

// AlreadyInStateError rejects a checkout of a taken book or a return of an
// available one.
type AlreadyInStateError struct {
	Entity Entity
	Key    string
	State  string
}

func (e *AlreadyInStateError) Error() string {
	return fmt.Sprintf("%s %q is already %s", e.Entity, e.Key, e.State)
}

// DuplicateKeyError rejects a rename onto an existing key.
type DuplicateKeyError struct {
	Entity Entity
	Key    string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s key %q already exists", e.Entity, e.Key)
}
