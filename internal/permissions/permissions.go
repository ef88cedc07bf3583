// Package permissions decides whether a caller may perform an operation on tasks.
//
// Any authenticated caller may change any task. Only staff may delete.
// There is no per-task ownership.
package permissions

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the operation needs a verified identity and none was presented.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	// ErrForbidden means the caller is known but lacks the required role.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// Operation is the kind of access a request needs.
type Operation int

const (
	Read Operation = iota
	Write
	Delete
)

func (o Operation) String() string {
	switch o {
	case Read:
		return "read"
	case Write:
		return "write"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Identity is the caller resolved from a verified bearer token.
// A nil *Identity is an anonymous caller.
type Identity struct {
	Subject         uint64
	IsAuthenticated bool
	IsStaff         bool
}

func (i *Identity) authenticated() bool {
	return i != nil && i.IsAuthenticated
}

func (i *Identity) staff() bool {
	return i.authenticated() && i.IsStaff
}

type rule struct {
	op    Operation
	allow func(*Identity) bool
}

// policy is evaluated top to bottom; the first rule naming the operation decides.
var policy = []rule{
	{op: Read, allow: func(*Identity) bool { return true }},
	{op: Delete, allow: (*Identity).staff},
	{op: Write, allow: (*Identity).authenticated},
}

// Authorize returns nil when identity may perform op, ErrUnauthenticated
// when op needs a verified identity, or ErrForbidden when the identity lacks
// the required role. Operations without a rule are denied.
func Authorize(op Operation, identity *Identity) error {
	for _, r := range policy {
		if r.op != op {
			continue
		}
		if r.allow(identity) {
			return nil
		}
		return deny(op, identity)
	}
	return deny(op, identity)
}

func deny(op Operation, identity *Identity) error {
	if !identity.authenticated() {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}
	return fmt.Errorf("%s: %w", op, ErrForbidden)
}
