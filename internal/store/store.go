// Package store keeps uploaded scene files so they can be re-read by id.
//
// A store hands out an ID on Put and returns the same bytes on Get. IDs
// are opaque to callers; they only need to be passed back unchanged.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ID identifies a stored blob.
type ID uint64

// String formats the id for logs.
func (id ID) String() string {
	return fmt.Sprintf("%d", uint64(id))
}

// Record is one stored scene file.
type Record struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("store: record not found")

// Error wraps a failure of a store operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "store " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Store persists scene blobs.
type Store interface {
	Put(ctx context.Context, name string, data []byte) (ID, error)
	Get(ctx context.Context, id ID) (Record, error)
	Clear(ctx context.Context) error
	Close() error
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}
