package qcm

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for an absent record id. Delete never
// returns it: deleting an absent record is a success.
var ErrNotFound = errors.New("qcm not found")

// Store persists quiz records. A process uses exactly one implementation
// for its lifetime: the SQL store when the row-store is configured, the
// in-memory store otherwise. There is no fallback during a request.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]Summary, error)
}
