// Package storage defines the persistence contracts shared by the backends
// (file, memory, sqlite, postgres). Backends live in subpackages and each
// satisfies every interface here with a single Store type.
package storage

import (
	"context"

	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/validate"
)

// KV stores serialized account records keyed by account number.
type KV interface {
	// Get returns errs.ErrNotFound when the key has no value.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or overwrites the value for key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete returns errs.ErrNotFound when the key has no value.
	Delete(ctx context.Context, key string) error
	// List returns every key that currently has a value.
	List(ctx context.Context) ([]string, error)
}

// Index is the membership list of existing account numbers. Existence of an
// account is defined by the index alone.
type Index interface {
	// Contains is false for any non-digit input regardless of index contents.
	Contains(ctx context.Context, accNum string) (bool, error)
	// Add appends accNum. Duplicates are not checked.
	Add(ctx context.Context, accNum string) error
	// Remove drops every entry equal to accNum and reports whether one was present.
	Remove(ctx context.Context, accNum string) (bool, error)
	// Count returns the number of non-blank entries.
	Count(ctx context.Context) (int, error)
	// Members returns the entries in index order.
	Members(ctx context.Context) ([]string, error)
}

// Backend bundles everything a session needs from one storage implementation.
type Backend interface {
	KV
	Index
	journal.Sink
	help.TicketSink
	Close() error
}

// IndexKey reports whether s may be an index entry at all.
func IndexKey(s string) bool { return validate.IsDigits(s) }
