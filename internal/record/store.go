// Package record is the account record store: it encodes accounts into the
// five-line text format and keeps them in a storage.KV, consulting the index
// to decide whether an account exists at all.
package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/storage"
)

// Membership is the part of the index the store needs.
type Membership interface {
	Contains(ctx context.Context, accNum string) (bool, error)
}

// Store reads and writes account records.
type Store struct {
	kv    storage.KV
	index Membership
}

// New returns a Store over kv, gated by index.
func New(kv storage.KV, index Membership) *Store {
	return &Store{kv: kv, index: index}
}

// Save writes the record for a.AccNum, replacing any previous content.
// A failed write may leave a truncated record behind.
func (s *Store) Save(ctx context.Context, a bank.Account) error {
	if err := s.kv.Put(ctx, a.AccNum, Encode(a)); err != nil {
		return fmt.Errorf("%w: save account %s: %w", errs.ErrPersistence, a.AccNum, err)
	}
	return nil
}

// Load returns the account for accNum. It fails with errs.ErrNotFound when the
// index does not list accNum or the record is missing, and with
// errs.ErrCorruptRecord when the record cannot be decoded.
func (s *Store) Load(ctx context.Context, accNum string) (bank.Account, error) {
	ok, err := s.index.Contains(ctx, accNum)
	if err != nil {
		return bank.Account{}, fmt.Errorf("%w: read index: %w", errs.ErrPersistence, err)
	}
	if !ok {
		return bank.Account{}, fmt.Errorf("%w: account %s is not registered", errs.ErrNotFound, accNum)
	}
	body, err := s.kv.Get(ctx, accNum)
	if errors.Is(err, errs.ErrNotFound) {
		return bank.Account{}, fmt.Errorf("%w: record for account %s is missing", errs.ErrNotFound, accNum)
	}
	if err != nil {
		return bank.Account{}, fmt.Errorf("%w: load account %s: %w", errs.ErrPersistence, accNum, err)
	}
	return Decode(accNum, body)
}

// Remove deletes the record for accNum. The index is left alone.
func (s *Store) Remove(ctx context.Context, accNum string) error {
	if err := s.kv.Delete(ctx, accNum); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: remove account %s: %w", errs.ErrPersistence, accNum, err)
	}
	return nil
}

// Keys lists the keys that currently hold a record, whether indexed or not.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.kv.List(ctx)
}
