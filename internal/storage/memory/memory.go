package memory

// Package memory provides a simple in-memory backend used for development and tests.
// It mirrors the flat-file semantics (index and records kept apart) so the
// partial-failure behaviour of the services can be exercised without a disk.
import (
    "context"
    "sort"
    "sync"

    "github.com/tinoosan/bank/internal/errs"
    "github.com/tinoosan/bank/internal/help"
    "github.com/tinoosan/bank/internal/journal"
    "github.com/tinoosan/bank/internal/storage"
)

// Store is an in-memory implementation of storage.Backend.
// It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
    mu      sync.RWMutex
    records map[string][]byte
    // index keeps insertion order and allows duplicates, like the index file.
    index   []string
    events  []journal.Event
    tickets []help.Ticket
}

// New constructs an empty in-memory store.
func New() *Store {
    return &Store{records: make(map[string][]byte)}
}

// Seed helpers for local dev/tests. SeedRecord writes a raw record without
// touching the index; SeedIndex appends an index line without a record.
func (s *Store) SeedRecord(key string, body []byte) { s.mu.Lock(); s.records[key] = append([]byte(nil), body...); s.mu.Unlock() }
func (s *Store) SeedIndex(accNum string)            { s.mu.Lock(); s.index = append(s.index, accNum); s.mu.Unlock() }
func (s *Store) Reset() {
    s.mu.Lock()
    s.records = map[string][]byte{}
    s.index = nil
    s.events = nil
    s.tickets = nil
    s.mu.Unlock()
}

// Close implements storage.Backend.
func (s *Store) Close() error { return nil }

// Get implements storage.KV.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
    s.mu.RLock(); defer s.mu.RUnlock()
    b, ok := s.records[key]
    if !ok { return nil, errs.ErrNotFound }
    return append([]byte(nil), b...), nil
}

// Put implements storage.KV.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
    s.mu.Lock(); defer s.mu.Unlock()
    // store a copy so callers can reuse their buffer
    s.records[key] = append([]byte(nil), value...)
    return nil
}

// Delete implements storage.KV.
func (s *Store) Delete(_ context.Context, key string) error {
    s.mu.Lock(); defer s.mu.Unlock()
    if _, ok := s.records[key]; !ok { return errs.ErrNotFound }
    delete(s.records, key)
    return nil
}

// List implements storage.KV. Keys are returned sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
    s.mu.RLock(); defer s.mu.RUnlock()
    out := make([]string, 0, len(s.records))
    for k := range s.records { out = append(out, k) }
    sort.Strings(out)
    return out, nil
}

// Contains implements storage.Index.
func (s *Store) Contains(_ context.Context, accNum string) (bool, error) {
    if !storage.IndexKey(accNum) { return false, nil }
    s.mu.RLock(); defer s.mu.RUnlock()
    for _, a := range s.index {
        if a == accNum { return true, nil }
    }
    return false, nil
}

// Add implements storage.Index.
func (s *Store) Add(_ context.Context, accNum string) error {
    s.mu.Lock(); defer s.mu.Unlock()
    s.index = append(s.index, accNum)
    return nil
}

// Remove implements storage.Index. The index is rebuilt without accNum under the write lock.
func (s *Store) Remove(_ context.Context, accNum string) (bool, error) {
    s.mu.Lock(); defer s.mu.Unlock()
    kept := make([]string, 0, len(s.index))
    removed := false
    for _, a := range s.index {
        if a == accNum { removed = true; continue }
        if a != "" { kept = append(kept, a) }
    }
    s.index = kept
    return removed, nil
}

// Count implements storage.Index.
func (s *Store) Count(ctx context.Context) (int, error) {
    m, err := s.Members(ctx)
    return len(m), err
}

// Members implements storage.Index.
func (s *Store) Members(_ context.Context) ([]string, error) {
    s.mu.RLock(); defer s.mu.RUnlock()
    out := make([]string, 0, len(s.index))
    for _, a := range s.index {
        if a != "" { out = append(out, a) }
    }
    return out, nil
}

// Append implements journal.Sink.
func (s *Store) Append(_ context.Context, e journal.Event) error {
    s.mu.Lock(); defer s.mu.Unlock()
    s.events = append(s.events, e)
    return nil
}

// Events returns a copy of the recorded journal events.
func (s *Store) Events() []journal.Event {
    s.mu.RLock(); defer s.mu.RUnlock()
    out := make([]journal.Event, len(s.events))
    copy(out, s.events)
    return out
}

// SaveTicket implements help.TicketSink.
func (s *Store) SaveTicket(_ context.Context, t help.Ticket) error {
    s.mu.Lock(); defer s.mu.Unlock()
    s.tickets = append(s.tickets, t)
    return nil
}

// Tickets returns a copy of the saved help tickets.
func (s *Store) Tickets() []help.Ticket {
    s.mu.RLock(); defer s.mu.RUnlock()
    out := make([]help.Ticket, len(s.tickets))
    copy(out, s.tickets)
    return out
}
