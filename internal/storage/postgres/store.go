package postgres

// Package postgres provides a pgx-backed storage.Backend. The tables mirror
// the flat files: records keyed by account number, an ordered index that may
// hold duplicates, the transaction log and help requests. Migrate creates the
// schema from the embedded schema.sql.

import (
    "context"
    _ "embed"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"

    "github.com/tinoosan/bank/internal/errs"
    "github.com/tinoosan/bank/internal/help"
    "github.com/tinoosan/bank/internal/journal"
    "github.com/tinoosan/bank/internal/storage"
)

//go:embed schema.sql
var schema string

// Store holds a pgx connection pool. All methods are safe for concurrent use.
type Store struct {
    pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
    cfg, err := pgxpool.ParseConfig(dsn)
    if err != nil { return nil, err }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil { return nil, err }
    // Verify connection
    if err := pool.Ping(ctx); err != nil { pool.Close(); return nil, err }
    return &Store{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
    if _, err := s.pool.Exec(ctx, schema); err != nil { return fmt.Errorf("apply schema: %w", err) }
    return nil
}

// Close releases the underlying pool.
func (s *Store) Close() error { if s.pool != nil { s.pool.Close() }; return nil }

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// --- Records ---

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
    if !storage.IndexKey(key) { return nil, errs.ErrNotFound }
    var body []byte
    err := s.pool.QueryRow(ctx, `select body from records where acc_num = $1`, key).Scan(&body)
    if errors.Is(err, pgx.ErrNoRows) { return nil, errs.ErrNotFound }
    if err != nil { return nil, err }
    return body, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
    if !storage.IndexKey(key) { return errs.Invalid("record key must be digits") }
    _, err := s.pool.Exec(ctx, `
        insert into records (acc_num, body, updated_at)
        values ($1, $2, now())
        on conflict (acc_num) do update set body = excluded.body, updated_at = excluded.updated_at
    `, key, value)
    return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
    if !storage.IndexKey(key) { return errs.ErrNotFound }
    ct, err := s.pool.Exec(ctx, `delete from records where acc_num = $1`, key)
    if err != nil { return err }
    if ct.RowsAffected() == 0 { return errs.ErrNotFound }
    return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
    return s.strings(ctx, `select acc_num from records order by acc_num`)
}

// --- Index ---

func (s *Store) Contains(ctx context.Context, accNum string) (bool, error) {
    if !storage.IndexKey(accNum) { return false, nil }
    var ok bool
    err := s.pool.QueryRow(ctx, `select exists(select 1 from index_entries where acc_num = $1)`, accNum).Scan(&ok)
    return ok, err
}

func (s *Store) Add(ctx context.Context, accNum string) error {
    _, err := s.pool.Exec(ctx, `insert into index_entries (acc_num) values ($1)`, accNum)
    return err
}

// Remove deletes every entry for accNum in one transaction.
func (s *Store) Remove(ctx context.Context, accNum string) (bool, error) {
    tx, err := s.pool.Begin(ctx)
    if err != nil { return false, err }
    defer func() { _ = tx.Rollback(ctx) }()
    ct, err := tx.Exec(ctx, `delete from index_entries where acc_num = $1`, accNum)
    if err != nil { return false, err }
    if err := tx.Commit(ctx); err != nil { return false, err }
    return ct.RowsAffected() > 0, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
    var n int
    err := s.pool.QueryRow(ctx, `select count(*) from index_entries where acc_num <> ''`).Scan(&n)
    return n, err
}

func (s *Store) Members(ctx context.Context) ([]string, error) {
    return s.strings(ctx, `select acc_num from index_entries where acc_num <> '' order by id`)
}

func (s *Store) strings(ctx context.Context, q string) ([]string, error) {
    rows, err := s.pool.Query(ctx, q)
    if err != nil { return nil, err }
    out, err := pgx.CollectRows(rows, pgx.RowTo[string])
    if err != nil { return nil, err }
    if out == nil { out = []string{} }
    return out, nil
}

// --- Journal and help ---

func (s *Store) Append(ctx context.Context, e journal.Event) error {
    attrs, err := e.Attrs.MarshalStableJSON()
    if err != nil { return fmt.Errorf("encode attrs: %w", err) }
    _, err = s.pool.Exec(ctx, `
        insert into transaction_log (id, at, kind, acc_num, message, attrs)
        values ($1,$2,$3,$4,$5,$6)
    `, e.ID, e.At.UTC(), string(e.Kind), e.AccNum, e.Message, attrs)
    return err
}

// Events returns the transaction log, oldest first.
func (s *Store) Events(ctx context.Context) ([]journal.Event, error) {
    rows, err := s.pool.Query(ctx, `
        select id, at, kind, acc_num, message, attrs
        from transaction_log
        order by at asc, id asc
    `)
    if err != nil { return nil, err }
    defer rows.Close()
    out := make([]journal.Event, 0)
    for rows.Next() {
        var e journal.Event
        var kind string
        var attrs []byte
        if err := rows.Scan(&e.ID, &e.At, &kind, &e.AccNum, &e.Message, &attrs); err != nil { return nil, err }
        e.Kind = journal.Kind(kind)
        if len(attrs) > 0 {
            var a journal.Attrs
            if err := a.UnmarshalJSON(attrs); err == nil { e.Attrs = a }
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

func (s *Store) SaveTicket(ctx context.Context, t help.Ticket) error {
    _, err := s.pool.Exec(ctx, `
        insert into help_requests (id, at, contact, issue)
        values ($1,$2,$3,$4)
    `, t.ID, t.At.UTC(), t.Contact, t.Issue)
    return err
}

// Truncate empties every table.
func (s *Store) Truncate(ctx context.Context) error {
    _, err := s.pool.Exec(ctx, `truncate table records, index_entries, transaction_log, help_requests`)
    return err
}
