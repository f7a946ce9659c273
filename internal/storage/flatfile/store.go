// Package flatfile is the default backend: one text file per account, a
// plain index file, and append-only log and help request files, all in one
// directory.
//
// Layout:
//
//	<dir>/index.txt          one account number per line
//	<dir>/<accNum>.txt       the account record
//	<dir>/transaction.log    "[YYYY-MM-DD HH:MM:SS] <event>"
//	<dir>/help_requests.txt  "[timestamp] <contact> | <issue>"
//
// Writes are not atomic except for index removal, which goes through a
// temporary file and a rename. Nothing is locked; a single process is assumed.
package flatfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/storage"
)

const (
	IndexFile = "index.txt"
	LogFile   = "transaction.log"
	HelpFile  = "help_requests.txt"
	recordExt = ".txt"
	indexTmp  = "index.tmp"
)

// Store implements storage.Backend on a directory.
type Store struct {
	dir string
}

// Open creates dir if needed and makes sure the index, log and help files exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{dir: dir}
	for _, name := range []string{IndexFile, LogFile, HelpFile} {
		f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("touch %s: %w", name, err)
		}
		_ = f.Close()
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Close is a no-op; files are opened per call.
func (s *Store) Close() error { return nil }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }

// RecordPath returns the file holding the record for key.
func (s *Store) RecordPath(key string) string { return s.path(key + recordExt) }

// --- KV ---

// Get reads the record file for key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if !storage.IndexKey(key) {
		return nil, errs.ErrNotFound
	}
	b, err := os.ReadFile(s.RecordPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// Put overwrites the record file for key.
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	if !storage.IndexKey(key) {
		return errs.Invalid("record key must be digits")
	}
	return os.WriteFile(s.RecordPath(key), value, 0o644)
}

// Delete removes the record file for key.
func (s *Store) Delete(_ context.Context, key string) error {
	if !storage.IndexKey(key) {
		return errs.ErrNotFound
	}
	err := os.Remove(s.RecordPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return errs.ErrNotFound
	}
	return err
}

// List returns the keys of all record files, sorted.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		key := strings.TrimSuffix(name, recordExt)
		if storage.IndexKey(key) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- Index ---

func (s *Store) readIndex() ([]string, error) {
	b, err := os.ReadFile(s.path(IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

// Contains reports whether a line equal to accNum is in the index.
func (s *Store) Contains(_ context.Context, accNum string) (bool, error) {
	if !storage.IndexKey(accNum) {
		return false, nil
	}
	lines, err := s.readIndex()
	if err != nil {
		return false, err
	}
	for _, l := range lines {
		if l == accNum {
			return true, nil
		}
	}
	return false, nil
}

// Add appends accNum to the index file.
func (s *Store) Add(_ context.Context, accNum string) error {
	f, err := os.OpenFile(s.path(IndexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(accNum + "\n"); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Remove rewrites the index into a temporary file without accNum (and without
// blank lines), then renames it over index.txt.
func (s *Store) Remove(_ context.Context, accNum string) (bool, error) {
	lines, err := s.readIndex()
	if err != nil {
		return false, err
	}
	var buf bytes.Buffer
	removed := false
	for _, l := range lines {
		if l == accNum {
			removed = true
			continue
		}
		if l != "" {
			buf.WriteString(l + "\n")
		}
	}
	tmp := s.path(indexTmp)
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp, s.path(IndexFile)); err != nil {
		_ = os.Remove(tmp)
		return false, err
	}
	return removed, nil
}

// Count returns the number of non-blank index lines.
func (s *Store) Count(ctx context.Context) (int, error) {
	m, err := s.Members(ctx)
	return len(m), err
}

// Members returns the non-blank index lines in file order.
func (s *Store) Members(_ context.Context) ([]string, error) {
	lines, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- Journal and help ---

func (s *Store) appendLine(name, line string) error {
	f, err := os.OpenFile(s.path(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Append writes one transaction log line.
func (s *Store) Append(_ context.Context, e journal.Event) error {
	return s.appendLine(LogFile, e.Line())
}

// SaveTicket writes one help request line.
func (s *Store) SaveTicket(_ context.Context, t help.Ticket) error {
	return s.appendLine(HelpFile, t.Line())
}
