// Package sqlite keeps records, the index, the transaction log and help
// tickets in one SQLite database through gorm. Index entries keep insertion
// order and may repeat, like lines of the flat index file.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/storage"
)

// RecordDTO is one serialized account record.
type RecordDTO struct {
	AccNum    string `gorm:"primaryKey;size:9"`
	Body      []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (RecordDTO) TableName() string { return "records" }

// IndexEntryDTO is one line of the account index.
type IndexEntryDTO struct {
	ID     uint   `gorm:"primaryKey;autoIncrement"`
	AccNum string `gorm:"index;size:9;not null"`
}

func (IndexEntryDTO) TableName() string { return "index_entries" }

// EventDTO is one transaction log entry.
type EventDTO struct {
	ID      string    `gorm:"primaryKey;size:36"`
	At      time.Time `gorm:"index;not null"`
	Kind    string    `gorm:"size:16;not null"`
	AccNum  string    `gorm:"index;size:9"`
	Message string    `gorm:"not null"`
	Attrs   []byte
}

func (EventDTO) TableName() string { return "transaction_log" }

// TicketDTO is one help request.
type TicketDTO struct {
	ID      string    `gorm:"primaryKey;size:36"`
	At      time.Time `gorm:"not null"`
	Contact string    `gorm:"not null"`
	Issue   string    `gorm:"not null"`
}

func (TicketDTO) TableName() string { return "help_requests" }

// Store implements storage.Backend on a gorm connection.
type Store struct {
	db *gorm.DB
}

// Open connects to the database at path and migrates the schema. An empty
// path opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := "file::memory:"
	if path != "" {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == "" {
		// every pooled connection would get its own empty in-memory database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&RecordDTO{}, &IndexEntryDTO{}, &EventDTO{}, &TicketDTO{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- KV ---

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if !storage.IndexKey(key) {
		return nil, errs.ErrNotFound
	}
	var r RecordDTO
	err := s.db.WithContext(ctx).Where("acc_num = ?", key).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.Body, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if !storage.IndexKey(key) {
		return errs.Invalid("record key must be digits")
	}
	return s.db.WithContext(ctx).Save(&RecordDTO{AccNum: key, Body: value}).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if !storage.IndexKey(key) {
		return errs.ErrNotFound
	}
	res := s.db.WithContext(ctx).Where("acc_num = ?", key).Delete(&RecordDTO{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&RecordDTO{}).Order("acc_num").Pluck("acc_num", &keys).Error
	return keys, err
}

// --- Index ---

func (s *Store) Contains(ctx context.Context, accNum string) (bool, error) {
	if !storage.IndexKey(accNum) {
		return false, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&IndexEntryDTO{}).Where("acc_num = ?", accNum).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Add(ctx context.Context, accNum string) error {
	return s.db.WithContext(ctx).Create(&IndexEntryDTO{AccNum: accNum}).Error
}

// Remove drops every entry for accNum in one transaction.
func (s *Store) Remove(ctx context.Context, accNum string) (bool, error) {
	var removed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("acc_num = ?", accNum).Delete(&IndexEntryDTO{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	return removed, err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&IndexEntryDTO{}).Where("acc_num <> ''").Count(&n).Error
	return int(n), err
}

func (s *Store) Members(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&IndexEntryDTO{}).Where("acc_num <> ''").Order("id").Pluck("acc_num", &out).Error
	return out, err
}

// --- Journal and help ---

func (s *Store) Append(ctx context.Context, e journal.Event) error {
	attrs, err := e.Attrs.MarshalStableJSON()
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&EventDTO{
		ID:      e.ID.String(),
		At:      e.At.UTC(),
		Kind:    string(e.Kind),
		AccNum:  e.AccNum,
		Message: e.Message,
		Attrs:   attrs,
	}).Error
}

// Lines returns the transaction log rendered as flat log lines, oldest first.
func (s *Store) Lines(ctx context.Context) ([]string, error) {
	var rows []EventDTO
	if err := s.db.WithContext(ctx).Order("at, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, journal.Event{At: r.At, Message: r.Message}.Line())
	}
	return out, nil
}

func (s *Store) SaveTicket(ctx context.Context, t help.Ticket) error {
	return s.db.WithContext(ctx).Create(&TicketDTO{
		ID:      t.ID.String(),
		At:      t.At.UTC(),
		Contact: t.Contact,
		Issue:   t.Issue,
	}).Error
}
