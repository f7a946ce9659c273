// Package journal writes the append-only transaction log: one line per
// mutating operation, "[YYYY-MM-DD HH:MM:SS] <event>".
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/tinoosan/bank/internal/bank"
)

// TimeLayout is the timestamp layout used in log and help lines.
const TimeLayout = "2006-01-02 15:04:05"

// Kind classifies a journal event.
type Kind string

const (
	KindCreate   Kind = "CREATE"
	KindDelete   Kind = "DELETE"
	KindDeposit  Kind = "DEPOSIT"
	KindWithdraw Kind = "WITHDRAW"
	KindRemit    Kind = "REMIT"
	KindHelp     Kind = "HELP"
)

// Event is one transaction log entry.
type Event struct {
	ID      uuid.UUID
	At      time.Time
	Kind    Kind
	AccNum  string
	Message string
	// Attrs carries the structured values behind Message for backends that keep them.
	Attrs Attrs
}

// Line renders the event the way the flat log stores it.
func (e Event) Line() string {
	return "[" + e.At.Local().Format(TimeLayout) + "] " + e.Message
}

// Sink persists events.
type Sink interface {
	Append(ctx context.Context, e Event) error
}

// Journal stamps events and hands them to a Sink.
type Journal struct {
	sink Sink
	now  func() time.Time
}

// New returns a Journal writing to sink using the wall clock.
func New(sink Sink) *Journal { return &Journal{sink: sink, now: time.Now} }

// WithClock overrides the clock, for tests.
func (j *Journal) WithClock(now func() time.Time) *Journal { j.now = now; return j }

// Record assigns ID and timestamp when missing and appends the event.
func (j *Journal) Record(ctx context.Context, e Event) error {
	if e.ID == uuid.Nil { e.ID = uuid.New() }
	if e.At.IsZero() { e.At = j.now() }
	if err := j.sink.Append(ctx, e); err != nil {
		return fmt.Errorf("transaction log: %w", err)
	}
	return nil
}

func rm(a money.Amount) string { return "RM" + bank.FormatAmount(a) }

// Created describes a new account.
func Created(a bank.Account) Event {
	return Event{
		Kind:    KindCreate,
		AccNum:  a.AccNum,
		Message: fmt.Sprintf("CREATE account %s (Name: %s, Type: %s)", a.AccNum, a.Name, a.Type),
		Attrs:   Attrs{"name": a.Name, "type": string(a.Type)},
	}
}

// Deleted describes a removed account.
func Deleted(a bank.Account) Event {
	return Event{
		Kind:    KindDelete,
		AccNum:  a.AccNum,
		Message: fmt.Sprintf("DELETE account %s (Name: %s)", a.AccNum, a.Name),
		Attrs:   Attrs{"name": a.Name},
	}
}

// Deposited describes a deposit; a carries the new balance.
func Deposited(a bank.Account, amount money.Amount) Event {
	return Event{
		Kind:    KindDeposit,
		AccNum:  a.AccNum,
		Message: fmt.Sprintf("DEPOSIT %s to %s (NewBal: %s)", rm(amount), a.AccNum, rm(a.Balance)),
		Attrs:   Attrs{"amount": bank.FormatAmount(amount), "balance": bank.FormatAmount(a.Balance)},
	}
}

// Withdrawn describes a withdrawal; a carries the new balance.
func Withdrawn(a bank.Account, amount money.Amount) Event {
	return Event{
		Kind:    KindWithdraw,
		AccNum:  a.AccNum,
		Message: fmt.Sprintf("WITHDRAW %s from %s (NewBal: %s)", rm(amount), a.AccNum, rm(a.Balance)),
		Attrs:   Attrs{"amount": bank.FormatAmount(amount), "balance": bank.FormatAmount(a.Balance)},
	}
}

// Remitted describes a transfer; from carries the sender's new balance.
func Remitted(from, to bank.Account, amount, fee money.Amount) Event {
	return Event{
		Kind:   KindRemit,
		AccNum: from.AccNum,
		Message: fmt.Sprintf("REMIT %s from %s to %s (Fee: %s) SenderNewBal: %s",
			rm(amount), from.AccNum, to.AccNum, rm(fee), rm(from.Balance)),
		Attrs: Attrs{
			"to":      to.AccNum,
			"amount":  bank.FormatAmount(amount),
			"fee":     bank.FormatAmount(fee),
			"balance": bank.FormatAmount(from.Balance),
		},
	}
}

// HelpRequested records that a help ticket was filed.
func HelpRequested() Event {
	return Event{Kind: KindHelp, Message: "Help request submitted"}
}
