// Package help holds the curated help topics shown by the console and files
// support tickets to a local sink.
package help

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/journal"
)

// Topic is one entry of the help menu.
type Topic struct {
	Code  string
	Label string
	Body  string
	// Ticket marks the topic that opens a support request instead of printing Body.
	Ticket bool
}

var curated = []Topic{
	{Code: "1", Label: "How to create an account",
		Body: "Create account: choose 'Create Account' from menu, then provide Name, 7-digit ID, account type (savings/current), 4-digit PIN. Account number will be generated."},
	{Code: "2", Label: "How to deposit/withdraw",
		Body: "Deposit/Withdraw: choose deposit or withdraw, authenticate with account number and PIN. Deposit allowed > RM0 and ≤ RM50,000 per operation."},
	{Code: "3", Label: "How remittance works and fees",
		Body: "Remittance: sender authenticates with PIN. Savings->Current: 2% fee. Current->Savings: 3% fee. Fee deducted from sender."},
	{Code: "4", Label: "Contact/Report an issue (send request)", Ticket: true,
		Body: "Send a help request. Enter your email or phone to be notified (saved locally for now)."},
}

// Topics returns the help menu in display order.
func Topics() []Topic {
	out := make([]Topic, len(curated))
	copy(out, curated)
	return out
}

// Lookup finds a topic by its menu code.
func Lookup(code string) (Topic, bool) {
	for _, t := range curated {
		if t.Code == strings.TrimSpace(code) {
			return t, true
		}
	}
	return Topic{}, false
}

// Ticket is a saved help request.
type Ticket struct {
	ID      uuid.UUID
	At      time.Time
	Contact string
	Issue   string
}

// Line renders the ticket as stored in the help request file.
func (t Ticket) Line() string {
	return "[" + t.At.Local().Format(journal.TimeLayout) + "] " + t.Contact + " | " + t.Issue
}

// TicketSink persists tickets.
type TicketSink interface {
	SaveTicket(ctx context.Context, t Ticket) error
}

// Recorder is the part of the journal the desk writes to.
type Recorder interface {
	Record(ctx context.Context, e journal.Event) error
}

// Desk files tickets and notes them in the transaction log.
type Desk struct {
	sink    TicketSink
	journal Recorder
	now     func() time.Time
}

// NewDesk returns a Desk using the wall clock.
func NewDesk(sink TicketSink, j Recorder) *Desk {
	return &Desk{sink: sink, journal: j, now: time.Now}
}

// Submit saves a ticket. A journal failure after the ticket is saved is returned
// alongside the ticket.
func (d *Desk) Submit(ctx context.Context, contact, issue string) (Ticket, error) {
	t := Ticket{ID: uuid.New(), At: d.now(), Contact: contact, Issue: issue}
	if err := d.sink.SaveTicket(ctx, t); err != nil {
		return Ticket{}, fmt.Errorf("%w: failed to save help request: %w", errs.ErrPersistence, err)
	}
	if d.journal != nil {
		if err := d.journal.Record(ctx, journal.HelpRequested()); err != nil {
			return t, err
		}
	}
	return t, nil
}
