package help

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/journal"
)

type tickets struct {
	saved []Ticket
	err   error
}

func (s *tickets) SaveTicket(_ context.Context, t Ticket) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, t)
	return nil
}

type recorder struct {
	events []journal.Event
	err    error
}

func (r *recorder) Record(_ context.Context, e journal.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestTopics(t *testing.T) {
	topics := Topics()
	require.Len(t, topics, 4)
	for i, tp := range topics {
		assert.Equal(t, string(rune('1'+i)), tp.Code)
		assert.NotEmpty(t, tp.Body)
	}
	assert.True(t, topics[3].Ticket)
	assert.Contains(t, topics[2].Body, "Savings->Current: 2% fee")

	// callers get a copy
	topics[0].Label = "changed"
	assert.NotEqual(t, "changed", Topics()[0].Label)
}

func TestLookup(t *testing.T) {
	tp, ok := Lookup(" 2 ")
	require.True(t, ok)
	assert.Equal(t, "How to deposit/withdraw", tp.Label)

	_, ok = Lookup("back")
	assert.False(t, ok)
}

func TestDesk_Submit(t *testing.T) {
	sink, rec := &tickets{}, &recorder{}
	d := NewDesk(sink, rec)
	d.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local) }

	tk, err := d.Submit(context.Background(), "jane@example.com", "card stuck")
	require.NoError(t, err)
	require.Len(t, sink.saved, 1)
	assert.Equal(t, "[2025-01-02 03:04:05] jane@example.com | card stuck", tk.Line())
	require.Len(t, rec.events, 1)
	assert.Equal(t, "Help request submitted", rec.events[0].Message)
}

func TestDesk_SubmitSaveFailure(t *testing.T) {
	rec := &recorder{}
	d := NewDesk(&tickets{err: errors.New("no space left")}, rec)
	_, err := d.Submit(context.Background(), "0123", "help")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPersistence)
	assert.True(t, strings.Contains(err.Error(), "failed to save help request"))
	assert.Empty(t, rec.events, "nothing is logged when the ticket was not saved")
}

func TestDesk_SubmitJournalFailureKeepsTicket(t *testing.T) {
	sink := &tickets{}
	d := NewDesk(sink, &recorder{err: errors.New("log closed")})
	tk, err := d.Submit(context.Background(), "0123", "help")
	require.Error(t, err)
	assert.False(t, errors.Is(err, errs.ErrPersistence))
	assert.Equal(t, "0123", tk.Contact)
	assert.Len(t, sink.saved, 1)
}
