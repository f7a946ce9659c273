// Package storagetest holds the behaviour every storage.Backend must share,
// run by each backend's own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/storage"
)

// Run exercises b, which must start empty.
func Run(t *testing.T, b storage.Backend) {
	t.Helper()
	t.Run("KV", func(t *testing.T) { kv(t, b) })
	t.Run("Index", func(t *testing.T) { index(t, b) })
	t.Run("Journal", func(t *testing.T) {
		require.NoError(t, b.Append(context.Background(), journal.Event{
			ID: uuid.New(), At: time.Now(), Kind: journal.KindHelp, Message: "Help request submitted",
		}))
	})
	t.Run("Tickets", func(t *testing.T) {
		require.NoError(t, b.SaveTicket(context.Background(), help.Ticket{
			ID: uuid.New(), At: time.Now(), Contact: "jane@example.com", Issue: "card stuck",
		}))
	})
}

func kv(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	_, err := b.Get(ctx, "1234567")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, b.Put(ctx, "1234567", []byte("first\n")))
	require.NoError(t, b.Put(ctx, "1234567", []byte("second\n")))
	got, err := b.Get(ctx, "1234567")
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(got))

	require.NoError(t, b.Put(ctx, "7654321", []byte("other\n")))
	keys, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567", "7654321"}, keys)

	require.NoError(t, b.Delete(ctx, "1234567"))
	assert.ErrorIs(t, b.Delete(ctx, "1234567"), errs.ErrNotFound)
	_, err = b.Get(ctx, "1234567")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, b.Delete(ctx, "7654321"))
}

func index(t *testing.T, b storage.Backend) {
	ctx := context.Background()

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, a := range []string{"1111111", "22222222", "1111111", "333333333"} {
		require.NoError(t, b.Add(ctx, a))
	}
	ok, err := b.Contains(ctx, "22222222")
	require.NoError(t, err)
	assert.True(t, ok)

	// non-digit input never matches
	ok, err = b.Contains(ctx, "2222222x")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = b.Contains(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err := b.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1111111", "22222222", "1111111", "333333333"}, members)

	// every duplicate goes in one removal
	removed, err := b.Remove(ctx, "1111111")
	require.NoError(t, err)
	assert.True(t, removed)
	ok, err = b.Contains(ctx, "1111111")
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err = b.Remove(ctx, "1111111")
	require.NoError(t, err)
	assert.False(t, removed)

	members, err = b.Members(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"22222222", "333333333"}, members)
	n, err = b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
