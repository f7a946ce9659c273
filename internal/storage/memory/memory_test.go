package memory

import (
    "context"
    "testing"

    "github.com/tinoosan/bank/internal/journal"
    "github.com/tinoosan/bank/internal/storage/storagetest"
)

func TestStore_Contract(t *testing.T) {
    storagetest.Run(t, New())
}

func TestSeedAndReset(t *testing.T) {
    ctx := context.Background()
    s := New()
    s.SeedIndex("1234567")
    s.SeedRecord("7654321", []byte("x"))
    if ok, _ := s.Contains(ctx, "1234567"); !ok { t.Fatalf("seeded index entry missing") }
    if _, err := s.Get(ctx, "1234567"); err == nil { t.Fatalf("index seed must not create a record") }
    if keys, _ := s.List(ctx); len(keys) != 1 || keys[0] != "7654321" { t.Fatalf("unexpected keys %v", keys) }

    _ = s.Append(ctx, journal.HelpRequested())
    if len(s.Events()) != 1 { t.Fatalf("event not kept") }

    s.Reset()
    if n, _ := s.Count(ctx); n != 0 { t.Fatalf("count after reset = %d", n) }
    if len(s.Events()) != 0 || len(s.Tickets()) != 0 { t.Fatalf("reset left data behind") }
}

func TestPut_CopiesValue(t *testing.T) {
    ctx := context.Background()
    s := New()
    buf := []byte("abc")
    _ = s.Put(ctx, "1234567", buf)
    buf[0] = 'z'
    got, _ := s.Get(ctx, "1234567")
    if string(got) != "abc" { t.Fatalf("stored value aliased caller buffer: %q", got) }
}
