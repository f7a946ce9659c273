package memory

import (
	"github.com/tinoosan/bank/internal/help"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/storage"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ storage.KV       = (*Store)(nil)
	_ storage.Index    = (*Store)(nil)
	_ journal.Sink     = (*Store)(nil)
	_ help.TicketSink  = (*Store)(nil)
	_ storage.Backend  = (*Store)(nil)
)
