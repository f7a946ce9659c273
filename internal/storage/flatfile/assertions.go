package flatfile

import "github.com/tinoosan/bank/internal/storage"

// Compile-time interface assertion.
var _ storage.Backend = (*Store)(nil)
