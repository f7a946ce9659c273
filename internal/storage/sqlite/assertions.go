package sqlite

import "github.com/tinoosan/bank/internal/storage"

var _ storage.Backend = (*Store)(nil)
