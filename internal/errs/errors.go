package errs

import (
    "errors"
    "fmt"
)

// Common sentinel errors for cross-layer signaling.
var (
    ErrNotFound = errors.New("not_found")
    // ErrInvalid marks malformed input; the console re-prompts on it.
    ErrInvalid = errors.New("invalid")
    // ErrAuthentication is a PIN mismatch. Operations abort without retry.
    ErrAuthentication = errors.New("authentication_failed")
    ErrInsufficientFunds = errors.New("insufficient_funds")
    // ErrPersistence wraps read/write failures of the backing store.
    ErrPersistence = errors.New("persistence")
    // ErrCorruptRecord means a record exists but one of its lines is missing or unparseable.
    ErrCorruptRecord = errors.New("corrupt_record")
    ErrLimitExceeded = errors.New("limit_exceeded")
    ErrSameAccount   = errors.New("same_account")
    ErrNameMismatch  = errors.New("name_mismatch")
    ErrIDMismatch    = errors.New("id_mismatch")
    // ErrPINMismatch is the delete confirmation PIN differing from the first entry.
    ErrPINMismatch = errors.New("pin_mismatch")
    ErrCancelled   = errors.New("cancelled")
)

// Invalid returns an ErrInvalid carrying a human readable reason.
func Invalid(reason string) error { return fmt.Errorf("%w: %s", ErrInvalid, reason) }

// ConsistencyWarning reports an index/record disagreement left behind by a
// partially failed operation. It is never fatal and never repaired.
type ConsistencyWarning struct {
    Op     string
    AccNum string
    Err    error
}

func (w *ConsistencyWarning) Error() string {
    if w.Err == nil { return w.Op + " " + w.AccNum + ": index and record out of sync" }
    return w.Op + " " + w.AccNum + ": " + w.Err.Error()
}

func (w *ConsistencyWarning) Unwrap() error { return w.Err }

// Warn builds a ConsistencyWarning.
func Warn(op, accNum string, err error) *ConsistencyWarning {
    return &ConsistencyWarning{Op: op, AccNum: accNum, Err: err}
}
