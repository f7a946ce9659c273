// Package account implements the account operations: create, delete, deposit
// and withdraw. Each one validates first, loads, authenticates by PIN, mutates
// in memory, persists, updates the index when existence changes and finally
// appends to the transaction log.
package account

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "github.com/govalues/money"

    "github.com/tinoosan/bank/internal/accnum"
    "github.com/tinoosan/bank/internal/bank"
    "github.com/tinoosan/bank/internal/errs"
    "github.com/tinoosan/bank/internal/journal"
    "github.com/tinoosan/bank/internal/validate"
)

// Records reads and writes account records.
type Records interface {
    Load(ctx context.Context, accNum string) (bank.Account, error)
    Save(ctx context.Context, a bank.Account) error
    Remove(ctx context.Context, accNum string) error
    Keys(ctx context.Context) ([]string, error)
}

// Index is the account membership list.
type Index interface {
    Contains(ctx context.Context, accNum string) (bool, error)
    Add(ctx context.Context, accNum string) error
    Remove(ctx context.Context, accNum string) (bool, error)
    Count(ctx context.Context) (int, error)
    Members(ctx context.Context) ([]string, error)
}

// Journal appends transaction log events.
type Journal interface {
    Record(ctx context.Context, e journal.Event) error
}

// Numbers hands out fresh account numbers.
type Numbers interface {
    Next(ctx context.Context, taken accnum.Taken) (string, error)
}

type Service interface {
    Create(ctx context.Context, in CreateInput) (Receipt, error)
    Exists(ctx context.Context, accNum string) (bool, error)
    Lookup(ctx context.Context, accNum string) (bank.Account, error)
    Authenticate(ctx context.Context, accNum, pin string) (bank.Account, error)
    Delete(ctx context.Context, in DeleteInput) (Receipt, error)
    Deposit(ctx context.Context, accNum, pin string, amount money.Amount) (Receipt, error)
    Withdraw(ctx context.Context, accNum, pin string, amount money.Amount) (Receipt, error)
    Save(ctx context.Context, a bank.Account) error
    Record(ctx context.Context, e journal.Event) error
    List(ctx context.Context) ([]string, error)
    Count(ctx context.Context) (int, error)
    Audit(ctx context.Context) ([]error, error)
    DepositLimit() money.Amount
}

// DefaultDepositLimit caps a single deposit.
var DefaultDepositLimit = bank.Cents(5_000_000)

type service struct {
    records Records
    index   Index
    journal Journal
    numbers Numbers
    limit   money.Amount
}

// New wires the service. A zero limit falls back to DefaultDepositLimit.
func New(records Records, index Index, j Journal, numbers Numbers, depositLimit money.Amount) Service {
    if depositLimit.IsZero() { depositLimit = DefaultDepositLimit }
    return &service{records: records, index: index, journal: j, numbers: numbers, limit: depositLimit}
}

// CreateInput carries the fields of a new account, validated in declaration order.
type CreateInput struct {
    Name     string           `validate:"fullname"`
    IDNumber string           `validate:"idnum"`
    Type     bank.AccountType `validate:"acctype"`
    PIN      string           `validate:"pin"`
}

// DeleteInput carries every confirmation Delete asks for.
type DeleteInput struct {
    AccNum     string
    IDLast4    string
    PIN        string
    PINConfirm string
    Confirmed  bool
}

// Receipt is the outcome of a committed operation. Warnings hold non-fatal
// problems such as *errs.ConsistencyWarning or a failed log append.
type Receipt struct {
    Account      bank.Account
    Counterparty *bank.Account
    Amount       money.Amount
    Fee          money.Amount
    Warnings     []error
}

func (s *service) DepositLimit() money.Amount { return s.limit }

func (s *service) Create(ctx context.Context, in CreateInput) (Receipt, error) {
    in.Type = bank.AccountType(strings.ToLower(string(in.Type)))
    if err := validate.Struct(in); err != nil {
        return Receipt{}, err
    }
    num, err := s.numbers.Next(ctx, s.index.Contains)
    if err != nil {
        return Receipt{}, fmt.Errorf("%w: generate account number: %w", errs.ErrPersistence, err)
    }
    acc := bank.Account{Name: in.Name, ID: in.IDNumber, Type: in.Type, PIN: in.PIN, Balance: bank.Zero(), AccNum: num}
    if err := s.records.Save(ctx, acc); err != nil {
        return Receipt{}, err
    }
    rec := Receipt{Account: acc}
    // the record exists from here on; an index failure only warns
    if err := s.index.Add(ctx, num); err != nil {
        rec.Warnings = append(rec.Warnings, errs.Warn("create", num,
            fmt.Errorf("failed to write index file, account file is created but may not be listed in index: %w", err)))
    }
    s.log(ctx, &rec, journal.Created(acc))
    return rec, nil
}

func (s *service) Exists(ctx context.Context, accNum string) (bool, error) {
    ok, err := s.index.Contains(ctx, accNum)
    if err != nil { return false, fmt.Errorf("%w: read index: %w", errs.ErrPersistence, err) }
    return ok, nil
}

// Lookup checks the format, then loads through the record store, which fails
// with errs.ErrNotFound for accounts missing from the index.
func (s *service) Lookup(ctx context.Context, accNum string) (bank.Account, error) {
    if err := validate.AccountNumber(accNum); err != nil {
        return bank.Account{}, err
    }
    return s.records.Load(ctx, accNum)
}

func (s *service) Authenticate(ctx context.Context, accNum, pin string) (bank.Account, error) {
    acc, err := s.Lookup(ctx, accNum)
    if err != nil { return bank.Account{}, err }
    if pin != acc.PIN {
        return bank.Account{}, fmt.Errorf("%w: PIN incorrect", errs.ErrAuthentication)
    }
    return acc, nil
}

// CheckIDSuffix compares the last four digits entered for Delete with the stored ID.
func CheckIDSuffix(acc bank.Account, last4 string) error {
    if err := validate.IDSuffix(last4); err != nil { return err }
    if suffix := acc.IDSuffix(); suffix == "" || suffix != last4 {
        return fmt.Errorf("%w: ID confirmation does not match last 4 digits of registered ID", errs.ErrIDMismatch)
    }
    return nil
}

// CheckPINConfirmation compares the re-entered PIN with the first entry, not
// with the stored PIN.
func CheckPINConfirmation(first, second string) error {
    if first != second {
        return fmt.Errorf("%w: PIN mismatch on confirmation", errs.ErrPINMismatch)
    }
    return nil
}

func (s *service) Delete(ctx context.Context, in DeleteInput) (Receipt, error) {
    acc, err := s.Lookup(ctx, in.AccNum)
    if err != nil { return Receipt{}, err }
    if err := CheckIDSuffix(acc, in.IDLast4); err != nil { return Receipt{}, err }
    if in.PIN != acc.PIN {
        return Receipt{}, fmt.Errorf("%w: PIN incorrect, delete aborted", errs.ErrAuthentication)
    }
    if err := CheckPINConfirmation(in.PIN, in.PINConfirm); err != nil { return Receipt{}, err }
    if !in.Confirmed {
        return Receipt{}, fmt.Errorf("%w: delete cancelled by user", errs.ErrCancelled)
    }

    rec := Receipt{Account: acc}
    // both removals are attempted; either failing leaves a dangling file or index line
    if err := s.records.Remove(ctx, acc.AccNum); err != nil {
        rec.Warnings = append(rec.Warnings, errs.Warn("delete", acc.AccNum,
            fmt.Errorf("failed to delete account record (maybe missing), removing index entry anyway: %w", err)))
    }
    removed, err := s.index.Remove(ctx, acc.AccNum)
    switch {
    case err != nil:
        rec.Warnings = append(rec.Warnings, errs.Warn("delete", acc.AccNum, fmt.Errorf("failed to remove account from index: %w", err)))
    case !removed:
        rec.Warnings = append(rec.Warnings, errs.Warn("delete", acc.AccNum, errors.New("account was not present in index")))
    }
    s.log(ctx, &rec, journal.Deleted(acc))
    return rec, nil
}

func (s *service) Deposit(ctx context.Context, accNum, pin string, amount money.Amount) (Receipt, error) {
    acc, err := s.Authenticate(ctx, accNum, pin)
    if err != nil { return Receipt{}, err }
    if err := validate.Positive(amount); err != nil { return Receipt{}, err }
    if err := validate.NotAbove(amount, s.limit); err != nil { return Receipt{}, err }
    bal, err := acc.Balance.Add(amount)
    if err != nil { return Receipt{}, errs.Invalid(err.Error()) }
    acc.Balance = bal.RoundToCurr()
    if err := s.records.Save(ctx, acc); err != nil { return Receipt{}, err }
    rec := Receipt{Account: acc, Amount: amount}
    s.log(ctx, &rec, journal.Deposited(acc, amount))
    return rec, nil
}

func (s *service) Withdraw(ctx context.Context, accNum, pin string, amount money.Amount) (Receipt, error) {
    acc, err := s.Authenticate(ctx, accNum, pin)
    if err != nil { return Receipt{}, err }
    if err := validate.Positive(amount); err != nil { return Receipt{}, err }
    if err := Covers(acc, amount); err != nil { return Receipt{}, err }
    bal, err := acc.Balance.Sub(amount)
    if err != nil { return Receipt{}, errs.Invalid(err.Error()) }
    acc.Balance = bal.RoundToCurr()
    if err := s.records.Save(ctx, acc); err != nil { return Receipt{}, err }
    rec := Receipt{Account: acc, Amount: amount}
    s.log(ctx, &rec, journal.Withdrawn(acc, amount))
    return rec, nil
}

// Covers fails with errs.ErrInsufficientFunds when debit exceeds the balance.
func Covers(acc bank.Account, debit money.Amount) error {
    c, err := debit.Cmp(acc.Balance)
    if err != nil { return errs.Invalid(err.Error()) }
    if c > 0 {
        return fmt.Errorf("%w: You have RM%s available", errs.ErrInsufficientFunds, bank.FormatAmount(acc.Balance))
    }
    return nil
}

// Save persists an already loaded and mutated account.
func (s *service) Save(ctx context.Context, a bank.Account) error { return s.records.Save(ctx, a) }

// Record appends an event to the transaction log.
func (s *service) Record(ctx context.Context, e journal.Event) error { return s.journal.Record(ctx, e) }

func (s *service) List(ctx context.Context) ([]string, error) {
    m, err := s.index.Members(ctx)
    if err != nil { return nil, fmt.Errorf("%w: read index: %w", errs.ErrPersistence, err) }
    return m, nil
}

func (s *service) Count(ctx context.Context) (int, error) {
    n, err := s.index.Count(ctx)
    if err != nil { return 0, fmt.Errorf("%w: read index: %w", errs.ErrPersistence, err) }
    return n, nil
}

// Audit compares the index with the stored records and reports every orphan
// in either direction as a *errs.ConsistencyWarning. Nothing is repaired.
func (s *service) Audit(ctx context.Context) ([]error, error) {
    members, err := s.List(ctx)
    if err != nil { return nil, err }
    keys, err := s.records.Keys(ctx)
    if err != nil { return nil, fmt.Errorf("%w: list records: %w", errs.ErrPersistence, err) }
    indexed := make(map[string]struct{}, len(members))
    for _, m := range members { indexed[m] = struct{}{} }
    stored := make(map[string]struct{}, len(keys))
    for _, k := range keys { stored[k] = struct{}{} }

    var out []error
    for _, m := range members {
        if _, ok := stored[m]; !ok {
            out = append(out, errs.Warn("audit", m, errors.New("index entry has no account record")))
        }
    }
    for _, k := range keys {
        if _, ok := indexed[k]; !ok {
            out = append(out, errs.Warn("audit", k, errors.New("account record is not listed in index")))
        }
    }
    return out, nil
}

// log appends e to the journal; a failure becomes a warning on rec since the
// operation itself is already committed.
func (s *service) log(ctx context.Context, rec *Receipt, e journal.Event) {
    if s.journal == nil { return }
    if err := s.journal.Record(ctx, e); err != nil {
        rec.Warnings = append(rec.Warnings, err)
    }
}
