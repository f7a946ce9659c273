// Package remit moves money between two accounts. The sender pays the amount
// plus a fee that depends on the pair of account types; the receiver gets the
// amount. The fee is not credited anywhere.
//
// The two record writes are not atomic as a pair: the sender is written first
// and a failure on the receiver leaves the sender debited.
package remit

import (
	"context"
	"errors"
	"fmt"

	"github.com/govalues/money"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/journal"
	"github.com/tinoosan/bank/internal/service/account"
	"github.com/tinoosan/bank/internal/validate"
)

// Accounts is the subset of the account service a transfer needs.
type Accounts interface {
	Exists(ctx context.Context, accNum string) (bool, error)
	Lookup(ctx context.Context, accNum string) (bank.Account, error)
	Authenticate(ctx context.Context, accNum, pin string) (bank.Account, error)
	Save(ctx context.Context, a bank.Account) error
	Record(ctx context.Context, e journal.Event) error
}

// Input is a complete transfer request.
type Input struct {
	SenderName string
	From       string
	PIN        string
	To         string
	Amount     money.Amount
}

type Service interface {
	Verify(ctx context.Context, senderName, from, pin string) (bank.Account, error)
	Receiver(ctx context.Context, sender bank.Account, to string) (bank.Account, error)
	Quote(sender, receiver bank.Account, amount money.Amount) (money.Amount, error)
	Remit(ctx context.Context, in Input) (account.Receipt, error)
}

type service struct {
	accounts Accounts
}

func New(accounts Accounts) Service { return &service{accounts: accounts} }

// Verify authenticates the sender: non-empty claimed name, registered account,
// correct PIN, then a case-insensitive full match of the claimed name.
func (s *service) Verify(ctx context.Context, senderName, from, pin string) (bank.Account, error) {
	if senderName == "" {
		return bank.Account{}, errs.Invalid("name cannot be empty")
	}
	sender, err := s.accounts.Authenticate(ctx, from, pin)
	if err != nil {
		return bank.Account{}, err
	}
	if !sender.NameMatches(senderName) {
		return bank.Account{}, fmt.Errorf("%w: provided name does not match account name on file", errs.ErrNameMismatch)
	}
	return sender, nil
}

// Receiver checks the receiver's format and registration, rejects the sender's
// own account and loads the receiver.
func (s *service) Receiver(ctx context.Context, sender bank.Account, to string) (bank.Account, error) {
	if err := validate.AccountNumber(to); err != nil {
		return bank.Account{}, errs.Invalid("invalid receiver account format")
	}
	ok, err := s.accounts.Exists(ctx, to)
	if err != nil {
		return bank.Account{}, err
	}
	if !ok {
		return bank.Account{}, fmt.Errorf("%w: receiver account %s not found", errs.ErrNotFound, to)
	}
	if to == sender.AccNum {
		return bank.Account{}, fmt.Errorf("%w: sender and receiver must be different accounts", errs.ErrSameAccount)
	}
	return s.accounts.Lookup(ctx, to)
}

// Quote returns the fee the sender pays on top of amount.
func (s *service) Quote(sender, receiver bank.Account, amount money.Amount) (money.Amount, error) {
	return bank.Fee(sender.Type, receiver.Type, amount)
}

func (s *service) Remit(ctx context.Context, in Input) (account.Receipt, error) {
	from, err := s.Verify(ctx, in.SenderName, in.From, in.PIN)
	if err != nil {
		return account.Receipt{}, err
	}
	to, err := s.Receiver(ctx, from, in.To)
	if err != nil {
		return account.Receipt{}, err
	}
	if err := validate.Positive(in.Amount); err != nil {
		return account.Receipt{}, err
	}
	fee, err := s.Quote(from, to, in.Amount)
	if err != nil {
		return account.Receipt{}, errs.Invalid(err.Error())
	}
	total, err := in.Amount.Add(fee)
	if err != nil {
		return account.Receipt{}, errs.Invalid(err.Error())
	}
	if err := account.Covers(from, total); err != nil {
		return account.Receipt{}, fmt.Errorf("%w: Transfer (%s) + fee (%s) exceeds your balance RM%s",
			errs.ErrInsufficientFunds, bank.FormatAmount(in.Amount), bank.FormatAmount(fee), bank.FormatAmount(from.Balance))
	}

	debited, err := from.Balance.Sub(total)
	if err != nil {
		return account.Receipt{}, errs.Invalid(err.Error())
	}
	credited, err := to.Balance.Add(in.Amount)
	if err != nil {
		return account.Receipt{}, errs.Invalid(err.Error())
	}
	from.Balance = debited.RoundToCurr()
	to.Balance = credited.RoundToCurr()

	if err := s.accounts.Save(ctx, from); err != nil {
		return account.Receipt{}, fmt.Errorf("failed to update account file(s) after remittance: %w", err)
	}
	if err := s.accounts.Save(ctx, to); err != nil {
		return account.Receipt{}, &PartialError{Debited: from.AccNum, Err: err}
	}

	rec := account.Receipt{Account: from, Counterparty: &to, Amount: in.Amount, Fee: fee}
	if err := s.accounts.Record(ctx, journal.Remitted(from, to, in.Amount, fee)); err != nil {
		rec.Warnings = append(rec.Warnings, err)
	}
	return rec, nil
}

// PartialError is returned when the sender's debit was written but the
// receiver's credit was not. Nothing is rolled back.
type PartialError struct {
	Debited string
	Err     error
}

func (e *PartialError) Error() string {
	return "failed to update account file(s) after remittance, sender " + e.Debited + " already debited: " + e.Err.Error()
}

func (e *PartialError) Unwrap() error { return e.Err }

// IsPartial reports whether a Remit error happened after the sender was written.
func IsPartial(err error) bool {
	var pe *PartialError
	return errors.As(err, &pe)
}
