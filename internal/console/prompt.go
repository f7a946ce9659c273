package console

import (
	"context"
	"errors"
	"strings"

	"github.com/govalues/money"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
	"github.com/tinoosan/bank/internal/validate"
)

var sentinels = []error{
	errs.ErrInvalid, errs.ErrLimitExceeded, errs.ErrNotFound, errs.ErrAuthentication,
	errs.ErrInsufficientFunds, errs.ErrPersistence, errs.ErrCorruptRecord, errs.ErrSameAccount,
	errs.ErrNameMismatch, errs.ErrIDMismatch, errs.ErrPINMismatch, errs.ErrCancelled,
}

// reason strips sentinel prefixes from err, so "invalid: PIN must be exactly
// 4 digits" reads "PIN must be exactly 4 digits". The rest is printed as is.
func reason(err error) string {
	msg := err.Error()
	for trimmed := true; trimmed; {
		trimmed = false
		for _, s := range sentinels {
			if p := s.Error() + ": "; strings.HasPrefix(msg, p) {
				msg = strings.TrimPrefix(msg, p)
				trimmed = true
			}
		}
	}
	return msg
}

func (c *Console) errorf(err error) {
	c.printf("Error: %s.\n", strings.TrimSuffix(reason(err), "."))
}

// warn prints and logs a non-fatal problem left behind by a committed operation.
func (c *Console) warn(op string, err error) {
	var cw *errs.ConsistencyWarning
	shown := err
	if errors.As(err, &cw) && cw.Err != nil {
		shown = cw.Err
	}
	c.log.Warn("operation completed with warning", "op", op, "err", err)
	c.printf("Warning: %s.\n", strings.TrimSuffix(reason(shown), "."))
}

func (c *Console) promptID() (string, error) {
	for {
		s, err := c.ask("Enter Identification Number (exactly 7 digits): ")
		if err != nil {
			return "", err
		}
		if err := validate.IDNumber(s); err != nil {
			c.errorf(err)
			continue
		}
		c.printf("OK: ID accepted.\n")
		return s, nil
	}
}

func (c *Console) promptPIN(label string) (string, error) {
	for {
		s, err := c.askSecret(label + " (exactly 4 digits): ")
		if err != nil {
			return "", err
		}
		if err := validate.PIN(s); err != nil {
			c.errorf(err)
			continue
		}
		c.printf("OK: PIN accepted.\n")
		return s, nil
	}
}

// promptExistingAccount loops until a well formed, registered account number
// is entered. An index read failure ends the loop with that error.
func (c *Console) promptExistingAccount(ctx context.Context) (string, error) {
	for {
		s, err := c.ask("Enter account number (7-9 digits): ")
		if err != nil {
			return "", err
		}
		if err := validate.AccountNumber(s); err != nil {
			c.errorf(err)
			continue
		}
		ok, err := c.accounts.Exists(ctx, s)
		if err != nil {
			return "", err
		}
		if !ok {
			c.printf("Error: Account number %s is not registered.\n", s)
			continue
		}
		c.printf("OK: Account %s found.\n", s)
		return s, nil
	}
}

// promptAmount loops until a positive amount is entered; a non-nil max also caps it.
func (c *Console) promptAmount(label string, max *money.Amount) (money.Amount, error) {
	for {
		s, err := c.ask(label + ": RM ")
		if err != nil {
			return money.Amount{}, err
		}
		var amt money.Amount
		if max != nil {
			amt, err = validate.AmountWithin(s, *max)
		} else {
			amt, err = validate.Amount(s)
		}
		if err != nil {
			c.errorf(err)
			continue
		}
		return amt, nil
	}
}

// grouped renders an amount with thousands separators, e.g. "50,000.00".
func grouped(a money.Amount) string {
	s := bank.FormatAmount(a)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
