// Package validate holds the pure input checks used by the console prompts and
// the operation services. Every check returns nil or an error wrapping errs.ErrInvalid.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/govalues/money"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
)

const (
	NameMinLen = 3
	NameMaxLen = 99
	IDLen      = 7
	PINLen     = 4
	AccNumMin  = 7
	AccNumMax  = 9
)

var (
	reName   = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)+$`)
	reDigits = regexp.MustCompile(`^[0-9]+$`)
	reAmount = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)
)

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	return reDigits.MatchString(s)
}

// Name checks a full holder name: letters and single spaces, at least two words,
// no leading or trailing space, 3 to 99 characters.
func Name(s string) error {
	if s == "" {
		return errs.Invalid("name cannot be empty")
	}
	if len(s) < NameMinLen || len(s) > NameMaxLen || !reName.MatchString(s) {
		return errs.Invalid("Name must be letters and spaces only, minimum 3 characters, and contain at least two words (e.g., 'John Smith')")
	}
	return nil
}

// IDNumber checks the 7 digit identification number.
func IDNumber(s string) error {
	if !IsDigits(s) {
		return errs.Invalid("ID must contain only digits")
	}
	if len(s) != IDLen {
		return errs.Invalid(fmt.Sprintf("ID must be exactly %d digits long, you entered %d digits", IDLen, len(s)))
	}
	return nil
}

// PIN checks a 4 digit PIN.
func PIN(s string) error {
	if !IsDigits(s) {
		return errs.Invalid("PIN must contain only digits")
	}
	if len(s) != PINLen {
		return errs.Invalid(fmt.Sprintf("PIN must be exactly %d digits", PINLen))
	}
	return nil
}

// IDSuffix checks the last-four-digits confirmation asked for by Delete.
func IDSuffix(s string) error {
	if !IsDigits(s) || len(s) != 4 {
		return errs.Invalid("must enter exactly 4 digits")
	}
	return nil
}

// AccountNumber checks the format of an account number. It says nothing about existence.
func AccountNumber(s string) error {
	if !IsDigits(s) {
		return errs.Invalid("Account numbers must be digits only")
	}
	if n := len(s); n < AccNumMin || n > AccNumMax {
		return errs.Invalid(fmt.Sprintf("Account number must be between %d and %d digits (you entered %d digits)", AccNumMin, AccNumMax, n))
	}
	return nil
}

// AccountType lowercases s and checks it names a known account type.
func AccountType(s string) (bank.AccountType, error) {
	t := bank.AccountType(strings.ToLower(s))
	if !t.Valid() {
		return "", errs.Invalid("invalid account type. Enter 'savings' or 'current'")
	}
	return t, nil
}

// Amount parses a strictly positive amount with no upper bound.
func Amount(s string) (money.Amount, error) {
	return parseAmount(s, nil)
}

// AmountWithin parses a strictly positive amount that must not exceed max.
func AmountWithin(s string, max money.Amount) (money.Amount, error) {
	return parseAmount(s, &max)
}

func parseAmount(s string, max *money.Amount) (money.Amount, error) {
	if strings.HasPrefix(s, "-") {
		return money.Amount{}, errs.Invalid("negative amounts not allowed")
	}
	if s == "" || s == "." || !reAmount.MatchString(s) {
		return money.Amount{}, errs.Invalid("please enter a valid number (e.g., 10.50), you typed: " + s)
	}
	amt, err := bank.ParseAmount(s)
	if err != nil {
		return money.Amount{}, errs.Invalid("invalid number")
	}
	if err := Positive(amt); err != nil {
		return money.Amount{}, err
	}
	if max != nil {
		if err := NotAbove(amt, *max); err != nil {
			return money.Amount{}, err
		}
	}
	return amt, nil
}

// Positive rejects zero and negative amounts.
func Positive(a money.Amount) error {
	if !a.IsPos() {
		return errs.Invalid("amount must be greater than RM0.00")
	}
	return nil
}

// NotAbove rejects amounts greater than max.
func NotAbove(a, max money.Amount) error {
	c, err := a.Cmp(max)
	if err != nil {
		return errs.Invalid(err.Error())
	}
	if c > 0 {
		return fmt.Errorf("%w: %w: amount exceeds the allowed maximum of RM%s per operation", errs.ErrInvalid, errs.ErrLimitExceeded, bank.FormatAmount(max))
	}
	return nil
}

// Confirm reports whether the answer is an explicit, case-insensitive "yes".
func Confirm(s string) bool {
	return strings.ToLower(s) == "yes"
}
