// Package bank holds the account entity and the money rules shared by the
// record store, the validators and the operation services.
package bank

import (
	"fmt"
	"strings"

	"github.com/govalues/decimal"
	"github.com/govalues/money"
)

// Currency is the ISO code balances are kept in. The console prints it as "RM".
const Currency = "MYR"

// AccountType enumerates the kinds of account a customer can open.
type AccountType string

const (
	// AccountTypeSavings is a savings account.
	AccountTypeSavings AccountType = "savings"
	// AccountTypeCurrent is a current (checking) account.
	AccountTypeCurrent AccountType = "current"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t == AccountTypeSavings || t == AccountTypeCurrent
}

// Account is the only persisted entity. Everything except Balance is fixed at creation.
type Account struct {
	Name string
	// ID is the customer's 7 digit identification number. Not unique.
	ID   string
	Type AccountType
	// PIN is stored and compared in clear text.
	PIN     string
	Balance money.Amount
	// AccNum is the primary key and the record key on disk.
	AccNum string
}

// IDSuffix returns the last four characters of the identification number.
func (a Account) IDSuffix() string {
	if len(a.ID) < 4 {
		return ""
	}
	return a.ID[len(a.ID)-4:]
}

// NameMatches compares a claimed holder name with the stored one, ignoring case.
func (a Account) NameMatches(claimed string) bool {
	return strings.EqualFold(claimed, a.Name)
}

// Zero returns a zero balance in the bank currency.
func Zero() money.Amount {
	return money.MustNewAmount(Currency, 0, 2)
}

// Cents builds an amount from minor units.
func Cents(units int64) money.Amount {
	a, err := money.NewAmountFromMinorUnits(Currency, units)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAmount parses a plain decimal string into a currency amount rounded to two places.
func ParseAmount(s string) (money.Amount, error) {
	a, err := money.ParseAmount(Currency, strings.TrimSpace(s))
	if err != nil {
		return money.Amount{}, err
	}
	return a.RoundToCurr(), nil
}

// FormatAmount renders a with exactly two fractional digits, e.g. "1234.50".
func FormatAmount(a money.Amount) string {
	units, _ := a.RoundToCurr().MinorUnits()
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return fmt.Sprintf("%s%d.%02d", sign, units/100, units%100)
}

// FeeRate returns the remittance fee rate for a transfer between two account types:
// 2% savings to current, 3% current to savings, nothing otherwise.
func FeeRate(from, to AccountType) decimal.Decimal {
	switch {
	case from == AccountTypeSavings && to == AccountTypeCurrent:
		return decimal.MustNew(2, 2)
	case from == AccountTypeCurrent && to == AccountTypeSavings:
		return decimal.MustNew(3, 2)
	default:
		return decimal.MustNew(0, 0)
	}
}

// Fee computes the remittance fee for amount, rounded to the currency scale.
func Fee(from, to AccountType, amount money.Amount) (money.Amount, error) {
	f, err := amount.Mul(FeeRate(from, to))
	if err != nil {
		return money.Amount{}, err
	}
	return f.RoundToCurr(), nil
}
