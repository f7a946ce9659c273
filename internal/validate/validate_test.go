package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
)

func TestName(t *testing.T) {
	valid := []string{"Jane Doe", "Ali bin Abu", "Al Bo", "jane doe"}
	for _, s := range valid {
		assert.NoError(t, Name(s), s)
	}
	invalid := []string{"Jane", " Jane Doe", "Jane Doe ", "Jane  Doe", "Jane D0e", "Jane-Doe Smith", "A B" + strings.Repeat("c", 99)}
	for _, s := range invalid {
		err := Name(s)
		require.Error(t, err, s)
		assert.ErrorIs(t, err, errs.ErrInvalid)
	}
	err := Name("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name cannot be empty")
}

func TestIDNumber(t *testing.T) {
	assert.NoError(t, IDNumber("1234567"))
	assert.ErrorContains(t, IDNumber("123456"), "exactly 7 digits long, you entered 6 digits")
	assert.ErrorContains(t, IDNumber("12345678"), "you entered 8 digits")
	assert.ErrorContains(t, IDNumber("12a4567"), "only digits")
	assert.ErrorContains(t, IDNumber(""), "only digits")
}

func TestPIN(t *testing.T) {
	assert.NoError(t, PIN("0000"))
	assert.Error(t, PIN("123"))
	assert.Error(t, PIN("12345"))
	assert.Error(t, PIN("12a4"))
}

func TestAccountNumber(t *testing.T) {
	for _, s := range []string{"1234567", "12345678", "123456789"} {
		assert.NoError(t, AccountNumber(s), s)
	}
	assert.ErrorContains(t, AccountNumber("123456"), "(you entered 6 digits)")
	assert.ErrorContains(t, AccountNumber("1234567890"), "(you entered 10 digits)")
	assert.ErrorContains(t, AccountNumber("12345x7"), "digits only")
}

func TestAccountType(t *testing.T) {
	typ, err := AccountType("SaViNgS")
	require.NoError(t, err)
	assert.Equal(t, bank.AccountTypeSavings, typ)

	typ, err = AccountType("current")
	require.NoError(t, err)
	assert.Equal(t, bank.AccountTypeCurrent, typ)

	_, err = AccountType("checking")
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{in: "10", want: "10.00"},
		{in: "10.5", want: "10.50"},
		{in: "0.01", want: "0.01"},
		{in: "-5", wantErr: "negative amounts not allowed"},
		{in: "0", wantErr: "greater than RM0.00"},
		{in: "0.001", wantErr: "greater than RM0.00"},
		{in: "", wantErr: "valid number"},
		{in: ".", wantErr: "valid number"},
		{in: "1.2.3", wantErr: "valid number"},
		{in: "1e5", wantErr: "valid number"},
		{in: "+5", wantErr: "valid number"},
		{in: "abc", wantErr: "you typed: abc"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			a, err := Amount(tc.in)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrInvalid)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, bank.FormatAmount(a))
		})
	}
}

func TestAmountWithin_DepositLimit(t *testing.T) {
	limit := bank.Cents(5_000_000)

	a, err := AmountWithin("50000.00", limit)
	require.NoError(t, err)
	assert.Equal(t, "50000.00", bank.FormatAmount(a))

	_, err = AmountWithin("50000.01", limit)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrLimitExceeded))
	assert.True(t, errors.Is(err, errs.ErrInvalid))
	assert.Contains(t, err.Error(), "maximum of RM50000.00 per operation")
}

func TestConfirm(t *testing.T) {
	assert.True(t, Confirm("yes"))
	assert.True(t, Confirm("YES"))
	assert.False(t, Confirm("y"))
	assert.False(t, Confirm("no"))
	assert.False(t, Confirm(""))
}

func TestIDSuffix(t *testing.T) {
	assert.NoError(t, IDSuffix("4567"))
	assert.Error(t, IDSuffix("456"))
	assert.Error(t, IDSuffix("45a7"))
}
