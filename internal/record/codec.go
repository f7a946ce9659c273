package record

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/tinoosan/bank/internal/bank"
	"github.com/tinoosan/bank/internal/errs"
)

// Encode serializes an account as five lines: name, id, type, pin, balance
// with two decimals. The account number is the key, not part of the body.
func Encode(a bank.Account) []byte {
	var b bytes.Buffer
	b.WriteString(a.Name + "\n")
	b.WriteString(a.ID + "\n")
	b.WriteString(string(a.Type) + "\n")
	b.WriteString(a.PIN + "\n")
	b.WriteString(bank.FormatAmount(a.Balance) + "\n")
	return b.Bytes()
}

var fieldNames = [...]string{"name", "id", "type", "pin", "balance"}

// Decode parses a record body. A missing line or an unparseable balance is
// reported as errs.ErrCorruptRecord naming the field. accNum becomes the
// account number of the result.
func Decode(accNum string, body []byte) (bank.Account, error) {
	var lines [len(fieldNames)]string
	sc := bufio.NewScanner(bytes.NewReader(body))
	n := 0
	for n < len(lines) && sc.Scan() {
		lines[n] = strings.TrimRight(sc.Text(), "\r")
		n++
	}
	if err := sc.Err(); err != nil {
		return bank.Account{}, fmt.Errorf("%w: %s: %v", errs.ErrCorruptRecord, accNum, err)
	}
	if n < len(lines) {
		return bank.Account{}, fmt.Errorf("%w: %s: missing %s line", errs.ErrCorruptRecord, accNum, fieldNames[n])
	}
	bal, err := bank.ParseAmount(lines[4])
	if err != nil {
		return bank.Account{}, fmt.Errorf("%w: %s: balance %q is not a number", errs.ErrCorruptRecord, accNum, lines[4])
	}
	return bank.Account{
		Name:    lines[0],
		ID:      lines[1],
		Type:    bank.AccountType(lines[2]),
		PIN:     lines[3],
		Balance: bal,
		AccNum:  accNum,
	}, nil
}
