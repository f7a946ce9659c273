package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/tinoosan/bank/internal/errs"
)

// Custom tags usable on service input structs.
const (
	TagFullName = "fullname"
	TagIDNumber = "idnum"
	TagPIN      = "pin"
	TagAccNum   = "accnum"
	TagAccType  = "acctype"
)

var checks = map[string]func(string) error{
	TagFullName: Name,
	TagIDNumber: IDNumber,
	TagPIN:      PIN,
	TagAccNum:   AccountNumber,
	TagAccType:  func(s string) error { _, err := AccountType(s); return err },
}

var structs = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	for tag, check := range checks {
		check := check
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String()) == nil
		})
	}
	return v
}

// Struct validates s against its `validate` tags. The first failing field is
// reported with the same reason the matching pure check would give.
func Struct(s any) error {
	err := structs.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return errs.Invalid(err.Error())
	}
	fe := ve[0]
	if check, ok := checks[fe.Tag()]; ok {
		// named string types such as bank.AccountType arrive as their own type
		if cerr := check(fmt.Sprint(fe.Value())); cerr != nil {
			return cerr
		}
	}
	return errs.Invalid(fe.Field() + " failed " + fe.Tag())
}
