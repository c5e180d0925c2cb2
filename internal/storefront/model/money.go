package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// maxExponent bounds the decimal exponent of money values and numeric ids.
	maxExponent = 32
	// maxDigits bounds the coefficient digits of money values and numeric ids.
	maxDigits = 64
)

// ErrOutOfRange reports a money value or numeric id too large or too precise to be handled.
var ErrOutOfRange = errors.New("number out of range")

// checkNumber rejects values whose text expansion would be unbounded, such as 1e60000000.
func checkNumber(field string, d decimal.Decimal) error {
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return fmt.Errorf("%w: %s has exponent %d", ErrOutOfRange, field, exp)
	}
	if n := d.NumDigits(); n > maxDigits {
		return fmt.Errorf("%w: %s has %d digits", ErrOutOfRange, field, n)
	}
	return nil
}
