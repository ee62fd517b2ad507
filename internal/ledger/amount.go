package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bounds on money values accepted from callers. The exponent is checked
// before anything that would rescale the value, so amounts like 1e900000000
// are rejected without allocating their expansion.
const (
	MinAmountExponent = -8
	MaxAmountExponent = 12
)

// maxAmount is the largest magnitude accepted, exclusive.
var maxAmount = decimal.New(1, MaxAmountExponent)

// ValidateAmount rejects negative values and values whose precision or
// magnitude is out of range.
func ValidateAmount(field string, d decimal.Decimal) error {
	if exp := d.Exponent(); exp < MinAmountExponent || exp > MaxAmountExponent {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidInput, field)
	}
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, field)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: %s must be below %s", ErrInvalidInput, field, maxAmount)
	}
	return nil
}
