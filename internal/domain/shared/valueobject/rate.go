package valueobject

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNegativeRate is returned when constructing a rate below zero
var ErrNegativeRate = errors.New("rate cannot be negative")

// Rate is a value object representing a fractional tax rate,
// e.g. 0.07 for 7% VAT.
//
// Optionality is expressed at the use site as *Rate: a nil rate means the
// tax does not apply at all, while a present zero rate means taxable at 0%.
// The two are semantically distinct and must never be collapsed into a
// sentinel numeric value.
type Rate struct {
	value decimal.Decimal
}

// NewRate creates a new Rate from a decimal fraction
func NewRate(value decimal.Decimal) (Rate, error) {
	if value.IsNegative() {
		return Rate{}, ErrNegativeRate
	}
	return Rate{value: value}, nil
}

// NewRateFromFloat creates a new Rate from a float fraction
func NewRateFromFloat(value float64) (Rate, error) {
	return NewRate(decimal.NewFromFloat(value))
}

// MustRate creates a Rate and panics on a negative value.
// Intended for constants and tests.
func MustRate(value float64) Rate {
	r, err := NewRateFromFloat(value)
	if err != nil {
		panic(err)
	}
	return r
}

// RatePtr returns a *Rate for a float fraction, panicking on negative values.
// Convenience for optional-rate fields.
func RatePtr(value float64) *Rate {
	r := MustRate(value)
	return &r
}

// ZeroRate returns an explicit 0% rate (taxable at zero)
func ZeroRate() Rate {
	return Rate{value: decimal.Zero}
}

// Fraction returns the decimal fraction
func (r Rate) Fraction() decimal.Decimal {
	return r.value
}

// Percent returns the rate as a percentage, e.g. 7 for 0.07
func (r Rate) Percent() decimal.Decimal {
	return r.value.Mul(decimal.NewFromInt(100))
}

// IsZero returns true if the rate is exactly zero
func (r Rate) IsZero() bool {
	return r.value.IsZero()
}

// Equals returns true if both rates carry the same fraction
func (r Rate) Equals(other Rate) bool {
	return r.value.Equal(other.value)
}

// String returns the rate as a decimal fraction string
func (r Rate) String() string {
	return r.value.String()
}

// MarshalJSON implements json.Marshaler
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Rate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid rate: %w", err)
	}
	if value.IsNegative() {
		return ErrNegativeRate
	}
	r.value = value
	return nil
}

// Value implements driver.Valuer for database storage
func (r Rate) Value() (driver.Value, error) {
	return r.value.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (r *Rate) Scan(value any) error {
	if value == nil {
		r.value = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Rate", value)
	}

	parsed, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	r.value = parsed
	return nil
}
