package valueobject

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNegativeTaxBase is returned when a discount (or raw input) would drive
// a tax base below zero. Callers must reject the whole operation rather than
// clamp the base.
var ErrNegativeTaxBase = errors.New("tax base cannot be negative")

var one = decimal.NewFromInt(1)

// Vat captures a single value-added-tax application over a base amount.
// It is immutable and derived: construct it from either the tax-inclusive
// or the tax-exclusive total, never field by field.
//
// Invariant: AmountAfter - AmountBefore == Amount.
type Vat struct {
	amount       decimal.Decimal
	rate         Rate
	amountBefore decimal.Decimal
	amountAfter  decimal.Decimal
}

// NewVatFromInclusive derives a Vat breakdown from a total that already
// embeds VAT: amountBefore = total/(1+rate), amount = total - amountBefore.
func NewVatFromInclusive(total decimal.Decimal, rate Rate) (Vat, error) {
	if total.IsNegative() {
		return Vat{}, ErrNegativeTaxBase
	}
	before := total.Div(one.Add(rate.Fraction()))
	return Vat{
		amount:       total.Sub(before),
		rate:         rate,
		amountBefore: before,
		amountAfter:  total,
	}, nil
}

// NewVatFromExclusive derives a Vat breakdown from a base that excludes
// VAT: amount = base*rate, amountAfter = base + amount.
func NewVatFromExclusive(base decimal.Decimal, rate Rate) (Vat, error) {
	if base.IsNegative() {
		return Vat{}, ErrNegativeTaxBase
	}
	amount := base.Mul(rate.Fraction())
	return Vat{
		amount:       amount,
		rate:         rate,
		amountBefore: base,
		amountAfter:  base.Add(amount),
	}, nil
}

// Amount returns the VAT amount
func (v Vat) Amount() decimal.Decimal {
	return v.amount
}

// Rate returns the applied rate
func (v Vat) Rate() Rate {
	return v.rate
}

// AmountBefore returns the base amount excluding VAT
func (v Vat) AmountBefore() decimal.Decimal {
	return v.amountBefore
}

// AmountAfter returns the total amount including VAT
func (v Vat) AmountAfter() decimal.Decimal {
	return v.amountAfter
}

// ApplyDiscount re-derives the breakdown after subtracting a discount from
// the base matching the discount's direction: an inclusive discount is taken
// off the VAT-inclusive total, an exclusive discount off the pre-VAT base.
// A discount exceeding its base is rejected.
func (v Vat) ApplyDiscount(discount decimal.Decimal, inclusive bool) (Vat, error) {
	if inclusive {
		return NewVatFromInclusive(v.amountAfter.Sub(discount), v.rate)
	}
	return NewVatFromExclusive(v.amountBefore.Sub(discount), v.rate)
}

// SumVats adds breakdowns field by field into an order-level aggregate
// carrying the given nominal rate. Returns nil when the slice is empty:
// an order with no taxable lines has no VAT aggregate at all, which is
// distinct from a zero one.
func SumVats(nominal Rate, vats []Vat) *Vat {
	if len(vats) == 0 {
		return nil
	}
	agg := Vat{rate: nominal}
	for _, v := range vats {
		agg.amount = agg.amount.Add(v.amount)
		agg.amountBefore = agg.amountBefore.Add(v.amountBefore)
		agg.amountAfter = agg.amountAfter.Add(v.amountAfter)
	}
	return &agg
}

// TaxWithholding captures a withholding-tax application over a base amount.
// Withholding subtracts from the payable amount: amountAfter = base - amount.
//
// Invariant: AmountBefore - AmountAfter == Amount.
type TaxWithholding struct {
	amount       decimal.Decimal
	rate         Rate
	amountBefore decimal.Decimal
	amountAfter  decimal.Decimal
}

// NewTaxWithholding derives a withholding breakdown from its base:
// amount = base*rate, amountAfter = base - amount.
func NewTaxWithholding(base decimal.Decimal, rate Rate) (TaxWithholding, error) {
	if base.IsNegative() {
		return TaxWithholding{}, ErrNegativeTaxBase
	}
	amount := base.Mul(rate.Fraction())
	return TaxWithholding{
		amount:       amount,
		rate:         rate,
		amountBefore: base,
		amountAfter:  base.Sub(amount),
	}, nil
}

// Amount returns the withheld amount
func (w TaxWithholding) Amount() decimal.Decimal {
	return w.amount
}

// Rate returns the applied rate
func (w TaxWithholding) Rate() Rate {
	return w.rate
}

// AmountBefore returns the base amount before withholding
func (w TaxWithholding) AmountBefore() decimal.Decimal {
	return w.amountBefore
}

// AmountAfter returns the amount payable after withholding
func (w TaxWithholding) AmountAfter() decimal.Decimal {
	return w.amountAfter
}

// ApplyDiscount re-derives the breakdown after subtracting a discount from
// the withholding base. A discount exceeding the base is rejected.
func (w TaxWithholding) ApplyDiscount(discount decimal.Decimal) (TaxWithholding, error) {
	return NewTaxWithholding(w.amountBefore.Sub(discount), w.rate)
}

// SumWithholdings adds breakdowns field by field into an order-level
// aggregate. Returns nil when the slice is empty, mirroring SumVats. Lines
// may carry different withholding rates, so the summed aggregate carries a
// zero rate rather than pretending a single one applies.
func SumWithholdings(ws []TaxWithholding) *TaxWithholding {
	if len(ws) == 0 {
		return nil
	}
	agg := TaxWithholding{rate: ZeroRate()}
	for _, w := range ws {
		agg.amount = agg.amount.Add(w.amount)
		agg.amountBefore = agg.amountBefore.Add(w.amountBefore)
		agg.amountAfter = agg.amountAfter.Add(w.amountAfter)
	}
	return &agg
}
