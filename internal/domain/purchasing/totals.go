package purchasing

import (
	"github.com/shopspring/decimal"

	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/domain/shared/valueobject"
)

// VatOption states how the order quotes VAT at the aggregate level. It
// drives how the order-level additional discount is interpreted when the
// aggregate discount policy re-derives the VAT aggregate.
type VatOption string

const (
	VatOptionNone     VatOption = "NONE"
	VatOptionIncluded VatOption = "VAT_INCLUDED"
	VatOptionExcluded VatOption = "VAT_EXCLUDED"
)

// IsValid checks if the option is a known VatOption
func (v VatOption) IsValid() bool {
	switch v {
	case VatOptionNone, VatOptionIncluded, VatOptionExcluded:
		return true
	}
	return false
}

// String returns the string representation of VatOption
func (v VatOption) String() string {
	return string(v)
}

// DiscountPolicy selects how the order-level additional discount is
// distributed across lines. The per-line policy is canonical; the aggregate
// policy reproduces the legacy behaviour of applying the whole discount to
// the summed VAT breakdown once.
type DiscountPolicy string

const (
	DiscountPolicyPerLine   DiscountPolicy = "PER_LINE"
	DiscountPolicyAggregate DiscountPolicy = "AGGREGATE"
)

// IsValid checks if the policy is a known DiscountPolicy
func (p DiscountPolicy) IsValid() bool {
	return p == DiscountPolicyPerLine || p == DiscountPolicyAggregate
}

// OrderTotals is the reconciled order-level aggregate. VatAmount and
// WithholdingAmount are nil when no line carries the respective rate;
// a present zero means all lines are rated at 0%.
type OrderTotals struct {
	AmountBeforeDiscount decimal.Decimal
	AmountBeforeVat      decimal.Decimal
	VatAmount            *decimal.Decimal
	AmountAfterVat       decimal.Decimal
	WithholdingAmount    *decimal.Decimal
	AmountDue            decimal.Decimal
}

// ComputeTotals runs the order-level monetary computation over a candidate
// item list and returns the totals together with the recomputed items.
// Nothing is mutated: callers assign the returned items only on success,
// keeping mutations all-or-nothing.
//
// nominalRate is the order's nominal VAT rate, consumed only by the
// aggregate policy's re-derivation path.
func ComputeTotals(items []PurchaseOrderItem, additionalDiscount decimal.Decimal, vatOption VatOption, nominalRate *valueobject.Rate, policy DiscountPolicy) (OrderTotals, []PurchaseOrderItem, error) {
	if additionalDiscount.IsNegative() {
		return OrderTotals{}, nil, shared.NewDomainError("INVALID_DISCOUNT", "Additional discount cannot be negative")
	}
	if !policy.IsValid() {
		return OrderTotals{}, nil, shared.NewDomainError("INVALID_POLICY", "Unknown discount distribution policy")
	}

	if len(items) == 0 {
		if additionalDiscount.IsPositive() {
			return OrderTotals{}, nil, shared.NewDomainError("ARITHMETIC_ERROR", "Cannot discount an order without items")
		}
		return OrderTotals{}, []PurchaseOrderItem{}, nil
	}

	recomputed := make([]PurchaseOrderItem, len(items))
	copy(recomputed, items)

	switch policy {
	case DiscountPolicyAggregate:
		return computeTotalsAggregate(recomputed, additionalDiscount, vatOption, nominalRate)
	default:
		return computeTotalsPerLine(recomputed, additionalDiscount)
	}
}

// computeTotalsPerLine distributes the additional discount evenly across
// lines and sums each line's already-adjusted figures.
func computeTotalsPerLine(items []PurchaseOrderItem, additionalDiscount decimal.Decimal) (OrderTotals, []PurchaseOrderItem, error) {
	// len(items) > 0 is guaranteed by the caller; the share is divided by
	// the line count, never by zero.
	extraPerLine := additionalDiscount.Div(decimal.NewFromInt(int64(len(items))))

	totals := OrderTotals{}
	var vatSum, whtSum decimal.Decimal
	anyVat, anyWht := false, false

	for idx := range items {
		if err := items[idx].Recalculate(extraPerLine); err != nil {
			return OrderTotals{}, nil, err
		}

		item := &items[idx]
		totals.AmountBeforeDiscount = totals.AmountBeforeDiscount.Add(item.AmountBeforeDiscount)
		totals.AmountBeforeVat = totals.AmountBeforeVat.Add(item.AmountBeforeVat)
		totals.AmountAfterVat = totals.AmountAfterVat.Add(item.AmountAfterVat)
		totals.AmountDue = totals.AmountDue.Add(item.AmountDue)

		if item.VatRate != nil {
			anyVat = true
			vatSum = vatSum.Add(item.VatAmount)
		}
		if item.WithholdingRate != nil {
			anyWht = true
			whtSum = whtSum.Add(item.WithholdingAmount)
		}
	}

	if anyVat {
		totals.VatAmount = &vatSum
	}
	if anyWht {
		totals.WithholdingAmount = &whtSum
	}
	return totals, items, nil
}

// computeTotalsAggregate sums per-line breakdowns computed without any
// discount share, then applies the whole additional discount exactly once
// to the VAT aggregate. The withholding aggregate is never
// discount-adjusted; amount due is the discounted VAT-inclusive total minus
// the undiscounted withholding.
func computeTotalsAggregate(items []PurchaseOrderItem, additionalDiscount decimal.Decimal, vatOption VatOption, nominalRate *valueobject.Rate) (OrderTotals, []PurchaseOrderItem, error) {
	totals := OrderTotals{}
	var vats []valueobject.Vat
	var whts []valueobject.TaxWithholding
	nonTaxableBase := decimal.Zero

	for idx := range items {
		if err := items[idx].Recalculate(decimal.Zero); err != nil {
			return OrderTotals{}, nil, err
		}
		item := &items[idx]
		totals.AmountBeforeDiscount = totals.AmountBeforeDiscount.Add(item.AmountBeforeDiscount)

		vat, err := item.VatBreakdown()
		if err != nil {
			return OrderTotals{}, nil, shared.NewDomainError("ARITHMETIC_ERROR", err.Error())
		}
		if vat != nil {
			vats = append(vats, *vat)
		} else {
			nonTaxableBase = nonTaxableBase.Add(item.AmountBeforeVat)
		}

		wht, err := item.WithholdingBreakdown()
		if err != nil {
			return OrderTotals{}, nil, shared.NewDomainError("ARITHMETIC_ERROR", err.Error())
		}
		if wht != nil {
			whts = append(whts, *wht)
		}
	}

	nominal := valueobject.ZeroRate()
	if nominalRate != nil {
		nominal = *nominalRate
	}

	vatAgg := valueobject.SumVats(nominal, vats)
	if vatAgg != nil {
		discounted, err := vatAgg.ApplyDiscount(additionalDiscount, vatOption == VatOptionIncluded)
		if err != nil {
			return OrderTotals{}, nil, shared.NewDomainError("ARITHMETIC_ERROR", "Additional discount exceeds the order VAT base")
		}
		vatAgg = &discounted

		totals.AmountBeforeVat = vatAgg.AmountBefore().Add(nonTaxableBase)
		vatAmount := vatAgg.Amount()
		totals.VatAmount = &vatAmount
		totals.AmountAfterVat = vatAgg.AmountAfter().Add(nonTaxableBase)
	} else {
		// No taxable line at all: the discount reduces the plain base
		base := nonTaxableBase.Sub(additionalDiscount)
		if base.IsNegative() {
			return OrderTotals{}, nil, shared.NewDomainError("ARITHMETIC_ERROR", "Additional discount exceeds the order amount")
		}
		totals.AmountBeforeVat = base
		totals.AmountAfterVat = base
	}

	totals.AmountDue = totals.AmountAfterVat
	if whtAgg := valueobject.SumWithholdings(whts); whtAgg != nil {
		whtAmount := whtAgg.Amount()
		totals.WithholdingAmount = &whtAmount
		totals.AmountDue = totals.AmountDue.Sub(whtAmount)
	}

	return totals, items, nil
}
