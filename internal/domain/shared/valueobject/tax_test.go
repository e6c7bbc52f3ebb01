package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decf(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// assertDecimalNear asserts two decimals are equal within 1e-6
func assertDecimalNear(t *testing.T, expected, actual decimal.Decimal) {
	t.Helper()
	diff := expected.Sub(actual).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.New(1, -6)),
		"expected %s, got %s (diff %s)", expected, actual, diff)
}

func TestNewVatFromInclusive(t *testing.T) {
	vat, err := NewVatFromInclusive(decf(107), MustRate(0.07))
	require.NoError(t, err)

	assertDecimalNear(t, decf(100), vat.AmountBefore())
	assertDecimalNear(t, decf(7), vat.Amount())
	assertDecimalNear(t, decf(107), vat.AmountAfter())
}

func TestNewVatFromExclusive(t *testing.T) {
	vat, err := NewVatFromExclusive(decf(100), MustRate(0.07))
	require.NoError(t, err)

	assertDecimalNear(t, decf(100), vat.AmountBefore())
	assertDecimalNear(t, decf(7), vat.Amount())
	assertDecimalNear(t, decf(107), vat.AmountAfter())
}

func TestVat_InclusiveRoundTrip(t *testing.T) {
	// Deriving from an inclusive total must give back that total exactly
	totals := []float64{90, 107, 0.01, 12345.67, 0}
	for _, total := range totals {
		vat, err := NewVatFromInclusive(decf(total), MustRate(0.07))
		require.NoError(t, err)
		assertDecimalNear(t, decf(total), vat.AmountAfter())
		assertDecimalNear(t, decf(total), vat.AmountBefore().Add(vat.Amount()))
	}
}

func TestVat_Invariant(t *testing.T) {
	tests := []struct {
		name string
		vat  func() (Vat, error)
	}{
		{"inclusive", func() (Vat, error) { return NewVatFromInclusive(decf(321.5), MustRate(0.1)) }},
		{"exclusive", func() (Vat, error) { return NewVatFromExclusive(decf(321.5), MustRate(0.1)) }},
		{"zero rate", func() (Vat, error) { return NewVatFromExclusive(decf(50), ZeroRate()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vat, err := tt.vat()
			require.NoError(t, err)
			assertDecimalNear(t, vat.Amount(), vat.AmountAfter().Sub(vat.AmountBefore()))
		})
	}
}

func TestVat_ZeroRate(t *testing.T) {
	vat, err := NewVatFromInclusive(decf(100), ZeroRate())
	require.NoError(t, err)

	assert.True(t, vat.Amount().IsZero())
	assertDecimalNear(t, decf(100), vat.AmountBefore())
	assertDecimalNear(t, decf(100), vat.AmountAfter())
}

func TestVat_NegativeBaseRejected(t *testing.T) {
	_, err := NewVatFromInclusive(decf(-1), MustRate(0.07))
	assert.ErrorIs(t, err, ErrNegativeTaxBase)

	_, err = NewVatFromExclusive(decf(-0.01), MustRate(0.07))
	assert.ErrorIs(t, err, ErrNegativeTaxBase)
}

func TestVat_ApplyDiscount(t *testing.T) {
	vat, err := NewVatFromExclusive(decf(100), MustRate(0.07))
	require.NoError(t, err)

	t.Run("exclusive discount comes off the pre-VAT base", func(t *testing.T) {
		discounted, err := vat.ApplyDiscount(decf(10), false)
		require.NoError(t, err)
		assertDecimalNear(t, decf(90), discounted.AmountBefore())
		assertDecimalNear(t, decf(6.3), discounted.Amount())
		assertDecimalNear(t, decf(96.3), discounted.AmountAfter())
	})

	t.Run("inclusive discount comes off the VAT-inclusive total", func(t *testing.T) {
		discounted, err := vat.ApplyDiscount(decf(10.7), true)
		require.NoError(t, err)
		assertDecimalNear(t, decf(96.3), discounted.AmountAfter())
		assertDecimalNear(t, decf(90), discounted.AmountBefore())
	})

	t.Run("over-discount is rejected, not clamped", func(t *testing.T) {
		_, err := vat.ApplyDiscount(decf(101), false)
		assert.ErrorIs(t, err, ErrNegativeTaxBase)
	})

	t.Run("original is untouched", func(t *testing.T) {
		_, err := vat.ApplyDiscount(decf(10), false)
		require.NoError(t, err)
		assertDecimalNear(t, decf(100), vat.AmountBefore())
	})
}

func TestSumVats(t *testing.T) {
	t.Run("empty slice yields nil, not a zero aggregate", func(t *testing.T) {
		assert.Nil(t, SumVats(MustRate(0.07), nil))
		assert.Nil(t, SumVats(MustRate(0.07), []Vat{}))
	})

	t.Run("fields add across lines", func(t *testing.T) {
		a, err := NewVatFromExclusive(decf(100), MustRate(0.07))
		require.NoError(t, err)
		b, err := NewVatFromExclusive(decf(50), MustRate(0.07))
		require.NoError(t, err)

		sum := SumVats(MustRate(0.07), []Vat{a, b})
		require.NotNil(t, sum)
		assertDecimalNear(t, decf(150), sum.AmountBefore())
		assertDecimalNear(t, decf(10.5), sum.Amount())
		assertDecimalNear(t, decf(160.5), sum.AmountAfter())
	})
}

func TestNewTaxWithholding(t *testing.T) {
	wht, err := NewTaxWithholding(decf(100), MustRate(0.03))
	require.NoError(t, err)

	assertDecimalNear(t, decf(3), wht.Amount())
	assertDecimalNear(t, decf(100), wht.AmountBefore())
	assertDecimalNear(t, decf(97), wht.AmountAfter())
	// Withholding subtracts from the base
	assertDecimalNear(t, wht.Amount(), wht.AmountBefore().Sub(wht.AmountAfter()))
}

func TestNewTaxWithholding_NegativeBaseRejected(t *testing.T) {
	_, err := NewTaxWithholding(decf(-5), MustRate(0.03))
	assert.ErrorIs(t, err, ErrNegativeTaxBase)
}

func TestTaxWithholding_ApplyDiscount(t *testing.T) {
	wht, err := NewTaxWithholding(decf(100), MustRate(0.03))
	require.NoError(t, err)

	discounted, err := wht.ApplyDiscount(decf(20))
	require.NoError(t, err)
	assertDecimalNear(t, decf(80), discounted.AmountBefore())
	assertDecimalNear(t, decf(2.4), discounted.Amount())
	assertDecimalNear(t, decf(77.6), discounted.AmountAfter())

	_, err = wht.ApplyDiscount(decf(150))
	assert.ErrorIs(t, err, ErrNegativeTaxBase)
}

func TestSumWithholdings(t *testing.T) {
	assert.Nil(t, SumWithholdings(nil))

	a, err := NewTaxWithholding(decf(100), MustRate(0.03))
	require.NoError(t, err)
	b, err := NewTaxWithholding(decf(200), MustRate(0.03))
	require.NoError(t, err)

	sum := SumWithholdings([]TaxWithholding{a, b})
	require.NotNil(t, sum)
	assertDecimalNear(t, decf(300), sum.AmountBefore())
	assertDecimalNear(t, decf(9), sum.Amount())
	assertDecimalNear(t, decf(291), sum.AmountAfter())
	assert.True(t, sum.Rate().IsZero(), "summed aggregate must not carry a per-line rate")
}
