package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/domain/shared/valueobject"
)

// CatalogItemKind identifies which catalog collection a line item references
type CatalogItemKind string

const (
	CatalogItemKindProduct CatalogItemKind = "PRODUCT"
	CatalogItemKindService CatalogItemKind = "SERVICE"
)

// IsValid checks if the kind is a known CatalogItemKind
func (k CatalogItemKind) IsValid() bool {
	return k == CatalogItemKindProduct || k == CatalogItemKindService
}

// String returns the string representation of CatalogItemKind
func (k CatalogItemKind) String() string {
	return string(k)
}

var one = decimal.NewFromInt(1)

// PurchaseOrderItemInput carries the raw commercial inputs for one line
type PurchaseOrderItemInput struct {
	RefID           uuid.UUID
	RefKind         CatalogItemKind
	VariantID       *uuid.UUID
	Name            string
	Description     string
	Unit            string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPerUnit decimal.Decimal
	VatRate         *valueobject.Rate
	WithholdingRate *valueobject.Rate
	VatIncluded     bool
}

// PurchaseOrderItem represents one line of a purchase order.
//
// UnitPrice and DiscountPerUnit share VAT semantics: when VatIncluded is
// true both already embed VAT and are netted out before any computation.
// The computed amounts are stored alongside the raw inputs so persisted
// totals can always be recomputed and compared.
type PurchaseOrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	RefID     uuid.UUID
	RefKind   CatalogItemKind
	VariantID *uuid.UUID

	Name        string
	Description string
	Unit        string
	Position    int

	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPerUnit decimal.Decimal
	VatRate         *valueobject.Rate
	WithholdingRate *valueobject.Rate
	VatIncluded     bool

	// Computed, see Recalculate
	ExtraDiscount        decimal.Decimal
	AmountBeforeDiscount decimal.Decimal
	AmountDiscount       decimal.Decimal
	AmountBeforeVat      decimal.Decimal
	VatAmount            decimal.Decimal
	AmountAfterVat       decimal.Decimal
	WithholdingAmount    decimal.Decimal
	AmountDue            decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPurchaseOrderItem validates the raw inputs and computes the line with
// no share of any order-level discount applied yet.
func NewPurchaseOrderItem(orderID uuid.UUID, input PurchaseOrderItemInput) (*PurchaseOrderItem, error) {
	if input.RefID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM_REF", "Item reference cannot be empty")
	}
	if !input.RefKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ITEM_REF", "Item reference kind must be PRODUCT or SERVICE")
	}
	if input.Name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "Item name cannot be empty")
	}
	if input.Quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if input.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if input.DiscountPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Per-unit discount cannot be negative")
	}
	if input.VatIncluded && input.VatRate == nil {
		// A gross price cannot be netted without knowing the rate
		return nil, shared.NewDomainError("MISSING_VAT_RATE", "VAT rate is required when unit price includes VAT")
	}

	now := time.Now()
	item := &PurchaseOrderItem{
		ID:              uuid.New(),
		OrderID:         orderID,
		RefID:           input.RefID,
		RefKind:         input.RefKind,
		VariantID:       input.VariantID,
		Name:            input.Name,
		Description:     input.Description,
		Unit:            input.Unit,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		DiscountPerUnit: input.DiscountPerUnit,
		VatRate:         input.VatRate,
		WithholdingRate: input.WithholdingRate,
		VatIncluded:     input.VatIncluded,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := item.Recalculate(decimal.Zero); err != nil {
		return nil, err
	}
	return item, nil
}

// netTransform strips VAT from an amount when the line is quoted
// VAT-inclusive; otherwise the amount is already a net figure.
func (i *PurchaseOrderItem) netTransform(amount decimal.Decimal) decimal.Decimal {
	if i.VatIncluded && i.VatRate != nil {
		return amount.Div(one.Add(i.VatRate.Fraction()))
	}
	return amount
}

// BasePricePerUnit returns the unit price net of VAT
func (i *PurchaseOrderItem) BasePricePerUnit() decimal.Decimal {
	return i.netTransform(i.UnitPrice)
}

// BaseDiscountPerUnit returns the per-unit discount net of VAT
func (i *PurchaseOrderItem) BaseDiscountPerUnit() decimal.Decimal {
	return i.netTransform(i.DiscountPerUnit)
}

// Recalculate computes the full financial breakdown for this line.
//
// extraDiscount is this line's share of the order-level additional discount,
// expressed in the same VAT semantics as the line's own prices. The ordering
// is fixed: discounts reduce the base before VAT is applied, and withholding
// is computed on the pre-VAT, post-discount base rather than the
// VAT-inclusive total.
func (i *PurchaseOrderItem) Recalculate(extraDiscount decimal.Decimal) error {
	if extraDiscount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount share cannot be negative")
	}

	amountBeforeDiscount := i.Quantity.Mul(i.BasePricePerUnit())
	amountDiscount := i.Quantity.Mul(i.BaseDiscountPerUnit())
	amountBeforeVat := amountBeforeDiscount.Sub(amountDiscount).Sub(i.netTransform(extraDiscount))
	if amountBeforeVat.IsNegative() {
		return shared.NewDomainError("ARITHMETIC_ERROR", "Discounts exceed the line amount")
	}

	vatAmount := decimal.Zero
	if i.VatRate != nil {
		vatAmount = amountBeforeVat.Mul(i.VatRate.Fraction())
	}
	amountAfterVat := amountBeforeVat.Add(vatAmount)

	withholdingAmount := decimal.Zero
	if i.WithholdingRate != nil {
		withholdingAmount = amountBeforeVat.Mul(i.WithholdingRate.Fraction())
	}

	i.ExtraDiscount = extraDiscount
	i.AmountBeforeDiscount = amountBeforeDiscount
	i.AmountDiscount = amountDiscount
	i.AmountBeforeVat = amountBeforeVat
	i.VatAmount = vatAmount
	i.AmountAfterVat = amountAfterVat
	i.WithholdingAmount = withholdingAmount
	i.AmountDue = amountAfterVat.Sub(withholdingAmount)
	i.UpdatedAt = time.Now()

	return nil
}

// VatBreakdown returns the line's VAT application as a value object,
// computed on the undiscounted pre-VAT base. Nil when the line carries no
// VAT rate.
func (i *PurchaseOrderItem) VatBreakdown() (*valueobject.Vat, error) {
	if i.VatRate == nil {
		return nil, nil
	}
	base := i.Quantity.Mul(i.BasePricePerUnit()).Sub(i.Quantity.Mul(i.BaseDiscountPerUnit()))
	vat, err := valueobject.NewVatFromExclusive(base, *i.VatRate)
	if err != nil {
		return nil, err
	}
	return &vat, nil
}

// WithholdingBreakdown returns the line's withholding application as a value
// object, computed on the undiscounted pre-VAT base. Nil when the line
// carries no withholding rate.
func (i *PurchaseOrderItem) WithholdingBreakdown() (*valueobject.TaxWithholding, error) {
	if i.WithholdingRate == nil {
		return nil, nil
	}
	base := i.Quantity.Mul(i.BasePricePerUnit()).Sub(i.Quantity.Mul(i.BaseDiscountPerUnit()))
	wht, err := valueobject.NewTaxWithholding(base, *i.WithholdingRate)
	if err != nil {
		return nil, err
	}
	return &wht, nil
}

// GetAmountDueMoney returns the line amount due as Money
func (i *PurchaseOrderItem) GetAmountDueMoney(currency valueobject.Currency) valueobject.Money {
	m, _ := valueobject.NewMoney(i.AmountDue, currency)
	return m
}
