package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/domain/shared/valueobject"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending  PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusApproved PurchaseOrderStatus = "APPROVED"
	PurchaseOrderStatusRejected PurchaseOrderStatus = "REJECTED"
	PurchaseOrderStatusVoided   PurchaseOrderStatus = "VOIDED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusApproved,
		PurchaseOrderStatusRejected, PurchaseOrderStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusApproved ||
			target == PurchaseOrderStatusRejected ||
			target == PurchaseOrderStatusVoided
	case PurchaseOrderStatusApproved:
		return target == PurchaseOrderStatusVoided
	case PurchaseOrderStatusRejected, PurchaseOrderStatusVoided:
		return false // Terminal states
	}
	return false
}

// OrderAction tags an entry in the order's action log
type OrderAction string

const (
	OrderActionCreate  OrderAction = "CREATE"
	OrderActionUpdate  OrderAction = "UPDATE"
	OrderActionApprove OrderAction = "APPROVE"
	OrderActionReject  OrderAction = "REJECT"
	OrderActionVoid    OrderAction = "VOID"
	OrderActionReorder OrderAction = "REORDER"
)

// PurchaseOrderAction is one immutable entry of the append-only action log.
// Entries are never edited or removed.
type PurchaseOrderAction struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	UserID    uuid.UUID
	Action    OrderAction
	CreatedAt time.Time
}

// PurchaseOrder represents a purchase order aggregate root.
// It owns the ordered line-item list, the order-level additional discount
// and the derived monetary totals, plus the approval lifecycle.
//
// The derived totals are never mutated independently of the item list:
// every mutation of items, discount or VAT configuration goes through
// recalculateItems.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	OrderNumber  string
	SupplierID   uuid.UUID
	SupplierName string

	Items                    []PurchaseOrderItem
	AdditionalDiscountAmount decimal.Decimal
	VatOption                VatOption
	VatRate                  *valueobject.Rate // nominal rate, aggregate recompute path only
	DiscountPolicy           DiscountPolicy
	Currency                 valueobject.Currency

	TotalAmountBeforeDiscount decimal.Decimal
	TotalAmountBeforeVat      decimal.Decimal
	TotalVatAmount            *decimal.Decimal
	TotalAmountAfterVat       decimal.Decimal
	TotalWithholdingTaxAmount *decimal.Decimal
	TotalAmountDue            decimal.Decimal

	Status     PurchaseOrderStatus
	Remark     string
	ApprovedAt *time.Time
	RejectedAt *time.Time
	VoidedAt   *time.Time
	Actions    []PurchaseOrderAction
}

// NewPurchaseOrder creates a new pending purchase order
func NewPurchaseOrder(tenantID uuid.UUID, orderNumber string, supplierID uuid.UUID, supplierName string, vatOption VatOption, vatRate *valueobject.Rate, policy DiscountPolicy, createdBy uuid.UUID) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if !vatOption.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_OPTION", "VAT option must be NONE, VAT_INCLUDED or VAT_EXCLUDED")
	}
	if !policy.IsValid() {
		return nil, shared.NewDomainError("INVALID_POLICY", "Unknown discount distribution policy")
	}

	order := &PurchaseOrder{
		TenantAggregateRoot:      shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:              orderNumber,
		SupplierID:               supplierID,
		SupplierName:             supplierName,
		Items:                    make([]PurchaseOrderItem, 0),
		AdditionalDiscountAmount: decimal.Zero,
		VatOption:                vatOption,
		VatRate:                  vatRate,
		DiscountPolicy:           policy,
		Currency:                 valueobject.DefaultCurrency,
		Status:                   PurchaseOrderStatusPending,
	}
	order.SetCreatedBy(createdBy)
	order.appendAction(createdBy, OrderActionCreate)
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// AddItem appends a new line to the order and recomputes totals.
// Only allowed while pending.
func (o *PurchaseOrder) AddItem(input PurchaseOrderItemInput) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-pending order")
	}

	item, err := NewPurchaseOrderItem(o.ID, input)
	if err != nil {
		return nil, err
	}
	item.Position = len(o.Items)

	candidate := append(append([]PurchaseOrderItem{}, o.Items...), *item)
	if err := o.applyItems(candidate); err != nil {
		return nil, err
	}
	return &o.Items[len(o.Items)-1], nil
}

// ReplaceItems swaps the whole line-item list. Lines are never partially
// mutated: updates arrive as a full replacement list. Only allowed while
// pending, and the new list cannot be empty.
func (o *PurchaseOrder) ReplaceItems(inputs []PurchaseOrderItemInput) error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot replace items of a non-pending order")
	}
	if len(inputs) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Item list cannot be empty")
	}

	candidate := make([]PurchaseOrderItem, 0, len(inputs))
	for idx, input := range inputs {
		item, err := NewPurchaseOrderItem(o.ID, input)
		if err != nil {
			return err
		}
		item.Position = idx
		candidate = append(candidate, *item)
	}
	return o.applyItems(candidate)
}

// SetAdditionalDiscount sets the order-level discount and recomputes.
// Only allowed while pending.
func (o *PurchaseOrder) SetAdditionalDiscount(discount decimal.Decimal) error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change discount of a non-pending order")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Additional discount cannot be negative")
	}

	previous := o.AdditionalDiscountAmount
	o.AdditionalDiscountAmount = discount
	if err := o.recalculateItems(); err != nil {
		o.AdditionalDiscountAmount = previous
		return err
	}
	o.Touch()
	o.IncrementVersion()
	return nil
}

// SetVatOption changes the aggregate VAT treatment and recomputes.
// Only allowed while pending.
func (o *PurchaseOrder) SetVatOption(option VatOption, rate *valueobject.Rate) error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change VAT option of a non-pending order")
	}
	if !option.IsValid() {
		return shared.NewDomainError("INVALID_VAT_OPTION", "VAT option must be NONE, VAT_INCLUDED or VAT_EXCLUDED")
	}

	prevOption, prevRate := o.VatOption, o.VatRate
	o.VatOption = option
	o.VatRate = rate
	if err := o.recalculateItems(); err != nil {
		o.VatOption, o.VatRate = prevOption, prevRate
		return err
	}
	o.Touch()
	o.IncrementVersion()
	return nil
}

// SetRemark sets the order remark
func (o *PurchaseOrder) SetRemark(remark string) {
	o.Remark = remark
	o.Touch()
	o.IncrementVersion()
}

// applyItems recomputes totals over a candidate list and commits both the
// list and the totals only on success.
func (o *PurchaseOrder) applyItems(candidate []PurchaseOrderItem) error {
	totals, recomputed, err := ComputeTotals(candidate, o.AdditionalDiscountAmount, o.VatOption, o.VatRate, o.DiscountPolicy)
	if err != nil {
		return err
	}
	o.Items = recomputed
	o.assignTotals(totals)
	o.Touch()
	o.IncrementVersion()
	return nil
}

// recalculateItems recomputes every line and the order totals in place.
// Idempotent: calling it twice without intervening mutation yields
// identical totals.
func (o *PurchaseOrder) recalculateItems() error {
	totals, recomputed, err := ComputeTotals(o.Items, o.AdditionalDiscountAmount, o.VatOption, o.VatRate, o.DiscountPolicy)
	if err != nil {
		return err
	}
	o.Items = recomputed
	o.assignTotals(totals)
	return nil
}

// Recalculate re-derives the totals from the current line items.
// Exposed for recompute-and-compare verification against stored totals.
func (o *PurchaseOrder) Recalculate() error {
	return o.recalculateItems()
}

func (o *PurchaseOrder) assignTotals(t OrderTotals) {
	o.TotalAmountBeforeDiscount = t.AmountBeforeDiscount
	o.TotalAmountBeforeVat = t.AmountBeforeVat
	o.TotalVatAmount = t.VatAmount
	o.TotalAmountAfterVat = t.AmountAfterVat
	o.TotalWithholdingTaxAmount = t.WithholdingAmount
	o.TotalAmountDue = t.AmountDue
}

// Approve transitions the order from pending to approved
func (o *PurchaseOrder) Approve(userID uuid.UUID) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot approve order without items")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusApproved
	o.ApprovedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.appendAction(userID, OrderActionApprove)
	o.AddDomainEvent(NewPurchaseOrderApprovedEvent(o, userID))

	return nil
}

// Reject transitions the order from pending to rejected
func (o *PurchaseOrder) Reject(userID uuid.UUID) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusRejected
	o.RejectedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.appendAction(userID, OrderActionReject)
	o.AddDomainEvent(NewPurchaseOrderRejectedEvent(o, userID))

	return nil
}

// Void soft-deletes the order. Orders are never hard-deleted; a voided
// order stays queryable with its full history.
func (o *PurchaseOrder) Void(userID uuid.UUID) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusVoided) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusVoided
	o.VoidedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	o.appendAction(userID, OrderActionVoid)
	o.AddDomainEvent(NewPurchaseOrderVoidedEvent(o, userID))

	return nil
}

// TransitionTo dispatches to the matching lifecycle operation
func (o *PurchaseOrder) TransitionTo(target PurchaseOrderStatus, userID uuid.UUID) error {
	switch target {
	case PurchaseOrderStatusApproved:
		return o.Approve(userID)
	case PurchaseOrderStatusRejected:
		return o.Reject(userID)
	case PurchaseOrderStatusVoided:
		return o.Void(userID)
	default:
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transition order to %s", target))
	}
}

// Reorder permutes the line items to match the given identifier sequence.
// The sequence must be a permutation of the current item IDs; any mismatch
// (unknown ID, duplicate, wrong cardinality) rejects the whole operation
// and leaves the stored order untouched. Ordering carries no monetary
// effect, so totals are not recomputed.
func (o *PurchaseOrder) Reorder(ids []uuid.UUID, userID uuid.UUID) error {
	if len(ids) != len(o.Items) {
		return shared.NewDomainError("INVALID_ITEM_SEQUENCE", "Identifier sequence must match the current items exactly")
	}

	byID := make(map[uuid.UUID]*PurchaseOrderItem, len(o.Items))
	for idx := range o.Items {
		byID[o.Items[idx].ID] = &o.Items[idx]
	}

	reordered := make([]PurchaseOrderItem, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok || seen[id] {
			return shared.NewDomainError("INVALID_ITEM_SEQUENCE", "Identifier sequence must match the current items exactly")
		}
		seen[id] = true
		reordered = append(reordered, *item)
	}

	for idx := range reordered {
		reordered[idx].Position = idx
	}
	o.Items = reordered
	o.Touch()
	o.IncrementVersion()
	o.appendAction(userID, OrderActionReorder)

	return nil
}

func (o *PurchaseOrder) appendAction(userID uuid.UUID, action OrderAction) {
	o.Actions = append(o.Actions, PurchaseOrderAction{
		ID:        uuid.New(),
		OrderID:   o.ID,
		UserID:    userID,
		Action:    action,
		CreatedAt: time.Now(),
	})
}

// ItemCount returns the number of line items
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// ItemIDs returns the item identifiers in display order
func (o *PurchaseOrder) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for idx := range o.Items {
		ids[idx] = o.Items[idx].ID
	}
	return ids
}

// GetItem returns an item by its ID
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// GetTotalAmountDueMoney returns the amount due as Money
func (o *PurchaseOrder) GetTotalAmountDueMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(o.TotalAmountDue, o.Currency)
	return m
}

// IsPending returns true if the order awaits approval
func (o *PurchaseOrder) IsPending() bool {
	return o.Status == PurchaseOrderStatusPending
}

// IsApproved returns true if the order is approved
func (o *PurchaseOrder) IsApproved() bool {
	return o.Status == PurchaseOrderStatusApproved
}

// IsTerminal returns true if no further transition is possible
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status == PurchaseOrderStatusRejected || o.Status == PurchaseOrderStatusVoided
}

// CanModify returns true if items and discount can still change
func (o *PurchaseOrder) CanModify() bool {
	return o.IsPending()
}
