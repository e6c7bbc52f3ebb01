package purchasing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procurio/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated  = "PurchaseOrderCreated"
	EventTypePurchaseOrderApproved = "PurchaseOrderApproved"
	EventTypePurchaseOrderRejected = "PurchaseOrderRejected"
	EventTypePurchaseOrderVoided   = "PurchaseOrderVoided"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCreatedEvent) EventType() string {
	return EventTypePurchaseOrderCreated
}

// PurchaseOrderApprovedEvent is raised when a purchase order is approved.
// Downstream contexts (accounts payable, inventory planning) react to it.
type PurchaseOrderApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
	TotalAmountDue decimal.Decimal `json:"total_amount_due"`
	ApprovedBy     uuid.UUID       `json:"approved_by"`
}

// NewPurchaseOrderApprovedEvent creates a new PurchaseOrderApprovedEvent
func NewPurchaseOrderApprovedEvent(order *PurchaseOrder, userID uuid.UUID) *PurchaseOrderApprovedEvent {
	return &PurchaseOrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderApproved, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		TotalAmountDue:  order.TotalAmountDue,
		ApprovedBy:      userID,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderApprovedEvent) EventType() string {
	return EventTypePurchaseOrderApproved
}

// PurchaseOrderRejectedEvent is raised when a purchase order is rejected
type PurchaseOrderRejectedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	SupplierID  uuid.UUID `json:"supplier_id"`
	RejectedBy  uuid.UUID `json:"rejected_by"`
}

// NewPurchaseOrderRejectedEvent creates a new PurchaseOrderRejectedEvent
func NewPurchaseOrderRejectedEvent(order *PurchaseOrder, userID uuid.UUID) *PurchaseOrderRejectedEvent {
	return &PurchaseOrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderRejected, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		RejectedBy:      userID,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderRejectedEvent) EventType() string {
	return EventTypePurchaseOrderRejected
}

// PurchaseOrderVoidedEvent is raised when a purchase order is voided
type PurchaseOrderVoidedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID           `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	SupplierID  uuid.UUID           `json:"supplier_id"`
	WasApproved bool                `json:"was_approved"` // If true, supplier may need to be notified
	VoidedBy    uuid.UUID           `json:"voided_by"`
	Status      PurchaseOrderStatus `json:"status"`
}

// NewPurchaseOrderVoidedEvent creates a new PurchaseOrderVoidedEvent
func NewPurchaseOrderVoidedEvent(order *PurchaseOrder, userID uuid.UUID) *PurchaseOrderVoidedEvent {
	return &PurchaseOrderVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderVoided, AggregateTypePurchaseOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
		WasApproved:     order.ApprovedAt != nil,
		VoidedBy:        userID,
		Status:          order.Status,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderVoidedEvent) EventType() string {
	return EventTypePurchaseOrderVoided
}
