package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procurio/backend/internal/domain/purchasing"
	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/domain/shared/valueobject"
)

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	OrderNumber  string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_order_tenant_number,priority:2"`
	SupplierID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	SupplierName string     `gorm:"type:varchar(200);not null"`

	Items []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`

	AdditionalDiscountAmount decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	VatOption                purchasing.VatOption      `gorm:"type:varchar(20);not null;default:'NONE'"`
	VatRate                  *valueobject.Rate         `gorm:"type:decimal(9,6)"`
	DiscountPolicy           purchasing.DiscountPolicy `gorm:"type:varchar(20);not null;default:'PER_LINE'"`
	Currency                 valueobject.Currency      `gorm:"type:varchar(3);not null;default:'THB'"`

	TotalAmountBeforeDiscount decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmountBeforeVat      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TotalVatAmount            *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalAmountAfterVat       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TotalWithholdingTaxAmount *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TotalAmountDue            decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`

	Status     purchasing.PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Remark     string                         `gorm:"type:text"`
	ApprovedAt *time.Time                     `gorm:"index"`
	RejectedAt *time.Time
	VoidedAt   *time.Time

	Actions []PurchaseOrderActionModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) ToDomain() *purchasing.PurchaseOrder {
	order := &purchasing.PurchaseOrder{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID:  m.TenantID,
			CreatedBy: m.CreatedBy,
		},
		OrderNumber:               m.OrderNumber,
		SupplierID:                m.SupplierID,
		SupplierName:              m.SupplierName,
		AdditionalDiscountAmount:  m.AdditionalDiscountAmount,
		VatOption:                 m.VatOption,
		VatRate:                   m.VatRate,
		DiscountPolicy:            m.DiscountPolicy,
		Currency:                  m.Currency,
		TotalAmountBeforeDiscount: m.TotalAmountBeforeDiscount,
		TotalAmountBeforeVat:      m.TotalAmountBeforeVat,
		TotalVatAmount:            m.TotalVatAmount,
		TotalAmountAfterVat:       m.TotalAmountAfterVat,
		TotalWithholdingTaxAmount: m.TotalWithholdingTaxAmount,
		TotalAmountDue:            m.TotalAmountDue,
		Status:                    m.Status,
		Remark:                    m.Remark,
		ApprovedAt:                m.ApprovedAt,
		RejectedAt:                m.RejectedAt,
		VoidedAt:                  m.VoidedAt,
		Items:                     make([]purchasing.PurchaseOrderItem, len(m.Items)),
		Actions:                   make([]purchasing.PurchaseOrderAction, len(m.Actions)),
	}
	for i, item := range m.Items {
		order.Items[i] = *item.ToDomain()
	}
	for i, action := range m.Actions {
		order.Actions[i] = *action.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain PurchaseOrder entity.
func (m *PurchaseOrderModel) FromDomain(o *purchasing.PurchaseOrder) {
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SupplierID = o.SupplierID
	m.SupplierName = o.SupplierName
	m.AdditionalDiscountAmount = o.AdditionalDiscountAmount
	m.VatOption = o.VatOption
	m.VatRate = o.VatRate
	m.DiscountPolicy = o.DiscountPolicy
	m.Currency = o.Currency
	m.TotalAmountBeforeDiscount = o.TotalAmountBeforeDiscount
	m.TotalAmountBeforeVat = o.TotalAmountBeforeVat
	m.TotalVatAmount = o.TotalVatAmount
	m.TotalAmountAfterVat = o.TotalAmountAfterVat
	m.TotalWithholdingTaxAmount = o.TotalWithholdingTaxAmount
	m.TotalAmountDue = o.TotalAmountDue
	m.Status = o.Status
	m.Remark = o.Remark
	m.ApprovedAt = o.ApprovedAt
	m.RejectedAt = o.RejectedAt
	m.VoidedAt = o.VoidedAt
	m.Items = make([]PurchaseOrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *PurchaseOrderItemModelFromDomain(&item)
	}
	m.Actions = make([]PurchaseOrderActionModel, len(o.Actions))
	for i, action := range o.Actions {
		m.Actions[i] = *PurchaseOrderActionModelFromDomain(&action)
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder entity.
func PurchaseOrderModelFromDomain(o *purchasing.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{}
	m.FromDomain(o)
	return m
}

// PurchaseOrderItemModel is the persistence model for the PurchaseOrderItem entity.
type PurchaseOrderItemModel struct {
	ID        uuid.UUID                  `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID                  `gorm:"type:uuid;not null;index"`
	RefID     uuid.UUID                  `gorm:"type:uuid;not null;index"`
	RefKind   purchasing.CatalogItemKind `gorm:"type:varchar(20);not null"`
	VariantID *uuid.UUID                 `gorm:"type:uuid"`

	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:text"`
	Unit        string `gorm:"type:varchar(20)"`
	Position    int    `gorm:"not null;default:0"`

	Quantity        decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	DiscountPerUnit decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	VatRate         *valueobject.Rate `gorm:"type:decimal(9,6)"`
	WithholdingRate *valueobject.Rate `gorm:"type:decimal(9,6)"`
	VatIncluded     bool              `gorm:"not null;default:false"`

	ExtraDiscount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountBeforeDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountDiscount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountBeforeVat      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	VatAmount            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountAfterVat       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WithholdingAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountDue            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}

// ToDomain converts the persistence model to a domain PurchaseOrderItem entity.
func (m *PurchaseOrderItemModel) ToDomain() *purchasing.PurchaseOrderItem {
	return &purchasing.PurchaseOrderItem{
		ID:                   m.ID,
		OrderID:              m.OrderID,
		RefID:                m.RefID,
		RefKind:              m.RefKind,
		VariantID:            m.VariantID,
		Name:                 m.Name,
		Description:          m.Description,
		Unit:                 m.Unit,
		Position:             m.Position,
		Quantity:             m.Quantity,
		UnitPrice:            m.UnitPrice,
		DiscountPerUnit:      m.DiscountPerUnit,
		VatRate:              m.VatRate,
		WithholdingRate:      m.WithholdingRate,
		VatIncluded:          m.VatIncluded,
		ExtraDiscount:        m.ExtraDiscount,
		AmountBeforeDiscount: m.AmountBeforeDiscount,
		AmountDiscount:       m.AmountDiscount,
		AmountBeforeVat:      m.AmountBeforeVat,
		VatAmount:            m.VatAmount,
		AmountAfterVat:       m.AmountAfterVat,
		WithholdingAmount:    m.WithholdingAmount,
		AmountDue:            m.AmountDue,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseOrderItem entity.
func (m *PurchaseOrderItemModel) FromDomain(i *purchasing.PurchaseOrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.RefID = i.RefID
	m.RefKind = i.RefKind
	m.VariantID = i.VariantID
	m.Name = i.Name
	m.Description = i.Description
	m.Unit = i.Unit
	m.Position = i.Position
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.DiscountPerUnit = i.DiscountPerUnit
	m.VatRate = i.VatRate
	m.WithholdingRate = i.WithholdingRate
	m.VatIncluded = i.VatIncluded
	m.ExtraDiscount = i.ExtraDiscount
	m.AmountBeforeDiscount = i.AmountBeforeDiscount
	m.AmountDiscount = i.AmountDiscount
	m.AmountBeforeVat = i.AmountBeforeVat
	m.VatAmount = i.VatAmount
	m.AmountAfterVat = i.AmountAfterVat
	m.WithholdingAmount = i.WithholdingAmount
	m.AmountDue = i.AmountDue
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// PurchaseOrderItemModelFromDomain creates a new persistence model from a domain PurchaseOrderItem entity.
func PurchaseOrderItemModelFromDomain(i *purchasing.PurchaseOrderItem) *PurchaseOrderItemModel {
	m := &PurchaseOrderItemModel{}
	m.FromDomain(i)
	return m
}

// PurchaseOrderActionModel is the persistence model for the append-only action log.
// Rows are inserted, never updated or deleted.
type PurchaseOrderActionModel struct {
	ID        uuid.UUID              `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null"`
	Action    purchasing.OrderAction `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PurchaseOrderActionModel) TableName() string {
	return "purchase_order_actions"
}

// ToDomain converts the persistence model to a domain PurchaseOrderAction.
func (m *PurchaseOrderActionModel) ToDomain() *purchasing.PurchaseOrderAction {
	return &purchasing.PurchaseOrderAction{
		ID:        m.ID,
		OrderID:   m.OrderID,
		UserID:    m.UserID,
		Action:    m.Action,
		CreatedAt: m.CreatedAt,
	}
}

// PurchaseOrderActionModelFromDomain creates a new persistence model from a domain PurchaseOrderAction.
func PurchaseOrderActionModelFromDomain(a *purchasing.PurchaseOrderAction) *PurchaseOrderActionModel {
	return &PurchaseOrderActionModel{
		ID:        a.ID,
		OrderID:   a.OrderID,
		UserID:    a.UserID,
		Action:    a.Action,
		CreatedAt: a.CreatedAt,
	}
}

// DocumentCounterModel backs the per-tenant, per-period document numbering
// sequence. The counter is advanced atomically with an upsert so concurrent
// order creation never hands out the same number twice.
type DocumentCounterModel struct {
	TenantID uuid.UUID `gorm:"type:uuid;primary_key"`
	Year     int       `gorm:"primary_key"`
	Month    int       `gorm:"primary_key"`
	Value    int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentCounterModel) TableName() string {
	return "document_counters"
}
