package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procurio/backend/internal/domain/purchasing"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID         uuid.UUID                      `json:"supplier_id" binding:"required"`
	SupplierName       string                         `json:"supplier_name" binding:"required,min=1,max=200"`
	Items              []CreatePurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
	AdditionalDiscount *decimal.Decimal               `json:"additional_discount"`
	VatOption          string                         `json:"vat_option" binding:"required,oneof=NONE VAT_INCLUDED VAT_EXCLUDED"`
	VatRate            *decimal.Decimal               `json:"vat_rate"`
	Remark             string                         `json:"remark"`
	CreatedBy          *uuid.UUID                     `json:"-"`
}

// CreatePurchaseOrderItemInput represents an item in the create order request
type CreatePurchaseOrderItemInput struct {
	RefID           uuid.UUID        `json:"ref_id" binding:"required"`
	RefKind         string           `json:"ref_kind" binding:"required,oneof=PRODUCT SERVICE"`
	VariantID       *uuid.UUID       `json:"variant_id"`
	Name            string           `json:"name" binding:"required,min=1,max=200"`
	Description     string           `json:"description" binding:"max=500"`
	Unit            string           `json:"unit" binding:"max=20"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPerUnit decimal.Decimal  `json:"discount_per_unit"`
	VatRate         *decimal.Decimal `json:"vat_rate"`
	WithholdingRate *decimal.Decimal `json:"withholding_rate"`
	VatIncluded     bool             `json:"vat_included"`
}

// UpdatePurchaseOrderRequest represents a request to update a pending
// purchase order. Items, when present, replace the existing list wholesale.
type UpdatePurchaseOrderRequest struct {
	Items              []CreatePurchaseOrderItemInput `json:"items" binding:"omitempty,min=1,dive"`
	AdditionalDiscount *decimal.Decimal               `json:"additional_discount"`
	VatOption          *string                        `json:"vat_option" binding:"omitempty,oneof=NONE VAT_INCLUDED VAT_EXCLUDED"`
	VatRate            *decimal.Decimal               `json:"vat_rate"`
	Remark             *string                        `json:"remark"`
}

// ReorderItemsRequest carries the full desired item identifier sequence
type ReorderItemsRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" binding:"required,min=1"`
}

// PurchaseOrderListFilter represents filter options for purchase order list
type PurchaseOrderListFilter struct {
	Search     string                          `form:"search"`
	SupplierID *uuid.UUID                      `form:"supplier_id"`
	Status     *purchasing.PurchaseOrderStatus `form:"status"`
	StartDate  *time.Time                      `form:"start_date"`
	EndDate    *time.Time                      `form:"end_date"`
	Page       int                             `form:"page" binding:"min=0"`
	PageSize   int                             `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string                          `form:"order_by"`
	OrderDir   string                          `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                        uuid.UUID                    `json:"id"`
	TenantID                  uuid.UUID                    `json:"tenant_id"`
	OrderNumber               string                       `json:"order_number"`
	SupplierID                uuid.UUID                    `json:"supplier_id"`
	SupplierName              string                       `json:"supplier_name"`
	Items                     []PurchaseOrderItemResponse  `json:"items"`
	ItemCount                 int                          `json:"item_count"`
	AdditionalDiscountAmount  decimal.Decimal              `json:"additional_discount_amount"`
	VatOption                 string                       `json:"vat_option"`
	VatRate                   *decimal.Decimal             `json:"vat_rate,omitempty"`
	DiscountPolicy            string                       `json:"discount_policy"`
	Currency                  string                       `json:"currency"`
	TotalAmountBeforeDiscount decimal.Decimal              `json:"total_amount_before_discount"`
	TotalAmountBeforeVat      decimal.Decimal              `json:"total_amount_before_vat"`
	TotalVatAmount            *decimal.Decimal             `json:"total_vat_amount,omitempty"`
	TotalAmountAfterVat       decimal.Decimal              `json:"total_amount_after_vat"`
	TotalWithholdingTaxAmount *decimal.Decimal             `json:"total_withholding_tax_amount,omitempty"`
	TotalAmountDue            decimal.Decimal              `json:"total_amount_due"`
	Status                    string                       `json:"status"`
	Remark                    string                       `json:"remark,omitempty"`
	ApprovedAt                *time.Time                   `json:"approved_at,omitempty"`
	RejectedAt                *time.Time                   `json:"rejected_at,omitempty"`
	VoidedAt                  *time.Time                   `json:"voided_at,omitempty"`
	Actions                   []PurchaseOrderActionRespone `json:"actions"`
	CreatedAt                 time.Time                    `json:"created_at"`
	UpdatedAt                 time.Time                    `json:"updated_at"`
	Version                   int                          `json:"version"`
}

// PurchaseOrderListItemResponse represents a purchase order in list responses (less detail)
type PurchaseOrderListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrderNumber    string          `json:"order_number"`
	SupplierID     uuid.UUID       `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
	ItemCount      int             `json:"item_count"`
	TotalAmountDue decimal.Decimal `json:"total_amount_due"`
	Status         string          `json:"status"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PurchaseOrderItemResponse represents a purchase order item in API responses
type PurchaseOrderItemResponse struct {
	ID                   uuid.UUID        `json:"id"`
	RefID                uuid.UUID        `json:"ref_id"`
	RefKind              string           `json:"ref_kind"`
	VariantID            *uuid.UUID       `json:"variant_id,omitempty"`
	Name                 string           `json:"name"`
	Description          string           `json:"description,omitempty"`
	Unit                 string           `json:"unit,omitempty"`
	Position             int              `json:"position"`
	Quantity             decimal.Decimal  `json:"quantity"`
	UnitPrice            decimal.Decimal  `json:"unit_price"`
	DiscountPerUnit      decimal.Decimal  `json:"discount_per_unit"`
	VatRate              *decimal.Decimal `json:"vat_rate,omitempty"`
	WithholdingRate      *decimal.Decimal `json:"withholding_rate,omitempty"`
	VatIncluded          bool             `json:"vat_included"`
	ExtraDiscount        decimal.Decimal  `json:"extra_discount"`
	AmountBeforeDiscount decimal.Decimal  `json:"amount_before_discount"`
	AmountDiscount       decimal.Decimal  `json:"amount_discount"`
	AmountBeforeVat      decimal.Decimal  `json:"amount_before_vat"`
	VatAmount            decimal.Decimal  `json:"vat_amount"`
	AmountAfterVat       decimal.Decimal  `json:"amount_after_vat"`
	WithholdingAmount    decimal.Decimal  `json:"withholding_amount"`
	AmountDue            decimal.Decimal  `json:"amount_due"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// PurchaseOrderActionRespone represents one action log entry in responses
type PurchaseOrderActionRespone struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// PurchaseOrderStatusSummary represents a summary of purchase orders by status
type PurchaseOrderStatusSummary struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Voided   int64 `json:"voided"`
	Total    int64 `json:"total"`
}

// ToPurchaseOrderItemResponse converts a domain item to response DTO
func ToPurchaseOrderItemResponse(item *purchasing.PurchaseOrderItem) PurchaseOrderItemResponse {
	resp := PurchaseOrderItemResponse{
		ID:                   item.ID,
		RefID:                item.RefID,
		RefKind:              item.RefKind.String(),
		VariantID:            item.VariantID,
		Name:                 item.Name,
		Description:          item.Description,
		Unit:                 item.Unit,
		Position:             item.Position,
		Quantity:             item.Quantity,
		UnitPrice:            item.UnitPrice,
		DiscountPerUnit:      item.DiscountPerUnit,
		VatIncluded:          item.VatIncluded,
		ExtraDiscount:        item.ExtraDiscount,
		AmountBeforeDiscount: item.AmountBeforeDiscount,
		AmountDiscount:       item.AmountDiscount,
		AmountBeforeVat:      item.AmountBeforeVat,
		VatAmount:            item.VatAmount,
		AmountAfterVat:       item.AmountAfterVat,
		WithholdingAmount:    item.WithholdingAmount,
		AmountDue:            item.AmountDue,
		CreatedAt:            item.CreatedAt,
		UpdatedAt:            item.UpdatedAt,
	}
	if item.VatRate != nil {
		fraction := item.VatRate.Fraction()
		resp.VatRate = &fraction
	}
	if item.WithholdingRate != nil {
		fraction := item.WithholdingRate.Fraction()
		resp.WithholdingRate = &fraction
	}
	return resp
}

// ToPurchaseOrderResponse converts domain PurchaseOrder to response DTO
func ToPurchaseOrderResponse(order *purchasing.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToPurchaseOrderItemResponse(&order.Items[i])
	}

	actions := make([]PurchaseOrderActionRespone, len(order.Actions))
	for i, action := range order.Actions {
		actions[i] = PurchaseOrderActionRespone{
			ID:        action.ID,
			UserID:    action.UserID,
			Action:    string(action.Action),
			CreatedAt: action.CreatedAt,
		}
	}

	resp := PurchaseOrderResponse{
		ID:                        order.ID,
		TenantID:                  order.TenantID,
		OrderNumber:               order.OrderNumber,
		SupplierID:                order.SupplierID,
		SupplierName:              order.SupplierName,
		Items:                     items,
		ItemCount:                 order.ItemCount(),
		AdditionalDiscountAmount:  order.AdditionalDiscountAmount,
		VatOption:                 order.VatOption.String(),
		DiscountPolicy:            string(order.DiscountPolicy),
		Currency:                  string(order.Currency),
		TotalAmountBeforeDiscount: order.TotalAmountBeforeDiscount,
		TotalAmountBeforeVat:      order.TotalAmountBeforeVat,
		TotalVatAmount:            order.TotalVatAmount,
		TotalAmountAfterVat:       order.TotalAmountAfterVat,
		TotalWithholdingTaxAmount: order.TotalWithholdingTaxAmount,
		TotalAmountDue:            order.TotalAmountDue,
		Status:                    order.Status.String(),
		Remark:                    order.Remark,
		ApprovedAt:                order.ApprovedAt,
		RejectedAt:                order.RejectedAt,
		VoidedAt:                  order.VoidedAt,
		Actions:                   actions,
		CreatedAt:                 order.CreatedAt,
		UpdatedAt:                 order.UpdatedAt,
		Version:                   order.GetVersion(),
	}
	if order.VatRate != nil {
		fraction := order.VatRate.Fraction()
		resp.VatRate = &fraction
	}
	return resp
}

// ToPurchaseOrderListItemResponse converts domain PurchaseOrder to list item DTO
func ToPurchaseOrderListItemResponse(order *purchasing.PurchaseOrder) PurchaseOrderListItemResponse {
	return PurchaseOrderListItemResponse{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		SupplierID:     order.SupplierID,
		SupplierName:   order.SupplierName,
		ItemCount:      order.ItemCount(),
		TotalAmountDue: order.TotalAmountDue,
		Status:         order.Status.String(),
		ApprovedAt:     order.ApprovedAt,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

// ToPurchaseOrderListItemResponses converts a slice of domain orders to list item DTOs
func ToPurchaseOrderListItemResponses(orders []purchasing.PurchaseOrder) []PurchaseOrderListItemResponse {
	responses := make([]PurchaseOrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderListItemResponse(&orders[i])
	}
	return responses
}
