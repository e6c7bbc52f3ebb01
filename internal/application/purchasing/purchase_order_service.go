package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procurio/backend/internal/domain/purchasing"
	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/domain/shared/valueobject"
)

// DocumentNumberConfig controls how new order numbers are rendered
type DocumentNumberConfig struct {
	Prefix   string
	Calendar purchasing.CalendarKind
}

// DefaultDocumentNumberConfig returns the standard numbering configuration
func DefaultDocumentNumberConfig() DocumentNumberConfig {
	return DocumentNumberConfig{
		Prefix:   purchasing.DefaultDocumentPrefix,
		Calendar: purchasing.CalendarGregorian,
	}
}

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo      purchasing.PurchaseOrderRepository
	catalog        purchasing.CatalogResolver
	eventPublisher shared.EventPublisher
	numberConfig   DocumentNumberConfig
	discountPolicy purchasing.DiscountPolicy
	now            func() time.Time
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo purchasing.PurchaseOrderRepository, catalog purchasing.CatalogResolver) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:      orderRepo,
		catalog:        catalog,
		numberConfig:   DefaultDocumentNumberConfig(),
		discountPolicy: purchasing.DiscountPolicyPerLine,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDocumentNumberConfig overrides the numbering configuration
func (s *PurchaseOrderService) SetDocumentNumberConfig(cfg DocumentNumberConfig) {
	s.numberConfig = cfg
}

// SetDiscountPolicy overrides the discount distribution policy for new orders
func (s *PurchaseOrderService) SetDiscountPolicy(policy purchasing.DiscountPolicy) {
	s.discountPolicy = policy
}

func toRate(value *decimal.Decimal) (*valueobject.Rate, error) {
	if value == nil {
		return nil, nil
	}
	rate, err := valueobject.NewRate(*value)
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func toItemInput(in CreatePurchaseOrderItemInput) (purchasing.PurchaseOrderItemInput, error) {
	vatRate, err := toRate(in.VatRate)
	if err != nil {
		return purchasing.PurchaseOrderItemInput{}, err
	}
	whtRate, err := toRate(in.WithholdingRate)
	if err != nil {
		return purchasing.PurchaseOrderItemInput{}, err
	}
	return purchasing.PurchaseOrderItemInput{
		RefID:           in.RefID,
		RefKind:         purchasing.CatalogItemKind(in.RefKind),
		VariantID:       in.VariantID,
		Name:            in.Name,
		Description:     in.Description,
		Unit:            in.Unit,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		DiscountPerUnit: in.DiscountPerUnit,
		VatRate:         vatRate,
		WithholdingRate: whtRate,
		VatIncluded:     in.VatIncluded,
	}, nil
}

// resolveCatalogRefs checks every referenced catalog entry before any
// order state is created
func (s *PurchaseOrderService) resolveCatalogRefs(ctx context.Context, tenantID uuid.UUID, items []CreatePurchaseOrderItemInput) error {
	for _, item := range items {
		found, err := s.catalog.Resolve(ctx, tenantID, item.RefID, purchasing.CatalogItemKind(item.RefKind))
		if err != nil {
			return err
		}
		if !found {
			return shared.NewDomainError("CATALOG_ITEM_NOT_FOUND", "Referenced catalog item does not exist")
		}
	}
	return nil
}

// allocateOrderNumber allocates the next sequence slot and renders it
func (s *PurchaseOrderService) allocateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	now := s.now()
	seq, err := s.orderRepo.NextDocumentNumber(ctx, tenantID, now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}
	return purchasing.FormatDocumentNumber(s.numberConfig.Prefix, now.Year(), now.Month(), seq, s.numberConfig.Calendar)
}

// Create creates a new purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one item")
	}

	if err := s.resolveCatalogRefs(ctx, tenantID, req.Items); err != nil {
		return nil, err
	}

	orderNumber, err := s.allocateOrderNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	vatRate, err := toRate(req.VatRate)
	if err != nil {
		return nil, err
	}

	createdBy := uuid.Nil
	if req.CreatedBy != nil {
		createdBy = *req.CreatedBy
	}

	order, err := purchasing.NewPurchaseOrder(tenantID, orderNumber, req.SupplierID, req.SupplierName,
		purchasing.VatOption(req.VatOption), vatRate, s.discountPolicy, createdBy)
	if err != nil {
		return nil, err
	}

	inputs := make([]purchasing.PurchaseOrderItemInput, len(req.Items))
	for i, item := range req.Items {
		input, err := toItemInput(item)
		if err != nil {
			return nil, err
		}
		inputs[i] = input
	}
	if err := order.ReplaceItems(inputs); err != nil {
		return nil, err
	}

	if req.AdditionalDiscount != nil {
		if err := order.SetAdditionalDiscount(*req.AdditionalDiscount); err != nil {
			return nil, err
		}
	}
	if req.Remark != "" {
		order.SetRemark(req.Remark)
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves a purchase order by order number
func (s *PurchaseOrderService) GetByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, tenantID, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a list of purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, tenantID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPurchaseOrderListItemResponses(orders), total, nil
}

// ListBySupplier retrieves purchase orders for a specific supplier
func (s *PurchaseOrderService) ListBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	filter.SupplierID = &supplierID
	return s.List(ctx, tenantID, filter)
}

// ListByStatus retrieves purchase orders by status
func (s *PurchaseOrderService) ListByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.PurchaseOrderStatus, filter PurchaseOrderListFilter) ([]PurchaseOrderListItemResponse, int64, error) {
	filter.Status = &status
	return s.List(ctx, tenantID, filter)
}

// Update updates a purchase order (only allowed while pending)
func (s *PurchaseOrderService) Update(ctx context.Context, tenantID, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Order can only be modified while pending")
	}

	if req.Items != nil {
		if err := s.resolveCatalogRefs(ctx, tenantID, req.Items); err != nil {
			return nil, err
		}
		inputs := make([]purchasing.PurchaseOrderItemInput, len(req.Items))
		for i, item := range req.Items {
			input, err := toItemInput(item)
			if err != nil {
				return nil, err
			}
			inputs[i] = input
		}
		if err := order.ReplaceItems(inputs); err != nil {
			return nil, err
		}
	}

	if req.VatOption != nil {
		vatRate, err := toRate(req.VatRate)
		if err != nil {
			return nil, err
		}
		if err := order.SetVatOption(purchasing.VatOption(*req.VatOption), vatRate); err != nil {
			return nil, err
		}
	}

	if req.AdditionalDiscount != nil {
		if err := order.SetAdditionalDiscount(*req.AdditionalDiscount); err != nil {
			return nil, err
		}
	}

	if req.Remark != nil {
		order.SetRemark(*req.Remark)
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Approve approves a pending purchase order
func (s *PurchaseOrderService) Approve(ctx context.Context, tenantID, orderID, userID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, userID, purchasing.PurchaseOrderStatusApproved)
}

// Reject rejects a pending purchase order
func (s *PurchaseOrderService) Reject(ctx context.Context, tenantID, orderID, userID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, userID, purchasing.PurchaseOrderStatusRejected)
}

// Void voids a pending or approved purchase order
func (s *PurchaseOrderService) Void(ctx context.Context, tenantID, orderID, userID uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, userID, purchasing.PurchaseOrderStatusVoided)
}

func (s *PurchaseOrderService) transition(ctx context.Context, tenantID, orderID, userID uuid.UUID, target purchasing.PurchaseOrderStatus) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionTo(target, userID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Reorder permutes the order's line items to the requested sequence
func (s *PurchaseOrderService) Reorder(ctx context.Context, tenantID, orderID, userID uuid.UUID, req ReorderItemsRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Reorder(req.ItemIDs, userID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetStatusSummary retrieves order count summary by status for a tenant
func (s *PurchaseOrderService) GetStatusSummary(ctx context.Context, tenantID uuid.UUID) (*PurchaseOrderStatusSummary, error) {
	pending, err := s.orderRepo.CountByStatus(ctx, tenantID, purchasing.PurchaseOrderStatusPending)
	if err != nil {
		return nil, err
	}

	approved, err := s.orderRepo.CountByStatus(ctx, tenantID, purchasing.PurchaseOrderStatusApproved)
	if err != nil {
		return nil, err
	}

	rejected, err := s.orderRepo.CountByStatus(ctx, tenantID, purchasing.PurchaseOrderStatusRejected)
	if err != nil {
		return nil, err
	}

	voided, err := s.orderRepo.CountByStatus(ctx, tenantID, purchasing.PurchaseOrderStatusVoided)
	if err != nil {
		return nil, err
	}

	return &PurchaseOrderStatusSummary{
		Pending:  pending,
		Approved: approved,
		Rejected: rejected,
		Voided:   voided,
		Total:    pending + approved + rejected + voided,
	}, nil
}

// publishEvents drains the aggregate's events to the publisher, if any.
// Publication is best-effort; persistence has already succeeded.
func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *purchasing.PurchaseOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	order.ClearDomainEvents()
	_ = s.eventPublisher.Publish(ctx, events...)
}
