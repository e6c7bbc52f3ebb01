package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/procurio/backend/internal/domain/purchasing"
	"github.com/procurio/backend/internal/domain/shared"
	"github.com/procurio/backend/internal/infrastructure/persistence/models"
	"github.com/procurio/backend/internal/infrastructure/persistence/tenant"
)

// GormPurchaseOrderRepository implements purchasing.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := preloadOrder(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a purchase order by ID within a tenant
func (r *GormPurchaseOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*purchasing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := preloadOrder(r.db.WithContext(ctx)).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds a purchase order by order number for a tenant
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*purchasing.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := preloadOrder(r.db.WithContext(ctx)).
		Scopes(tenant.TenantScope(tenantID)).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all purchase orders for a tenant with filtering
func (r *GormPurchaseOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Scopes(tenant.TenantScope(tenantID))
	query = r.applyFilter(query, filter)
	return r.findOrders(query)
}

// FindBySupplier finds purchase orders for a supplier
func (r *GormPurchaseOrderRepository) FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("supplier_id = ?", supplierID)
	query = r.applyFilter(query, filter)
	return r.findOrders(query)
}

// FindByStatus finds purchase orders by status for a tenant
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.PurchaseOrderStatus, filter shared.Filter) ([]purchasing.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status = ?", status)
	query = r.applyFilter(query, filter)
	return r.findOrders(query)
}

func (r *GormPurchaseOrderRepository) findOrders(query *gorm.DB) ([]purchasing.PurchaseOrder, error) {
	var orderModels []models.PurchaseOrderModel
	if err := preloadOrder(query).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]purchasing.PurchaseOrder, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders, nil
}

// Save creates or updates a purchase order
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *purchasing.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(order)

		if err := tx.Omit("Items", "Actions").Save(model).Error; err != nil {
			return err
		}

		if err := r.saveItems(tx, order); err != nil {
			return err
		}
		return r.appendActions(tx, order)
	})
}

// SaveWithLock saves with optimistic locking (version check). The aggregate's
// version is only advanced once the transaction has committed, so a failed
// save leaves the in-memory order in step with the store.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *purchasing.PurchaseOrder) error {
	newVersion := order.Version + 1
	updatedAt := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ?", order.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != order.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		result := tx.Model(&models.PurchaseOrderModel{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"supplier_id":                  order.SupplierID,
				"supplier_name":                order.SupplierName,
				"additional_discount_amount":   order.AdditionalDiscountAmount,
				"vat_option":                   order.VatOption,
				"vat_rate":                     order.VatRate,
				"discount_policy":              order.DiscountPolicy,
				"currency":                     order.Currency,
				"total_amount_before_discount": order.TotalAmountBeforeDiscount,
				"total_amount_before_vat":      order.TotalAmountBeforeVat,
				"total_vat_amount":             order.TotalVatAmount,
				"total_amount_after_vat":       order.TotalAmountAfterVat,
				"total_withholding_tax_amount": order.TotalWithholdingTaxAmount,
				"total_amount_due":             order.TotalAmountDue,
				"status":                       order.Status,
				"remark":                       order.Remark,
				"approved_at":                  order.ApprovedAt,
				"rejected_at":                  order.RejectedAt,
				"voided_at":                    order.VoidedAt,
				"version":                      newVersion,
				"updated_at":                   updatedAt,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		if err := r.saveItems(tx, order); err != nil {
			return err
		}
		return r.appendActions(tx, order)
	})
	if err != nil {
		return err
	}

	order.Version = newVersion
	order.UpdatedAt = updatedAt
	return nil
}

// saveItems reconciles the items table with the aggregate's current item set:
// rows not in the set are deleted, the rest are upserted.
func (r *GormPurchaseOrderRepository) saveItems(tx *gorm.DB, order *purchasing.PurchaseOrder) error {
	if order.ID == uuid.Nil {
		return nil
	}

	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		itemModel := models.PurchaseOrderItemModelFromDomain(&order.Items[i])
		if err := tx.Save(itemModel).Error; err != nil {
			return err
		}
	}
	return nil
}

// appendActions inserts new action log rows. The log is append-only, so
// existing rows are never touched.
func (r *GormPurchaseOrderRepository) appendActions(tx *gorm.DB, order *purchasing.PurchaseOrder) error {
	for i := range order.Actions {
		order.Actions[i].OrderID = order.ID
		actionModel := models.PurchaseOrderActionModelFromDomain(&order.Actions[i])
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(actionModel).Error; err != nil {
			return err
		}
	}
	return nil
}

// CountForTenant counts purchase orders for a tenant with optional filters
func (r *GormPurchaseOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Scopes(tenant.TenantScope(tenantID))
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts purchase orders by status for a tenant
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status purchasing.PurchaseOrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number exists for a tenant
func (r *GormPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextDocumentNumber atomically allocates the next sequence number for a
// tenant within a year/month period. The upsert advances the counter and
// returns the new value in one statement, so concurrent callers each get a
// distinct number.
func (r *GormPurchaseOrderRepository) NextDocumentNumber(ctx context.Context, tenantID uuid.UUID, year int, month int) (int, error) {
	var value int
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO document_counters (tenant_id, year, month, value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (tenant_id, year, month)
		DO UPDATE SET value = document_counters.value + 1
		RETURNING value`,
		tenantID, year, month).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

// applyFilter applies filter options to the query
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Sort fields come from user input, so validate against a whitelist
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, PurchaseOrderSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR supplier_name ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "vat_option":
			query = query.Where("vat_option = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		case "min_amount":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("total_amount_due >= ?", d)
			}
		case "max_amount":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("total_amount_due <= ?", d)
			}
		}
	}

	return query
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ purchasing.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
