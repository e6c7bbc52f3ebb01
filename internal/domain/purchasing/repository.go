package purchasing

import (
	"context"

	"github.com/google/uuid"

	"github.com/procurio/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a purchase order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForTenant finds a purchase order by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber finds a purchase order by order number for a tenant
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*PurchaseOrder, error)

	// FindAllForTenant finds all purchase orders for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// FindBySupplier finds purchase orders for a supplier
	FindBySupplier(ctx context.Context, tenantID, supplierID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// FindByStatus finds purchase orders by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates a purchase order
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// CountForTenant counts purchase orders for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts purchase orders by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status PurchaseOrderStatus) (int64, error)

	// ExistsByOrderNumber checks if an order number exists for a tenant
	ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error)

	// NextDocumentNumber atomically allocates the next sequence number for a
	// tenant within the given period. Two concurrent allocations never
	// observe the same number, even across process restarts.
	NextDocumentNumber(ctx context.Context, tenantID uuid.UUID, year int, month int) (int, error)
}

// CatalogResolver checks that a referenced catalog entry exists and is
// active. The purchasing context does not own the catalog, so resolution
// goes through this port.
type CatalogResolver interface {
	// Resolve returns true if the reference identifies an active entry
	// of the given kind for the tenant.
	Resolve(ctx context.Context, tenantID, refID uuid.UUID, kind CatalogItemKind) (bool, error)
}
