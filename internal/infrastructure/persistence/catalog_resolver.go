package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procurio/backend/internal/domain/purchasing"
	"github.com/procurio/backend/internal/infrastructure/persistence/models"
	"github.com/procurio/backend/internal/infrastructure/persistence/tenant"
)

// GormCatalogResolver implements purchasing.CatalogResolver against the
// catalog_entries reference table.
type GormCatalogResolver struct {
	db *gorm.DB
}

// NewGormCatalogResolver creates a new GormCatalogResolver
func NewGormCatalogResolver(db *gorm.DB) *GormCatalogResolver {
	return &GormCatalogResolver{db: db}
}

// Resolve returns true if the reference identifies an active catalog entry
// of the given kind for the tenant.
func (r *GormCatalogResolver) Resolve(ctx context.Context, tenantID, refID uuid.UUID, kind purchasing.CatalogItemKind) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CatalogEntryModel{}).
		Scopes(tenant.TenantScope(tenantID)).
		Where("id = ? AND kind = ? AND active = ?", refID, kind, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormCatalogResolver implements CatalogResolver
var _ purchasing.CatalogResolver = (*GormCatalogResolver)(nil)
