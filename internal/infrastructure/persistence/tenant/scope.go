// Package tenant provides GORM scopes for tenant isolation. Every
// tenant-owned table carries a tenant_id column; repositories apply one of
// these scopes so the filter cannot be forgotten on an individual query.
package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantScope restricts a query to rows owned by the given tenant
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}
