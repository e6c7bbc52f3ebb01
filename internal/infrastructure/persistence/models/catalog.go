package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/procurio/backend/internal/domain/purchasing"
)

// CatalogEntryModel is a read-side reference table for catalog entries the
// purchasing context may reference. The catalog itself is owned elsewhere;
// this table only answers "does this ref exist and is it active".
type CatalogEntryModel struct {
	ID        uuid.UUID                  `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID                  `gorm:"type:uuid;not null;index"`
	Kind      purchasing.CatalogItemKind `gorm:"type:varchar(20);not null"`
	Name      string                     `gorm:"type:varchar(200);not null"`
	Active    bool                       `gorm:"not null;default:true"`
	CreatedAt time.Time                  `gorm:"not null"`
	UpdatedAt time.Time                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CatalogEntryModel) TableName() string {
	return "catalog_entries"
}
