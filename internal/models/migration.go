package models

import (
	"time"
)

// SchemaMigration is one row of the applied-migrations record: proof that a
// ledger entry has been executed against this database. Version is unique,
// so an entry can be recorded at most once. Checksum is the SHA-256 of the
// script as it was when applied; the runner refuses to proceed if the ledger
// copy no longer matches.
type SchemaMigration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Version   string    `gorm:"uniqueIndex;not null" json:"version"`
	Name      string    `gorm:"not null" json:"name"`
	Checksum  string    `gorm:"not null" json:"checksum"`
	AppliedAt time.Time `json:"applied_at"`
}

// TableName ensures consistent table naming
func (SchemaMigration) TableName() string {
	return "schema_migrations"
}
