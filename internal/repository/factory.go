package repository

import (
	"fmt"

	"catalog-service/internal/catalog"

	"gorm.io/gorm"
)

// NewStore builds the store selected by kind. db is only used by "postgres".
func NewStore(kind string, db *gorm.DB) (catalog.Store, error) {
	switch kind {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres store requires a database connection")
		}
		return NewPostgresStore(db), nil
	case "memory":
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store kind %q", kind)
}
