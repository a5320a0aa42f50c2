package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// MySQLItemRepository loads the material-name index from the game's item
// table.
type MySQLItemRepository struct {
	db *sql.DB
}

// NewMySQLItemRepository creates a new MySQL item repository.
func NewMySQLItemRepository(db *sql.DB) *MySQLItemRepository {
	return &MySQLItemRepository{db: db}
}

// LoadNameIndex returns every item's lookup name mapped to its id.
// Duplicate names keep the first id seen and are logged.
func (r *MySQLItemRepository) LoadNameIndex(ctx context.Context) (map[string]uint32, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name_aegis FROM item_db")
	if err != nil {
		return nil, fmt.Errorf("failed to load item names: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]uint32)
	for rows.Next() {
		var id uint32
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		if prev, ok := byName[name]; ok {
			log.Printf("[MySQLItemRepository] duplicate item name %q (ids %d, %d), keeping first", name, prev, id)
			continue
		}
		byName[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read item rows: %w", err)
	}
	return byName, nil
}

// Ensure MySQLItemRepository implements ItemRepository
var _ ItemRepository = (*MySQLItemRepository)(nil)
