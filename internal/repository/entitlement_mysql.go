package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"emote-pack-service/internal/model"
)

// MySQLEntitlementRepository implements EntitlementRepository using MySQL.
// Account and character entitlements live in separate tables, each keyed by
// (owner, pack_id).
type MySQLEntitlementRepository struct {
	db *sql.DB
}

// NewMySQLEntitlementRepository creates a new MySQL entitlement repository.
func NewMySQLEntitlementRepository(db *sql.DB) *MySQLEntitlementRepository {
	return &MySQLEntitlementRepository{db: db}
}

// tableFor maps a scope to its table and owner column.
func tableFor(scope model.PackScope) (table, ownerCol string, err error) {
	switch scope {
	case model.ScopeAccount:
		return "account_emote", "account_id", nil
	case model.ScopeCharacter:
		return "char_emote", "char_id", nil
	default:
		return "", "", fmt.Errorf("unknown pack scope %d", scope)
	}
}

// UpsertEntitlement inserts or updates one entitlement row.
func (r *MySQLEntitlementRepository) UpsertEntitlement(ctx context.Context, ownerID uint32, scope model.PackScope, packID uint32, expireAt int64) error {
	table, ownerCol, err := tableFor(scope)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, pack_id, expire_time)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE expire_time = VALUES(expire_time)`,
		table, ownerCol)

	if _, err := r.db.ExecContext(ctx, query, ownerID, packID, expireAt); err != nil {
		return fmt.Errorf("failed to upsert %s entitlement: %w", scope, err)
	}
	return nil
}

// DeleteExpired removes the owner's expired rows for one scope.
func (r *MySQLEntitlementRepository) DeleteExpired(ctx context.Context, ownerID uint32, scope model.PackScope, before time.Time) (int64, error) {
	table, ownerCol, err := tableFor(scope)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		"DELETE FROM %s WHERE %s = ? AND expire_time > 0 AND expire_time < ?",
		table, ownerCol)

	result, err := r.db.ExecContext(ctx, query, ownerID, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired %s entitlements: %w", scope, err)
	}
	return result.RowsAffected()
}

// SelectByOwner fetches the owner's rows for one scope.
func (r *MySQLEntitlementRepository) SelectByOwner(ctx context.Context, ownerID uint32, scope model.PackScope) ([]model.EntitlementRow, error) {
	table, ownerCol, err := tableFor(scope)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT pack_id, expire_time FROM %s WHERE %s = ?", table, ownerCol)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select %s entitlements: %w", scope, err)
	}
	defer rows.Close()

	var out []model.EntitlementRow
	for rows.Next() {
		var row model.EntitlementRow
		if err := rows.Scan(&row.PackID, &row.ExpireAt); err != nil {
			return nil, fmt.Errorf("failed to scan entitlement row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entitlement rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (r *MySQLEntitlementRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLEntitlementRepository implements EntitlementRepository
var _ EntitlementRepository = (*MySQLEntitlementRepository)(nil)
