package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"emote-pack-service/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLiteEntitlementRepository implements EntitlementRepository using SQLite,
// for single-node deployments without a MySQL server.
type SQLiteEntitlementRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteEntitlementRepository opens (and if needed creates) the
// entitlement database at dbPath.
func NewSQLiteEntitlementRepository(dbPath string) (*SQLiteEntitlementRepository, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createEntitlementTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteEntitlementRepository] Initialized with database: %s", dbPath)
	return &SQLiteEntitlementRepository{db: db}, nil
}

func createEntitlementTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS account_emote (
		account_id INTEGER NOT NULL,
		pack_id INTEGER NOT NULL,
		expire_time INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (account_id, pack_id)
	);
	CREATE TABLE IF NOT EXISTS char_emote (
		char_id INTEGER NOT NULL,
		pack_id INTEGER NOT NULL,
		expire_time INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (char_id, pack_id)
	);
	`
	_, err := db.Exec(query)
	return err
}

// UpsertEntitlement inserts or updates one entitlement row.
func (r *SQLiteEntitlementRepository) UpsertEntitlement(ctx context.Context, ownerID uint32, scope model.PackScope, packID uint32, expireAt int64) error {
	table, ownerCol, err := tableFor(scope)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, pack_id, expire_time)
		VALUES (?, ?, ?)
		ON CONFLICT(%s, pack_id) DO UPDATE SET expire_time = excluded.expire_time`,
		table, ownerCol, ownerCol)

	if _, err := r.db.ExecContext(ctx, query, ownerID, packID, expireAt); err != nil {
		return fmt.Errorf("failed to upsert %s entitlement: %w", scope, err)
	}
	return nil
}

// DeleteExpired removes the owner's expired rows for one scope.
func (r *SQLiteEntitlementRepository) DeleteExpired(ctx context.Context, ownerID uint32, scope model.PackScope, before time.Time) (int64, error) {
	table, ownerCol, err := tableFor(scope)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

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
func (r *SQLiteEntitlementRepository) SelectByOwner(ctx context.Context, ownerID uint32, scope model.PackScope) ([]model.EntitlementRow, error) {
	table, ownerCol, err := tableFor(scope)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

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
func (r *SQLiteEntitlementRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteEntitlementRepository implements EntitlementRepository
var _ EntitlementRepository = (*SQLiteEntitlementRepository)(nil)
