package repository

import (
	"context"
	"time"

	"emote-pack-service/internal/model"
)

// EntitlementRepository defines durable storage for per-player emote pack
// entitlements. Rows are keyed by (owner, pack) within a scope's table;
// expire_time is the only mutable column and zero means non-expiring.
type EntitlementRepository interface {
	// UpsertEntitlement inserts or updates one entitlement row.
	UpsertEntitlement(ctx context.Context, ownerID uint32, scope model.PackScope, packID uint32, expireAt int64) error

	// DeleteExpired removes the owner's rows whose expiry is non-zero and
	// strictly before the given instant. It returns the rows removed.
	DeleteExpired(ctx context.Context, ownerID uint32, scope model.PackScope, before time.Time) (int64, error)

	// SelectByOwner fetches the owner's rows for one scope.
	SelectByOwner(ctx context.Context, ownerID uint32, scope model.PackScope) ([]model.EntitlementRow, error)

	// Close closes the repository connection.
	Close() error
}

// ItemRepository supplies the material-name index.
type ItemRepository interface {
	// LoadNameIndex returns every item's lookup name mapped to its id.
	LoadNameIndex(ctx context.Context) (map[string]uint32, error)
}
