package service

import (
	"context"
	"log"
	"time"

	"emote-pack-service/internal/model"
	"emote-pack-service/internal/repository"
	"emote-pack-service/internal/session"
)

// ShopPresenter rebuilds a player's view of purchasable packs after their
// entitlements change.
type ShopPresenter interface {
	RefreshShopView(s *session.Session)
}

// EntitlementService owns the load/save lifecycle of per-player emote pack
// entitlements. For a single player the caller must not run Load and Save
// concurrently; across players the operations are independent.
type EntitlementService struct {
	repo      repository.EntitlementRepository
	presenter ShopPresenter
	now       func() time.Time
}

// NewEntitlementService creates the service. presenter may be nil.
// Returns nil if repo is nil (required dependency).
func NewEntitlementService(repo repository.EntitlementRepository, presenter ShopPresenter) *EntitlementService {
	if repo == nil {
		return nil
	}
	return &EntitlementService{
		repo:      repo,
		presenter: presenter,
		now:       time.Now,
	}
}

// SetNow overrides the clock. Test hook.
func (s *EntitlementService) SetNow(now func() time.Time) {
	s.now = now
}

// Load sweeps the player's expired rows from storage, fetches both scopes,
// caches the result on the session and refreshes the shop view. The cached
// list is cleared up front, so a failed fetch leaves the session empty
// rather than partially populated.
func (s *EntitlementService) Load(ctx context.Context, sess *session.Session) ([]model.EntitlementRecord, error) {
	sess.SetEntitlements(nil)

	now := s.now()

	// Sweep failures are logged and the load continues; the in-memory
	// filter below still upholds the no-expired-records invariant.
	if _, err := s.repo.DeleteExpired(ctx, sess.CharID, model.ScopeCharacter, now); err != nil {
		log.Printf("[EntitlementService] expiry sweep (char %d) failed: %v", sess.CharID, err)
	}
	if _, err := s.repo.DeleteExpired(ctx, sess.AccountID, model.ScopeAccount, now); err != nil {
		log.Printf("[EntitlementService] expiry sweep (account %d) failed: %v", sess.AccountID, err)
	}

	var records []model.EntitlementRecord

	charRows, err := s.repo.SelectByOwner(ctx, sess.CharID, model.ScopeCharacter)
	if err != nil {
		log.Printf("[EntitlementService] load (char %d) failed: %v", sess.CharID, err)
		return nil, err
	}
	records = appendRows(records, charRows, model.ScopeCharacter, now)

	accountRows, err := s.repo.SelectByOwner(ctx, sess.AccountID, model.ScopeAccount)
	if err != nil {
		log.Printf("[EntitlementService] load (account %d) failed: %v", sess.AccountID, err)
		return nil, err
	}
	records = appendRows(records, accountRows, model.ScopeAccount, now)

	sess.SetEntitlements(records)

	if s.presenter != nil {
		s.presenter.RefreshShopView(sess)
	}
	return records, nil
}

func appendRows(records []model.EntitlementRecord, rows []model.EntitlementRow, scope model.PackScope, now time.Time) []model.EntitlementRecord {
	for _, row := range rows {
		rec := model.EntitlementRecord{PackID: row.PackID, Scope: scope, ExpireAt: row.ExpireAt}
		if rec.Expired(now) {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Save upserts every record that is still live. Records already expired are
// silently skipped; deleting them is the load sweep's job, which keeps the
// two operations independently idempotent. Row failures are logged and the
// rest of the batch continues.
func (s *EntitlementService) Save(ctx context.Context, sess *session.Session) error {
	now := s.now()

	var firstErr error
	for _, rec := range sess.Entitlements() {
		if rec.Expired(now) {
			continue
		}

		ownerID := sess.AccountID
		switch rec.Scope {
		case model.ScopeAccount:
			ownerID = sess.AccountID
		case model.ScopeCharacter:
			ownerID = sess.CharID
		default:
			log.Printf("[EntitlementService] pack %d: unknown scope %d, skipping", rec.PackID, rec.Scope)
			continue
		}

		if err := s.repo.UpsertEntitlement(ctx, ownerID, rec.Scope, rec.PackID, rec.ExpireAt); err != nil {
			log.Printf("[EntitlementService] save pack %d (%s, owner %d) failed: %v", rec.PackID, rec.Scope, ownerID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
