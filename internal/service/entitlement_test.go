package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"emote-pack-service/internal/model"
	"emote-pack-service/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ownerKey struct {
	owner uint32
	scope model.PackScope
}

// mockEntitlementRepo implements EntitlementRepository over in-memory maps.
type mockEntitlementRepo struct {
	rows map[ownerKey]map[uint32]int64 // packID -> expireAt

	upsertErr error
	deleteErr error
	selectErr error

	upsertCalls int
}

func newMockEntitlementRepo() *mockEntitlementRepo {
	return &mockEntitlementRepo{rows: make(map[ownerKey]map[uint32]int64)}
}

func (m *mockEntitlementRepo) seed(owner uint32, scope model.PackScope, packID uint32, expireAt int64) {
	key := ownerKey{owner, scope}
	if m.rows[key] == nil {
		m.rows[key] = make(map[uint32]int64)
	}
	m.rows[key][packID] = expireAt
}

func (m *mockEntitlementRepo) UpsertEntitlement(_ context.Context, ownerID uint32, scope model.PackScope, packID uint32, expireAt int64) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upsertCalls++
	m.seed(ownerID, scope, packID, expireAt)
	return nil
}

func (m *mockEntitlementRepo) DeleteExpired(_ context.Context, ownerID uint32, scope model.PackScope, before time.Time) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var deleted int64
	for packID, expireAt := range m.rows[ownerKey{ownerID, scope}] {
		if expireAt != 0 && expireAt < before.Unix() {
			delete(m.rows[ownerKey{ownerID, scope}], packID)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockEntitlementRepo) SelectByOwner(_ context.Context, ownerID uint32, scope model.PackScope) ([]model.EntitlementRow, error) {
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	var out []model.EntitlementRow
	for packID, expireAt := range m.rows[ownerKey{ownerID, scope}] {
		out = append(out, model.EntitlementRow{PackID: packID, ExpireAt: expireAt})
	}
	return out, nil
}

func (m *mockEntitlementRepo) Close() error { return nil }

type mockPresenter struct {
	refreshed []*session.Session
}

func (m *mockPresenter) RefreshShopView(s *session.Session) {
	m.refreshed = append(m.refreshed, s)
}

func testSession() *session.Session {
	return &session.Session{ID: "test", AccountID: 2000001, CharID: 150001}
}

func newTestService(repo *mockEntitlementRepo, presenter ShopPresenter, now time.Time) *EntitlementService {
	svc := NewEntitlementService(repo, presenter)
	svc.SetNow(func() time.Time { return now })
	return svc
}

func TestLoadPrunesExpiredAndTagsScopes(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockEntitlementRepo()
	presenter := &mockPresenter{}
	sess := testSession()

	repo.seed(sess.CharID, model.ScopeCharacter, 10, now.Add(-time.Hour).Unix()) // expired
	repo.seed(sess.CharID, model.ScopeCharacter, 11, now.Add(time.Hour).Unix())
	repo.seed(sess.AccountID, model.ScopeAccount, 12, 0) // permanent

	svc := newTestService(repo, presenter, now)
	records, err := svc.Load(context.Background(), sess)
	require.NoError(t, err)

	assert.ElementsMatch(t, []model.EntitlementRecord{
		{PackID: 11, Scope: model.ScopeCharacter, ExpireAt: now.Add(time.Hour).Unix()},
		{PackID: 12, Scope: model.ScopeAccount, ExpireAt: 0},
	}, records)
	assert.ElementsMatch(t, records, sess.Entitlements())

	// The expired row is gone from storage, not just filtered.
	rows, err := repo.SelectByOwner(context.Background(), sess.CharID, model.ScopeCharacter)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	assert.Len(t, presenter.refreshed, 1)
}

func TestLoadIsIdempotent(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockEntitlementRepo()
	sess := testSession()
	repo.seed(sess.AccountID, model.ScopeAccount, 12, 0)

	svc := newTestService(repo, &mockPresenter{}, now)

	first, err := svc.Load(context.Background(), sess)
	require.NoError(t, err)
	second, err := svc.Load(context.Background(), sess)
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
	assert.Len(t, sess.Entitlements(), 1)
}

func TestLoadFailureLeavesListEmpty(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockEntitlementRepo()
	sess := testSession()
	sess.SetEntitlements([]model.EntitlementRecord{{PackID: 99, Scope: model.ScopeAccount}})

	repo.selectErr = errors.New("connection lost")
	svc := newTestService(repo, &mockPresenter{}, now)

	_, err := svc.Load(context.Background(), sess)
	require.Error(t, err)
	assert.Empty(t, sess.Entitlements(), "never partially populated")
}

func TestLoadContinuesWhenSweepFails(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockEntitlementRepo()
	sess := testSession()
	repo.seed(sess.CharID, model.ScopeCharacter, 10, now.Add(-time.Hour).Unix()) // expired
	repo.seed(sess.CharID, model.ScopeCharacter, 11, 0)
	repo.deleteErr = errors.New("lock timeout")

	svc := newTestService(repo, &mockPresenter{}, now)
	records, err := svc.Load(context.Background(), sess)
	require.NoError(t, err)

	// The sweep failed, so the expired row is filtered in memory instead.
	assert.ElementsMatch(t, []model.EntitlementRecord{
		{PackID: 11, Scope: model.ScopeCharacter, ExpireAt: 0},
	}, records)
}

func TestSaveSkipsExpiredRecords(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockEntitlementRepo()
	sess := testSession()
	sess.SetEntitlements([]model.EntitlementRecord{
		{PackID: 10, Scope: model.ScopeCharacter, ExpireAt: now.Add(-time.Minute).Unix()},
	})

	svc := newTestService(repo, nil, now)
	require.NoError(t, svc.Save(context.Background(), sess))

	assert.Zero(t, repo.upsertCalls, "expired records create or update nothing")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockEntitlementRepo()
	sess := testSession()

	want := []model.EntitlementRecord{
		{PackID: 10, Scope: model.ScopeCharacter, ExpireAt: now.Add(24 * time.Hour).Unix()},
		{PackID: 11, Scope: model.ScopeAccount, ExpireAt: 0},
		{PackID: 12, Scope: model.ScopeAccount, ExpireAt: now.Add(time.Hour).Unix()},
	}
	sess.SetEntitlements(want)

	svc := newTestService(repo, nil, now)
	require.NoError(t, svc.Save(context.Background(), sess))

	reloaded := testSession()
	records, err := svc.Load(context.Background(), reloaded)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, records)
}

func TestSaveReportsStorageError(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockEntitlementRepo()
	repo.upsertErr = errors.New("server gone")
	sess := testSession()
	sess.SetEntitlements([]model.EntitlementRecord{
		{PackID: 10, Scope: model.ScopeAccount, ExpireAt: 0},
	})

	svc := newTestService(repo, nil, now)
	err := svc.Save(context.Background(), sess)
	require.Error(t, err)

	// Cached state survives a failed save.
	assert.Len(t, sess.Entitlements(), 1)
}
