package broadcast

import (
	"testing"

	"emote-pack-service/internal/model"
	"emote-pack-service/internal/registry"
	"emote-pack-service/internal/session"
	"emote-pack-service/internal/timer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshShopViewDropsDanglingPackReferences(t *testing.T) {
	sched := timer.NewWallScheduler()
	defer sched.Stop()

	name := "Cool Emotes"
	scope := "Account"
	reg := registry.New(registry.Config{Scheduler: sched})
	require.NoError(t, reg.Upsert(model.RawDefinition{ID: 1, Name: &name, Scope: &scope}))

	sess := &session.Session{ID: "test"}
	sess.SetEntitlements([]model.EntitlementRecord{
		{PackID: 1, Scope: model.ScopeAccount},
		{PackID: 999, Scope: model.ScopeCharacter}, // no such definition
	})

	var pushed []model.EntitlementRecord
	sess.OnShopRefresh = func(records []model.EntitlementRecord) {
		pushed = records
	}

	NewShopPresenter(reg).RefreshShopView(sess)

	require.Len(t, pushed, 1)
	assert.Equal(t, uint32(1), pushed[0].PackID)
}
