package session

import (
	"testing"

	"emote-pack-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachDetach(t *testing.T) {
	m := NewManager()

	s := m.Attach(2000001, 150001)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, s, m.Get(s.ID))
	assert.Equal(t, 1, m.Count())

	assert.Equal(t, s, m.Detach(s.ID))
	assert.Nil(t, m.Get(s.ID))
	assert.Equal(t, 0, m.Count())

	assert.Nil(t, m.Detach(s.ID), "second detach finds nothing")
}

func TestBroadcastActivationReachesEverySession(t *testing.T) {
	m := NewManager()

	var got []string
	for _, name := range []string{"a", "b"} {
		name := name
		s := m.Attach(1, 1)
		s.OnActivation = func(packID uint32) {
			got = append(got, name)
			assert.Equal(t, uint32(42), packID)
		}
	}
	// A session without a transport callback must not break the fan-out.
	m.Attach(2, 2)

	m.BroadcastActivation(42)

	assert.ElementsMatch(t, []string{"a", "b"}, got)
}

func TestEntitlementsReturnsCopy(t *testing.T) {
	s := &Session{ID: "test"}
	s.SetEntitlements([]model.EntitlementRecord{{PackID: 1, Scope: model.ScopeAccount}})

	view := s.Entitlements()
	view[0].PackID = 99

	assert.Equal(t, uint32(1), s.Entitlements()[0].PackID)
}
