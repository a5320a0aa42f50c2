package session

import (
	"log"
	"sync"

	"emote-pack-service/internal/model"
	"emote-pack-service/pkg/uid"
)

// Session is one player's live connection state. The entitlement list cached
// here is owned exclusively by this session between load and save; no other
// session reads or mutates it.
type Session struct {
	ID        string
	AccountID uint32
	CharID    uint32

	// OnActivation, when set by the transport layer, is invoked for every
	// pack that goes on sale while the session is attached.
	OnActivation func(packID uint32)

	// OnShopRefresh, when set, receives the session's visible entitlement
	// list whenever the shop view is rebuilt.
	OnShopRefresh func(records []model.EntitlementRecord)

	mu           sync.RWMutex
	entitlements []model.EntitlementRecord
}

// SetEntitlements replaces the cached entitlement list.
func (s *Session) SetEntitlements(records []model.EntitlementRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entitlements = records
}

// Entitlements returns a copy of the cached entitlement list.
func (s *Session) Entitlements() []model.EntitlementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.EntitlementRecord, len(s.entitlements))
	copy(out, s.entitlements)
	return out
}

// NotifyActivation forwards a sale activation to the transport callback.
func (s *Session) NotifyActivation(packID uint32) {
	if s.OnActivation != nil {
		s.OnActivation(packID)
	}
}

// PushShopView forwards a rebuilt shop view to the transport callback.
func (s *Session) PushShopView(records []model.EntitlementRecord) {
	if s.OnShopRefresh != nil {
		s.OnShopRefresh(records)
	}
}

// Manager holds every attached session, keyed by session id. It is the
// local fan-out target for sale activation broadcasts.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Attach creates and registers a session for the given player.
func (m *Manager) Attach(accountID, charID uint32) *Session {
	s := &Session{
		ID:        uid.New(),
		AccountID: accountID,
		CharID:    charID,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("[SessionManager] attached session %s (account %d, char %d)", s.ID, accountID, charID)
	return s
}

// Get returns the session with the given id, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Detach removes a session. It returns the removed session, or nil if the
// id was unknown.
func (m *Manager) Detach(id string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		log.Printf("[SessionManager] detached session %s", id)
	}
	return s
}

// ForEach calls fn for every attached session.
func (m *Manager) ForEach(fn func(*Session)) {
	m.mu.RLock()
	snapshot := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshot = append(snapshot, s)
	}
	m.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

// Count returns the number of attached sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// BroadcastActivation notifies every attached session that a pack has gone
// on sale. Satisfies the registry's ActivationNotifier collaborator.
func (m *Manager) BroadcastActivation(packID uint32) {
	m.ForEach(func(s *Session) {
		s.NotifyActivation(packID)
	})
}
