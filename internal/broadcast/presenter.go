package broadcast

import (
	"emote-pack-service/internal/model"
	"emote-pack-service/internal/registry"
	"emote-pack-service/internal/session"
)

// ShopPresenter pushes a player's entitlement view to their session after a
// load. Entitlements whose pack id no longer resolves to a definition are
// dropped from the view; dangling references are tolerated, not errors.
type ShopPresenter struct {
	registry *registry.Registry
}

// NewShopPresenter creates the presenter.
func NewShopPresenter(reg *registry.Registry) *ShopPresenter {
	return &ShopPresenter{registry: reg}
}

// RefreshShopView rebuilds and pushes the session's visible entitlements.
func (p *ShopPresenter) RefreshShopView(s *session.Session) {
	var visible []model.EntitlementRecord
	for _, rec := range s.Entitlements() {
		if p.registry.Find(rec.PackID) == nil {
			continue
		}
		visible = append(visible, rec)
	}
	s.PushShopView(visible)
}
