package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSaleWindow(t *testing.T) {
	start := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

	d := &EmotePackDefinition{SaleStart: start, SaleEnd: end}

	assert.False(t, d.OnSale(start.Add(-time.Second)))
	assert.True(t, d.OnSale(start), "start bound is inclusive")
	assert.True(t, d.OnSale(end), "end bound is inclusive")
	assert.False(t, d.OnSale(end.Add(time.Second)))

	open := &EmotePackDefinition{}
	assert.True(t, open.OnSale(start), "absent bounds never constrain")
}

func TestListedHonorsKeepInShop(t *testing.T) {
	start := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)
	after := end.Add(time.Hour)

	d := &EmotePackDefinition{SaleStart: start, SaleEnd: end}
	assert.False(t, d.Listed(after))

	d.KeepInShop = true
	assert.True(t, d.Listed(after), "keep-in-shop packs stay visible after the window")
	assert.False(t, d.Listed(start.Add(-time.Second)), "but never before it opens")
}

func TestEntitlementExpired(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, EntitlementRecord{ExpireAt: 0}.Expired(now), "zero means non-expiring")
	assert.False(t, EntitlementRecord{ExpireAt: now.Unix()}.Expired(now), "expiry is strict")
	assert.True(t, EntitlementRecord{ExpireAt: now.Add(-time.Second).Unix()}.Expired(now))
}

func TestScopeString(t *testing.T) {
	assert.Equal(t, "Account", ScopeAccount.String())
	assert.Equal(t, "Character", ScopeCharacter.String())
	assert.Equal(t, "Unknown", PackScope(9).String())
}
