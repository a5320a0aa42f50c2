package model

import "time"

// PackScope identifies whether an emote pack binds to a whole account or to
// a single character. The legacy data stored this as a raw small integer;
// it is an explicit tag here and every consumer switches on it exhaustively.
type PackScope uint8

const (
	ScopeAccount PackScope = iota + 1
	ScopeCharacter
)

// String returns the scope name used in the definition source and API.
func (s PackScope) String() string {
	switch s {
	case ScopeAccount:
		return "Account"
	case ScopeCharacter:
		return "Character"
	default:
		return "Unknown"
	}
}

// EmotePackDefinition describes one purchasable emote pack.
// SaleStart/SaleEnd are zero when the corresponding bound is absent.
type EmotePackDefinition struct {
	ID          uint32
	Name        string
	SaleStart   time.Time
	SaleEnd     time.Time
	RentalHours uint32
	KeepInShop  bool
	Scope       PackScope

	// Materials maps item id to purchase amount. Amounts are in [1, max];
	// zero-amount entries are never stored.
	Materials map[uint32]uint16
}

// OnSale reports whether the sale window is open at the given instant.
// Both bounds are inclusive; an absent bound does not constrain.
func (d *EmotePackDefinition) OnSale(now time.Time) bool {
	if !d.SaleStart.IsZero() && now.Before(d.SaleStart) {
		return false
	}
	if !d.SaleEnd.IsZero() && now.After(d.SaleEnd) {
		return false
	}
	return true
}

// Listed reports whether the pack should appear in the shop at the given
// instant. KeepInShop keeps a pack visible after its window closed, but
// never before it opened.
func (d *EmotePackDefinition) Listed(now time.Time) bool {
	if !d.SaleStart.IsZero() && now.Before(d.SaleStart) {
		return false
	}
	if !d.SaleEnd.IsZero() && now.After(d.SaleEnd) {
		return d.KeepInShop
	}
	return true
}

// Clone returns a deep copy, safe to hand out as a read-only view.
func (d *EmotePackDefinition) Clone() *EmotePackDefinition {
	cp := *d
	cp.Materials = make(map[uint32]uint16, len(d.Materials))
	for id, amount := range d.Materials {
		cp.Materials[id] = amount
	}
	return &cp
}

// RawDefinition is one already-parsed record from the definition source.
// Pointer fields distinguish "absent" from a zero value so the registry can
// merge partial records onto prior state.
type RawDefinition struct {
	ID          uint32     `yaml:"Id"`
	Name        *string    `yaml:"Name"`
	Scope       *string    `yaml:"Type"`
	RentalHours *uint32    `yaml:"RentalHours"`
	SaleStart   *string    `yaml:"Starttime"`
	SaleEnd     *string    `yaml:"Endtime"`
	KeepInShop  *bool      `yaml:"KeepInShop"`
	Prices      []RawPrice `yaml:"Prices"`
}

// RawPrice is one material cost line of a raw record.
type RawPrice struct {
	Material string  `yaml:"Material"`
	Amount   *uint16 `yaml:"Amount"`
}
