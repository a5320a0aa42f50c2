package itemdb

import (
	"context"
	"log"

	"emote-pack-service/internal/repository"
)

// Index is a read-only material-name to item-id lookup, built once at
// startup. It satisfies the registry's ItemLookup collaborator.
type Index struct {
	byName map[string]uint32
}

// NewIndex wraps an existing name map.
func NewIndex(byName map[string]uint32) *Index {
	if byName == nil {
		byName = make(map[string]uint32)
	}
	return &Index{byName: byName}
}

// Load builds the index from the item repository. A nil repository yields an
// empty index: every lookup will miss and cost lines will be skipped, which
// is the degraded-but-running mode for a missing item database.
func Load(ctx context.Context, repo repository.ItemRepository) (*Index, error) {
	if repo == nil {
		log.Printf("[ItemIndex] no item repository configured, material lookups will miss")
		return NewIndex(nil), nil
	}

	byName, err := repo.LoadNameIndex(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[ItemIndex] loaded %d item names", len(byName))
	return NewIndex(byName), nil
}

// LookupByName resolves a material name to its item id.
func (i *Index) LookupByName(name string) (uint32, bool) {
	id, ok := i.byName[name]
	return id, ok
}

// Len returns the number of indexed names.
func (i *Index) Len() int {
	return len(i.byName)
}
