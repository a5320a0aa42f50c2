package registry

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"emote-pack-service/internal/model"
	"emote-pack-service/internal/timer"
)

const (
	// DefaultPollInterval is how often a pending definition re-checks its
	// sale start. Activation accuracy is bounded by this interval; the
	// trade-off buys a small, bounded number of live timers and trivial
	// re-registration on upsert.
	DefaultPollInterval = 60 * time.Second

	// DefaultMaxAmount caps a single material cost line.
	DefaultMaxAmount uint16 = 30000

	dateLayout = "2006-01-02"
)

// ItemLookup resolves a material name to a stable item id.
type ItemLookup interface {
	LookupByName(name string) (uint32, bool)
}

// ActivationNotifier receives the one-time "pack went on sale" broadcast.
type ActivationNotifier interface {
	BroadcastActivation(packID uint32)
}

// ValidationError rejects a single raw record. The surrounding batch keeps
// going; the registry entry for the record's id is left untouched.
type ValidationError struct {
	ID     uint32
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("definition %d: field %s: %s", e.ID, e.Field, e.Reason)
}

// Config holds the registry's collaborators and tuning knobs.
type Config struct {
	Items     ItemLookup
	Notifier  ActivationNotifier
	Scheduler timer.Scheduler

	// PollInterval defaults to DefaultPollInterval when zero.
	PollInterval time.Duration

	// MaxAmount defaults to DefaultMaxAmount when zero.
	MaxAmount uint16

	// Now defaults to time.Now. Injected for tests.
	Now func() time.Time
}

type packState struct {
	def *model.EmotePackDefinition

	// activation is the handle of the one live sale-start timer, or
	// timer.None. A fired callback whose handle no longer matches this
	// value discards itself.
	activation timer.Handle
}

// Registry holds every emote pack definition, keyed by id. The upsert path
// is the only writer; reads hand out clones.
type Registry struct {
	items        ItemLookup
	notifier     ActivationNotifier
	sched        timer.Scheduler
	pollInterval time.Duration
	maxAmount    uint16
	now          func() time.Time

	mu   sync.Mutex
	defs map[uint32]*packState
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxAmount == 0 {
		cfg.MaxAmount = DefaultMaxAmount
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Registry{
		items:        cfg.Items,
		notifier:     cfg.Notifier,
		sched:        cfg.Scheduler,
		pollInterval: cfg.PollInterval,
		maxAmount:    cfg.MaxAmount,
		now:          cfg.Now,
		defs:         make(map[uint32]*packState),
	}
}

// Upsert validates one raw record and merges it into the registry. A new id
// requires Name and Type; on updates every other field merges onto the prior
// value, but Name stays mandatory on every call. Any validation failure
// rejects the whole record and leaves prior state untouched.
func (r *Registry) Upsert(raw model.RawDefinition) error {
	if raw.ID == 0 {
		return &ValidationError{Field: "Id", Reason: "missing or zero"}
	}
	if raw.Name == nil || *raw.Name == "" {
		return &ValidationError{ID: raw.ID, Field: "Name", Reason: "required"}
	}

	r.mu.Lock()

	st, exists := r.defs[raw.ID]
	if !exists && raw.Scope == nil {
		r.mu.Unlock()
		return &ValidationError{ID: raw.ID, Field: "Type", Reason: "required for a new definition"}
	}

	// Mutate a working copy; commit only after the whole record validates.
	var work *model.EmotePackDefinition
	if exists {
		work = st.def.Clone()
	} else {
		work = &model.EmotePackDefinition{ID: raw.ID, Materials: make(map[uint32]uint16)}
	}

	work.Name = *raw.Name

	if raw.Scope != nil {
		scope, ok := ParseScope(*raw.Scope)
		if !ok {
			r.mu.Unlock()
			return &ValidationError{ID: raw.ID, Field: "Type", Reason: fmt.Sprintf("unknown scope %q", *raw.Scope)}
		}
		work.Scope = scope
	}

	if raw.RentalHours != nil {
		work.RentalHours = *raw.RentalHours
	} else {
		work.RentalHours = 0
	}

	if raw.SaleStart != nil {
		t, err := parseDate(*raw.SaleStart)
		if err != nil {
			r.mu.Unlock()
			return &ValidationError{ID: raw.ID, Field: "Starttime", Reason: fmt.Sprintf("malformed date %q", *raw.SaleStart)}
		}
		work.SaleStart = t
	}
	if raw.SaleEnd != nil {
		t, err := parseDate(*raw.SaleEnd)
		if err != nil {
			r.mu.Unlock()
			return &ValidationError{ID: raw.ID, Field: "Endtime", Reason: fmt.Sprintf("malformed date %q", *raw.SaleEnd)}
		}
		work.SaleEnd = t
	}

	if raw.KeepInShop != nil {
		work.KeepInShop = *raw.KeepInShop
	} else {
		work.KeepInShop = false
	}

	r.applyPrices(work, raw.Prices)

	if !exists {
		st = &packState{}
		r.defs[raw.ID] = st
	}
	st.def = work

	now := r.now()
	activate := false
	if !work.SaleStart.IsZero() && work.SaleStart.After(now) {
		// Re-arming supersedes any prior handle; the old timer discards
		// itself when it fires and sees the mismatch.
		st.activation = r.arm(raw.ID)
	} else if st.activation != timer.None {
		// A pending definition was updated into an already-open window.
		r.sched.Cancel(st.activation)
		st.activation = timer.None
		activate = true
	}
	r.mu.Unlock()

	if activate {
		log.Printf("[Registry] pack %d (%s) is now on sale", work.ID, work.Name)
		r.notify(work.ID)
	}
	return nil
}

// applyPrices merges raw cost lines into the working copy. Unresolved
// material names skip the line only; amounts above the cap clamp, never
// reject; an explicit zero amount removes the line.
func (r *Registry) applyPrices(work *model.EmotePackDefinition, prices []model.RawPrice) {
	for _, price := range prices {
		itemID, ok := lookupItem(r.items, price.Material)
		if !ok {
			log.Printf("[Registry] pack %d: material %q does not exist, skipping", work.ID, price.Material)
			continue
		}

		_, had := work.Materials[itemID]

		var amount uint16
		switch {
		case price.Amount != nil:
			amount = *price.Amount
			if amount > r.maxAmount {
				log.Printf("[Registry] pack %d: material %q amount %d is too high, capping to %d",
					work.ID, price.Material, amount, r.maxAmount)
				amount = r.maxAmount
			}
		case !had:
			amount = 1
		default:
			// Amount omitted on a re-upsert: keep the prior amount.
			continue
		}

		if amount > 0 {
			work.Materials[itemID] = amount
		} else {
			delete(work.Materials, itemID)
		}
	}
}

func lookupItem(items ItemLookup, name string) (uint32, bool) {
	if items == nil {
		return 0, false
	}
	return items.LookupByName(name)
}

func (r *Registry) arm(id uint32) timer.Handle {
	return r.sched.Schedule(r.pollInterval, func(h timer.Handle) {
		r.onActivationTick(id, h)
	})
}

// onActivationTick is the per-definition poll callback. It re-arms until the
// sale start is reached, then broadcasts exactly once.
func (r *Registry) onActivationTick(id uint32, h timer.Handle) {
	r.mu.Lock()
	st, ok := r.defs[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	if st.activation != h {
		// Stale handle from a superseded arm; a newer timer owns this
		// definition now. Not an error.
		r.mu.Unlock()
		return
	}
	st.activation = timer.None

	if !st.def.SaleStart.IsZero() && st.def.SaleStart.After(r.now()) {
		st.activation = r.arm(id)
		r.mu.Unlock()
		return
	}
	name := st.def.Name
	r.mu.Unlock()

	log.Printf("[Registry] pack %d (%s) is now on sale", id, name)
	r.notify(id)
}

func (r *Registry) notify(id uint32) {
	if r.notifier != nil {
		r.notifier.BroadcastActivation(id)
	}
}

// Find returns a read-only copy of one definition, or nil.
func (r *Registry) Find(id uint32) *model.EmotePackDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.defs[id]
	if !ok {
		return nil
	}
	return st.def.Clone()
}

// All returns read-only copies of every definition, ordered by id.
func (r *Registry) All() []*model.EmotePackDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*model.EmotePackDefinition, 0, len(r.defs))
	for _, st := range r.defs {
		out = append(out, st.def.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Listed returns the definitions visible in the shop at the given instant.
func (r *Registry) Listed(now time.Time) []*model.EmotePackDefinition {
	all := r.All()
	out := all[:0]
	for _, d := range all {
		if d.Listed(now) {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of definitions held.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.defs)
}

// Remove deletes one definition and cancels its outstanding activation
// timer, if any. It reports whether the id was present.
func (r *Registry) Remove(id uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.defs[id]
	if !ok {
		return false
	}
	if st.activation != timer.None {
		r.sched.Cancel(st.activation)
	}
	delete(r.defs, id)
	return true
}

// Initialize feeds a batch of raw records through Upsert. Records that fail
// validation are logged and skipped; the batch always continues. It returns
// the number of definitions applied.
func (r *Registry) Initialize(records []model.RawDefinition) int {
	loaded := 0
	for _, raw := range records {
		if err := r.Upsert(raw); err != nil {
			log.Printf("[Registry] %v, skipping record", err)
			continue
		}
		loaded++
	}
	log.Printf("[Registry] loaded %d of %d emote pack definitions", loaded, len(records))
	return loaded
}

// Reload drops every definition (cancelling outstanding timers) and
// repopulates from the given records.
func (r *Registry) Reload(records []model.RawDefinition) int {
	r.clear()
	return r.Initialize(records)
}

// Shutdown cancels all outstanding timers and drops the registry.
func (r *Registry) Shutdown() {
	r.clear()
	log.Printf("[Registry] shut down")
}

func (r *Registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, st := range r.defs {
		if st.activation != timer.None {
			r.sched.Cancel(st.activation)
			st.activation = timer.None
		}
	}
	r.defs = make(map[uint32]*packState)
}

// ParseScope maps a definition-source scope name to its tag.
func ParseScope(s string) (model.PackScope, bool) {
	switch s {
	case "Account", "account":
		return model.ScopeAccount, true
	case "Character", "character", "Char", "char":
		return model.ScopeCharacter, true
	default:
		return 0, false
	}
}

// parseDate parses a calendar date at day granularity, server-local.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}
