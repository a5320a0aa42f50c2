package handler

import (
	"net/http"
	"strconv"
	"time"

	"emote-pack-service/internal/model"
	"emote-pack-service/internal/registry"
	"emote-pack-service/pkg/apierror"
	"emote-pack-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ShopHandler serves the emote pack catalog.
type ShopHandler struct {
	registry *registry.Registry
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(reg *registry.Registry) *ShopHandler {
	return &ShopHandler{registry: reg}
}

// MaterialResponse is one cost line of a pack.
type MaterialResponse struct {
	ItemID uint32 `json:"item_id"`
	Amount uint16 `json:"amount"`
}

// PackResponse is the API view of one emote pack definition.
type PackResponse struct {
	ID          uint32             `json:"id"`
	Name        string             `json:"name"`
	Scope       string             `json:"scope"`
	SaleStart   *time.Time         `json:"sale_start,omitempty"`
	SaleEnd     *time.Time         `json:"sale_end,omitempty"`
	RentalHours uint32             `json:"rental_hours"`
	KeepInShop  bool               `json:"keep_in_shop"`
	OnSale      bool               `json:"on_sale"`
	Materials   []MaterialResponse `json:"materials"`
}

func toPackResponse(d *model.EmotePackDefinition, now time.Time) PackResponse {
	resp := PackResponse{
		ID:          d.ID,
		Name:        d.Name,
		Scope:       d.Scope.String(),
		RentalHours: d.RentalHours,
		KeepInShop:  d.KeepInShop,
		OnSale:      d.OnSale(now),
		Materials:   make([]MaterialResponse, 0, len(d.Materials)),
	}
	if !d.SaleStart.IsZero() {
		t := d.SaleStart
		resp.SaleStart = &t
	}
	if !d.SaleEnd.IsZero() {
		t := d.SaleEnd
		resp.SaleEnd = &t
	}
	for itemID, amount := range d.Materials {
		resp.Materials = append(resp.Materials, MaterialResponse{ItemID: itemID, Amount: amount})
	}
	return resp
}

// ListPacks handles GET /api/v1/packs. With ?listed=true only packs
// currently visible in the shop are returned.
func (h *ShopHandler) ListPacks(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	var defs []*model.EmotePackDefinition
	if r.URL.Query().Get("listed") == "true" {
		defs = h.registry.Listed(now)
	} else {
		defs = h.registry.All()
	}

	out := make([]PackResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, toPackResponse(d, now))
	}
	response.OK(w, out)
}

// GetPack handles GET /api/v1/packs/{id}
func (h *ShopHandler) GetPack(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		response.Error(w, apierror.BadRequest("invalid pack id"))
		return
	}

	def := h.registry.Find(uint32(id))
	if def == nil {
		response.Error(w, apierror.NotFound("pack not found"))
		return
	}
	response.OK(w, toPackResponse(def, time.Now()))
}
