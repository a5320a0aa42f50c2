package handler

import (
	"log"
	"net/http"
	"time"

	"emote-pack-service/internal/loader"
	"emote-pack-service/internal/registry"
	"emote-pack-service/internal/session"
	"emote-pack-service/pkg/apierror"
	"emote-pack-service/pkg/response"
)

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	registry    *registry.Registry
	sessions    *session.Manager
	emoteDBPath string
	dbType      string
	startTime   time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(reg *registry.Registry, sessions *session.Manager, emoteDBPath, dbType string) *AdminHandler {
	return &AdminHandler{
		registry:    reg,
		sessions:    sessions,
		emoteDBPath: emoteDBPath,
		dbType:      dbType,
		startTime:   time.Now(),
	}
}

// ReloadResponse reports the outcome of a definition reload.
type ReloadResponse struct {
	Records int `json:"records"`
	Loaded  int `json:"loaded"`
}

// Reload handles POST /api/v1/admin/reload. It re-reads the definition
// source and repopulates the registry through the normal upsert path, so
// merge semantics and timer replacement apply.
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	records, err := loader.LoadFile(h.emoteDBPath)
	if err != nil {
		log.Printf("[AdminHandler] reload failed: %v", err)
		response.Error(w, apierror.InternalError("failed to read definition source"))
		return
	}

	loaded := h.registry.Reload(records)
	response.OK(w, ReloadResponse{Records: len(records), Loaded: loaded})
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"server_time":    time.Now().Format(time.RFC3339),
		"db_type":        h.dbType,
		"pack_count":     h.registry.Count(),
		"session_count":  h.sessions.Count(),
		"emote_db_path":  h.emoteDBPath,
	}
	response.OK(w, stats)
}
