package handler

import (
	"encoding/json"
	"net/http"

	"emote-pack-service/internal/model"
	"emote-pack-service/internal/service"
	"emote-pack-service/internal/session"
	"emote-pack-service/pkg/apierror"
	"emote-pack-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

// SessionHandler manages player session attach/detach and the entitlement
// view of an attached session.
type SessionHandler struct {
	sessions     *session.Manager
	entitlements *service.EntitlementService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *session.Manager, entitlements *service.EntitlementService) *SessionHandler {
	return &SessionHandler{sessions: sessions, entitlements: entitlements}
}

// AttachRequest is the body of POST /api/v1/sessions.
type AttachRequest struct {
	AccountID uint32 `json:"account_id"`
	CharID    uint32 `json:"char_id"`
}

// SessionResponse is the API view of an attached session.
type SessionResponse struct {
	SessionID    string                    `json:"session_id"`
	AccountID    uint32                    `json:"account_id"`
	CharID       uint32                    `json:"char_id"`
	Entitlements []model.EntitlementRecord `json:"entitlements"`
}

// Attach handles POST /api/v1/sessions. It registers the session and loads
// the player's entitlements from storage.
func (h *SessionHandler) Attach(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	if req.AccountID == 0 || req.CharID == 0 {
		response.Error(w, apierror.BadRequest("account_id and char_id are required"))
		return
	}

	sess := h.sessions.Attach(req.AccountID, req.CharID)

	records, err := h.entitlements.Load(r.Context(), sess)
	if err != nil {
		// The session stays attached with an empty list; storage failures
		// are recoverable and the next load retries.
		records = nil
	}

	response.Created(w, SessionResponse{
		SessionID:    sess.ID,
		AccountID:    sess.AccountID,
		CharID:       sess.CharID,
		Entitlements: records,
	})
}

// GetEntitlements handles GET /api/v1/sessions/{id}/entitlements
func (h *SessionHandler) GetEntitlements(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(chi.URLParam(r, "id"))
	if sess == nil {
		response.Error(w, apierror.NotFound("session not found"))
		return
	}
	response.OK(w, sess.Entitlements())
}

// Detach handles DELETE /api/v1/sessions/{id}. It persists the session's
// entitlements before dropping it.
func (h *SessionHandler) Detach(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Detach(chi.URLParam(r, "id"))
	if sess == nil {
		response.Error(w, apierror.NotFound("session not found"))
		return
	}

	if err := h.entitlements.Save(r.Context(), sess); err != nil {
		response.Error(w, apierror.InternalError("failed to persist entitlements"))
		return
	}
	response.NoContent(w)
}
