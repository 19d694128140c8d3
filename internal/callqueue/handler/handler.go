package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"screening/internal/callqueue/models"
	"screening/internal/callqueue/service"
	dErrors "screening/pkg/domain-errors"
	"screening/pkg/platform/httputil"
	"screening/pkg/requestcontext"
)

// Service defines the call-queue operations exposed over HTTP.
type Service interface {
	SetPresence(ctx context.Context, agentID, presence string) (*models.Agent, error)
	Enqueue(ctx context.Context, displayName string) (*service.Ticket, error)
	Claim(ctx context.Context, agentID string) (*models.Caller, error)
	Finish(ctx context.Context, agentID string) (*models.Caller, error)
	Leave(ctx context.Context, callerID string) error
	Snapshot(ctx context.Context) (*service.Snapshot, error)
}

// EnqueueRequest is the HTTP request body for POST /queue/callers.
type EnqueueRequest struct {
	DisplayName string `json:"display_name"`
}

func (r *EnqueueRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// PresenceRequest is the HTTP request body for PUT /queue/agents/{agentID}/presence.
type PresenceRequest struct {
	Presence string `json:"presence"`
}

func (r *PresenceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Presence == "" {
		return dErrors.New(dErrors.CodeValidation, "presence is required")
	}
	return nil
}

// Handler wires call-queue endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the caller-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/queue/callers", h.HandleEnqueue)
	r.Delete("/queue/callers/{callerID}", h.HandleLeave)
}

// RegisterAgent mounts the agent-facing endpoints. The caller applies auth.
func (h *Handler) RegisterAgent(r chi.Router) {
	r.Get("/queue", h.HandleSnapshot)
	r.Put("/queue/agents/{agentID}/presence", h.HandlePresence)
	r.Post("/queue/agents/{agentID}/claim", h.HandleClaim)
	r.Post("/queue/agents/{agentID}/finish", h.HandleFinish)
}

func (h *Handler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EnqueueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	ticket, err := h.service.Enqueue(ctx, req.DisplayName)
	if err != nil {
		h.writeError(w, r, "enqueue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Leave(r.Context(), chi.URLParam(r, "callerID")); err != nil {
		h.writeError(w, r, "leave", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, "snapshot", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) HandlePresence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PresenceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	agent, err := h.service.SetPresence(ctx, chi.URLParam(r, "agentID"), req.Presence)
	if err != nil {
		h.writeError(w, r, "presence", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agent)
}

func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	caller, err := h.service.Claim(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		h.writeError(w, r, "claim", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caller)
}

func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	caller, err := h.service.Finish(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		h.writeError(w, r, "finish", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caller)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.WarnContext(r.Context(), "call queue request failed",
		"request_id", requestcontext.RequestID(r.Context()),
		"op", op,
		"error", err,
	)
	httputil.WriteError(w, err)
}
