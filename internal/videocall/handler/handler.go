package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"screening/internal/videocall"
	dErrors "screening/pkg/domain-errors"
	"screening/pkg/platform/audit"
	"screening/pkg/platform/httputil"
	"screening/pkg/requestcontext"
)

// Minter issues video access tokens.
type Minter interface {
	Mint(identity, room string) (*videocall.Token, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TokenRequest is the HTTP request body for POST /video/token.
type TokenRequest struct {
	Identity string `json:"identity"`
	Room     string `json:"room"`
}

// Validate defers content checks to the minter, which owns the field rules.
func (r *TokenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// TokenResponse is the HTTP response for POST /video/token.
type TokenResponse struct {
	Token     string    `json:"token"`
	Identity  string    `json:"identity"`
	Room      string    `json:"room"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler wires the video token endpoint.
type Handler struct {
	minter         Minter
	auditPublisher AuditPublisher
	logger         *slog.Logger
}

func New(minter Minter, auditPublisher AuditPublisher, logger *slog.Logger) *Handler {
	return &Handler{minter: minter, auditPublisher: auditPublisher, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/video/token", h.HandleToken)
}

// HandleToken handles POST /video/token requests.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tok, err := h.minter.Mint(req.Identity, req.Room)
	if err != nil {
		h.logger.WarnContext(ctx, "video token not issued",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.auditPublisher != nil {
		if err := h.auditPublisher.Emit(ctx, audit.Event{
			Action:    string(audit.EventVideoTokenIssued),
			Subject:   tok.Room,
			RequestID: requestID,
		}); err != nil {
			h.logger.WarnContext(ctx, "failed to emit video token audit event",
				"request_id", requestID,
				"error", err,
			)
		}
	}

	h.logger.InfoContext(ctx, "video token issued",
		"request_id", requestID,
		"room", tok.Room,
		"expires_at", tok.ExpiresAt,
	)

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		Token:     tok.JWT,
		Identity:  tok.Identity,
		Room:      tok.Room,
		ExpiresAt: tok.ExpiresAt,
	})
}
