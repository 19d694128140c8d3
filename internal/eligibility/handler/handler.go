package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"screening/internal/eligibility"
	"screening/internal/eligibility/metrics"
	"screening/internal/eligibility/service"
	"screening/pkg/platform/httputil"
	"screening/pkg/requestcontext"
)

// Service defines the interface for eligibility operations.
type Service interface {
	Evaluate(ctx context.Context, req service.EvaluateRequest) (*service.EvaluateResult, error)
	Advance(ctx context.Context, req service.AdvanceRequest) (*service.AdvanceResult, error)
	Stats(ctx context.Context) ([]eligibility.OutcomeCount, error)
	Catalog() eligibility.Catalog
}

// Handler wires eligibility endpoints to the eligibility service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs an eligibility handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts the public eligibility endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/eligibility/evaluate", h.HandleEvaluate)
	r.Post("/eligibility/wizard", h.HandleWizard)
	r.Get("/eligibility/catalog", h.HandleCatalog)
}

// RegisterAdmin mounts operator endpoints. The caller applies admin auth.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/eligibility/stats", h.HandleStats)
}

// HandleEvaluate handles POST /eligibility/evaluate requests.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Evaluate(ctx, service.EvaluateRequest{
		AgeInput:       string(req.Age),
		ExclusionCodes: req.ExclusionCodes,
		RiskCodes:      req.RiskCodes,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "eligibility evaluation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "eligibility evaluated",
		"request_id", requestID,
		"outcome", result.Outcome,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleWizard handles POST /eligibility/wizard requests.
func (h *Handler) HandleWizard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[WizardRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Advance(ctx, service.AdvanceRequest{
		State:  req.InitialState(),
		Events: req.Events,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "wizard advance failed",
			"request_id", requestID,
			"events", len(req.Events),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "wizard advanced",
		"request_id", requestID,
		"step", result.State.Step,
		"events", len(req.Events),
	)

	httputil.WriteJSON(w, http.StatusOK, FromAdvanceResult(result))
}

// HandleCatalog handles GET /eligibility/catalog requests.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Catalog())
}

// HandleStats handles GET /admin/eligibility/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	rows, err := h.service.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load outcome tallies",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromTallies(rows))
}
