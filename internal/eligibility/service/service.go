package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"screening/internal/eligibility"
	"screening/internal/eligibility/metrics"
	"screening/internal/eligibility/wizard"
	"screening/internal/platform/device"
	dErrors "screening/pkg/domain-errors"
	"screening/pkg/platform/audit"
	"screening/pkg/requestcontext"
)

// TallyStore keeps aggregate outcome counters.
type TallyStore interface {
	Increment(ctx context.Context, outcome eligibility.Outcome, class device.Class) error
	Snapshot(ctx context.Context) ([]eligibility.OutcomeCount, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service classifies candidates, drives the questionnaire and reports tallies.
// Tally and audit writes are side effects: their failures are logged and
// counted but never change an evaluation's result.
type Service struct {
	engine         *eligibility.Engine
	wizard         *wizard.Wizard
	catalog        eligibility.Catalog
	tallies        TallyStore
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithTallyStore(store TallyStore) Option {
	return func(s *Service) {
		s.tallies = store
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithCatalog(catalog eligibility.Catalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service for cfg.
func New(cfg eligibility.Config, opts ...Option) *Service {
	engine := eligibility.NewEngine(cfg)
	s := &Service{
		engine:  engine,
		wizard:  wizard.New(engine),
		catalog: eligibility.DefaultCatalog(),
		logger:  slog.Default(),
		tracer:  otel.Tracer("screening/eligibility"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate classifies one candidate built from raw answers.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResult, error) {
	ctx, span := s.tracer.Start(ctx, "eligibility.Evaluate")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "request cancelled")
	}
	start := time.Now()

	_, age := s.engine.ParseAge(req.AgeInput)
	candidate := eligibility.NewCandidate(age, req.ExclusionCodes, req.RiskCodes)
	outcome := s.engine.Classify(candidate)
	class := device.Classify(requestcontext.UserAgent(ctx))

	span.SetAttributes(
		attribute.String("eligibility.outcome", outcome.String()),
		attribute.String("device.class", string(class)),
	)

	s.recordOutcome(ctx, outcome, class)
	s.metrics.IncrementOutcome(outcome.String(), string(class))
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	labels := s.engine.Labels()
	return &EvaluateResult{
		Candidate:      candidate,
		Outcome:        outcome,
		Label:          eligibility.OutcomeLabel(outcome, labels),
		FinalLabel:     eligibility.OutcomeFinalLabel(outcome, labels),
		Summary:        eligibility.Summary(candidate, s.engine.Config(), s.catalog),
		MaxAllowedStep: s.wizard.MaxAllowedStep(candidate),
		EvaluatedAt:    requestcontext.Now(ctx),
	}, nil
}

// Advance applies questionnaire events to a client-held state. The incoming
// state is re-validated first because it comes from the client.
func (s *Service) Advance(ctx context.Context, req AdvanceRequest) (*AdvanceResult, error) {
	_, span := s.tracer.Start(ctx, "eligibility.Advance")
	defer span.End()

	if len(req.Events) > maxEventsPerAdvance {
		return nil, dErrors.New(dErrors.CodeValidation, "too many events in one request")
	}

	state := s.sanitize(req.State)
	for _, e := range req.Events {
		requested, navigating := requestedStep(state, e)
		state = s.wizard.Reduce(state, e)
		s.metrics.IncrementWizardEvent(string(e.Type))
		if navigating && state.Step < requested {
			s.metrics.IncrementGateClamp()
		}
	}

	outcome := s.wizard.Preview(state)
	span.SetAttributes(
		attribute.Int("wizard.step", int(state.Step)),
		attribute.Int("wizard.events", len(req.Events)),
	)

	labels := s.engine.Labels()
	return &AdvanceResult{
		State:          state,
		MaxAllowedStep: s.wizard.MaxAllowedStep(state.Candidate),
		Preview:        outcome,
		Label:          eligibility.OutcomeLabel(outcome, labels),
		FinalLabel:     eligibility.OutcomeFinalLabel(outcome, labels),
		Summary:        eligibility.Summary(state.Candidate, s.engine.Config(), s.catalog),
	}, nil
}

// Stats returns aggregate tallies. Without a tally store it reports nothing.
func (s *Service) Stats(ctx context.Context) ([]eligibility.OutcomeCount, error) {
	if s.tallies == nil {
		return []eligibility.OutcomeCount{}, nil
	}
	rows, err := s.tallies.Snapshot(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load outcome tallies")
	}
	return rows, nil
}

// Catalog returns the criteria offered on the questionnaire.
func (s *Service) Catalog() eligibility.Catalog {
	return s.catalog
}

func (s *Service) recordOutcome(ctx context.Context, outcome eligibility.Outcome, class device.Class) {
	requestID := requestcontext.RequestID(ctx)

	if s.tallies != nil {
		if err := s.tallies.Increment(ctx, outcome, class); err != nil {
			s.metrics.IncrementSideEffectFailure("tally")
			s.logger.WarnContext(ctx, "failed to increment outcome tally",
				"request_id", requestID,
				"outcome", outcome,
				"error", err,
			)
		}
	}

	if s.auditPublisher != nil {
		err := s.auditPublisher.Emit(ctx, audit.Event{
			Action:      string(audit.EventEligibilityEvaluated),
			Outcome:     outcome.String(),
			DeviceClass: string(class),
			RequestID:   requestID,
			Timestamp:   requestcontext.Now(ctx),
		})
		if err != nil {
			s.metrics.IncrementSideEffectFailure("audit")
			s.logger.WarnContext(ctx, "failed to emit evaluation audit event",
				"request_id", requestID,
				"outcome", outcome,
				"error", err,
			)
		}
	}
}

// sanitize re-derives the age from the client's text and clamps the step.
func (s *Service) sanitize(state wizard.State) wizard.State {
	raw := state.AgeInput
	if raw == "" && state.Candidate.Age.Known() {
		raw = state.Candidate.Age.String()
	}
	state.AgeInput, state.Candidate.Age = s.engine.ParseAge(raw)
	state.Candidate.ExclusionCodes = eligibility.NormalizeCodes(state.Candidate.ExclusionCodes)
	state.Candidate.RiskCodes = eligibility.NormalizeCodes(state.Candidate.RiskCodes)
	return s.wizard.ReduceAll(state, nil)
}

// requestedStep reports the step a navigation event asks for.
func requestedStep(state wizard.State, e wizard.Event) (wizard.Step, bool) {
	switch e.Type {
	case wizard.EventNext:
		next := state.Step + 1
		return next, next.Valid()
	case wizard.EventNavigate:
		return wizard.ParseStep(e.Value)
	}
	return 0, false
}
