package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"screening/internal/callqueue/metrics"
	"screening/internal/callqueue/models"
	dErrors "screening/pkg/domain-errors"
	"screening/pkg/platform/audit"
	"screening/pkg/platform/sentinel"
	"screening/pkg/requestcontext"
)

const (
	maxIDLength          = 64
	maxDisplayNameLength = 64
	roomPrefix           = "cribado-"
)

// Store applies queue transitions atomically.
type Store interface {
	Update(ctx context.Context, fn models.Transition) error
	Load(ctx context.Context) (*models.State, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Snapshot is the queue as seen by operators.
type Snapshot struct {
	Agents  []*models.Agent  `json:"agents"`
	Waiting []*models.Caller `json:"waiting"`
	Active  []*models.Caller `json:"active"`
}

// Ticket is returned to a caller after joining the queue.
type Ticket struct {
	Caller   *models.Caller `json:"caller"`
	Position int            `json:"position"`
}

// Service runs presence and queue transitions.
type Service struct {
	store          Store
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPresence moves an agent online or offline.
func (s *Service) SetPresence(ctx context.Context, agentID, presence string) (*models.Agent, error) {
	agentID, err := validateID("agent id", agentID)
	if err != nil {
		return nil, err
	}
	p, ok := models.ParsePresence(strings.TrimSpace(presence))
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "presence must be online or offline")
	}

	var agent *models.Agent
	err = s.store.Update(ctx, func(st *models.State, now time.Time) error {
		a, err := st.SetPresence(agentID, p, now)
		agent = a
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "presence", err)
	}
	s.metrics.IncrementTransition("presence", "ok")
	return agent, nil
}

// Enqueue adds a caller to the back of the queue.
func (s *Service) Enqueue(ctx context.Context, displayName string) (*Ticket, error) {
	displayName = strings.TrimSpace(displayName)
	if utf8.RuneCountInString(displayName) > maxDisplayNameLength {
		return nil, dErrors.New(dErrors.CodeValidation, "display_name is too long")
	}

	id := uuid.NewString()
	caller := &models.Caller{
		ID:          id,
		DisplayName: displayName,
		Room:        roomPrefix + id[:8],
	}
	var position int
	err := s.store.Update(ctx, func(st *models.State, now time.Time) error {
		c := *caller
		if err := st.Enqueue(&c, now); err != nil {
			return err
		}
		*caller = c
		position = st.Position(c.ID)
		s.metrics.SetDepth(len(st.Waiting))
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "enqueue", err)
	}
	s.metrics.IncrementTransition("enqueue", "ok")
	return &Ticket{Caller: caller, Position: position}, nil
}

// Claim hands the oldest waiting caller to an online agent.
func (s *Service) Claim(ctx context.Context, agentID string) (*models.Caller, error) {
	agentID, err := validateID("agent id", agentID)
	if err != nil {
		return nil, err
	}

	var caller *models.Caller
	var depth int
	err = s.store.Update(ctx, func(st *models.State, now time.Time) error {
		c, err := st.Claim(agentID, now)
		caller, depth = c, len(st.Waiting)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "claim", err)
	}

	s.metrics.IncrementTransition("claim", "ok")
	s.metrics.ObserveWait(caller.Wait())
	s.metrics.SetDepth(depth)
	s.emit(ctx, audit.EventCallClaimed, agentID)
	s.logger.InfoContext(ctx, "caller claimed",
		"request_id", requestcontext.RequestID(ctx),
		"agent_id", agentID,
		"wait_ms", caller.Wait().Milliseconds(),
	)
	return caller, nil
}

// Finish ends an agent's call.
func (s *Service) Finish(ctx context.Context, agentID string) (*models.Caller, error) {
	agentID, err := validateID("agent id", agentID)
	if err != nil {
		return nil, err
	}

	var caller *models.Caller
	err = s.store.Update(ctx, func(st *models.State, now time.Time) error {
		c, err := st.Finish(agentID, now)
		caller = c
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "finish", err)
	}
	s.metrics.IncrementTransition("finish", "ok")
	s.emit(ctx, audit.EventCallFinished, agentID)
	return caller, nil
}

// Leave removes a caller from the queue or ends their call.
func (s *Service) Leave(ctx context.Context, callerID string) error {
	callerID, err := validateID("caller id", callerID)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, func(st *models.State, now time.Time) error {
		if err := st.Leave(callerID, now); err != nil {
			return err
		}
		s.metrics.SetDepth(len(st.Waiting))
		return nil
	})
	if err != nil {
		return s.fail(ctx, "leave", err)
	}
	s.metrics.IncrementTransition("leave", "ok")
	return nil
}

// Snapshot returns the current queue with agents sorted by ID.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	st, err := s.store.Load(ctx)
	if err != nil {
		return nil, s.fail(ctx, "load", err)
	}
	return toSnapshot(st), nil
}

// fail translates store and transition errors into domain errors.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	result := "error"
	var out error
	switch {
	case errors.Is(err, models.ErrQueueEmpty):
		result = "empty"
		out = dErrors.New(dErrors.CodeNotFound, "no callers waiting")
	case errors.Is(err, sentinel.ErrNotFound):
		result = "not_found"
		out = dErrors.Wrap(err, dErrors.CodeNotFound, "agent or caller not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		result = "invalid_state"
		out = dErrors.Wrap(err, dErrors.CodeConflict, err.Error())
	case errors.Is(err, sentinel.ErrConflict):
		result = "conflict"
		out = dErrors.Wrap(err, dErrors.CodeConflict, "queue changed concurrently, retry")
	case errors.Is(err, sentinel.ErrUnavailable):
		out = dErrors.Wrap(err, dErrors.CodeUnavailable, "queue store unavailable")
	default:
		out = dErrors.Wrap(err, dErrors.CodeInternal, "queue update failed")
	}
	s.metrics.IncrementTransition(op, result)
	if result == "error" {
		s.logger.ErrorContext(ctx, "call queue transition failed",
			"request_id", requestcontext.RequestID(ctx),
			"op", op,
			"error", err,
		)
	}
	return out
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, agentID string) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:    string(event),
		Subject:   agentID,
		RequestID: requestcontext.RequestID(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit call queue audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", event,
			"error", err,
		)
	}
}

func validateID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", dErrors.New(dErrors.CodeValidation, field+" is required")
	}
	if len(id) > maxIDLength {
		return "", dErrors.New(dErrors.CodeValidation, field+" is too long")
	}
	return id, nil
}
