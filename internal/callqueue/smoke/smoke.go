// Package smoke drives the call queue through the presence and queue moves a
// deployment must support, reporting pass or fail per scenario.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"screening/internal/callqueue/service"
	dErrors "screening/pkg/domain-errors"
)

// Factory returns a service over an empty queue and a cleanup func.
type Factory func(ctx context.Context) (*service.Service, func(), error)

// Scenario is one named check.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, svc *service.Service) error
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Run executes scenarios in order, each against a fresh queue.
func Run(ctx context.Context, factory Factory, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, sc := range scenarios {
		start := time.Now()
		res := Result{Name: sc.Name}
		svc, cleanup, err := factory(ctx)
		if err == nil {
			err = sc.Run(ctx, svc)
			cleanup()
		}
		res.Duration = time.Since(start)
		res.Passed = err == nil
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

// Failed counts failed results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}

// Default returns the standard scenario list. concurrency sets how many agents
// race for one caller.
func Default(concurrency int) []Scenario {
	return []Scenario{
		{Name: "claim takes the oldest caller", Run: claimOldest},
		{Name: "offline agent cannot claim", Run: offlineCannotClaim},
		{Name: "finish returns agent online", Run: finishReturnsOnline},
		{Name: "waiting caller can leave", Run: callerLeaves},
		{Name: "racing agents claim a caller once", Run: func(ctx context.Context, svc *service.Service) error {
			return racingClaims(ctx, svc, concurrency)
		}},
	}
}

func claimOldest(ctx context.Context, svc *service.Service) error {
	first, err := svc.Enqueue(ctx, "primero")
	if err != nil {
		return err
	}
	if _, err := svc.Enqueue(ctx, "segundo"); err != nil {
		return err
	}
	if _, err := svc.SetPresence(ctx, "agent-1", "online"); err != nil {
		return err
	}
	got, err := svc.Claim(ctx, "agent-1")
	if err != nil {
		return err
	}
	if got.ID != first.Caller.ID {
		return fmt.Errorf("claimed %s, want oldest %s", got.ID, first.Caller.ID)
	}
	return nil
}

func offlineCannotClaim(ctx context.Context, svc *service.Service) error {
	if _, err := svc.Enqueue(ctx, "paciente"); err != nil {
		return err
	}
	if _, err := svc.SetPresence(ctx, "agent-1", "offline"); err != nil {
		return err
	}
	_, err := svc.Claim(ctx, "agent-1")
	if !dErrors.HasCode(err, dErrors.CodeConflict) {
		return fmt.Errorf("offline claim returned %v, want conflict", err)
	}
	return nil
}

func finishReturnsOnline(ctx context.Context, svc *service.Service) error {
	if _, err := svc.Enqueue(ctx, "paciente"); err != nil {
		return err
	}
	if _, err := svc.SetPresence(ctx, "agent-1", "online"); err != nil {
		return err
	}
	if _, err := svc.Claim(ctx, "agent-1"); err != nil {
		return err
	}
	if _, err := svc.Finish(ctx, "agent-1"); err != nil {
		return err
	}
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(snap.Agents) != 1 || snap.Agents[0].Presence != "online" {
		return errors.New("agent not back online after finish")
	}
	return nil
}

func callerLeaves(ctx context.Context, svc *service.Service) error {
	ticket, err := svc.Enqueue(ctx, "paciente")
	if err != nil {
		return err
	}
	if err := svc.Leave(ctx, ticket.Caller.ID); err != nil {
		return err
	}
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	if len(snap.Waiting) != 0 {
		return fmt.Errorf("%d callers still waiting", len(snap.Waiting))
	}
	return nil
}

func racingClaims(ctx context.Context, svc *service.Service, agents int) error {
	if agents < 2 {
		agents = 2
	}
	if _, err := svc.Enqueue(ctx, "paciente"); err != nil {
		return err
	}
	for i := 0; i < agents; i++ {
		if _, err := svc.SetPresence(ctx, fmt.Sprintf("agent-%d", i), "online"); err != nil {
			return err
		}
	}

	var winners atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < agents; i++ {
		agentID := fmt.Sprintf("agent-%d", i)
		g.Go(func() error {
			_, err := svc.Claim(gctx, agentID)
			switch {
			case err == nil:
				winners.Add(1)
			case dErrors.HasCode(err, dErrors.CodeNotFound), dErrors.HasCode(err, dErrors.CodeConflict):
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := winners.Load(); n != 1 {
		return fmt.Errorf("%d agents claimed the same caller", n)
	}
	return nil
}
