// Package models holds the call-queue state and its transitions. A transition
// is a pure function over State; stores decide how to apply it atomically.
package models

import (
	"errors"
	"fmt"
	"time"

	"screening/pkg/platform/sentinel"
)

// Presence is an agent's availability.
type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceBusy    Presence = "busy"
	PresenceOffline Presence = "offline"
)

// ParsePresence accepts the presences an agent may set directly. Busy is
// only ever entered by claiming a caller.
func ParsePresence(s string) (Presence, bool) {
	switch p := Presence(s); p {
	case PresenceOnline, PresenceOffline:
		return p, true
	}
	return "", false
}

// ErrQueueEmpty is returned by Claim when nobody is waiting.
var ErrQueueEmpty = errors.New("queue empty")

// Agent is a clinician who answers video calls.
type Agent struct {
	ID            string    `json:"id"`
	Presence      Presence  `json:"presence"`
	CurrentCaller string    `json:"current_caller,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Caller is a person waiting for, or in, a video call.
type Caller struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Room        string     `json:"room"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	AgentID     string     `json:"agent_id,omitempty"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

// Wait is how long the caller waited before being claimed.
func (c *Caller) Wait() time.Duration {
	if c.ClaimedAt == nil {
		return 0
	}
	return c.ClaimedAt.Sub(c.EnqueuedAt)
}

// State is the whole queue document.
type State struct {
	Agents  map[string]*Agent  `json:"agents"`
	Waiting []*Caller          `json:"waiting"`
	Active  map[string]*Caller `json:"active"`
	Version int64              `json:"version"`
}

// NewState returns an empty queue.
func NewState() *State {
	return &State{
		Agents: make(map[string]*Agent),
		Active: make(map[string]*Caller),
	}
}

// Normalize fills nil maps left by decoding.
func (s *State) Normalize() {
	if s.Agents == nil {
		s.Agents = make(map[string]*Agent)
	}
	if s.Active == nil {
		s.Active = make(map[string]*Caller)
	}
}

// Transition mutates s in place or returns an error leaving s unusable.
// Stores run it against a fresh copy on every attempt.
type Transition func(s *State, now time.Time) error

// SetPresence moves an agent between online and offline. A busy agent must
// finish the current call first.
func (s *State) SetPresence(agentID string, p Presence, now time.Time) (*Agent, error) {
	if p == PresenceBusy {
		return nil, fmt.Errorf("presence busy is set by claiming: %w", sentinel.ErrInvalidState)
	}
	agent, ok := s.Agents[agentID]
	if !ok {
		agent = &Agent{ID: agentID}
		s.Agents[agentID] = agent
	}
	if agent.Presence == PresenceBusy {
		return nil, fmt.Errorf("agent %s is in a call: %w", agentID, sentinel.ErrInvalidState)
	}
	agent.Presence = p
	agent.UpdatedAt = now
	s.Version++
	return agent, nil
}

// Enqueue appends a caller to the back of the queue.
func (s *State) Enqueue(c *Caller, now time.Time) error {
	if _, dup := s.Active[c.ID]; dup || s.indexOf(c.ID) >= 0 {
		return fmt.Errorf("caller %s already queued: %w", c.ID, sentinel.ErrConflict)
	}
	c.EnqueuedAt = now
	s.Waiting = append(s.Waiting, c)
	s.Version++
	return nil
}

// Claim assigns the oldest waiting caller to an online agent.
func (s *State) Claim(agentID string, now time.Time) (*Caller, error) {
	agent, ok := s.Agents[agentID]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", agentID, sentinel.ErrNotFound)
	}
	if agent.Presence != PresenceOnline {
		return nil, fmt.Errorf("agent %s is %s: %w", agentID, agent.Presence, sentinel.ErrInvalidState)
	}
	if len(s.Waiting) == 0 {
		return nil, ErrQueueEmpty
	}

	caller := s.Waiting[0]
	s.Waiting = s.Waiting[1:]
	claimedAt := now
	caller.AgentID = agentID
	caller.ClaimedAt = &claimedAt
	s.Active[caller.ID] = caller

	agent.Presence = PresenceBusy
	agent.CurrentCaller = caller.ID
	agent.UpdatedAt = now
	s.Version++
	return caller, nil
}

// Finish ends the agent's current call and puts the agent back online.
func (s *State) Finish(agentID string, now time.Time) (*Caller, error) {
	agent, ok := s.Agents[agentID]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", agentID, sentinel.ErrNotFound)
	}
	if agent.Presence != PresenceBusy {
		return nil, fmt.Errorf("agent %s is not in a call: %w", agentID, sentinel.ErrInvalidState)
	}
	caller := s.Active[agent.CurrentCaller]
	delete(s.Active, agent.CurrentCaller)

	agent.Presence = PresenceOnline
	agent.CurrentCaller = ""
	agent.UpdatedAt = now
	s.Version++
	return caller, nil
}

// Leave removes a caller. A caller leaving mid-call frees the agent.
func (s *State) Leave(callerID string, now time.Time) error {
	if i := s.indexOf(callerID); i >= 0 {
		s.Waiting = append(s.Waiting[:i], s.Waiting[i+1:]...)
		s.Version++
		return nil
	}
	caller, ok := s.Active[callerID]
	if !ok {
		return fmt.Errorf("caller %s: %w", callerID, sentinel.ErrNotFound)
	}
	delete(s.Active, callerID)
	if agent, ok := s.Agents[caller.AgentID]; ok && agent.CurrentCaller == callerID {
		agent.Presence = PresenceOnline
		agent.CurrentCaller = ""
		agent.UpdatedAt = now
	}
	s.Version++
	return nil
}

// Position is the caller's 1-based place in the queue, or 0 if not waiting.
func (s *State) Position(callerID string) int {
	return s.indexOf(callerID) + 1
}

func (s *State) indexOf(callerID string) int {
	for i, c := range s.Waiting {
		if c.ID == callerID {
			return i
		}
	}
	return -1
}

// Clone deep-copies s.
func (s *State) Clone() *State {
	out := &State{
		Agents:  make(map[string]*Agent, len(s.Agents)),
		Waiting: make([]*Caller, 0, len(s.Waiting)),
		Active:  make(map[string]*Caller, len(s.Active)),
		Version: s.Version,
	}
	for id, a := range s.Agents {
		cp := *a
		out.Agents[id] = &cp
	}
	for _, c := range s.Waiting {
		out.Waiting = append(out.Waiting, c.clone())
	}
	for id, c := range s.Active {
		out.Active[id] = c.clone()
	}
	return out
}

func (c *Caller) clone() *Caller {
	cp := *c
	if c.ClaimedAt != nil {
		t := *c.ClaimedAt
		cp.ClaimedAt = &t
	}
	return &cp
}
