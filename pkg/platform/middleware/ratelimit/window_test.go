package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type WindowSuite struct {
	suite.Suite
	window *Window
	now    time.Time
}

func TestWindowSuite(t *testing.T) {
	suite.Run(t, new(WindowSuite))
}

func (s *WindowSuite) SetupTest() {
	s.now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s.window = NewWindow(testLimit, testWindow)
	s.window.now = func() time.Time { return s.now }
}

func (s *WindowSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result := s.window.Allow("first")
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
		s.Equal(s.now.Add(testWindow), result.ResetAt)
	})

	s.Run("request over limit denied", func() {
		for range testLimit {
			s.Require().True(s.window.Allow("over").Allowed)
		}
		result := s.window.Allow("over")
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Equal(60, result.RetryAfter)
	})

	s.Run("keys are independent", func() {
		for range testLimit {
			s.window.Allow("a")
		}
		s.False(s.window.Allow("a").Allowed)
		s.True(s.window.Allow("b").Allowed)
	})
}

func (s *WindowSuite) TestSlidingExpiry() {
	for range testLimit {
		s.window.Allow("slide")
		s.now = s.now.Add(10 * time.Second)
	}
	s.False(s.window.Allow("slide").Allowed)

	// The oldest stamp leaves the window first.
	s.now = s.now.Add(31 * time.Second)
	result := s.window.Allow("slide")
	s.True(result.Allowed)
	s.Equal(0, result.Remaining)
}

func (s *WindowSuite) TestSweep() {
	s.window.Allow("stale")
	s.now = s.now.Add(testWindow + time.Second)
	s.window.Allow("fresh")

	s.Equal(1, s.window.Sweep())
	s.Len(s.window.buckets, 1)
}

func (s *WindowSuite) TestConcurrentAllow() {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.window.Allow("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(testLimit, allowed)
}
