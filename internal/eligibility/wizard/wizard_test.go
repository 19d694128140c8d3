package wizard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"screening/internal/eligibility"
)

// WizardSuite covers the gating discipline: the questionnaire never sits on a
// step whose prerequisite has failed.
type WizardSuite struct {
	suite.Suite
	w *Wizard
}

func (s *WizardSuite) SetupTest() {
	s.w = New(eligibility.NewEngine(eligibility.DefaultConfig()))
}

func TestWizardSuite(t *testing.T) {
	suite.Run(t, new(WizardSuite))
}

func (s *WizardSuite) apply(events ...Event) State {
	return s.w.ReduceAll(Initial(), events)
}

func (s *WizardSuite) TestParseStep() {
	for raw, want := range map[string]Step{"1": StepAge, " 2 ": StepExclusions, "3": StepRisk} {
		got, ok := ParseStep(raw)
		s.True(ok, raw)
		s.Equal(want, got, raw)
	}
	for _, raw := range []string{"0", "4", "-1", "abc", "", "2.5"} {
		_, ok := ParseStep(raw)
		s.False(ok, raw)
	}
}

func (s *WizardSuite) TestAgeGate() {
	s.Run("cannot leave the age step without an eligible age", func() {
		st := s.apply(SetAge("45"), Next())
		s.Equal(StepAge, st.Step)
	})

	s.Run("eligible age unlocks exclusions", func() {
		st := s.apply(SetAge("50"), Next())
		s.Equal(StepExclusions, st.Step)
	})

	s.Run("unknown age keeps the user on step one", func() {
		st := s.apply(SetAge("abc"), Navigate("3"))
		s.Equal(StepAge, st.Step)
		s.False(st.Candidate.Age.Known())
	})

	s.Run("age input is clamped at the input layer", func() {
		st := s.apply(SetAge("200"))
		s.Equal("120", st.AgeInput)
		s.Equal(eligibility.KnownAge(120), st.Candidate.Age)
	})

	s.Run("negative age clears the input", func() {
		st := s.apply(SetAge("-5"))
		s.Empty(st.AgeInput)
		s.False(st.Candidate.Age.Known())
	})
}

func (s *WizardSuite) TestExclusionGate() {
	s.Run("exclusion blocks the risk step", func() {
		st := s.apply(SetAge("70"), Next(), ToggleExclusion("vigilancia_colonoscopia"), Next())
		s.Equal(StepExclusions, st.Step)
		s.Equal(eligibility.OutcomeActiveSurveillanceExcluded, s.w.Preview(st))
	})

	s.Run("clearing the exclusion unlocks risk", func() {
		st := s.apply(
			SetAge("70"), Next(),
			ToggleExclusion("vigilancia_colonoscopia"),
			ToggleExclusion("vigilancia_colonoscopia"),
			Next(),
		)
		s.Equal(StepRisk, st.Step)
		s.Empty(st.Candidate.ExclusionCodes)
	})
}

func (s *WizardSuite) TestClampOnChangedAnswers() {
	s.Run("lowering age from the risk step returns to step one", func() {
		st := s.apply(SetAge("62"), Navigate("3"))
		s.Require().Equal(StepRisk, st.Step)

		st = s.w.Reduce(st, SetAge("40"))
		s.Equal(StepAge, st.Step)
	})

	s.Run("adding an exclusion from the risk step returns to exclusions", func() {
		st := s.apply(SetAge("62"), Navigate("3"))
		st = s.w.Reduce(st, SetExclusions("colonoscopia_reciente"))
		s.Equal(StepExclusions, st.Step)
	})

	s.Run("a hand-built state on a locked step is clamped", func() {
		st := Initial()
		st.Step = StepRisk
		st = s.w.Reduce(st, Event{Type: "unknown"})
		s.Equal(StepAge, st.Step)
	})
}

func (s *WizardSuite) TestNavigate() {
	s.Run("requests are clamped to the max allowed step", func() {
		st := s.apply(SetAge("62"), SetExclusions("x"), Navigate("3"))
		s.Equal(StepExclusions, st.Step)
	})

	s.Run("out of range and non-numeric requests are ignored", func() {
		st := s.apply(SetAge("62"), Next())
		s.Require().Equal(StepExclusions, st.Step)

		for _, raw := range []string{"0", "9", "tres", ""} {
			s.Equal(StepExclusions, s.w.Reduce(st, Navigate(raw)).Step, raw)
		}
	})

	s.Run("back never goes below the first step", func() {
		st := s.apply(Back(), Back())
		s.Equal(StepAge, st.Step)
	})

	s.Run("next stops at the last step", func() {
		st := s.apply(SetAge("62"), Next(), Next(), Next(), Next())
		s.Equal(StepRisk, st.Step)
	})
}

func (s *WizardSuite) TestReduceDoesNotMutateInput() {
	before := s.apply(SetAge("62"), Next(), ToggleExclusion("a"))
	snapshot := before.clone()

	_ = s.w.Reduce(before, ToggleExclusion("b"))
	_ = s.w.Reduce(before, ToggleExclusion("a"))

	s.Equal(snapshot, before)
}

func (s *WizardSuite) TestPreviewAndReset() {
	st := s.apply(SetAge("62"), Navigate("3"), ToggleRisk("hematoquecia"), ToggleRisk("hematoquecia"), ToggleRisk("hematoquecia"))
	s.Equal(eligibility.CodeSet{"hematoquecia"}, st.Candidate.RiskCodes)
	s.Equal(eligibility.OutcomeHighRiskReferral, s.w.Preview(st))

	st = s.w.Reduce(st, Reset())
	s.Equal(Initial(), st)
	s.Equal(eligibility.OutcomeAgeExcluded, s.w.Preview(st))
}

func (s *WizardSuite) TestMaxAllowedStep() {
	cases := []struct {
		c    eligibility.Candidate
		want Step
	}{
		{eligibility.NewCandidate(eligibility.UnknownAge, nil, nil), StepAge},
		{eligibility.NewCandidate(eligibility.KnownAge(49), nil, nil), StepAge},
		{eligibility.NewCandidate(eligibility.KnownAge(50), []string{"x"}, nil), StepExclusions},
		{eligibility.NewCandidate(eligibility.KnownAge(50), nil, []string{"y"}), StepRisk},
	}
	for _, tc := range cases {
		s.Equal(tc.want, s.w.MaxAllowedStep(tc.c))
	}
}

func (s *WizardSuite) TestEventDecoding() {
	s.Run("numeric and string values", func() {
		var events []Event
		s.Require().NoError(json.Unmarshal([]byte(
			`[{"type":"set_age","value":62},{"type":"navigate","value":3},{"type":"navigate","value":"2"}]`), &events))
		s.Equal([]Event{SetAge("62"), Navigate("3"), Navigate("2")}, events)

		st := s.apply(events[:2]...)
		s.Equal(StepRisk, st.Step)
	})

	s.Run("malformed values are ignored, not rejected", func() {
		var events []Event
		s.Require().NoError(json.Unmarshal([]byte(
			`[{"type":"navigate","value":true},{"type":"navigate","value":{"step":3}},{"type":7},"next",null,{"type":"set_risks","codes":"x"}]`), &events))
		s.Require().Len(events, 6)
		s.Equal(Event{Type: EventNavigate}, events[0])
		s.Equal(Event{Type: EventNavigate}, events[1])
		s.Equal(EventType("7"), events[2].Type)
		s.Equal(Event{}, events[3])
		s.Equal(Event{}, events[4])
		s.Empty(events[5].Codes)

		st := s.apply(append([]Event{SetAge("62"), Next()}, events...)...)
		s.Equal(StepExclusions, st.Step)
	})

	s.Run("codes are decoded as a set", func() {
		var e Event
		s.Require().NoError(json.Unmarshal([]byte(`{"type":"set_exclusions","codes":[" a ","a",1,"b"]}`), &e))
		s.Equal(SetExclusions("a", "b"), e)
	})
}
