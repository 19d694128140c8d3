package eligibility

// Engine binds the rule functions to one Config so callers (the wizard, the
// HTTP service) receive the rules as a dependency instead of a global.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// ParseAge runs raw through the input clamp and then NormalizeAge.
func (e *Engine) ParseAge(raw string) (clamped string, age Age) {
	clamped = ClampAgeInput(raw, e.cfg.Bounds)
	return clamped, NormalizeAge(clamped, e.cfg.Bounds).Age()
}

func (e *Engine) IsAgeEligible(age Age) bool {
	return IsAgeEligible(age, e.cfg.MinAge)
}

func (e *Engine) HasExclusion(codes CodeSet) bool {
	return HasExclusion(codes)
}

func (e *Engine) HasRisk(codes CodeSet) bool {
	return HasRisk(codes)
}

func (e *Engine) Classify(c Candidate) Outcome {
	return Classify(c, e.cfg)
}

// Labels returns the label overrides matching this engine's minimum age.
func (e *Engine) Labels() LabelOverrides {
	return LabelOverrides{MinAge: e.cfg.MinAge}
}
