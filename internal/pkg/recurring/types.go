package recurring

import (
	"time"

	"github.com/subkassa/autopay/internal/pkg/env"
)

// Outcome classifies what happened to a single subscription during a pass.
type Outcome string

const (
	OutcomeCharged  Outcome = "charged"
	OutcomeNoMethod Outcome = "no_method"
	OutcomeFailed   Outcome = "failed"
	OutcomeSkipped  Outcome = "skipped"
)

// RunStats aggregates the outcomes of one scheduler pass.
type RunStats struct {
	Checked  int `json:"checked"`
	Charged  int `json:"charged"`
	NoMethod int `json:"no_method"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// Count records one outcome.
func (s *RunStats) Count(outcome Outcome) {
	switch outcome {
	case OutcomeCharged:
		s.Charged++
	case OutcomeNoMethod:
		s.NoMethod++
	case OutcomeFailed:
		s.Failed++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// HasActivity reports whether the pass did anything worth a summary line.
func (s RunStats) HasActivity() bool {
	return s.Charged+s.Failed > 0
}

// Config carries the scheduler settings.
type Config struct {
	Enabled       bool
	CheckInterval time.Duration
	ChargeLockTTL time.Duration
}

// ConfigFromEnv reads the scheduler configuration from the environment.
func ConfigFromEnv() Config {
	interval := env.GetEnvInt("AUTOPAY_CHECK_INTERVAL_MINUTES", 60)
	if interval <= 0 {
		interval = 60
	}
	return Config{
		Enabled:       env.GetEnvBool("AUTOPAY_ENABLED", false),
		CheckInterval: time.Duration(interval) * time.Minute,
		ChargeLockTTL: 5 * time.Minute,
	}
}
