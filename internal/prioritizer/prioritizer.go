// Package prioritizer ranks victims for rescue by a weighted, configurable
// scoring function combining injury severity, time sensitivity, and
// accessibility risk.
package prioritizer

import (
	"sort"

	"github.com/disasterresponse/adrie-core/internal/model"
)

// Config weights the four scoring factors. The weights need not sum to 1;
// scores are clamped to [0, 1] after combination.
type Config struct {
	SeverityWeight           float64
	TimeSensitivityWeight    float64
	AccessibilityRiskWeight  float64
	NumAgentsAvailableWeight float64
}

// DefaultConfig returns the standard scoring weights.
func DefaultConfig() Config {
	return Config{
		SeverityWeight:           0.4,
		TimeSensitivityWeight:    0.3,
		AccessibilityRiskWeight:  0.2,
		NumAgentsAvailableWeight: 0.1,
	}
}

// DefaultSeverityScores are the published per-severity scores (the
// SEVERITY_*_SCORE environment overrides start from these).
func DefaultSeverityScores() map[model.InjurySeverity]float64 {
	return map[model.InjurySeverity]float64{
		model.SeverityCritical: 1.0,
		model.SeveritySevere:   0.75,
		model.SeverityModerate: 0.5,
		model.SeverityMild:     0.25,
	}
}

// Prioritizer scores and ranks victims.
type Prioritizer struct {
	cfg            Config
	severityScores map[model.InjurySeverity]float64
}

// New builds a Prioritizer with cfg and the default severity scores. A
// zero-value Config is replaced with DefaultConfig.
func New(cfg Config) *Prioritizer {
	return NewWithSeverityScores(cfg, DefaultSeverityScores())
}

// NewWithSeverityScores builds a Prioritizer with cfg and an explicit
// severity-score table, letting config overrides for any of the four
// severities replace only the scores that changed.
func NewWithSeverityScores(cfg Config, severityScores map[model.InjurySeverity]float64) *Prioritizer {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if severityScores == nil {
		severityScores = DefaultSeverityScores()
	}
	return &Prioritizer{cfg: cfg, severityScores: severityScores}
}

// Prioritize scores every victim and returns them sorted by descending
// priority_score. Rescued victims always score 0 and sort last. The input
// slice is not mutated; a new sorted slice is returned.
func (p *Prioritizer) Prioritize(victims []*model.Victim, field model.RiskField, numAgentsAvailable int) []*model.Victim {
	out := make([]*model.Victim, len(victims))
	copy(out, victims)

	for _, v := range out {
		if v.IsRescued {
			v.PriorityScore = 0.0
			continue
		}

		severityScore := p.severityScores[v.InjurySeverity]

		timeRemaining := v.EstimatedSurvivalWindowMin - v.TimeSinceIncidentMin
		timeSensitivityScore := 0.0
		if timeRemaining > 0 {
			timeSensitivityScore = clamp01(1.0 - float64(timeRemaining)/360.0)
		}

		accessibilityRisk := 0.0
		if nr, ok := field[v.Location]; ok {
			accessibilityRisk = nr.TotalRisk
		}
		accessibilityScore := 1.0 - accessibilityRisk

		// Agent availability is accepted as a parameter for forward
		// compatibility with the weighted formula but does not yet
		// contribute a nonzero factor.
		agentAvailabilityFactor := 0.0
		_ = numAgentsAvailable

		total := p.cfg.SeverityWeight*severityScore +
			p.cfg.TimeSensitivityWeight*timeSensitivityScore +
			p.cfg.AccessibilityRiskWeight*accessibilityScore +
			p.cfg.NumAgentsAvailableWeight*agentAvailabilityFactor

		v.PriorityScore = clamp01(total)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriorityScore > out[j].PriorityScore
	})

	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
