// Package risk computes and propagates the per-cell risk field derived
// from a mission's active hazards.
package risk

import (
	"sync"

	"github.com/disasterresponse/adrie-core/internal/environment"
	"github.com/disasterresponse/adrie-core/internal/model"
)

const defaultHazardWeight = 0.5

// DefaultHazardWeights are the published per-kind base risk multipliers
// (HAZARD_*_WEIGHT in the environment configuration). Exposed so config
// loading can start from these and apply overrides.
func DefaultHazardWeights() map[model.HazardKind]float64 {
	return map[model.HazardKind]float64{
		model.HazardFire:     0.8,
		model.HazardCollapse: 1.0,
		model.HazardFlood:    0.6,
		model.HazardGasLeak:  0.9,
		model.HazardDebris:   0.4,
	}
}

// Config tunes hazard weighting and the propagation step. All fields map
// directly onto the environment-driven configuration surface.
type Config struct {
	HazardWeights         map[model.HazardKind]float64
	DecayFactorBase       float64 // RISK_DECAY_FACTOR_BASE, default 1.0
	PropagationIterations int
	PropagationFraction   float64 // RISK_PROPAGATION_FACTOR, default 0.1
}

// DefaultConfig is the single-iteration, 0.1-fraction, 1.0-decay-base
// propagation setup.
func DefaultConfig() Config {
	return Config{
		HazardWeights:         DefaultHazardWeights(),
		DecayFactorBase:       1.0,
		PropagationIterations: 1,
		PropagationFraction:   0.1,
	}
}

// Calculator recomputes a mission's risk field from its environment's
// current hazards. It holds no environment-specific state itself — the
// field is recomputed wholesale on every call and handed back to the
// caller to store.
type Calculator struct {
	mu  sync.Mutex
	cfg Config
}

// NewCalculator builds a Calculator with cfg. A zero-value Config is
// replaced with DefaultConfig; a Config with a nil weight map falls back
// to DefaultHazardWeights so partial overrides don't lose other kinds.
func NewCalculator(cfg Config) *Calculator {
	if cfg.PropagationIterations == 0 && cfg.PropagationFraction == 0 && cfg.HazardWeights == nil {
		cfg = DefaultConfig()
	}
	if cfg.HazardWeights == nil {
		cfg.HazardWeights = DefaultHazardWeights()
	}
	if cfg.DecayFactorBase == 0 {
		cfg.DecayFactorBase = 1.0
	}
	return &Calculator{cfg: cfg}
}

// Recompute builds a fresh RiskField for env's current hazards. Every
// in-bounds coordinate is present in the result, satisfying grid coverage.
func (c *Calculator) Recompute(env *environment.Environment) model.RiskField {
	// Serialize recomputes: callers that fire concurrent replans for the
	// same mission must not interleave partial field builds.
	c.mu.Lock()
	defer c.mu.Unlock()

	gridSize := env.GridSize()
	field := make(model.RiskField, gridSize*gridSize)

	for x := 0; x < gridSize; x++ {
		for y := 0; y < gridSize; y++ {
			coord := model.Coordinate{X: x, Y: y}
			field[coord] = model.NodeRisk{TotalRisk: 0, DominantHazard: nil, RiskLevel: model.RiskLow}
		}
	}

	for _, h := range env.Hazards() {
		c.applyHazard(h, field, gridSize)
	}

	c.propagate(field, env)

	for coord, nr := range field {
		nr.RiskLevel = riskLevel(nr.TotalRisk)
		field[coord] = nr
	}

	return field
}

// applyHazard spreads one hazard's contribution across its diamond-shaped
// radius, decaying by inverse Manhattan distance.
func (c *Calculator) applyHazard(h *model.Hazard, field model.RiskField, gridSize int) {
	baseWeight, ok := c.cfg.HazardWeights[h.Kind]
	if !ok {
		baseWeight = defaultHazardWeight
	}

	for dx := -h.Radius; dx <= h.Radius; dx++ {
		for dy := -h.Radius; dy <= h.Radius; dy++ {
			if abs(dx)+abs(dy) > h.Radius {
				continue
			}

			tx, ty := h.Location.X+dx, h.Location.Y+dy
			if tx < 0 || tx >= gridSize || ty < 0 || ty >= gridSize {
				continue
			}
			target := model.Coordinate{X: tx, Y: ty}

			distance := abs(dx) + abs(dy)
			if distance < 1 {
				distance = 1
			}
			decay := c.cfg.DecayFactorBase / float64(distance)
			contribution := h.Intensity * baseWeight * decay

			nr := field[target]
			nr.TotalRisk = clamp01(nr.TotalRisk + contribution)

			// Dominance compares this hazard's contribution against the
			// currently-recorded dominant hazard's base weight, not its
			// contribution. A hazard with a small contribution but a
			// high base weight can therefore "lose" dominance to a later
			// hazard with a larger contribution but lower weight, and
			// vice versa. Callers depend on this exact comparison.
			if nr.DominantHazard == nil || contribution > c.cfg.HazardWeights[*nr.DominantHazard] {
				kind := h.Kind
				nr.DominantHazard = &kind
			}

			field[target] = nr
		}
	}
}

// propagate bleeds a fraction of each node's risk onto its passable
// neighbors, for c.cfg.PropagationIterations rounds. Each round reads the
// previous round's values in full before writing, so propagation within a
// round is simultaneous rather than order-dependent.
func (c *Calculator) propagate(field model.RiskField, env *environment.Environment) {
	for i := 0; i < c.cfg.PropagationIterations; i++ {
		next := make(map[model.Coordinate]float64, len(field))
		for coord, nr := range field {
			next[coord] = nr.TotalRisk
		}

		for coord, nr := range field {
			if nr.TotalRisk <= 0 {
				continue
			}
			for _, neighbor := range env.Neighbors(coord) {
				propagated := nr.TotalRisk * c.cfg.PropagationFraction
				if propagated > next[neighbor] {
					next[neighbor] = clamp01(propagated)
				}
			}
		}

		for coord, risk := range next {
			nr := field[coord]
			nr.TotalRisk = risk
			field[coord] = nr
		}
	}
}

// ProbabilisticCollapseModel estimates the probability of structural
// collapse at coord from its current risk level: 0.7 for critical risk,
// 0.3 for high, and a 0.05 background rate otherwise. A cheap derived
// read consumed by the explainability surface, never an input to the
// planner.
func ProbabilisticCollapseModel(field model.RiskField, coord model.Coordinate) float64 {
	nr, ok := field[coord]
	if !ok {
		return 0.05
	}
	switch nr.RiskLevel {
	case model.RiskCritical:
		return 0.7
	case model.RiskHigh:
		return 0.3
	default:
		return 0.05
	}
}

func riskLevel(total float64) model.RiskLevel {
	switch {
	case total >= 0.8:
		return model.RiskCritical
	case total >= 0.5:
		return model.RiskHigh
	case total >= 0.2:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
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

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
