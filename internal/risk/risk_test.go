package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disasterresponse/adrie-core/internal/environment"
	"github.com/disasterresponse/adrie-core/internal/model"
)

func TestRecompute(t *testing.T) {
	t.Run("grid coverage and clamping for a no-hazard grid", func(t *testing.T) {
		env, err := environment.New(environment.InitRequest{MapSize: 5, HazardIntensityFactor: 0.0, NumVictims: 0, Seed: 1})
		require.NoError(t, err)

		calc := NewCalculator(DefaultConfig())
		field := calc.Recompute(env)

		assert.Len(t, field, 25)
		for x := 0; x < 5; x++ {
			for y := 0; y < 5; y++ {
				nr, ok := field[model.Coordinate{X: x, Y: y}]
				require.True(t, ok)
				assert.Equal(t, 0.0, nr.TotalRisk)
				assert.Equal(t, model.RiskLow, nr.RiskLevel)
			}
		}
	})

	t.Run("risk is clamped to [0,1] and thresholds match the level table", func(t *testing.T) {
		env, err := environment.New(environment.InitRequest{MapSize: 10, HazardIntensityFactor: 0.5, NumVictims: 2, Seed: 42})
		require.NoError(t, err)

		calc := NewCalculator(DefaultConfig())
		field := calc.Recompute(env)

		assert.Len(t, field, 100)
		for _, nr := range field {
			assert.GreaterOrEqual(t, nr.TotalRisk, 0.0)
			assert.LessOrEqual(t, nr.TotalRisk, 1.0)
			switch {
			case nr.TotalRisk >= 0.8:
				assert.Equal(t, model.RiskCritical, nr.RiskLevel)
			case nr.TotalRisk >= 0.5:
				assert.Equal(t, model.RiskHigh, nr.RiskLevel)
			case nr.TotalRisk >= 0.2:
				assert.Equal(t, model.RiskMedium, nr.RiskLevel)
			default:
				assert.Equal(t, model.RiskLow, nr.RiskLevel)
			}
		}
	})

	t.Run("determinism: same seed produces identical fields", func(t *testing.T) {
		req := environment.InitRequest{MapSize: 8, HazardIntensityFactor: 0.4, NumVictims: 3, Seed: 7}
		env1, err := environment.New(req)
		require.NoError(t, err)
		env2, err := environment.New(req)
		require.NoError(t, err)

		calc := NewCalculator(DefaultConfig())
		field1 := calc.Recompute(env1)
		field2 := calc.Recompute(env2)

		assert.Equal(t, field1, field2)
	})
}

func TestProbabilisticCollapseModel(t *testing.T) {
	coord := model.Coordinate{X: 1, Y: 1}

	t.Run("critical risk level yields high collapse probability", func(t *testing.T) {
		field := model.RiskField{coord: model.NodeRisk{RiskLevel: model.RiskCritical}}
		assert.Equal(t, 0.7, ProbabilisticCollapseModel(field, coord))
	})

	t.Run("high risk level yields moderate collapse probability", func(t *testing.T) {
		field := model.RiskField{coord: model.NodeRisk{RiskLevel: model.RiskHigh}}
		assert.Equal(t, 0.3, ProbabilisticCollapseModel(field, coord))
	})

	t.Run("low and medium risk fall back to the background rate", func(t *testing.T) {
		field := model.RiskField{coord: model.NodeRisk{RiskLevel: model.RiskLow}}
		assert.Equal(t, 0.05, ProbabilisticCollapseModel(field, coord))
	})

	t.Run("unknown coordinate falls back to the background rate", func(t *testing.T) {
		field := model.RiskField{}
		assert.Equal(t, 0.05, ProbabilisticCollapseModel(field, coord))
	})
}
