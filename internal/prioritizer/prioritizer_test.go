package prioritizer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/disasterresponse/adrie-core/internal/model"
)

func TestPrioritize(t *testing.T) {
	t.Run("rescued victims score zero and sort last", func(t *testing.T) {
		rescued := &model.Victim{ID: uuid.New(), IsRescued: true, InjurySeverity: model.SeverityCritical}
		unrescued := &model.Victim{
			ID: uuid.New(), InjurySeverity: model.SeverityMild,
			TimeSinceIncidentMin: 10, EstimatedSurvivalWindowMin: 300,
		}

		p := New(DefaultConfig())
		out := p.Prioritize([]*model.Victim{rescued, unrescued}, model.RiskField{}, 1)

		assert.Equal(t, 0.0, rescued.PriorityScore)
		assert.Equal(t, unrescued.ID, out[0].ID)
	})

	t.Run("priority is monotone in severity (S5)", func(t *testing.T) {
		loc := model.Coordinate{X: 1, Y: 1}
		critical := &model.Victim{
			ID: uuid.New(), Location: loc, InjurySeverity: model.SeverityCritical,
			TimeSinceIncidentMin: 20, EstimatedSurvivalWindowMin: 100,
		}
		mild := &model.Victim{
			ID: uuid.New(), Location: loc, InjurySeverity: model.SeverityMild,
			TimeSinceIncidentMin: 20, EstimatedSurvivalWindowMin: 100,
		}

		p := New(DefaultConfig())
		out := p.Prioritize([]*model.Victim{mild, critical}, model.RiskField{}, 1)

		assert.Equal(t, critical.ID, out[0].ID)
		assert.Greater(t, critical.PriorityScore, mild.PriorityScore)
	})

	t.Run("scores stay within [0,1] bounds", func(t *testing.T) {
		v := &model.Victim{
			ID: uuid.New(), InjurySeverity: model.SeveritySevere,
			TimeSinceIncidentMin: 5, EstimatedSurvivalWindowMin: 400,
		}
		field := model.RiskField{v.Location: {TotalRisk: 0.9}}

		p := New(DefaultConfig())
		p.Prioritize([]*model.Victim{v}, field, 0)

		assert.GreaterOrEqual(t, v.PriorityScore, 0.0)
		assert.LessOrEqual(t, v.PriorityScore, 1.0)
	})

	t.Run("output is a permutation with non-increasing priority", func(t *testing.T) {
		victims := []*model.Victim{
			{ID: uuid.New(), InjurySeverity: model.SeverityMild, TimeSinceIncidentMin: 10, EstimatedSurvivalWindowMin: 300},
			{ID: uuid.New(), InjurySeverity: model.SeverityCritical, TimeSinceIncidentMin: 10, EstimatedSurvivalWindowMin: 300},
			{ID: uuid.New(), InjurySeverity: model.SeverityModerate, TimeSinceIncidentMin: 10, EstimatedSurvivalWindowMin: 300},
		}

		p := New(DefaultConfig())
		out := p.Prioritize(victims, model.RiskField{}, 2)

		assert.Len(t, out, len(victims))
		for i := 1; i < len(out); i++ {
			assert.GreaterOrEqual(t, out[i-1].PriorityScore, out[i].PriorityScore)
		}
	})
}
