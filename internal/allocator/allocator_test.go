package allocator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/disasterresponse/adrie-core/internal/model"
)

func extractCapable(loc model.Coordinate) *model.Agent {
	return &model.Agent{
		ID:              uuid.New(),
		CurrentLocation: loc,
		Status:          model.AgentIdle,
		Capabilities:    map[model.AgentCapability]struct{}{model.CapabilityExtractVictims: {}},
	}
}

func TestAllocate(t *testing.T) {
	t.Run("binds the nearest agent to each victim", func(t *testing.T) {
		near := extractCapable(model.Coordinate{X: 0, Y: 0})
		far := extractCapable(model.Coordinate{X: 9, Y: 9})
		victim := &model.Victim{ID: uuid.New(), Location: model.Coordinate{X: 1, Y: 1}}

		a := New()
		allocations := a.Allocate([]*model.Agent{far, near}, []*model.Victim{victim})

		assert.Len(t, allocations, 1)
		assert.Equal(t, near.ID, allocations[0].Agent.ID)
		assert.Equal(t, victim.ID, *allocations[0].Task.VictimID)
	})

	t.Run("each agent binds to at most one victim per cycle (symmetry, S7)", func(t *testing.T) {
		agent := extractCapable(model.Coordinate{X: 0, Y: 0})
		v1 := &model.Victim{ID: uuid.New(), Location: model.Coordinate{X: 1, Y: 0}}
		v2 := &model.Victim{ID: uuid.New(), Location: model.Coordinate{X: 2, Y: 0}}

		a := New()
		allocations := a.Allocate([]*model.Agent{agent}, []*model.Victim{v1, v2})

		assert.Len(t, allocations, 1)
		assert.Equal(t, v1.ID, *allocations[0].Task.VictimID)
	})

	t.Run("skips rescued or already-assigned victims", func(t *testing.T) {
		agent := extractCapable(model.Coordinate{X: 0, Y: 0})
		rescued := &model.Victim{ID: uuid.New(), Location: model.Coordinate{X: 1, Y: 0}, IsRescued: true}
		otherAgentID := uuid.New()
		assigned := &model.Victim{ID: uuid.New(), Location: model.Coordinate{X: 0, Y: 1}, AssignedAgentID: &otherAgentID}

		a := New()
		allocations := a.Allocate([]*model.Agent{agent}, []*model.Victim{rescued, assigned})

		assert.Empty(t, allocations)
	})

	t.Run("no extract-capable agents yields no allocations", func(t *testing.T) {
		agent := &model.Agent{ID: uuid.New(), Capabilities: map[model.AgentCapability]struct{}{}}
		victim := &model.Victim{ID: uuid.New()}

		a := New()
		allocations := a.Allocate([]*model.Agent{agent}, []*model.Victim{victim})

		assert.Empty(t, allocations)
	})
}
