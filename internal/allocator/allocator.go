// Package allocator assigns prioritized victims to available rescue agents
// using a greedy nearest-agent heuristic.
package allocator

import (
	"github.com/disasterresponse/adrie-core/internal/model"
)

// Allocation is one victim-to-agent binding produced by a single
// allocation round, together with the provisional task it generates. The
// task's path is left empty — the planner fills it in.
type Allocation struct {
	Agent *model.Agent
	Task  model.AgentTask
}

// Allocator performs greedy nearest-agent task allocation.
type Allocator struct{}

// New builds an Allocator. It carries no configuration or state; the
// greedy strategy is the only one implemented.
func New() *Allocator { return &Allocator{} }

// Allocate binds each not-yet-assigned, not-yet-rescued victim (in the
// order given — callers pass the prioritizer's output) to the nearest
// available agent with the extract_victims capability. Each agent binds to
// at most one victim per call; agents and victims are not mutated here —
// callers apply the returned bindings.
func (a *Allocator) Allocate(agents []*model.Agent, victims []*model.Victim) []Allocation {
	capable := make([]*model.Agent, 0, len(agents))
	for _, ag := range agents {
		if ag.HasCapability(model.CapabilityExtractVictims) {
			capable = append(capable, ag)
		}
	}
	if len(capable) == 0 {
		return nil
	}

	taken := make(map[*model.Agent]bool, len(capable))
	allocations := make([]Allocation, 0, len(victims))

	for _, v := range victims {
		if v.IsRescued || v.AssignedAgentID != nil {
			continue
		}

		var best *model.Agent
		minDistance := -1

		for _, ag := range capable {
			if taken[ag] {
				continue
			}
			d := manhattan(ag.CurrentLocation, v.Location)
			if minDistance < 0 || d < minDistance {
				minDistance = d
				best = ag
			}
		}

		if best == nil {
			break
		}

		taken[best] = true
		target := v.Location

		estimatedSeconds := minDistance * 10
		if estimatedSeconds < 1 {
			estimatedSeconds = 1
		}

		allocations = append(allocations, Allocation{
			Agent: best,
			Task: model.AgentTask{
				Kind:                 "rescue_victim",
				TargetLocation:       &target,
				VictimID:             &v.ID,
				Path:                 nil,
				ExpectedRisk:         v.AccessibilityRisk,
				EstimatedTimeSeconds: estimatedSeconds,
			},
		})

		if len(taken) == len(capable) {
			break
		}
	}

	return allocations
}

func manhattan(a, b model.Coordinate) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
