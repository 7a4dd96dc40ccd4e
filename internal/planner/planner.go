// Package planner generates risk-weighted A* paths for individual agents
// and assembles per-mission plans from prioritized, allocated tasks.
package planner

import (
	"container/heap"

	"github.com/disasterresponse/adrie-core/internal/environment"
	"github.com/disasterresponse/adrie-core/internal/model"
)

// riskLookup is satisfied by model.RiskField; declared as an interface
// so the planner's A* core doesn't need to import the risk package.
type riskLookup interface {
	riskAt(c model.Coordinate) float64
}

type fieldLookup model.RiskField

func (f fieldLookup) riskAt(c model.Coordinate) float64 {
	if nr, ok := f[c]; ok {
		return nr.TotalRisk
	}
	return 0
}

// searchNode is one entry in the A* open set.
type searchNode struct {
	coord  model.Coordinate
	fScore float64
	gScore float64
	index  int
}

// openSet is a min-heap on fScore, ties broken on gScore — lower g first.
// Nodes with equal f and g are not ordered further: neither their
// coordinates nor their insertion order are compared.
type openSet []*searchNode

func (h openSet) Len() int { return len(h) }

func (h openSet) Less(i, j int) bool {
	if h[i].fScore != h[j].fScore {
		return h[i].fScore < h[j].fScore
	}
	return h[i].gScore < h[j].gScore
}

func (h openSet) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *openSet) Push(x interface{}) {
	n := x.(*searchNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *openSet) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// Planner runs risk-weighted A* over a mission's environment.
type Planner struct{}

// New builds a Planner. It is stateless; all per-call state lives on the
// stack of PlanAgentPath.
func New() *Planner { return &Planner{} }

// PlanAgentPath runs A* from agent's current location to goal under the
// given objective, over env using field for per-cell risk. It returns the
// path (inclusive of start and goal), the accumulated step cost, and the
// accumulated risk. A nil path means the goal is unreachable — this is a
// normal outcome, not a failure.
func (p *Planner) PlanAgentPath(env *environment.Environment, field model.RiskField, start, goal model.Coordinate, objective model.PlanningObjective) (path []model.Coordinate, cost float64, risk float64) {
	if start == goal {
		return []model.Coordinate{start}, 0, 0
	}

	lookup := fieldLookup(field)

	cameFrom := make(map[model.Coordinate]model.Coordinate)
	gScore := map[model.Coordinate]float64{start: 0}
	riskScore := map[model.Coordinate]float64{start: 0}

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, &searchNode{coord: start, fScore: heuristic(start, goal, 0, objective), gScore: 0})

	visited := make(map[model.Coordinate]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		if visited[current.coord] {
			continue
		}
		visited[current.coord] = true

		if current.coord == goal {
			return reconstructPath(cameFrom, goal), gScore[goal], riskScore[goal]
		}

		for _, neighbor := range env.Neighbors(current.coord) {
			tentativeG := gScore[current.coord] + 1.0
			neighborRisk := lookup.riskAt(neighbor)
			// Accumulated risk is clamped at every step, so a long path
			// through many hazard cells saturates at 1 instead of growing
			// without bound.
			newRiskAccum := riskScore[current.coord] + neighborRisk
			if newRiskAccum > 1 {
				newRiskAccum = 1
			}

			existingG, seen := gScore[neighbor]
			if !seen || tentativeG < existingG {
				cameFrom[neighbor] = current.coord
				gScore[neighbor] = tentativeG
				riskScore[neighbor] = newRiskAccum

				f := tentativeG + heuristic(neighbor, goal, newRiskAccum, objective)
				heap.Push(open, &searchNode{coord: neighbor, fScore: f, gScore: tentativeG})
			}
		}
	}

	return nil, 0, 0
}

// heuristic returns the A* estimate for a node: Manhattan distance to
// goal, plus, only under minimize_risk_exposure, a term proportional to
// risk already accumulated on the path so far. That second term is a
// function of path history, not of remaining distance, so it is not an
// admissible heuristic: it deliberately trades optimality for a strong
// bias toward low-risk routes.
func heuristic(current, goal model.Coordinate, accumulatedRisk float64, objective model.PlanningObjective) float64 {
	h := float64(absInt(current.X-goal.X) + absInt(current.Y-goal.Y))
	if objective == model.ObjectiveMinimizeRiskExposure {
		h += accumulatedRisk * 100
	}
	return h
}

func reconstructPath(cameFrom map[model.Coordinate]model.Coordinate, goal model.Coordinate) []model.Coordinate {
	path := []model.Coordinate{goal}
	current := goal
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// BuildAgentPlan assembles the single-agent plan for a task whose target
// has already been decided by the allocator, wiring in the A*-derived
// path, cost, and risk.
func (p *Planner) BuildAgentPlan(env *environment.Environment, field model.RiskField, agent *model.Agent, task model.AgentTask, objective model.PlanningObjective) *model.AgentPlan {
	if task.TargetLocation == nil {
		return nil
	}

	path, cost, riskAccum := p.PlanAgentPath(env, field, agent.CurrentLocation, *task.TargetLocation, objective)
	if path == nil {
		return nil
	}

	task.Path = path
	task.ExpectedRisk = riskAccum
	task.EstimatedTimeSeconds = int(cost)

	return &model.AgentPlan{
		AgentID:               agent.ID,
		Tasks:                 []model.AgentTask{task},
		TotalEstimatedSeconds: int(cost),
		TotalExpectedRisk:     riskAccum,
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var _ riskLookup = fieldLookup(nil)
