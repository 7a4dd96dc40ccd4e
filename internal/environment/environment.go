// Package environment owns the disaster grid: procedural map generation,
// hazard placement, victim placement, and the passability/neighbor queries
// every other subsystem builds on.
package environment

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/disasterresponse/adrie-core/internal/coreerrors"
	"github.com/disasterresponse/adrie-core/internal/model"
)

// InitRequest parameterizes a single call to New.
type InitRequest struct {
	MapSize               int
	HazardIntensityFactor float64
	NumVictims            int
	Seed                  int64
}

// Environment holds one mission's grid, hazards, and victims. All mutating
// methods are guarded by mu; callers outside this package never see a
// partially-built grid.
type Environment struct {
	mu sync.RWMutex

	gridSize int
	grid     map[model.Coordinate]model.GridNode
	hazards  map[uuid.UUID]*model.Hazard
	victims  map[uuid.UUID]*model.Victim

	// hazardOrder and victimOrder preserve creation order so Hazards() and
	// Victims() are deterministic across runs with the same seed — map
	// iteration order is not, and both orders feed tie-breaking logic
	// (dominant-hazard comparison, prioritizer input-order ties).
	hazardOrder []uuid.UUID
	victimOrder []uuid.UUID
}

// New procedurally generates a fresh environment from req. The same seed
// always reproduces the same grid, hazards, and victim placements.
func New(req InitRequest) (*Environment, error) {
	if req.MapSize <= 0 {
		return nil, fmt.Errorf("map_size must be positive, got %d", req.MapSize)
	}

	rng := rand.New(rand.NewSource(req.Seed))

	env := &Environment{
		gridSize: req.MapSize,
		grid:     make(map[model.Coordinate]model.GridNode, req.MapSize*req.MapSize),
		hazards:  make(map[uuid.UUID]*model.Hazard),
		victims:  make(map[uuid.UUID]*model.Victim),
	}

	env.generateGrid()
	env.generateHazards(req.HazardIntensityFactor, rng)
	env.placeVictims(req.NumVictims, rng)

	return env, nil
}

func (e *Environment) generateGrid() {
	for x := 0; x < e.gridSize; x++ {
		for y := 0; y < e.gridSize; y++ {
			c := model.Coordinate{X: x, Y: y}
			e.grid[c] = model.GridNode{Coord: c, Passable: true, Elevation: 0}
		}
	}
}

// generateHazards places floor(mapSize^2 * intensityFactor * 0.05) hazards
// at random, skipping any coordinate already occupied.
func (e *Environment) generateHazards(intensityFactor float64, rng *rand.Rand) {
	numHazards := int(float64(e.gridSize*e.gridSize) * intensityFactor * 0.05)
	occupied := make(map[model.Coordinate]struct{}, numHazards)

	for i := 0; i < numHazards; i++ {
		loc := model.Coordinate{X: rng.Intn(e.gridSize), Y: rng.Intn(e.gridSize)}
		if _, taken := occupied[loc]; taken {
			continue
		}

		kind := model.AllHazardKinds[rng.Intn(len(model.AllHazardKinds))]
		intensity := (0.1 + rng.Float64()*0.9) * intensityFactor

		maxRadius := 5
		if e.gridSize/5 < maxRadius {
			maxRadius = e.gridSize / 5
		}
		if maxRadius < 1 {
			maxRadius = 1
		}
		radius := 1 + rng.Intn(maxRadius)

		h := &model.Hazard{
			ID:        uuid.New(),
			Kind:      kind,
			Location:  loc,
			Intensity: intensity,
			Radius:    radius,
			Dynamic:   true,
		}
		e.hazards[h.ID] = h
		e.hazardOrder = append(e.hazardOrder, h.ID)
		occupied[loc] = struct{}{}
	}
}

func (e *Environment) placeVictims(numVictims int, rng *rand.Rand) {
	occupied := make(map[model.Coordinate]struct{}, numVictims)

	for i := 0; i < numVictims; i++ {
		var loc model.Coordinate
		for {
			loc = model.Coordinate{X: rng.Intn(e.gridSize), Y: rng.Intn(e.gridSize)}
			if _, taken := occupied[loc]; taken {
				continue
			}
			node, ok := e.grid[loc]
			if ok && node.Passable {
				break
			}
		}
		occupied[loc] = struct{}{}

		severity := model.InjurySeverity([]model.InjurySeverity{
			model.SeverityMild, model.SeverityModerate, model.SeveritySevere, model.SeverityCritical,
		}[rng.Intn(4)])

		timeSince := 10 + rng.Intn(110)
		survivalWindow := timeSince + 30 + rng.Intn(330)

		v := &model.Victim{
			ID:                         uuid.New(),
			Location:                   loc,
			InjurySeverity:             severity,
			TimeSinceIncidentMin:       timeSince,
			EstimatedSurvivalWindowMin: survivalWindow,
			Status:                     model.VictimTrapped,
			AccessibilityRisk:          0.1 + rng.Float64()*0.7,
		}
		e.victims[v.ID] = v
		e.victimOrder = append(e.victimOrder, v.ID)
	}
}

// GridSize returns the side length of the square grid.
func (e *Environment) GridSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gridSize
}

// Node returns the grid node at c, if any.
func (e *Environment) Node(c model.Coordinate) (model.GridNode, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.grid[c]
	return n, ok
}

// RandomPassableCoordinate draws a uniformly random passable cell using
// rng. Returns NoPassableCoordinatesError if the grid has none — it tries
// at most gridSize*gridSize times before falling back to an exhaustive
// scan, so a mostly-blocked grid doesn't spin forever on bad luck.
func (e *Environment) RandomPassableCoordinate(rng *rand.Rand) (model.Coordinate, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for i := 0; i < e.gridSize*e.gridSize; i++ {
		c := model.Coordinate{X: rng.Intn(e.gridSize), Y: rng.Intn(e.gridSize)}
		if n, ok := e.grid[c]; ok && n.Passable {
			return c, nil
		}
	}

	for c, n := range e.grid {
		if n.Passable {
			return c, nil
		}
	}

	return model.Coordinate{}, &coreerrors.NoPassableCoordinatesError{}
}

// Hazards returns a snapshot of all active hazards, in creation order.
func (e *Environment) Hazards() []*model.Hazard {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*model.Hazard, 0, len(e.hazardOrder))
	for _, id := range e.hazardOrder {
		if h, ok := e.hazards[id]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Victims returns a snapshot of all victims, in creation order.
func (e *Environment) Victims() []*model.Victim {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*model.Victim, 0, len(e.victimOrder))
	for _, id := range e.victimOrder {
		if v, ok := e.victims[id]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Victim returns the victim with the given id, if any.
func (e *Environment) Victim(id uuid.UUID) (*model.Victim, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.victims[id]
	return v, ok
}

// UpdateHazardIntensity sets a hazard's intensity in place. Used by the
// hazard feed to mutate dynamic hazards between planning cycles.
func (e *Environment) UpdateHazardIntensity(id uuid.UUID, intensity float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.hazards[id]
	if !ok {
		return false
	}
	h.Intensity = intensity
	return true
}

// UpdateVictimStatus transitions a victim's status, marking it rescued when
// the new status is VictimSafe.
func (e *Environment) UpdateVictimStatus(id uuid.UUID, status model.VictimStatus) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.victims[id]
	if !ok {
		return false
	}
	v.Status = status
	if status == model.VictimSafe {
		v.IsRescued = true
	}
	return true
}

// Neighbors returns the passable, in-bounds 4-connected neighbors of c.
func (e *Environment) Neighbors(c model.Coordinate) []model.Coordinate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	candidates := [4]model.Coordinate{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}

	out := make([]model.Coordinate, 0, 4)
	for _, cand := range candidates {
		if cand.X < 0 || cand.X >= e.gridSize || cand.Y < 0 || cand.Y >= e.gridSize {
			continue
		}
		if node, ok := e.grid[cand]; ok && node.Passable {
			out = append(out, cand)
		}
	}
	return out
}
