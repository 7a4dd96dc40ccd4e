// Package mission owns the mission lifecycle state machine and the
// registry of live missions, and orchestrates one planning cycle by
// wiring together the environment, risk, prioritizer, allocator, and
// planner subsystems.
package mission

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/disasterresponse/adrie-core/internal/allocator"
	"github.com/disasterresponse/adrie-core/internal/coreerrors"
	"github.com/disasterresponse/adrie-core/internal/environment"
	"github.com/disasterresponse/adrie-core/internal/events"
	"github.com/disasterresponse/adrie-core/internal/hazardfeed"
	"github.com/disasterresponse/adrie-core/internal/logging"
	"github.com/disasterresponse/adrie-core/internal/model"
	"github.com/disasterresponse/adrie-core/internal/planner"
	"github.com/disasterresponse/adrie-core/internal/prioritizer"
	"github.com/disasterresponse/adrie-core/internal/risk"
	"github.com/disasterresponse/adrie-core/internal/workerpool"
	sharedevents "github.com/disasterresponse/adrie-core/shared/events"
)

// State is one mission's full owning container: its environment, current
// risk field, registered agents, decision log, and lifecycle status. All
// cross-references between agents and victims are UUIDs resolved through
// this container's tables — never object pointers — so the mission graph
// can never form a cycle.
type State struct {
	mu sync.RWMutex

	ID        uuid.UUID
	Status    model.MissionStatus
	StartTime time.Time
	EndTime   *time.Time

	Env       *environment.Environment
	RiskField model.RiskField
	Agents    map[uuid.UUID]*model.Agent
	// AgentOrder preserves agent creation order. Map iteration order is
	// not deterministic, and the allocator's tie-break rule ("earliest
	// position in the input agent list") depends on a stable order, so
	// snapshot() walks AgentOrder rather than ranging over Agents.
	AgentOrder []uuid.UUID

	CurrentPlan *model.Plan
	Log         *events.Log

	// feed, when non-nil, is the background hazard ticker started for
	// this mission. Stopped when the mission reaches a terminal state or
	// leaves the registry.
	feed *hazardfeed.Feed

	// hazardRNG backs StepMission's bounded random walk. Seeded once at
	// InitiateSimulation from the mission's own seed, so repeated steps
	// for a given mission are reproducible the same way environment
	// generation is.
	hazardRNG *rand.Rand
}

// snapshot is an immutable view of a State sufficient to run a planning
// cycle without holding the mission's lock for the duration.
type snapshot struct {
	env       *environment.Environment
	riskField model.RiskField
	agents    []*model.Agent
	victims   []*model.Victim
}

// StopFeed halts the mission's background hazard feed, if one is
// running. Safe to call more than once.
func (s *State) StopFeed() {
	s.mu.Lock()
	feed := s.feed
	s.feed = nil
	s.mu.Unlock()
	if feed != nil {
		feed.Stop()
	}
}

func (s *State) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agents := make([]*model.Agent, 0, len(s.AgentOrder))
	for _, id := range s.AgentOrder {
		if a, ok := s.Agents[id]; ok {
			agents = append(agents, a)
		}
	}

	return snapshot{
		env:       s.Env,
		riskField: s.RiskField,
		agents:    agents,
		victims:   s.Env.Victims(),
	}
}

// Registry holds every live mission, keyed by id.
type Registry struct {
	mu       sync.RWMutex
	missions map[uuid.UUID]*State
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{missions: make(map[uuid.UUID]*State)}
}

// Get returns the mission state for id, or MissionNotFoundError.
func (r *Registry) Get(id uuid.UUID) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.missions[id]
	if !ok {
		return nil, coreerrors.NewMissionNotFoundError(id.String())
	}
	return m, nil
}

// add registers a new mission state. Returns MissionConflictError if id is
// already registered.
func (r *Registry) add(id uuid.UUID, state *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.missions[id]; exists {
		return &coreerrors.MissionConflictError{MissionID: id.String()}
	}
	r.missions[id] = state
	return nil
}

// Remove deletes a mission and all its associated state from the
// registry, stopping its hazard feed if one is running. Returns
// MissionNotFoundError if id is not registered.
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	state, exists := r.missions[id]
	if !exists {
		r.mu.Unlock()
		return coreerrors.NewMissionNotFoundError(id.String())
	}
	delete(r.missions, id)
	r.mu.Unlock()

	state.StopFeed()
	return nil
}

// Clear removes every mission from the registry, stopping their hazard
// feeds.
func (r *Registry) Clear() {
	r.mu.Lock()
	removed := make([]*State, 0, len(r.missions))
	for _, s := range r.missions {
		removed = append(removed, s)
	}
	r.missions = make(map[uuid.UUID]*State)
	r.mu.Unlock()

	for _, s := range removed {
		s.StopFeed()
	}
}

// Orchestrator is the single entry point for mission lifecycle operations
// and plan generation. It owns no state itself beyond its collaborators —
// all mission state lives in the Registry.
type Orchestrator struct {
	registry    *Registry
	riskCalc    *risk.Calculator
	prioritizer *prioritizer.Prioritizer
	allocator   *allocator.Allocator
	planner     *planner.Planner
	pool        *workerpool.Pool
	log         *logging.Logger

	// feedInterval, when positive, starts a background hazard feed for
	// every new mission. Zero leaves hazard mutation entirely to the
	// on-demand StepMission path.
	feedInterval time.Duration
}

// NewOrchestrator wires an Orchestrator from its collaborators.
func NewOrchestrator(registry *Registry, riskCalc *risk.Calculator, p *prioritizer.Prioritizer, a *allocator.Allocator, pl *planner.Planner, pool *workerpool.Pool, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		riskCalc:    riskCalc,
		prioritizer: p,
		allocator:   a,
		planner:     pl,
		pool:        pool,
		log:         log.Named("mission"),
	}
}

// EnableHazardFeed makes every subsequently initiated mission run a
// background hazard feed ticking at interval.
func (o *Orchestrator) EnableHazardFeed(interval time.Duration) {
	o.feedInterval = interval
}

// InitiateRequest parameterizes InitiateSimulation.
type InitiateRequest struct {
	MissionID             *uuid.UUID // optional explicit id; generated if nil
	MapSize               int
	HazardIntensityFactor float64
	NumVictims            int
	NumAgents             int
	Seed                  int64
}

// InitiateSimulation builds a fresh mission environment, registers it, and
// performs the initial risk field recompute.
func (o *Orchestrator) InitiateSimulation(req InitiateRequest) (*State, error) {
	missionID := uuid.New()
	if req.MissionID != nil {
		missionID = *req.MissionID
	}

	env, err := environment.New(environment.InitRequest{
		MapSize:               req.MapSize,
		HazardIntensityFactor: req.HazardIntensityFactor,
		NumVictims:            req.NumVictims,
		Seed:                  req.Seed,
	})
	if err != nil {
		return nil, &coreerrors.InvalidParametersError{Reason: err.Error()}
	}

	state := &State{
		ID:        missionID,
		Status:    model.MissionInProgress,
		StartTime: time.Now(),
		Env:       env,
		Agents:    make(map[uuid.UUID]*model.Agent),
		Log:       events.NewLog(),
		hazardRNG: rand.New(rand.NewSource(req.Seed + 1)),
	}

	if err := o.registry.add(missionID, state); err != nil {
		return nil, err
	}

	state.RiskField = o.riskCalc.Recompute(env)

	rng := rand.New(rand.NewSource(req.Seed))
	for i := 0; i < req.NumAgents; i++ {
		loc, err := env.RandomPassableCoordinate(rng)
		if err != nil {
			_ = o.registry.Remove(missionID)
			return nil, err
		}
		agent := &model.Agent{
			ID:              uuid.New(),
			Name:            fmt.Sprintf("Agent-%d", i+1),
			Kind:            []model.AgentKind{model.AgentRoboticArm, model.AgentDrone, model.AgentUGV}[rng.Intn(3)],
			CurrentLocation: loc,
			Status:          model.AgentIdle,
			Capabilities: map[model.AgentCapability]struct{}{
				model.CapabilitySearchVictims:  {},
				model.CapabilityExtractVictims: {},
			},
			Battery:       1.0,
			Health:        1.0,
			RiskTolerance: 0.7,
		}
		state.Agents[agent.ID] = agent
		state.AgentOrder = append(state.AgentOrder, agent.ID)
	}

	ev, _ := sharedevents.NewEvent(sharedevents.MissionInitiated, missionID, "mission", map[string]interface{}{
		"map_size": req.MapSize, "num_victims": req.NumVictims, "num_agents": req.NumAgents,
	}, sharedevents.Metadata{MissionID: missionID.String(), Source: "mission.orchestrator"})
	state.Log.Append(ev)

	if o.feedInterval > 0 {
		feed := hazardfeed.New(env, o.feedInterval, req.Seed+2, func(hazardID uuid.UUID, newIntensity float64) {
			ev, err := sharedevents.NewEvent(sharedevents.HazardIntensityTicked, hazardID, "hazard",
				sharedevents.HazardMutatedData{HazardID: hazardID, NewIntensity: newIntensity},
				sharedevents.Metadata{MissionID: missionID.String(), Source: "mission.hazardfeed"})
			if err == nil {
				state.Log.Append(ev)
			}
		})
		state.mu.Lock()
		state.feed = feed
		state.mu.Unlock()
		feed.Start()
	}

	o.log.Info("mission initiated", map[string]interface{}{"mission_id": missionID.String()})

	return state, nil
}

// PlanRequest parameterizes GeneratePlan.
type PlanRequest struct {
	Objective model.PlanningObjective
	Replan    bool
}

// GeneratePlan runs one full planning cycle for the given mission:
// optionally recompute risk, prioritize victims, allocate tasks, then fan
// out per-agent A* searches across the worker pool.
func (o *Orchestrator) GeneratePlan(ctx context.Context, missionID uuid.UUID, req PlanRequest) (*model.Plan, error) {
	state, err := o.registry.Get(missionID)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	if state.Status != model.MissionInProgress && state.Status != model.MissionPending {
		status := state.Status
		state.mu.Unlock()
		return nil, &coreerrors.InvalidMissionStateError{MissionID: missionID.String(), State: string(status)}
	}
	if req.Replan {
		state.RiskField = o.riskCalc.Recompute(state.Env)
	}
	state.mu.Unlock()

	snap := state.snapshot()

	unrescued := make([]*model.Victim, 0, len(snap.victims))
	for _, v := range snap.victims {
		if !v.IsRescued {
			unrescued = append(unrescued, v)
		}
	}
	prioritized := o.prioritizer.Prioritize(unrescued, snap.riskField, len(snap.agents))

	prioritizedOrder := make([]uuid.UUID, len(prioritized))
	for i, v := range prioritized {
		prioritizedOrder[i] = v.ID
	}

	idleAgents := make([]*model.Agent, 0, len(snap.agents))
	for _, a := range snap.agents {
		if a.Status == model.AgentIdle {
			idleAgents = append(idleAgents, a)
		}
	}
	allocations := o.allocator.Allocate(idleAgents, prioritized)

	agentPlans, err := o.planAllocations(ctx, snap, allocations, req.Objective)
	if err != nil {
		return nil, &coreerrors.PlanningFailureError{Reason: err.Error()}
	}

	var totalRisk, totalTime float64
	for _, ap := range agentPlans {
		totalRisk += ap.TotalExpectedRisk
		totalTime += float64(ap.TotalEstimatedSeconds)
	}
	avgRisk, avgTime := 0.0, 0.0
	if len(agentPlans) > 0 {
		avgRisk = totalRisk / float64(len(agentPlans))
		avgTime = totalTime / float64(len(agentPlans))
	}
	efficiency := 0.0
	if denom := avgTime + avgRisk*100; denom > 0 {
		efficiency = 1.0 / denom
	}

	plan := &model.Plan{
		ID:                      uuid.New(),
		MissionID:               missionID,
		Timestamp:               time.Now(),
		AgentPlans:              agentPlans,
		VictimsPrioritizedOrder: prioritizedOrder,
		OverallRiskScore:        avgRisk,
		OverallEfficiencyScore:  efficiency,
	}

	state.mu.Lock()
	state.CurrentPlan = plan
	for _, alloc := range allocations {
		alloc.Agent.AssignedVictimID = alloc.Task.VictimID
		alloc.Agent.Status = model.AgentMoving
	}
	state.mu.Unlock()

	for _, alloc := range allocations {
		if alloc.Task.VictimID != nil {
			if v, ok := state.Env.Victim(*alloc.Task.VictimID); ok {
				v.AssignedAgentID = &alloc.Agent.ID
			}
		}
	}

	o.appendPlanEvents(state, plan, prioritizedOrder, allocations)

	return plan, nil
}

// planAllocations fans per-agent A* searches out across the worker pool,
// bounding how many run concurrently so one mission's replan cannot starve
// another's.
func (o *Orchestrator) planAllocations(ctx context.Context, snap snapshot, allocations []allocator.Allocation, objective model.PlanningObjective) ([]model.AgentPlan, error) {
	type job struct {
		agent *model.Agent
		task  model.AgentTask
	}
	jobs := make([]job, len(allocations))
	for i, a := range allocations {
		jobs[i] = job{agent: a.Agent, task: a.Task}
	}

	results, err := workerpool.Run(ctx, o.pool, jobs, func(_ context.Context, j job) (*model.AgentPlan, error) {
		return o.planner.BuildAgentPlan(snap.env, snap.riskField, j.agent, j.task, objective), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.AgentPlan, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (o *Orchestrator) appendPlanEvents(state *State, plan *model.Plan, order []uuid.UUID, allocations []allocator.Allocation) {
	meta := sharedevents.Metadata{MissionID: state.ID.String(), Source: "mission.orchestrator"}

	if ev, err := sharedevents.NewEvent(sharedevents.VictimsPrioritized, state.ID, "mission",
		sharedevents.VictimsPrioritizedData{OrderedVictimIDs: order}, meta); err == nil {
		state.Log.Append(ev)
	}

	bindings := make(map[uuid.UUID]uuid.UUID, len(allocations))
	for _, a := range allocations {
		if a.Task.VictimID != nil {
			bindings[a.Agent.ID] = *a.Task.VictimID
		}
	}
	if ev, err := sharedevents.NewEvent(sharedevents.TasksAllocated, state.ID, "mission",
		sharedevents.TasksAllocatedData{Bindings: bindings}, meta); err == nil {
		state.Log.Append(ev)
	}

	if ev, err := sharedevents.NewEvent(sharedevents.PlanGenerated, plan.ID, "plan",
		sharedevents.PlanGeneratedData{
			PlanID:                 plan.ID,
			AgentPlanCount:         len(plan.AgentPlans),
			OverallRiskScore:       plan.OverallRiskScore,
			OverallEfficiencyScore: plan.OverallEfficiencyScore,
		}, meta); err == nil {
		state.Log.Append(ev)
	}
}

// Transition moves a mission to a terminal status, enforcing the state
// machine in §4.6: only {pending,in_progress} -> {completed, failed,
// cancelled} is allowed here; in_progress is reached only via
// InitiateSimulation. A non-terminal target is InvalidParametersError.
func (o *Orchestrator) Transition(missionID uuid.UUID, to model.MissionStatus) error {
	state, err := o.registry.Get(missionID)
	if err != nil {
		return err
	}

	terminal := to == model.MissionCompleted || to == model.MissionFailed || to == model.MissionCancelled
	if !terminal {
		return &coreerrors.InvalidParametersError{Reason: fmt.Sprintf("cannot transition mission to status %q", to)}
	}

	state.mu.Lock()
	from := state.Status
	if from == model.MissionCompleted || from == model.MissionFailed || from == model.MissionCancelled {
		state.mu.Unlock()
		return &coreerrors.InvalidMissionStateError{MissionID: missionID.String(), State: string(from)}
	}
	state.Status = to
	if terminal {
		now := time.Now()
		state.EndTime = &now
	}
	state.mu.Unlock()

	if terminal {
		state.StopFeed()
	}

	ev, _ := sharedevents.NewEvent(sharedevents.MissionStateChanged, missionID, "mission",
		sharedevents.MissionStateChangedData{From: string(from), To: string(to)},
		sharedevents.Metadata{MissionID: missionID.String(), Source: "mission.orchestrator"})
	state.Log.Append(ev)

	return nil
}

// batteryDrainPerStep is how much a moving agent's battery falls on every
// StepMission call. The only place agent state changes outside allocation.
const batteryDrainPerStep = 0.02

// StepMission advances mission's dynamic hazards by one bounded random
// walk and drains battery on every moving agent. It is pure in-memory
// state mutation and does not recompute the risk field or re-plan;
// callers that want the new hazard
// state reflected in a plan must call GeneratePlan with Replan=true
// afterward. Returns the number of hazards whose intensity changed.
func (o *Orchestrator) StepMission(missionID uuid.UUID) (int, error) {
	state, err := o.registry.Get(missionID)
	if err != nil {
		return 0, err
	}

	state.mu.Lock()
	if state.Status != model.MissionInProgress && state.Status != model.MissionPending {
		status := state.Status
		state.mu.Unlock()
		return 0, &coreerrors.InvalidMissionStateError{MissionID: missionID.String(), State: string(status)}
	}
	rng := state.hazardRNG
	state.mu.Unlock()

	changed := hazardfeed.Step(state.Env, rng, func(hazardID uuid.UUID, newIntensity float64) {
		ev, err := sharedevents.NewEvent(sharedevents.HazardIntensityTicked, hazardID, "hazard",
			sharedevents.HazardMutatedData{HazardID: hazardID, NewIntensity: newIntensity},
			sharedevents.Metadata{MissionID: missionID.String(), Source: "mission.hazardfeed"})
		if err == nil {
			state.Log.Append(ev)
		}
	})

	state.mu.Lock()
	for _, id := range state.AgentOrder {
		a, ok := state.Agents[id]
		if !ok || a.Status != model.AgentMoving {
			continue
		}
		a.Battery -= batteryDrainPerStep
		if a.Battery < 0 {
			a.Battery = 0
		}
	}
	state.mu.Unlock()

	return changed, nil
}
