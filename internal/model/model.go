// Package model holds the core data types shared by every subsystem of the
// disaster response planning engine: the grid, hazards, victims, agents,
// and the plans produced for them. Types here are plain data — the
// subsystems in sibling packages own the behavior.
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Coordinate is an immutable grid cell reference. Two coordinates compare
// equal by value; ordering is lexicographic on (X, Y).
type Coordinate struct {
	X int
	Y int
}

// Less orders coordinates lexicographically by (X, Y).
func (c Coordinate) Less(o Coordinate) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// GridNode is one cell of the mission environment.
type GridNode struct {
	Coord     Coordinate
	Passable  bool
	Elevation int
}

// HazardKind is the closed set of hazard categories.
type HazardKind string

const (
	HazardFire     HazardKind = "fire"
	HazardCollapse HazardKind = "collapse"
	HazardFlood    HazardKind = "flood"
	HazardGasLeak  HazardKind = "gas_leak"
	HazardDebris   HazardKind = "debris"
)

// AllHazardKinds enumerates the closed set, in a stable order, for
// deterministic PRNG sampling during environment generation.
var AllHazardKinds = []HazardKind{HazardFire, HazardCollapse, HazardFlood, HazardGasLeak, HazardDebris}

// Hazard is an active hazard in the mission environment. Intensity is the
// only field mutated after creation (by the hazard feed's step mutation).
type Hazard struct {
	ID        uuid.UUID
	Kind      HazardKind
	Location  Coordinate
	Intensity float64
	Radius    int
	Dynamic   bool
}

// RiskLevel buckets a cell's total risk into a human-facing category.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// NodeRisk is the derived risk at one grid cell. Recomputed wholesale on
// every risk field refresh; never hand-edited.
type NodeRisk struct {
	TotalRisk      float64
	DominantHazard *HazardKind
	RiskLevel      RiskLevel
}

// RiskField maps every in-bounds coordinate to its NodeRisk. A fresh map is
// produced on every recompute and swapped in atomically by the mission
// state; readers never see a partially-updated field.
type RiskField map[Coordinate]NodeRisk

// InjurySeverity is the closed set of victim injury severities.
type InjurySeverity string

const (
	SeverityMild     InjurySeverity = "mild"
	SeverityModerate InjurySeverity = "moderate"
	SeveritySevere   InjurySeverity = "severe"
	SeverityCritical InjurySeverity = "critical"
)

// VictimStatus is the closed set of victim lifecycle states.
type VictimStatus string

const (
	VictimTrapped  VictimStatus = "trapped"
	VictimInjured  VictimStatus = "injured"
	VictimSafe     VictimStatus = "safe"
	VictimDeceased VictimStatus = "deceased"
	VictimUnknown  VictimStatus = "unknown"
)

// Victim is a person awaiting rescue somewhere on the grid.
type Victim struct {
	ID                         uuid.UUID
	Location                   Coordinate
	InjurySeverity             InjurySeverity
	TimeSinceIncidentMin       int
	EstimatedSurvivalWindowMin int
	Status                     VictimStatus
	AccessibilityRisk          float64
	PriorityScore              float64
	IsRescued                  bool
	AssignedAgentID            *uuid.UUID
}

// AgentKind is the closed set of rescue agent platforms.
type AgentKind string

const (
	AgentRoboticArm  AgentKind = "robotic_arm"
	AgentDrone       AgentKind = "drone"
	AgentSearchDog   AgentKind = "search_dog"
	AgentHumanRescue AgentKind = "human_rescuer"
	AgentUGV         AgentKind = "unmanned_ground_vehicle"
)

// AllAgentKinds enumerates the closed set for deterministic PRNG sampling.
var AllAgentKinds = []AgentKind{AgentRoboticArm, AgentDrone, AgentSearchDog, AgentHumanRescue, AgentUGV}

// AgentStatus is the closed set of agent operational states.
type AgentStatus string

const (
	AgentIdle            AgentStatus = "idle"
	AgentMoving          AgentStatus = "moving"
	AgentSearching       AgentStatus = "searching"
	AgentRescuing        AgentStatus = "rescuing"
	AgentReturningToBase AgentStatus = "returning_to_base"
	AgentDamaged         AgentStatus = "damaged"
	AgentOffline         AgentStatus = "offline"
)

// AgentCapability is a single skill an agent may possess.
type AgentCapability string

const (
	CapabilitySearchVictims  AgentCapability = "search_victims"
	CapabilityExtractVictims AgentCapability = "extract_victims"
	CapabilityClearDebris    AgentCapability = "clear_debris"
	CapabilityAssessHazards  AgentCapability = "assess_hazards"
	CapabilityCarrySupplies  AgentCapability = "carry_supplies"
)

// Agent is a rescue unit operating within a mission.
type Agent struct {
	ID               uuid.UUID
	Name             string
	Kind             AgentKind
	CurrentLocation  Coordinate
	Status           AgentStatus
	Capabilities     map[AgentCapability]struct{}
	Battery          float64
	Health           float64
	AssignedVictimID *uuid.UUID
	CurrentPath      []Coordinate
	RiskTolerance    float64
}

// HasCapability reports whether the agent possesses the given capability.
func (a *Agent) HasCapability(c AgentCapability) bool {
	_, ok := a.Capabilities[c]
	return ok
}

// AgentTask is one unit of work inside an AgentPlan.
type AgentTask struct {
	Kind                 string
	TargetLocation       *Coordinate
	VictimID             *uuid.UUID
	Path                 []Coordinate
	ExpectedRisk         float64
	EstimatedTimeSeconds int
}

// AgentPlan is the ordered work assigned to one agent in a planning cycle.
type AgentPlan struct {
	AgentID               uuid.UUID
	Tasks                 []AgentTask
	TotalEstimatedSeconds int
	TotalExpectedRisk     float64
}

// Plan is the mission-wide output of one planning cycle.
type Plan struct {
	ID                      uuid.UUID
	MissionID               uuid.UUID
	Timestamp               time.Time
	AgentPlans              []AgentPlan
	VictimsPrioritizedOrder []uuid.UUID
	OverallRiskScore        float64
	OverallEfficiencyScore  float64
}

// MissionStatus is the closed set of mission lifecycle states.
type MissionStatus string

const (
	MissionPending    MissionStatus = "pending"
	MissionInProgress MissionStatus = "in_progress"
	MissionCompleted  MissionStatus = "completed"
	MissionFailed     MissionStatus = "failed"
	MissionCancelled  MissionStatus = "cancelled"
)

// PlanningObjective selects the A* heuristic used by the planner.
type PlanningObjective string

const (
	ObjectiveMinimizeTime         PlanningObjective = "minimize_time"
	ObjectiveMinimizeRiskExposure PlanningObjective = "minimize_risk_exposure"
	ObjectiveMaximizeLivesSaved   PlanningObjective = "maximize_lives_saved"
)
