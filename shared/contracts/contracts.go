// Package contracts defines the request/response DTOs for the engine's
// external surface — the same shapes regardless of which façade (HTTP,
// websocket, or an in-process Go caller) is driving them.
package contracts

import (
	"time"

	"github.com/google/uuid"

	"github.com/disasterresponse/adrie-core/internal/model"
)

// SimulateRequest parameterizes initiate_simulation.
type SimulateRequest struct {
	MissionID             *uuid.UUID `json:"mission_id,omitempty"`
	MapSize               int        `json:"map_size"`
	HazardIntensityFactor float64    `json:"hazard_intensity_factor"`
	NumVictims            int        `json:"num_victims"`
	NumAgents             int        `json:"num_agents"`
	Seed                  int64      `json:"seed"`
}

// SimulateResponse is the result of initiate_simulation.
type SimulateResponse struct {
	MissionID uuid.UUID `json:"mission_id"`
	Message   string    `json:"message"`
}

// PlanRequest parameterizes generate_plan.
type PlanRequest struct {
	Objective model.PlanningObjective `json:"objective"`
	Replan    bool                    `json:"replan"`
}

// PlanResponse is the result of generate_plan.
type PlanResponse struct {
	PlanID                  uuid.UUID         `json:"plan_id"`
	MissionID               uuid.UUID         `json:"mission_id"`
	AgentPlans              []model.AgentPlan `json:"agent_plans"`
	VictimsPrioritizedOrder []uuid.UUID       `json:"victims_prioritized_order"`
	OverallRiskScore        float64           `json:"overall_risk_score"`
	OverallEfficiencyScore  float64           `json:"overall_efficiency_score"`
	Message                 string            `json:"message"`
}

// ExplanationRequest parameterizes get_explanation.
type ExplanationRequest struct {
	DecisionID uuid.UUID `json:"decision_id"`
	Kind       string    `json:"type"`
}

// MetricsResponse is the result of get_metrics.
type MetricsResponse struct {
	MissionID                  uuid.UUID `json:"mission_id"`
	TotalRescueTimeSeconds     *int      `json:"total_rescue_time_seconds"`
	VictimsRescuedCount        int       `json:"victims_rescued_count"`
	PredictedLivesSaved        int       `json:"predicted_lives_saved"`
	AverageAgentRiskExposure   float64   `json:"average_agent_risk_exposure"`
	AgentUtilizationPercentage float64   `json:"agent_utilization_percentage"`
	EfficiencyIndex            float64   `json:"efficiency_index"`
	ActiveAgentsCount          int       `json:"active_agents_count"`
}

// StepMissionResponse is the result of step_mission.
type StepMissionResponse struct {
	MissionID      uuid.UUID `json:"mission_id"`
	HazardsChanged int       `json:"hazards_changed"`
}

// MissionTransitionRequest parameterizes the mission state machine
// mutation operation: moving a mission into a terminal status from
// outside the core.
type MissionTransitionRequest struct {
	Status model.MissionStatus `json:"status"`
}

// ErrorResponse is the uniform error envelope returned by every façade
// route, mapping a coreerrors.CoreError onto the wire.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
