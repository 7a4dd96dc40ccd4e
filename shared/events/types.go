// Package events defines the decision-log event envelope emitted by the
// core during a mission: every plan, prioritization, allocation, and
// state transition produces one of these, consumed by the explainability
// and live-streaming surfaces.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted to a mission's decision log.
const (
	MissionInitiated      = "mission.initiated"
	MissionStateChanged   = "mission.state_changed"
	RiskFieldRecomputed   = "risk.recomputed"
	VictimsPrioritized    = "victims.prioritized"
	TasksAllocated        = "tasks.allocated"
	AgentPlanGenerated    = "agent.plan_generated"
	PlanGenerated         = "plan.generated"
	PlanningFailed        = "plan.failed"
	HazardIntensityTicked = "hazard.intensity_ticked"
)

// BaseEvent is the common envelope for every decision-log entry.
type BaseEvent struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	Data          json.RawMessage `json:"data"`
	Metadata      Metadata        `json:"metadata"`
}

// Metadata carries correlation context for an event.
type Metadata struct {
	MissionID     string            `json:"mission_id"`
	CorrelationID string            `json:"correlation_id"`
	CausationID   string            `json:"causation_id,omitempty"`
	Source        string            `json:"source"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// PlanGeneratedData is the payload for a PlanGenerated event.
type PlanGeneratedData struct {
	PlanID                 uuid.UUID `json:"plan_id"`
	AgentPlanCount         int       `json:"agent_plan_count"`
	OverallRiskScore       float64   `json:"overall_risk_score"`
	OverallEfficiencyScore float64   `json:"overall_efficiency_score"`
}

// VictimsPrioritizedData is the payload for a VictimsPrioritized event.
type VictimsPrioritizedData struct {
	OrderedVictimIDs []uuid.UUID `json:"ordered_victim_ids"`
}

// TasksAllocatedData is the payload for a TasksAllocated event.
type TasksAllocatedData struct {
	Bindings map[uuid.UUID]uuid.UUID `json:"bindings"` // agent_id -> victim_id
}

// MissionStateChangedData is the payload for a MissionStateChanged event.
type MissionStateChangedData struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PlanningFailedData is the payload for a PlanningFailed event.
type PlanningFailedData struct {
	AgentID uuid.UUID `json:"agent_id,omitempty"`
	Reason  string    `json:"reason"`
}

// HazardMutatedData is the payload for a HazardIntensityTicked event.
type HazardMutatedData struct {
	HazardID     uuid.UUID `json:"hazard_id"`
	NewIntensity float64   `json:"new_intensity"`
}

// NewEvent builds a BaseEvent from eventType, marshaling data into the
// envelope's Data field.
func NewEvent(eventType string, aggregateID uuid.UUID, aggregateType string, data interface{}, metadata Metadata) (*BaseEvent, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Timestamp:     time.Now(),
		Version:       1,
		Data:          dataBytes,
		Metadata:      metadata,
	}, nil
}

// ParseData unmarshals the event's Data field into v.
func (e *BaseEvent) ParseData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// WithCorrelation sets correlation and causation IDs.
func (m *Metadata) WithCorrelation(correlationID, causationID string) *Metadata {
	m.CorrelationID = correlationID
	m.CausationID = causationID
	return m
}
