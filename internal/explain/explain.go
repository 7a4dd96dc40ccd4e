// Package explain answers GetExplanation requests against a mission's
// decision log: a deterministic, template-based rendering of a recorded
// event into a human-readable explanation plus a structured payload. It
// never calls out to an LLM — the interface is shaped so one could be
// plugged in later without changing the façade contract.
package explain

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/disasterresponse/adrie-core/internal/coreerrors"
	"github.com/disasterresponse/adrie-core/internal/events"
	"github.com/disasterresponse/adrie-core/internal/model"
	"github.com/disasterresponse/adrie-core/internal/risk"
	sharedevents "github.com/disasterresponse/adrie-core/shared/events"
)

// Kind is the closed set of supported explanation request types.
type Kind string

const (
	KindPlanRationale       Kind = "plan_rationale"
	KindPriorityRationale   Kind = "priority_rationale"
	KindAllocationRationale Kind = "allocation_rationale"
	// KindRiskRationale is served by ExplainRisk as a live read off the
	// risk field, not by Explain's decision-log lookup — passing it to
	// Explain surfaces ExplanationNotImplemented.
	KindRiskRationale Kind = "risk_rationale"
)

// recognizedKinds is the full closed set accepted on the wire. A kind
// outside this set is InvalidExplanationRequest (400); a recognized kind
// with no entry in eventTypeFor is ExplanationNotImplemented (501).
var recognizedKinds = map[Kind]struct{}{
	KindPlanRationale:       {},
	KindPriorityRationale:   {},
	KindAllocationRationale: {},
	KindRiskRationale:       {},
}

// eventTypeFor maps a recognized kind to the decision-log event type it
// reads. Kinds absent here are recognized but not yet wired.
var eventTypeFor = map[Kind]string{
	KindPlanRationale:       sharedevents.PlanGenerated,
	KindPriorityRationale:   sharedevents.VictimsPrioritized,
	KindAllocationRationale: sharedevents.TasksAllocated,
}

// Explanation is the response to a GetExplanation call.
type Explanation struct {
	DecisionID       uuid.UUID              `json:"decision_id"`
	HumanReadable    string                 `json:"human_readable"`
	StructuredDetail map[string]interface{} `json:"structured_detail"`
}

// Explain looks up decisionID in log and renders it as an Explanation of
// the given kind.
func Explain(log *events.Log, decisionID uuid.UUID, kind Kind) (*Explanation, error) {
	if decisionID == uuid.Nil {
		return nil, &coreerrors.InvalidExplanationRequestError{Reason: "decision_id is required"}
	}

	if _, recognized := recognizedKinds[kind]; !recognized {
		return nil, &coreerrors.InvalidExplanationRequestError{
			Reason: fmt.Sprintf("unsupported explanation type %q", kind),
		}
	}

	wantType, wired := eventTypeFor[kind]
	if !wired {
		return nil, &coreerrors.ExplanationNotImplementedError{Kind: string(kind)}
	}

	ev, ok := log.Get(decisionID)
	if !ok {
		return nil, &coreerrors.InvalidExplanationRequestError{
			Reason: fmt.Sprintf("no decision recorded with id %s", decisionID),
		}
	}

	if ev.Type != wantType {
		return nil, &coreerrors.InvalidExplanationRequestError{
			Reason: fmt.Sprintf("decision %s is not a %s event", decisionID, kind),
		}
	}

	var payload map[string]interface{}
	_ = ev.ParseData(&payload)

	return &Explanation{
		DecisionID:       ev.ID,
		HumanReadable:    renderHumanReadable(kind, ev),
		StructuredDetail: payload,
	}, nil
}

// ExplainRisk renders a risk_rationale explanation for one coordinate.
// Unlike the other three kinds, a risk rationale is a live read off the
// mission's current risk field rather than a recorded decision, so it
// takes no decision_id.
func ExplainRisk(field model.RiskField, coord model.Coordinate) *Explanation {
	nr := field[coord]
	collapseProbability := risk.ProbabilisticCollapseModel(field, coord)

	return &Explanation{
		DecisionID: uuid.Nil,
		HumanReadable: fmt.Sprintf(
			"Cell %s carries total risk %.2f (%s), dominant hazard %s, estimated collapse probability %.2f.",
			coord, nr.TotalRisk, nr.RiskLevel, dominantHazardLabel(nr.DominantHazard), collapseProbability,
		),
		StructuredDetail: map[string]interface{}{
			"coordinate":           coord,
			"total_risk":           nr.TotalRisk,
			"risk_level":           nr.RiskLevel,
			"dominant_hazard":      nr.DominantHazard,
			"collapse_probability": collapseProbability,
		},
	}
}

func dominantHazardLabel(h *model.HazardKind) string {
	if h == nil {
		return "none"
	}
	return string(*h)
}

func renderHumanReadable(kind Kind, ev *sharedevents.BaseEvent) string {
	switch kind {
	case KindPlanRationale:
		return fmt.Sprintf("Plan %s was generated at %s for mission %s.", ev.ID, ev.Timestamp.Format("15:04:05"), ev.AggregateID)
	case KindPriorityRationale:
		return fmt.Sprintf("Victims were ranked at %s based on severity, time sensitivity, and accessibility risk.", ev.Timestamp.Format("15:04:05"))
	case KindAllocationRationale:
		return fmt.Sprintf("Tasks were allocated at %s using nearest-available-agent matching.", ev.Timestamp.Format("15:04:05"))
	default:
		return "No explanation template available for this decision type."
	}
}
