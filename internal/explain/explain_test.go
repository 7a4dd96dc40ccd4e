package explain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disasterresponse/adrie-core/internal/coreerrors"
	"github.com/disasterresponse/adrie-core/internal/events"
	"github.com/disasterresponse/adrie-core/internal/model"
	sharedevents "github.com/disasterresponse/adrie-core/shared/events"
)

func appendPlanEvent(t *testing.T, log *events.Log) *sharedevents.BaseEvent {
	t.Helper()
	ev, err := sharedevents.NewEvent(sharedevents.PlanGenerated, uuid.New(), "plan",
		sharedevents.PlanGeneratedData{AgentPlanCount: 1}, sharedevents.Metadata{})
	require.NoError(t, err)
	log.Append(ev)
	return ev
}

func TestExplainRejectsMissingDecisionID(t *testing.T) {
	_, err := Explain(events.NewLog(), uuid.Nil, KindPlanRationale)
	require.Error(t, err)
	var invalid *coreerrors.InvalidExplanationRequestError
	assert.ErrorAs(t, err, &invalid)
}

func TestExplainRejectsUnrecognizedKind(t *testing.T) {
	log := events.NewLog()
	ev := appendPlanEvent(t, log)

	_, err := Explain(log, ev.ID, Kind("not_a_real_kind"))
	require.Error(t, err)
	var invalid *coreerrors.InvalidExplanationRequestError
	assert.ErrorAs(t, err, &invalid)
}

func TestExplainReturnsNotImplementedForRecognizedButUnwiredKind(t *testing.T) {
	log := events.NewLog()
	ev := appendPlanEvent(t, log)

	_, err := Explain(log, ev.ID, KindRiskRationale)
	require.Error(t, err)
	var notImplemented *coreerrors.ExplanationNotImplementedError
	assert.ErrorAs(t, err, &notImplemented)
}

func TestExplainRendersPlanRationale(t *testing.T) {
	log := events.NewLog()
	ev := appendPlanEvent(t, log)

	result, err := Explain(log, ev.ID, KindPlanRationale)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, result.DecisionID)
	assert.NotEmpty(t, result.HumanReadable)
	assert.Equal(t, float64(1), result.StructuredDetail["agent_plan_count"])
}

func TestExplainRejectsDecisionIDOfWrongEventType(t *testing.T) {
	log := events.NewLog()
	victimsEv, err := sharedevents.NewEvent(sharedevents.VictimsPrioritized, uuid.New(), "mission",
		sharedevents.VictimsPrioritizedData{}, sharedevents.Metadata{})
	require.NoError(t, err)
	log.Append(victimsEv)

	_, err = Explain(log, victimsEv.ID, KindPlanRationale)
	require.Error(t, err)
	var invalid *coreerrors.InvalidExplanationRequestError
	assert.ErrorAs(t, err, &invalid)
}

func TestExplainRejectsUnknownDecisionID(t *testing.T) {
	_, err := Explain(events.NewLog(), uuid.New(), KindPlanRationale)
	require.Error(t, err)
}

func TestExplainRiskRendersLiveFieldReadWithoutADecisionID(t *testing.T) {
	coord := model.Coordinate{X: 2, Y: 3}
	kind := model.HazardFire
	field := model.RiskField{
		coord: {TotalRisk: 0.9, DominantHazard: &kind, RiskLevel: model.RiskCritical},
	}

	result := ExplainRisk(field, coord)

	assert.Equal(t, uuid.Nil, result.DecisionID)
	assert.NotEmpty(t, result.HumanReadable)
	assert.Equal(t, 0.7, result.StructuredDetail["collapse_probability"])
	assert.Equal(t, model.RiskCritical, result.StructuredDetail["risk_level"])
}

func TestExplainRiskDefaultsForUnknownCoordinate(t *testing.T) {
	result := ExplainRisk(model.RiskField{}, model.Coordinate{X: 9, Y: 9})
	assert.Equal(t, 0.05, result.StructuredDetail["collapse_probability"])
}
