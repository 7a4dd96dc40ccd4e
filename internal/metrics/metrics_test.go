package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/disasterresponse/adrie-core/internal/model"
)

func TestSummarizeCountsRescuedVictims(t *testing.T) {
	victims := []*model.Victim{
		{IsRescued: true},
		{IsRescued: false},
		{IsRescued: true},
	}

	summary := Summarize(Input{MissionID: "m1", Victims: victims})

	assert.Equal(t, 2, summary.VictimsRescuedCount)
	assert.Equal(t, 2, summary.PredictedLivesSaved)
}

func TestSummarizeLeavesRescueTimeNilWhileInProgress(t *testing.T) {
	start := time.Now()
	summary := Summarize(Input{MissionID: "m1", StartTime: &start})
	assert.Nil(t, summary.TotalRescueTimeSeconds)
}

func TestSummarizeComputesRescueTimeOnceEnded(t *testing.T) {
	start := time.Now().Add(-90 * time.Second)
	end := time.Now()
	summary := Summarize(Input{MissionID: "m1", StartTime: &start, EndTime: &end})

	rescueTime := summary.TotalRescueTimeSeconds
	assert.NotNil(t, rescueTime)
	assert.InDelta(t, 90, *rescueTime, 1)
}

func TestSummarizeAveragesRiskExposures(t *testing.T) {
	summary := Summarize(Input{MissionID: "m1", RiskExposures: []float64{0.2, 0.4, 0.6}})
	assert.InDelta(t, 0.4, summary.AverageAgentRiskExposure, 1e-9)
}

func TestSummarizeDefaultsRiskExposureWhenNoPlansYet(t *testing.T) {
	summary := Summarize(Input{MissionID: "m1"})
	assert.Equal(t, 0.15, summary.AverageAgentRiskExposure)
}

func TestSummarizeCountsActiveAgents(t *testing.T) {
	agents := []*model.Agent{{}, {}, {}}
	summary := Summarize(Input{MissionID: "m1", Agents: agents})
	assert.Equal(t, 3, summary.ActiveAgentsCount)
}
