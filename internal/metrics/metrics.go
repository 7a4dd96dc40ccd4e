// Package metrics computes the per-mission KPI summary surfaced by
// GetMetrics: rescue counts, risk exposure, and an efficiency index
// (currently a fixed placeholder value, see Summarize).
package metrics

import (
	"time"

	"github.com/disasterresponse/adrie-core/internal/model"
)

// Summary is the aggregated KPI snapshot for one mission.
type Summary struct {
	MissionID                  string
	TotalRescueTimeSeconds     *int
	VictimsRescuedCount        int
	PredictedLivesSaved        int
	AverageAgentRiskExposure   float64
	AgentUtilizationPercentage float64
	EfficiencyIndex            float64
	ActiveAgentsCount          int
}

// Input bundles the mission state GetMetrics needs to compute a Summary.
type Input struct {
	MissionID     string
	StartTime     *time.Time
	EndTime       *time.Time
	Victims       []*model.Victim
	Agents        []*model.Agent
	RiskExposures []float64 // one accumulated-risk sample per agent plan in the mission's current plan
}

// Summarize computes a Summary from in. Agent utilization and the
// efficiency index are fixed placeholder values pending a real
// time-series-backed calculation.
func Summarize(in Input) Summary {
	rescued := 0
	for _, v := range in.Victims {
		if v.IsRescued {
			rescued++
		}
	}

	var rescueTime *int
	if in.StartTime != nil && in.EndTime != nil {
		seconds := int(in.EndTime.Sub(*in.StartTime).Seconds())
		rescueTime = &seconds
	}

	avgRisk := 0.15
	if len(in.RiskExposures) > 0 {
		sum := 0.0
		for _, r := range in.RiskExposures {
			sum += r
		}
		avgRisk = sum / float64(len(in.RiskExposures))
	}

	return Summary{
		MissionID:                  in.MissionID,
		TotalRescueTimeSeconds:     rescueTime,
		VictimsRescuedCount:        rescued,
		PredictedLivesSaved:        rescued,
		AverageAgentRiskExposure:   avgRisk,
		AgentUtilizationPercentage: 0.75,
		EfficiencyIndex:            0.85,
		ActiveAgentsCount:          len(in.Agents),
	}
}
