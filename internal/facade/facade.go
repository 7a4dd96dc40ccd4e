// Package facade is the cooperative HTTP/websocket surface in front of the
// core. It never runs CPU-bound planning work itself — every planning call
// is handed to the orchestrator, which fans it out onto the bounded
// worker pool, and wraps it in a circuit breaker so repeated planning
// failures degrade gracefully instead of compounding.
package facade

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/disasterresponse/adrie-core/internal/coreerrors"
	"github.com/disasterresponse/adrie-core/internal/explain"
	"github.com/disasterresponse/adrie-core/internal/logging"
	"github.com/disasterresponse/adrie-core/internal/metrics"
	"github.com/disasterresponse/adrie-core/internal/mission"
	"github.com/disasterresponse/adrie-core/internal/model"
	"github.com/disasterresponse/adrie-core/pkg/circuit"
	"github.com/disasterresponse/adrie-core/shared/contracts"
)

// Config configures the Façade.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AuthEnabled  bool
	JWTSecret    string

	// PlanningTimeout bounds one generate_plan call end to end. The core
	// itself never applies timeouts; this is façade policy. Zero disables
	// the bound.
	PlanningTimeout time.Duration

	PlanningBreakerMaxFailures int
	PlanningBreakerTimeout     time.Duration
	PlanningBreakerHalfOpenMax int
}

// Facade is the gin-based HTTP/websocket façade in front of one
// Orchestrator.
type Facade struct {
	router       *gin.Engine
	orchestrator *mission.Orchestrator
	registry     *mission.Registry
	breakers     *circuit.BreakerGroup
	cfg          Config
	log          *logging.Logger

	upgrader websocket.Upgrader
}

// New builds a Facade wired to orchestrator/registry.
func New(cfg Config, orchestrator *mission.Orchestrator, registry *mission.Registry, log *logging.Logger) *Facade {
	f := &Facade{
		orchestrator: orchestrator,
		registry:     registry,
		cfg:          cfg,
		log:          log.Named("facade"),
		breakers: circuit.NewBreakerGroup(circuit.Config{
			MaxFailures: cfg.PlanningBreakerMaxFailures,
			Timeout:     cfg.PlanningBreakerTimeout,
			HalfOpenMax: cfg.PlanningBreakerHalfOpenMax,
		}),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	f.router = gin.New()
	f.router.Use(gin.Recovery())
	f.setupRoutes()
	return f
}

// Router exposes the underlying http.Handler for tests and for embedding
// in an *http.Server.
func (f *Facade) Router() http.Handler { return f.router }

func (f *Facade) setupRoutes() {
	f.router.Use(f.tracingMiddleware())

	f.router.GET("/health", f.healthCheck)
	f.router.GET("/ready", f.readyCheck)

	v1 := f.router.Group("/api/v1")
	if f.cfg.AuthEnabled {
		v1.Use(f.authMiddleware())
	}
	{
		v1.POST("/missions", f.initiateSimulation)
		v1.DELETE("/missions/:id", f.removeMission)
		v1.POST("/missions/:id/plan", f.generatePlan)
		v1.POST("/missions/:id/step", f.stepMission)
		v1.POST("/missions/:id/status", f.transitionMission)
		v1.GET("/missions/:id/metrics", f.getMetrics)
		v1.GET("/missions/:id/explanations", f.getExplanation)
		v1.GET("/missions/:id/decisions", f.listDecisions)
		v1.GET("/missions/:id/decisions/stream", f.streamDecisions)
	}
}

// Middleware

func (f *Facade) tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func (f *Facade) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
			return []byte(f.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}

// Handlers

func (f *Facade) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (f *Facade) readyCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (f *Facade) stepMission(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	hazardsChanged, err := f.orchestrator.StepMission(missionID)
	if err != nil {
		f.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.StepMissionResponse{
		MissionID:      missionID,
		HazardsChanged: hazardsChanged,
	})
}

func (f *Facade) initiateSimulation(c *gin.Context) {
	var req contracts.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: err.Error()})
		return
	}
	if err := validateSimulateRequest(req); err != nil {
		f.writeError(c, err)
		return
	}

	state, err := f.orchestrator.InitiateSimulation(mission.InitiateRequest{
		MissionID:             req.MissionID,
		MapSize:               req.MapSize,
		HazardIntensityFactor: req.HazardIntensityFactor,
		NumVictims:            req.NumVictims,
		NumAgents:             req.NumAgents,
		Seed:                  req.Seed,
	})
	if err != nil {
		f.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.SimulateResponse{
		MissionID: state.ID,
		Message:   "Simulation initiated successfully.",
	})
}

func (f *Facade) generatePlan(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	var req contracts.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: err.Error()})
		return
	}
	switch req.Objective {
	case model.ObjectiveMinimizeTime, model.ObjectiveMinimizeRiskExposure, model.ObjectiveMaximizeLivesSaved:
	default:
		f.writeError(c, &coreerrors.InvalidParametersError{
			Reason: fmt.Sprintf("unknown objective %q", req.Objective),
		})
		return
	}

	ctx := c.Request.Context()
	if f.cfg.PlanningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.PlanningTimeout)
		defer cancel()
	}

	var plan *contracts.PlanResponse
	var clientErr error
	breakerErr := f.breakers.Execute(ctx, "planning:"+missionID.String(), func() error {
		result, err := f.orchestrator.GeneratePlan(ctx, missionID, mission.PlanRequest{
			Objective: req.Objective,
			Replan:    req.Replan,
		})
		if err != nil {
			// Only catastrophic planning failures count toward the
			// breaker. Client errors — unknown mission, terminal state —
			// pass through without tripping it.
			var pf *coreerrors.PlanningFailureError
			if errors.As(err, &pf) {
				return err
			}
			clientErr = err
			return nil
		}
		plan = &contracts.PlanResponse{
			PlanID:                  result.ID,
			MissionID:               result.MissionID,
			AgentPlans:              result.AgentPlans,
			VictimsPrioritizedOrder: result.VictimsPrioritizedOrder,
			OverallRiskScore:        result.OverallRiskScore,
			OverallEfficiencyScore:  result.OverallEfficiencyScore,
			Message:                 "Plan generated successfully.",
		}
		return nil
	})

	if breakerErr != nil {
		if breakerErr == circuit.ErrCircuitOpen || breakerErr == circuit.ErrTooManyRequests {
			f.writeError(c, &coreerrors.PlanningFailureError{
				Reason: "planning suspended for this mission: " + breakerErr.Error(),
			})
			return
		}
		f.writeError(c, breakerErr)
		return
	}
	if clientErr != nil {
		f.writeError(c, clientErr)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (f *Facade) transitionMission(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	var req contracts.MissionTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: err.Error()})
		return
	}

	if err := f.orchestrator.Transition(missionID, req.Status); err != nil {
		f.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mission_id": missionID, "status": req.Status})
}

func (f *Facade) getMetrics(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	state, err := f.registry.Get(missionID)
	if err != nil {
		f.writeError(c, err)
		return
	}

	agents := make([]*model.Agent, 0, len(state.AgentOrder))
	for _, id := range state.AgentOrder {
		if a, ok := state.Agents[id]; ok {
			agents = append(agents, a)
		}
	}

	var riskExposures []float64
	if plan := state.CurrentPlan; plan != nil {
		riskExposures = make([]float64, 0, len(plan.AgentPlans))
		for _, ap := range plan.AgentPlans {
			riskExposures = append(riskExposures, ap.TotalExpectedRisk)
		}
	}

	summary := metrics.Summarize(metrics.Input{
		MissionID:     missionID.String(),
		StartTime:     &state.StartTime,
		EndTime:       state.EndTime,
		Victims:       state.Env.Victims(),
		Agents:        agents,
		RiskExposures: riskExposures,
	})

	c.JSON(http.StatusOK, contracts.MetricsResponse{
		MissionID:                   missionID,
		TotalRescueTimeSeconds:      summary.TotalRescueTimeSeconds,
		VictimsRescuedCount:         summary.VictimsRescuedCount,
		PredictedLivesSaved:         summary.PredictedLivesSaved,
		AverageAgentRiskExposure:    summary.AverageAgentRiskExposure,
		AgentUtilizationPercentage:  summary.AgentUtilizationPercentage,
		EfficiencyIndex:             summary.EfficiencyIndex,
		ActiveAgentsCount:           summary.ActiveAgentsCount,
	})
}

func (f *Facade) getExplanation(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	state, err := f.registry.Get(missionID)
	if err != nil {
		f.writeError(c, err)
		return
	}

	kind := explain.Kind(c.Query("type"))

	// risk_rationale is a live read off the mission's current risk field
	// at one coordinate, not a recorded decision — it takes x/y instead
	// of decision_id.
	if kind == explain.KindRiskRationale {
		x, errX := strconv.Atoi(c.Query("x"))
		y, errY := strconv.Atoi(c.Query("y"))
		if errX != nil || errY != nil {
			f.writeError(c, &coreerrors.InvalidExplanationRequestError{Reason: "x and y are required for risk_rationale"})
			return
		}
		result := explain.ExplainRisk(state.RiskField, model.Coordinate{X: x, Y: y})
		c.JSON(http.StatusOK, result)
		return
	}

	decisionID, err := uuid.Parse(c.Query("decision_id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidExplanationRequestError{Reason: "decision_id is required"})
		return
	}

	result, err := explain.Explain(state.Log, decisionID, kind)
	if err != nil {
		f.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (f *Facade) removeMission(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	if err := f.registry.Remove(missionID); err != nil {
		f.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mission_id": missionID, "removed": true})
}

// listDecisions returns the mission's recorded decision log, oldest
// first. This is the poll-based counterpart to the websocket stream.
func (f *Facade) listDecisions(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	state, err := f.registry.Get(missionID)
	if err != nil {
		f.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mission_id": missionID, "decisions": state.Log.All()})
}

// streamDecisions upgrades to a websocket and streams every decision-log
// event appended to the mission from this point forward.
func (f *Facade) streamDecisions(c *gin.Context) {
	missionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		f.writeError(c, &coreerrors.InvalidParametersError{Reason: "invalid mission id"})
		return
	}

	state, err := f.registry.Get(missionID)
	if err != nil {
		f.writeError(c, err)
		return
	}

	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := state.Log.Subscribe()
	defer state.Log.Unsubscribe(ch)

	ctx := c.Request.Context()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (f *Facade) writeError(c *gin.Context, err error) {
	requestID, _ := c.Get("request_id")

	if ce, ok := err.(coreerrors.CoreError); ok {
		c.JSON(int(ce.StatusCode()), contracts.ErrorResponse{
			Error:     ce.Error(),
			Code:      errorCode(ce),
			RequestID: toString(requestID),
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, contracts.ErrorResponse{
		Error:     err.Error(),
		Code:      "InternalError",
		RequestID: toString(requestID),
		Timestamp: time.Now(),
	})
}

func errorCode(err coreerrors.CoreError) string {
	switch err.(type) {
	case *coreerrors.InvalidParametersError:
		return "InvalidParameters"
	case *coreerrors.MissionNotFoundError:
		return "MissionNotFound"
	case *coreerrors.VictimNotFoundError:
		return "VictimNotFound"
	case *coreerrors.AgentNotFoundError:
		return "AgentNotFound"
	case *coreerrors.MissionConflictError:
		return "MissionConflict"
	case *coreerrors.InvalidMissionStateError:
		return "InvalidMissionState"
	case *coreerrors.InvalidExplanationRequestError:
		return "InvalidExplanationRequest"
	case *coreerrors.ExplanationNotImplementedError:
		return "ExplanationNotImplemented"
	case *coreerrors.PlanningFailureError:
		return "PlanningFailure"
	case *coreerrors.MetricsFailureError:
		return "MetricsFailure"
	case *coreerrors.ServiceInitializationFailureError:
		return "ServiceInitializationFailure"
	default:
		return "UnknownError"
	}
}

// validateSimulateRequest enforces the wire-contract field ranges before
// any mission state is touched.
func validateSimulateRequest(req contracts.SimulateRequest) error {
	switch {
	case req.MapSize < 10 || req.MapSize > 200:
		return &coreerrors.InvalidParametersError{Reason: fmt.Sprintf("map_size must be in [10, 200], got %d", req.MapSize)}
	case req.HazardIntensityFactor < 0 || req.HazardIntensityFactor > 1:
		return &coreerrors.InvalidParametersError{Reason: fmt.Sprintf("hazard_intensity_factor must be in [0, 1], got %g", req.HazardIntensityFactor)}
	case req.NumVictims < 0 || req.NumVictims > 50:
		return &coreerrors.InvalidParametersError{Reason: fmt.Sprintf("num_victims must be in [0, 50], got %d", req.NumVictims)}
	case req.NumAgents < 0 || req.NumAgents > 10:
		return &coreerrors.InvalidParametersError{Reason: fmt.Sprintf("num_agents must be in [0, 10], got %d", req.NumAgents)}
	}
	return nil
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
