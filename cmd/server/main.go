package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disasterresponse/adrie-core/internal/allocator"
	"github.com/disasterresponse/adrie-core/internal/config"
	"github.com/disasterresponse/adrie-core/internal/facade"
	"github.com/disasterresponse/adrie-core/internal/logging"
	"github.com/disasterresponse/adrie-core/internal/mission"
	"github.com/disasterresponse/adrie-core/internal/planner"
	"github.com/disasterresponse/adrie-core/internal/prioritizer"
	"github.com/disasterresponse/adrie-core/internal/risk"
	"github.com/disasterresponse/adrie-core/internal/workerpool"
)

func main() {
	cfg := config.Load()

	var logOutput io.Writer = os.Stdout
	if cfg.LogFilePath != "" {
		if f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			logOutput = io.MultiWriter(os.Stdout, f)
		}
	}

	log := logging.New(logging.Config{
		Level:  logging.Level(cfg.LogLevel),
		Format: logging.Format(cfg.LogFormat),
		Output: logOutput,
	})

	registry := mission.NewRegistry()
	riskCalc := risk.NewCalculator(risk.Config{
		HazardWeights:         cfg.HazardWeights,
		DecayFactorBase:       cfg.RiskDecayFactorBase,
		PropagationIterations: cfg.RiskPropagationIterations,
		PropagationFraction:   cfg.RiskPropagationFactor,
	})
	pool := workerpool.New(cfg.MaxWorkers)

	prio := prioritizer.NewWithSeverityScores(prioritizer.Config{
		SeverityWeight:           cfg.PriorityWeights[config.PriorityWeightSeverity],
		TimeSensitivityWeight:    cfg.PriorityWeights[config.PriorityWeightTime],
		AccessibilityRiskWeight:  cfg.PriorityWeights[config.PriorityWeightAccessibility],
		NumAgentsAvailableWeight: cfg.PriorityWeights[config.PriorityWeightAvailability],
	}, cfg.SeverityScores)

	orchestrator := mission.NewOrchestrator(
		registry,
		riskCalc,
		prio,
		allocator.New(),
		planner.New(),
		pool,
		log,
	)
	if cfg.HazardFeedEnabled {
		orchestrator.EnableHazardFeed(cfg.HazardFeedTickInterval)
	}

	fc := facade.New(facade.Config{
		ReadTimeout:                cfg.ReadTimeout,
		WriteTimeout:               cfg.WriteTimeout,
		PlanningTimeout:            cfg.PlanningTimeout,
		AuthEnabled:                cfg.AuthEnabled,
		JWTSecret:                  cfg.JWTSecret,
		PlanningBreakerMaxFailures: cfg.PlanningBreakerMaxFailures,
		PlanningBreakerTimeout:     cfg.PlanningBreakerTimeout,
		PlanningBreakerHalfOpenMax: cfg.PlanningBreakerHalfOpenMax,
	}, orchestrator, registry, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      fc.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		log.Info("starting server", map[string]interface{}{"port": cfg.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", err, nil)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", err, nil)
	}
}
