// Package config loads the engine's runtime configuration from the
// environment. Every tunable named in the external interface spec
// (hazard weights, prioritization weights, severity scores, the risk
// propagation factor, worker count, rate limit) is read here with its
// documented default; a malformed override falls back to the default
// rather than failing startup, so a bad env var can't brick the planner.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/disasterresponse/adrie-core/internal/model"
)

// Config is the engine's full runtime configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	// Façade
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	JWTSecret    string
	AuthEnabled  bool

	// Logging
	LogLevel    string
	LogFormat   string
	LogFilePath string

	// Worker pool (C10)
	MaxWorkers      int
	PlanningTimeout time.Duration

	// Risk field (C2)
	HazardWeights             map[model.HazardKind]float64
	RiskPropagationFactor     float64 // RISK_PROPAGATION_FACTOR, default 0.1
	RiskDecayFactorBase       float64 // RISK_DECAY_FACTOR_BASE, default 1.0
	RiskPropagationIterations int

	// Victim prioritizer (C3)
	PriorityWeights map[string]float64
	SeverityScores  map[model.InjurySeverity]float64

	// Hazard feed (C14)
	HazardFeedEnabled      bool
	HazardFeedTickInterval time.Duration

	// Circuit breaker (C13)
	PlanningBreakerMaxFailures int
	PlanningBreakerTimeout     time.Duration
	PlanningBreakerHalfOpenMax int

	// Façade rate limiting — read here but enforced, if at all, by the
	// façade; the core never rate-limits its own operations.
	RateLimitRequestsPerInterval int
	RateLimitIntervalSeconds     int
}

// Prioritization weight keys for PriorityWeights.
const (
	PriorityWeightSeverity      = "severity"
	PriorityWeightTime          = "time_sensitivity"
	PriorityWeightAccessibility = "accessibility"
	PriorityWeightAvailability  = "availability"
)

// Load reads Config from the process environment, falling back to the
// documented defaults for anything unset or malformed.
func Load() *Config {
	return &Config{
		AppName:     getEnv("APP_NAME", "adrie-core"),
		AppVersion:  getEnv("APP_VERSION", "0.1.0"),
		Environment: getEnv("ENVIRONMENT", "development"),

		Port:         getEnv("ADRIE_PORT", "8080"),
		ReadTimeout:  getDuration("ADRIE_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("ADRIE_WRITE_TIMEOUT", 30*time.Second),
		JWTSecret:    getEnv("AUTH_SECRET", ""),
		AuthEnabled:  getEnv("AUTH_SECRET", "") != "",

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("ADRIE_LOG_FORMAT", "json"),
		LogFilePath: getEnv("LOG_FILE_PATH", ""),

		MaxWorkers:      getInt("MAX_WORKERS", 4),
		PlanningTimeout: getDuration("ADRIE_PLANNING_TIMEOUT", 5*time.Second),

		HazardWeights: map[model.HazardKind]float64{
			model.HazardFire:     getFloat("HAZARD_FIRE_WEIGHT", 0.8),
			model.HazardCollapse: getFloat("HAZARD_COLLAPSE_WEIGHT", 1.0),
			model.HazardFlood:    getFloat("HAZARD_FLOOD_WEIGHT", 0.6),
			model.HazardGasLeak:  getFloat("HAZARD_GAS_LEAK_WEIGHT", 0.9),
			model.HazardDebris:   getFloat("HAZARD_DEBRIS_WEIGHT", 0.4),
		},
		RiskPropagationFactor:     getFloat("RISK_PROPAGATION_FACTOR", 0.1),
		RiskDecayFactorBase:       getFloat("RISK_DECAY_FACTOR_BASE", 1.0),
		RiskPropagationIterations: getInt("RISK_PROPAGATION_ITERATIONS", 1),

		PriorityWeights: map[string]float64{
			PriorityWeightSeverity:      getFloat("PRIORITY_SEVERITY_WEIGHT", 0.4),
			PriorityWeightTime:          getFloat("PRIORITY_TIME_SENSITIVITY_WEIGHT", 0.3),
			PriorityWeightAccessibility: getFloat("PRIORITY_ACCESSIBILITY_WEIGHT", 0.2),
			PriorityWeightAvailability:  getFloat("PRIORITY_AVAILABILITY_WEIGHT", 0.1),
		},
		SeverityScores: map[model.InjurySeverity]float64{
			model.SeverityCritical: getFloat("SEVERITY_CRITICAL_SCORE", 1.0),
			model.SeveritySevere:   getFloat("SEVERITY_SEVERE_SCORE", 0.75),
			model.SeverityModerate: getFloat("SEVERITY_MODERATE_SCORE", 0.5),
			model.SeverityMild:     getFloat("SEVERITY_MILD_SCORE", 0.25),
		},

		HazardFeedEnabled:      getBool("ADRIE_HAZARD_FEED_ENABLED", false),
		HazardFeedTickInterval: getDuration("ADRIE_HAZARD_FEED_TICK_INTERVAL", 2*time.Second),

		PlanningBreakerMaxFailures: getInt("ADRIE_PLANNING_BREAKER_MAX_FAILURES", 5),
		PlanningBreakerTimeout:     getDuration("ADRIE_PLANNING_BREAKER_TIMEOUT", 30*time.Second),
		PlanningBreakerHalfOpenMax: getInt("ADRIE_PLANNING_BREAKER_HALF_OPEN_MAX", 1),

		RateLimitRequestsPerInterval: getInt("RATE_LIMIT_REQUESTS_PER_INTERVAL", 100),
		RateLimitIntervalSeconds:     getInt("RATE_LIMIT_INTERVAL_SECONDS", 60),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
