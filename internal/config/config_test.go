package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/disasterresponse/adrie-core/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "adrie-core", cfg.AppName)
	assert.Equal(t, 4, cfg.MaxWorkers)
	assert.Equal(t, 0.1, cfg.RiskPropagationFactor)
	assert.Equal(t, 1.0, cfg.RiskDecayFactorBase)
	assert.Equal(t, 1, cfg.RiskPropagationIterations)
	assert.Equal(t, 0.8, cfg.HazardWeights[model.HazardFire])
	assert.Equal(t, 1.0, cfg.SeverityScores[model.SeverityCritical])
	assert.False(t, cfg.AuthEnabled)
}

func TestLoadAppliesOverrides(t *testing.T) {
	t.Setenv("HAZARD_FIRE_WEIGHT", "0.55")
	t.Setenv("MAX_WORKERS", "8")
	t.Setenv("AUTH_SECRET", "s3cret")

	cfg := Load()

	assert.Equal(t, 0.55, cfg.HazardWeights[model.HazardFire])
	assert.Equal(t, 8, cfg.MaxWorkers)
	assert.True(t, cfg.AuthEnabled)
}

func TestLoadFallsBackOnMalformedOverride(t *testing.T) {
	t.Setenv("MAX_WORKERS", "not-a-number")
	defer os.Unsetenv("MAX_WORKERS")

	cfg := Load()

	assert.Equal(t, 4, cfg.MaxWorkers)
}
