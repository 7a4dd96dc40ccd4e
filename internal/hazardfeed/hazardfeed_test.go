package hazardfeed

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disasterresponse/adrie-core/internal/environment"
)

func TestStepMutatesOnlyDynamicHazards(t *testing.T) {
	env, err := environment.New(environment.InitRequest{MapSize: 10, HazardIntensityFactor: 1.0, NumVictims: 0, Seed: 3})
	require.NoError(t, err)

	hazards := env.Hazards()
	require.NotEmpty(t, hazards)

	static := hazards[0]
	static.Dynamic = false
	staticIntensity := static.Intensity

	rng := rand.New(rand.NewSource(1))
	var ticked []uuid.UUID
	changed := Step(env, rng, func(id uuid.UUID, intensity float64) {
		ticked = append(ticked, id)
		assert.GreaterOrEqual(t, intensity, 0.0)
		assert.LessOrEqual(t, intensity, 1.0)
	})

	assert.LessOrEqual(t, changed, len(hazards)-1)
	assert.Len(t, ticked, changed)
	assert.NotContains(t, ticked, static.ID)
	assert.Equal(t, staticIntensity, static.Intensity)
}

func TestStepClampsIntensityToUnitRange(t *testing.T) {
	env, err := environment.New(environment.InitRequest{MapSize: 5, HazardIntensityFactor: 1.0, NumVictims: 0, Seed: 11})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		Step(env, rng, nil)
	}

	for _, h := range env.Hazards() {
		assert.GreaterOrEqual(t, h.Intensity, 0.0)
		assert.LessOrEqual(t, h.Intensity, 1.0)
	}
}

func TestStepIsDeterministicForAGivenRNGSeed(t *testing.T) {
	build := func() *environment.Environment {
		env, err := environment.New(environment.InitRequest{MapSize: 8, HazardIntensityFactor: 0.9, NumVictims: 0, Seed: 77})
		require.NoError(t, err)
		return env
	}

	envA, envB := build(), build()
	rngA := rand.New(rand.NewSource(5))
	rngB := rand.New(rand.NewSource(5))

	Step(envA, rngA, nil)
	Step(envB, rngB, nil)

	hazA, hazB := envA.Hazards(), envB.Hazards()
	require.Len(t, hazA, len(hazB))
	for i := range hazA {
		assert.Equal(t, hazA[i].Intensity, hazB[i].Intensity)
	}
}
