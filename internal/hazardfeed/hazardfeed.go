// Package hazardfeed optionally drives dynamic hazards forward between
// planning cycles — a background tick loop that perturbs intensities on
// hazards marked Dynamic, simulating fire spread or structural
// deterioration without requiring a caller to re-invoke the engine.
package hazardfeed

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/disasterresponse/adrie-core/internal/environment"
)

// Feed drives one mission's dynamic hazards forward on a ticker.
type Feed struct {
	env      *environment.Environment
	interval time.Duration
	rng      *rand.Rand

	mu       sync.Mutex
	shutdown chan struct{}
	wg       sync.WaitGroup
	running  bool

	onTick func(hazardID uuid.UUID, newIntensity float64)
}

// New builds a Feed over env, ticking every interval. onTick, if non-nil,
// is invoked synchronously after each hazard mutation — used by the
// mission orchestrator to emit a HazardIntensityTicked decision-log event.
func New(env *environment.Environment, interval time.Duration, seed int64, onTick func(uuid.UUID, float64)) *Feed {
	return &Feed{
		env:      env,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
		onTick:   onTick,
	}
}

// Start begins the tick loop in a background goroutine. Calling Start on
// an already-running Feed is a no-op.
func (f *Feed) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.running = true
	f.shutdown = make(chan struct{})

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				f.tick()
			case <-f.shutdown:
				return
			}
		}
	}()
}

// Stop halts the tick loop and blocks until the background goroutine
// exits.
func (f *Feed) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	close(f.shutdown)
	f.mu.Unlock()

	f.wg.Wait()
}

// tick perturbs every dynamic hazard's intensity by a small random walk,
// clamped to [0, 1].
func (f *Feed) tick() {
	Step(f.env, f.rng, f.onTick)
}

// Step advances every dynamic hazard in env's environment by one bounded
// random walk, clamped to [0, 1], and reports how many hazards actually
// changed. It is the synchronous counterpart to the background Feed loop
// above, used by the orchestrator's on-demand step_mission operation so a
// caller can advance hazard state deterministically (given the mission's
// own seeded rng) without running a ticker. onTick, if non-nil, is
// invoked once per changed hazard.
func Step(env *environment.Environment, rng *rand.Rand, onTick func(uuid.UUID, float64)) int {
	changed := 0
	for _, h := range env.Hazards() {
		if !h.Dynamic {
			continue
		}
		delta := (rng.Float64() - 0.5) * 0.2
		newIntensity := h.Intensity + delta
		if newIntensity < 0 {
			newIntensity = 0
		}
		if newIntensity > 1 {
			newIntensity = 1
		}
		if newIntensity == h.Intensity {
			continue
		}
		env.UpdateHazardIntensity(h.ID, newIntensity)
		changed++
		if onTick != nil {
			onTick(h.ID, newIntensity)
		}
	}
	return changed
}
