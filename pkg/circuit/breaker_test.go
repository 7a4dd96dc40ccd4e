package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerClosed(t *testing.T) {
	t.Run("allows requests and resets failures on success", func(t *testing.T) {
		b := NewBreaker(Config{MaxFailures: 3, Timeout: time.Second})

		_ = b.Execute(context.Background(), func() error { return errors.New("boom") })
		assert.Equal(t, 1, b.Failures())

		assert.NoError(t, b.Execute(context.Background(), func() error { return nil }))
		assert.Equal(t, 0, b.Failures())
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("tracks failures without tripping below the threshold", func(t *testing.T) {
		b := NewBreaker(Config{MaxFailures: 3, Timeout: time.Second})

		_ = b.Execute(context.Background(), func() error { return errors.New("boom") })

		assert.Equal(t, 1, b.Failures())
		assert.Equal(t, StateClosed, b.State())
	})
}

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(Config{MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_ = b.Execute(context.Background(), func() error { return errors.New("boom") })
	}
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := NewBreaker(Config{MaxFailures: 1, Timeout: 10 * time.Millisecond, HalfOpenMax: 1})

	_ = b.Execute(context.Background(), func() error { return errors.New("boom") })
	assert.Equal(t, StateOpen, b.State())

	time.Sleep(20 * time.Millisecond)

	assert.NoError(t, b.Execute(context.Background(), func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerGroupIsolatesByName(t *testing.T) {
	g := NewBreakerGroup(Config{MaxFailures: 1, Timeout: time.Minute})

	_ = g.Execute(context.Background(), "mission-a", func() error { return errors.New("boom") })

	states := g.States()
	assert.Equal(t, StateOpen, states["mission-a"])

	err := g.Execute(context.Background(), "mission-b", func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, g.Get("mission-b").State())
}
