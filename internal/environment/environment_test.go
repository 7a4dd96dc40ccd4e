package environment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disasterresponse/adrie-core/internal/coreerrors"
	"github.com/disasterresponse/adrie-core/internal/model"
)

func TestNew(t *testing.T) {
	t.Run("deterministic build matches expected counts (S1)", func(t *testing.T) {
		env, err := New(InitRequest{MapSize: 10, HazardIntensityFactor: 0.5, NumVictims: 2, Seed: 42})
		require.NoError(t, err)

		assert.Len(t, env.Victims(), 2)
		assert.LessOrEqual(t, len(env.Hazards()), 2)
	})

	t.Run("same seed reproduces identical hazards and victims", func(t *testing.T) {
		req := InitRequest{MapSize: 10, HazardIntensityFactor: 0.5, NumVictims: 2, Seed: 42}
		env1, err := New(req)
		require.NoError(t, err)
		env2, err := New(req)
		require.NoError(t, err)

		locs1 := locations(env1.Victims())
		locs2 := locations(env2.Victims())
		assert.ElementsMatch(t, locs1, locs2)

		haz1, haz2 := env1.Hazards(), env2.Hazards()
		require.Len(t, haz2, len(haz1))
		for i := range haz1 {
			assert.Equal(t, haz1[i].Location, haz2[i].Location)
			assert.Equal(t, haz1[i].Kind, haz2[i].Kind)
			assert.Equal(t, haz1[i].Intensity, haz2[i].Intensity)
			assert.Equal(t, haz1[i].Radius, haz2[i].Radius)
		}
	})

	t.Run("rejects non-positive map size", func(t *testing.T) {
		_, err := New(InitRequest{MapSize: 0, Seed: 1})
		assert.Error(t, err)
	})
}

func TestNeighbors(t *testing.T) {
	t.Run("corner cell has exactly two in-bounds neighbors", func(t *testing.T) {
		env, err := New(InitRequest{MapSize: 5, Seed: 1})
		require.NoError(t, err)

		neighbors := env.Neighbors(model.Coordinate{X: 0, Y: 0})
		assert.Len(t, neighbors, 2)
	})
}

func TestRandomPassableCoordinate(t *testing.T) {
	t.Run("draws a passable cell", func(t *testing.T) {
		env, err := New(InitRequest{MapSize: 5, Seed: 3})
		require.NoError(t, err)

		c, err := env.RandomPassableCoordinate(rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		node, ok := env.Node(c)
		require.True(t, ok)
		assert.True(t, node.Passable)
	})

	t.Run("reports NoPassableCoordinates when every cell is blocked", func(t *testing.T) {
		env := &Environment{
			gridSize: 2,
			grid: map[model.Coordinate]model.GridNode{
				{X: 0, Y: 0}: {Coord: model.Coordinate{X: 0, Y: 0}, Passable: false},
				{X: 0, Y: 1}: {Coord: model.Coordinate{X: 0, Y: 1}, Passable: false},
				{X: 1, Y: 0}: {Coord: model.Coordinate{X: 1, Y: 0}, Passable: false},
				{X: 1, Y: 1}: {Coord: model.Coordinate{X: 1, Y: 1}, Passable: false},
			},
		}

		_, err := env.RandomPassableCoordinate(rand.New(rand.NewSource(1)))
		require.Error(t, err)
		var noPassable *coreerrors.NoPassableCoordinatesError
		assert.ErrorAs(t, err, &noPassable)
	})
}

func locations(victims []*model.Victim) []model.Coordinate {
	out := make([]model.Coordinate, len(victims))
	for i, v := range victims {
		out[i] = v.Location
	}
	return out
}
