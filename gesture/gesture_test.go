package gesture_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/gesturematch/gesture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNew_Shape(t *testing.T) {
	g, err := gesture.New([][]float64{
		{0.1, 1.0},
		{0.2, 1.1},
		{0.3, 1.2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.Channels())
	assert.Equal(t, 1.1, g.At(1, 1))
	assert.Equal(t, []float64{0.3, 1.2}, g.Frame(2))
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, g.Channel(0))
	require.NoError(t, gesture.Validate(g))
}

func TestNew_Errors(t *testing.T) {
	_, err := gesture.New(nil)
	assert.ErrorIs(t, err, gesture.ErrEmpty)

	_, err = gesture.New([][]float64{{}})
	assert.ErrorIs(t, err, gesture.ErrEmpty)

	_, err = gesture.New([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, gesture.ErrRagged)

	_, err = gesture.New([][]float64{{1, math.NaN()}})
	assert.ErrorIs(t, err, gesture.ErrNaNInf)

	_, err = gesture.New([][]float64{{math.Inf(-1)}})
	assert.ErrorIs(t, err, gesture.ErrNaNInf)
}

func TestFromChannels(t *testing.T) {
	g, err := gesture.FromChannels([][]float64{
		{0, 1, 2, 3},
		{5, 6, 7, 8},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 2, g.Channels())
	assert.Equal(t, []float64{2, 7}, g.Frame(2))

	_, err = gesture.FromChannels([][]float64{{0, 1}, {0}})
	assert.ErrorIs(t, err, gesture.ErrRagged)

	_, err = gesture.FromChannels([][]float64{{0, math.NaN()}})
	assert.ErrorIs(t, err, gesture.ErrNaNInf)
}

// TestDense_Immutable checks that neither inputs nor returned copies alias storage.
func TestDense_Immutable(t *testing.T) {
	frames := [][]float64{{1, 2}, {3, 4}}
	g, err := gesture.New(frames)
	require.NoError(t, err)

	frames[0][0] = 100
	assert.Equal(t, 1.0, g.At(0, 0), "input is copied")

	ch := g.Channel(0)
	ch[0] = 100
	assert.Equal(t, 1.0, g.At(0, 0), "Channel returns a copy")

	m := g.Matrix()
	m.Set(0, 0, 100)
	assert.Equal(t, 1.0, g.At(0, 0), "Matrix returns a copy")

	all := g.Frames()
	all[1][1] = 100
	assert.Equal(t, 4.0, g.At(1, 1), "Frames returns copies")
}

func TestDense_WithValues(t *testing.T) {
	g, err := gesture.New([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	repl := mat.NewDense(3, 2, []float64{9, 9, 8, 8, 7, 7})
	h, err := g.WithValues(repl)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 8.0, h.At(1, 0))
	assert.Equal(t, 2, g.Len(), "receiver untouched")
	assert.Equal(t, 1.0, g.At(0, 0), "receiver untouched")

	repl.Set(0, 0, -1)
	assert.Equal(t, 9.0, h.At(0, 0), "replacement is copied")

	_, err = g.WithValues(mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, gesture.ErrChannelCount)

	_, err = g.WithValues(nil)
	assert.ErrorIs(t, err, gesture.ErrEmpty)
}

func TestDense_Slice(t *testing.T) {
	g, err := gesture.FromChannels([][]float64{{0, 1, 2, 3, 4}})
	require.NoError(t, err)

	s, err := g.Slice(1, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Channel(0))

	_, err = g.Slice(3, 3)
	assert.ErrorIs(t, err, gesture.ErrOutOfRange)
	_, err = g.Slice(-1, 2)
	assert.ErrorIs(t, err, gesture.ErrOutOfRange)
	_, err = g.Slice(0, 6)
	assert.ErrorIs(t, err, gesture.ErrOutOfRange)
}

func TestValidate_Nil(t *testing.T) {
	assert.ErrorIs(t, gesture.Validate(nil), gesture.ErrEmpty)
}

// TestValidate_TypedNil covers a nil *Dense stored in the interface and the
// zero Dense.
func TestValidate_TypedNil(t *testing.T) {
	var d *gesture.Dense
	var r gesture.Representation = d
	assert.ErrorIs(t, gesture.Validate(r), gesture.ErrEmpty)
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, 0, d.Channels())

	assert.ErrorIs(t, gesture.Validate(&gesture.Dense{}), gesture.ErrEmpty)
}
