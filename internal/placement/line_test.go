package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwi-modeling/backend/internal/geometry"
	"github.com/rwi-modeling/backend/internal/models"
)

func carStructure(t *testing.T) *geometry.Structure {
	t.Helper()
	box, err := geometry.BuildBox(4, 2, 1, 0)
	require.NoError(t, err)
	s, err := geometry.NewStructure("car")
	require.NoError(t, err)
	s.AddSubStructures(box)
	s.Dimensions = box.Dimensions
	return s
}

func fixed(gap float64) SpacingFunc {
	return func() float64 { return gap }
}

func TestPlaceOnLine(t *testing.T) {
	s := carStructure(t)

	group, err := PlaceOnLine(models.Vec3{0, 10, 0}, 20, 0, fixed(1), s)
	require.NoError(t, err)
	assert.Equal(t, "car in line", group.Name())

	cars := group.Structures()
	require.Len(t, cars, 4)
	starts := []float64{0, 5, 10, 15}
	for i, c := range cars {
		assert.Equal(t, "car00"+string(rune('0'+i)), c.Name())
		b, ok := c.Bounds()
		require.True(t, ok)
		assert.Equal(t, models.Vec3{starts[i], 10, 0}, b.Min)
		assert.Equal(t, models.Vec3{starts[i] + 4, 12, 1}, b.Max)
		assert.LessOrEqual(t, b.Max[0], 20.0)
	}

	b, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, models.Vec3{0, 0, 0}, b.Min, "template is not moved")
}

func TestPlaceOnLine_AlongZ(t *testing.T) {
	group, err := PlaceOnLine(models.Vec3{3, 3, 0}, 3.5, 2, fixed(0.25), carStructure(t))
	require.NoError(t, err)

	cars := group.Structures()
	require.Len(t, cars, 2)
	b, _ := cars[1].Bounds()
	assert.Equal(t, models.Vec3{3, 3, 1.25}, b.Min)
}

func TestPlaceOnLine_NothingFits(t *testing.T) {
	group, err := PlaceOnLine(models.Vec3{}, 4, 0, fixed(1), carStructure(t))
	require.NoError(t, err)
	assert.Empty(t, group.Structures())

	group, err = PlaceOnLine(models.Vec3{30, 0, 0}, 20, 0, fixed(1), carStructure(t))
	require.NoError(t, err)
	assert.Empty(t, group.Structures())
}

func TestPlaceOnLine_Errors(t *testing.T) {
	_, err := PlaceOnLine(models.Vec3{}, 10, 3, fixed(1), carStructure(t))
	assert.Error(t, err)

	bare, err := geometry.NewStructure("bare")
	require.NoError(t, err)
	_, err = PlaceOnLine(models.Vec3{}, 10, 0, fixed(1), bare)
	assert.ErrorIs(t, err, ErrNoDimensions)
}

func TestPlaceOnLine_SpacingCalledPerCopy(t *testing.T) {
	calls := 0
	gaps := []float64{0, 2, 0.5}
	spacing := func() float64 {
		g := gaps[calls%len(gaps)]
		calls++
		return g
	}
	group, err := PlaceOnLine(models.Vec3{}, 13, 0, spacing, carStructure(t))
	require.NoError(t, err)
	require.Len(t, group.Structures(), 2)
	assert.Equal(t, 2, calls)

	b, _ := group.Structures()[1].Bounds()
	assert.Equal(t, 4.0, b.Min[0])
}

func unitCube(t *testing.T) *geometry.Structure {
	t.Helper()
	box, err := geometry.BuildBox(1, 1, 1, 0)
	require.NoError(t, err)
	s, err := geometry.NewStructure("cube")
	require.NoError(t, err)
	s.AddSubStructures(box)
	s.Dimensions = box.Dimensions
	return s
}

func TestPlaceOnLine_NoProgress(t *testing.T) {
	t.Run("beyond float resolution", func(t *testing.T) {
		_, err := PlaceOnLine(models.Vec3{1e17, 0, 0}, 2e17, 0, fixed(0), unitCube(t))
		assert.ErrorIs(t, err, ErrNoProgress)
	})

	t.Run("flat along axis", func(t *testing.T) {
		s := unitCube(t)
		s.Dimensions = &models.Vec3{1, 1, 0}
		_, err := PlaceOnLine(models.Vec3{}, 10, 2, fixed(0), s)
		assert.ErrorIs(t, err, ErrNoProgress)
	})

	t.Run("negative gap", func(t *testing.T) {
		_, err := PlaceOnLine(models.Vec3{}, 10, 0, fixed(-2), unitCube(t))
		assert.ErrorIs(t, err, ErrNoProgress)
	})
}

func TestPlaceOnLine_CopyLimit(t *testing.T) {
	group, err := PlaceOnLine(models.Vec3{}, MaxCopies+0.5, 0, fixed(0), unitCube(t))
	require.NoError(t, err)
	assert.Len(t, group.Structures(), MaxCopies)

	_, err = PlaceOnLine(models.Vec3{}, 2*MaxCopies, 0, fixed(0), unitCube(t))
	assert.ErrorIs(t, err, ErrTooManyCopies)
}
