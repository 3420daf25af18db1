package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwi-modeling/backend/internal/geometry"
	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/testutil"
)

func createTestIndex(t *testing.T) (*GeometryIndex, string) {
	t.Helper()
	dir := t.TempDir()
	gi, err := NewGeometryIndex(dir, "test", Options{Threads: 1, MemoryLimit: "128MB"})
	require.NoError(t, err)
	t.Cleanup(func() { gi.Close() })
	return gi, dir
}

func twoBoxObject(t *testing.T) *geometry.ObjectFile {
	t.Helper()
	obj, err := geometry.NewObjectFile("city")
	require.NoError(t, err)
	group, err := geometry.NewStructureGroup("blocks")
	require.NoError(t, err)

	for i, name := range []string{"a", "b"} {
		s, err := geometry.NewStructure(name)
		require.NoError(t, err)
		box, err := geometry.BuildBox(2, 3, 4, 0)
		require.NoError(t, err)
		s.AddSubStructures(box)
		s.Translate(models.Vec3{float64(10 * i), 0, 0})
		group.AddStructures(s)
	}
	obj.AddStructureGroups(group)
	return obj
}

func TestNewGeometryIndex(t *testing.T) {
	gi, dir := createTestIndex(t)
	assert.Equal(t, 0, gi.Len())

	_, err := os.Stat(filepath.Join(dir, "session_test.duckdb"))
	assert.NoError(t, err)
}

func TestGeometryIndex_LoadAndBounds(t *testing.T) {
	gi, _ := createTestIndex(t)
	ctx := context.Background()

	require.NoError(t, gi.Load(ctx, twoBoxObject(t)))
	assert.Equal(t, 2*6*4, gi.Len())

	bounds, err := gi.StructureBounds(ctx)
	require.NoError(t, err)
	require.Len(t, bounds, 2)

	assert.Equal(t, "blocks", bounds[0].Group)
	assert.Equal(t, "a", bounds[0].Structure)
	assert.Equal(t, 24, bounds[0].Vertices)
	assert.Equal(t, [3]float64{0, 0, 0}, bounds[0].Min)
	assert.Equal(t, [3]float64{2, 3, 4}, bounds[0].Max)

	assert.Equal(t, "b", bounds[1].Structure)
	assert.Equal(t, [3]float64{10, 0, 0}, bounds[1].Min)
	assert.Equal(t, [3]float64{12, 3, 4}, bounds[1].Max)
}

func TestGeometryIndex_ReloadReplacesRows(t *testing.T) {
	gi, _ := createTestIndex(t)
	ctx := context.Background()

	require.NoError(t, gi.Load(ctx, twoBoxObject(t)))

	obj, err := geometry.ReadObjectFile(strings.NewReader(testutil.SampleObject), "sample.object")
	require.NoError(t, err)
	require.NoError(t, gi.Load(ctx, obj))
	assert.Equal(t, 4, gi.Len())

	bounds, err := gi.StructureBounds(ctx)
	require.NoError(t, err)
	require.Len(t, bounds, 1)
	assert.Equal(t, "house", bounds[0].Structure)
	assert.Equal(t, [3]float64{1, 1, 0}, bounds[0].Max)
}

func TestGeometryIndex_EmptyBounds(t *testing.T) {
	gi, _ := createTestIndex(t)

	bounds, err := gi.StructureBounds(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bounds)
}

func TestGeometryIndex_CloseRemovesFile(t *testing.T) {
	dir := t.TempDir()
	gi, err := NewGeometryIndex(dir, "gone", DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, gi.Close())
	_, err = os.Stat(filepath.Join(dir, "session_gone.duckdb"))
	assert.True(t, os.IsNotExist(err))
}

func TestGeometryIndex_DuplicateNamesKeepOwnRows(t *testing.T) {
	gi, _ := createTestIndex(t)
	ctx := context.Background()

	obj := twoBoxObject(t)
	group := obj.StructureGroups()[0]
	for _, s := range group.Structures() {
		require.NoError(t, s.SetName("crate"))
	}
	require.NoError(t, gi.Load(ctx, obj))

	bounds, err := gi.StructureBounds(ctx)
	require.NoError(t, err)
	require.Len(t, bounds, 2)

	assert.Equal(t, "crate", bounds[0].Structure)
	assert.Equal(t, 0, bounds[0].StructureIndex)
	assert.Equal(t, [3]float64{2, 3, 4}, bounds[0].Max)

	assert.Equal(t, "crate", bounds[1].Structure)
	assert.Equal(t, 1, bounds[1].StructureIndex)
	assert.Equal(t, [3]float64{10, 0, 0}, bounds[1].Min)
	assert.Equal(t, 24, bounds[1].Vertices)
}
