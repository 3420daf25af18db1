package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwi-modeling/backend/internal/document"
	"github.com/rwi-modeling/backend/internal/index"
	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/testutil"
)

func newTestManager(t *testing.T, maxSessions int) *Manager {
	t.Helper()
	m := NewManager(Options{
		MaxSessions:  maxSessions,
		IndexDir:     t.TempDir(),
		IndexOptions: index.Options{Threads: 1, MemoryLimit: "128MB"},
	})
	t.Cleanup(m.CloseAll)
	return m
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openSample(t *testing.T, m *Manager) *models.EditSession {
	t.Helper()
	path := writeFixture(t, "sample.object", testutil.SampleObject)
	sess, err := m.Open("file-1", "sample.object", path)
	require.NoError(t, err)
	return sess
}

func TestManager_Open(t *testing.T) {
	t.Run("object file", func(t *testing.T) {
		m := newTestManager(t, 0)
		sess := openSample(t, m)

		assert.Equal(t, "object", sess.Kind)
		assert.Equal(t, models.SessionStatusOpen, sess.Status)
		assert.Equal(t, 0, sess.Revision)

		got, ok := m.GetSession(sess.ID)
		require.True(t, ok)
		assert.Equal(t, "sample.object", got.FileName)
	})

	t.Run("setup file detected by content", func(t *testing.T) {
		m := newTestManager(t, 0)
		path := writeFixture(t, "upload.bin", testutil.SampleSetup)

		sess, err := m.Open("file-2", "upload.bin", path)
		require.NoError(t, err)
		assert.Equal(t, "setup", sess.Kind)
	})

	t.Run("parse error is returned", func(t *testing.T) {
		m := newTestManager(t, 0)
		path := writeFixture(t, "broken.object", testutil.BrokenObject)

		_, err := m.Open("file-3", "broken.object", path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrUnexpectedToken))
		assert.Empty(t, m.ListSessions())
	})
}

func TestManager_Export_RoundTrip(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)

	out, name, err := m.Export(sess.ID, document.LF)
	require.NoError(t, err)
	assert.Equal(t, "sample.object", name)
	assert.Equal(t, testutil.SampleObject, string(out))

	crlf, _, err := m.Export(sess.ID, document.CRLF)
	require.NoError(t, err)
	assert.Equal(t, strings.ReplaceAll(testutil.SampleObject, "\n", "\r\n"), string(crlf))
}

func TestManager_Translate(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)

	var events []models.SessionEvent
	unsubscribe := m.Subscribe(func(ev models.SessionEvent) { events = append(events, ev) })
	defer unsubscribe()

	updated, err := m.Translate(sess.ID, models.Vec3{10, 5, 3})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Revision)

	out, _, err := m.Export(sess.ID, document.LF)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "10.0000000000 5.0000000000 3.0000000000\n")
	assert.Contains(t, text, "11.0000000000 5.0000000000 3.0000000000\n")
	assert.Contains(t, text, "11.0000000000 6.0000000000 3.0000000000\n")
	assert.Contains(t, text, "10.0000000000 6.0000000000 3.0000000000\n")

	require.Len(t, events, 1)
	assert.Equal(t, models.EventTranslated, events[0].Type)
	assert.Equal(t, sess.ID, events[0].SessionID)
	assert.Equal(t, 1, events[0].Revision)
}

func TestManager_AddBox(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)

	_, err := m.AddBox(sess.ID, BoxSpec{
		Group: "new", Structure: "crate",
		Length: 2, Width: 1, Height: 1,
		Offset: models.Vec3{5, 0, 0},
	})
	require.NoError(t, err)

	tree, err := m.Tree(sess.ID)
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "new", tree.Children[1].Name)
	crate := tree.Children[1].Children[0]
	assert.Equal(t, "crate", crate.Name)
	require.NotNil(t, crate.Bounds)
	assert.Equal(t, models.Vec3{5, 0, 0}, crate.Bounds.Min)
	assert.Equal(t, models.Vec3{7, 1, 1}, crate.Bounds.Max)

	t.Run("existing group is reused", func(t *testing.T) {
		_, err := m.AddBox(sess.ID, BoxSpec{Group: "buildings", Structure: "shed", Length: 1, Width: 1, Height: 1})
		require.NoError(t, err)
		tree, _ := m.Tree(sess.ID)
		assert.Len(t, tree.Children, 2)
		assert.Len(t, tree.Children[0].Children, 2)
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		_, err := m.AddBox(sess.ID, BoxSpec{Group: "g", Structure: "s", Length: 0, Width: 1, Height: 1})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("rejects long names", func(t *testing.T) {
		_, err := m.AddBox(sess.ID, BoxSpec{Group: "g", Structure: strings.Repeat("x", 72), Length: 1, Width: 1, Height: 1})
		assert.ErrorIs(t, err, models.ErrNameTooLong)
	})
}

func TestManager_PlaceLine(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)

	_, err := m.PlaceLine(sess.ID, LineSpec{
		BoxSpec:     BoxSpec{Structure: "car", Length: 4, Width: 2, Height: 1.5},
		Destination: 20,
		Axis:        0,
		MinGap:      1,
		MaxGap:      1,
	})
	require.NoError(t, err)

	tree, err := m.Tree(sess.ID)
	require.NoError(t, err)
	line := tree.Children[len(tree.Children)-1]
	assert.Equal(t, "car in line", line.Name)
	// copies start at 0, 5, 10 and 15; a fifth at 20 would not fit
	require.Len(t, line.Children, 4)
	assert.Equal(t, "car000", line.Children[0].Name)
	assert.Equal(t, "car003", line.Children[3].Name)

	t.Run("rejects inverted gap range", func(t *testing.T) {
		_, err := m.PlaceLine(sess.ID, LineSpec{
			BoxSpec: BoxSpec{Structure: "car", Length: 4, Width: 2, Height: 1.5},
			MinGap:  2, MaxGap: 1, Destination: 10,
		})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("rejects lines that cannot advance", func(t *testing.T) {
		_, err := m.PlaceLine(sess.ID, LineSpec{
			BoxSpec:     BoxSpec{Structure: "far", Length: 1, Width: 1, Height: 1},
			Origin:      models.Vec3{1e17, 0, 0},
			Destination: 2e17,
		})
		assert.ErrorIs(t, err, ErrBadRequest)

		tree, err := m.Tree(sess.ID)
		require.NoError(t, err)
		assert.Equal(t, "car in line", tree.Children[len(tree.Children)-1].Name)
	})
}

func TestManager_WrongKind(t *testing.T) {
	m := newTestManager(t, 0)
	path := writeFixture(t, "sample.setup", testutil.SampleSetup)
	sess, err := m.Open("f", "sample.setup", path)
	require.NoError(t, err)

	_, err = m.AddBox(sess.ID, BoxSpec{Structure: "s", Length: 1, Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrWrongKind)

	_, err = m.Bounds(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestManager_ArrangeAntenna(t *testing.T) {
	m := newTestManager(t, 0)
	path := writeFixture(t, "sample.setup", testutil.SampleSetup)
	sess, err := m.Open("f", "sample.setup", path)
	require.NoError(t, err)

	_, err = m.ArrangeAntenna(sess.ID, "array", models.Vec3{1, 1, 0}, 90, 0.5)
	require.NoError(t, err)

	out, _, err := m.Export(sess.ID, document.LF)
	require.NoError(t, err)
	assert.Contains(t, string(out), "position 1 1 0\n")
	assert.Contains(t, string(out), "position 1 1.5 0\n")

	_, err = m.ArrangeAntenna(sess.ID, "missing", models.Vec3{}, 0, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_Clear(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)

	updated, err := m.Clear(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Revision)

	tree, err := m.Tree(sess.ID)
	require.NoError(t, err)
	assert.Empty(t, tree.Children)

	out, _, err := m.Export(sess.ID, document.LF)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "end_<reference>\nend_<object>\n"))
}

func TestManager_Bounds(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)
	ctx := context.Background()

	bounds, err := m.Bounds(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, bounds, 1)
	assert.Equal(t, [3]float64{1, 1, 0}, bounds[0].Max)

	_, err = m.Translate(sess.ID, models.Vec3{2, 0, 0})
	require.NoError(t, err)

	bounds, err = m.Bounds(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{2, 0, 0}, bounds[0].Min)
	assert.Equal(t, [3]float64{3, 1, 0}, bounds[0].Max)
}

func TestManager_CloseSession(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)

	var closed []string
	m.Subscribe(func(ev models.SessionEvent) {
		if ev.Type == models.EventClosed {
			closed = append(closed, ev.SessionID)
		}
	})

	require.NoError(t, m.CloseSession(sess.ID))
	assert.Equal(t, []string{sess.ID}, closed)

	_, ok := m.GetSession(sess.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, m.CloseSession(sess.ID), ErrNotFound)

	_, err := m.Translate(sess.ID, models.Vec3{1, 0, 0})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	m := newTestManager(t, 2)

	first := openSample(t, m)
	second := openSample(t, m)

	m.mu.RLock()
	m.sessions[first.ID].LastAccessed = time.Now().Add(-time.Hour)
	m.mu.RUnlock()

	third := openSample(t, m)

	_, ok := m.GetSession(first.ID)
	assert.False(t, ok, "oldest session should be evicted")
	_, ok = m.GetSession(second.ID)
	assert.True(t, ok)
	_, ok = m.GetSession(third.ID)
	assert.True(t, ok)
}

func TestManager_CleanupOldSessions(t *testing.T) {
	m := newTestManager(t, 0)

	stale := openSample(t, m)
	fresh := openSample(t, m)

	m.mu.RLock()
	m.sessions[stale.ID].LastAccessed = time.Now().Add(-2 * time.Hour)
	m.mu.RUnlock()

	assert.Equal(t, 1, m.CleanupOldSessions(30*time.Minute))

	_, ok := m.GetSession(stale.ID)
	assert.False(t, ok)
	_, ok = m.GetSession(fresh.ID)
	assert.True(t, ok)
}

func TestManager_ConcurrentMutations(t *testing.T) {
	m := newTestManager(t, 0)
	sess := openSample(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Translate(sess.ID, models.Vec3{1, 0, 0})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, ok := m.GetSession(sess.ID)
	require.True(t, ok)
	assert.Equal(t, 20, got.Revision)

	tree, err := m.Tree(sess.ID)
	require.NoError(t, err)
	require.NotNil(t, tree.Bounds)
	assert.Equal(t, 20.0, tree.Bounds.Min[0])
}

func TestManager_NotFound(t *testing.T) {
	m := newTestManager(t, 0)

	_, err := m.Tree("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, m.TouchSession("missing"))
}
