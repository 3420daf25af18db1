package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/rwi-modeling/backend/internal/document"
	"github.com/rwi-modeling/backend/internal/geometry"
	"github.com/rwi-modeling/backend/internal/index"
	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/placement"
	"github.com/rwi-modeling/backend/internal/setup"
)

// DefaultMaxSessions limits concurrent sessions when no limit is configured.
const DefaultMaxSessions = 10

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
	// ErrWrongKind is returned when an operation does not apply to the
	// session's document kind.
	ErrWrongKind = errors.New("operation not supported for this document kind")
	// ErrBadRequest is returned for invalid operation parameters.
	ErrBadRequest = errors.New("invalid request")
)

// Options configures a Manager.
type Options struct {
	MaxSessions  int
	IndexDir     string
	IndexOptions index.Options
}

// Listener receives session events.
type Listener func(models.SessionEvent)

// Manager holds the documents open for editing.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	registry *document.Registry
	opts     Options
	logger   *log.Logger

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// SessionState holds the session metadata and the parsed document. mu
// serializes every access to Doc.
type SessionState struct {
	mu           sync.Mutex
	Session      *models.EditSession
	Doc          document.Document
	LastAccessed time.Time

	index        *index.GeometryIndex
	indexedAtRev int
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.IndexDir == "" {
		opts.IndexDir = os.TempDir()
	}
	return &Manager{
		sessions:  make(map[string]*SessionState),
		registry:  document.GetGlobalRegistry(),
		opts:      opts,
		logger:    log.New("session"),
		listeners: make(map[int]Listener),
	}
}

// Logger returns the manager's logger so callers can adjust its level.
func (m *Manager) Logger() *log.Logger {
	return m.logger
}

// Subscribe registers fn for every future event and returns a function that
// removes it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.listenersMu.Lock()
		defer m.listenersMu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) publish(s *models.EditSession, typ models.SessionEventType, detail string) {
	ev := models.SessionEvent{
		SessionID: s.ID,
		Type:      typ,
		Revision:  s.Revision,
		Detail:    detail,
		Timestamp: time.Now().UnixMilli(),
	}
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, fn := range m.listeners {
		fn(ev)
	}
}

// Open parses the file at filePath into a new session. fileName selects the
// document format and names the document.
func (m *Manager) Open(fileID, fileName, filePath string) (*models.EditSession, error) {
	m.evictIfNeeded()

	start := time.Now()
	doc, kind, err := m.registry.LoadNamed(filePath, fileName)
	if err != nil {
		m.logger.Warnf("open %s failed: %v", fileName, err)
		return nil, err
	}

	id := uuid.New().String()
	sess := models.NewEditSession(id, fileID, fileName, string(kind))
	sess.ProcessingTimeMs = time.Since(start).Milliseconds()

	m.mu.Lock()
	m.sessions[id] = &SessionState{Session: sess, Doc: doc, LastAccessed: time.Now()}
	m.mu.Unlock()

	m.logger.Infof("opened %s as %s session %s (%d top-level entries, %dms)",
		fileName, kind, id[:8], doc.Len(), sess.ProcessingTimeMs)
	snapshot := *sess
	m.publish(&snapshot, models.EventOpened, fileName)
	return &snapshot, nil
}

func (m *Manager) state(id string) (*SessionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st, nil
}

// withSession runs fn with the session locked and its access time refreshed.
func (m *Manager) withSession(id string, fn func(st *SessionState) error) error {
	st, err := m.state(id)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Session.Status == models.SessionStatusClosed {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	st.LastAccessed = time.Now()
	return fn(st)
}

// mutate runs fn, bumps the revision and publishes typ when fn succeeds.
func (m *Manager) mutate(id string, typ models.SessionEventType, fn func(st *SessionState) (string, error)) (*models.EditSession, error) {
	var snapshot models.EditSession
	var detail string
	err := m.withSession(id, func(st *SessionState) error {
		var err error
		if detail, err = fn(st); err != nil {
			return err
		}
		st.Session.Revision++
		snapshot = *st.Session
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.publish(&snapshot, typ, detail)
	return &snapshot, nil
}

// GetSession returns a copy of the session metadata.
func (m *Manager) GetSession(id string) (*models.EditSession, bool) {
	var snapshot models.EditSession
	err := m.withSession(id, func(st *SessionState) error {
		snapshot = *st.Session
		return nil
	})
	if err != nil {
		return nil, false
	}
	return &snapshot, true
}

// ListSessions returns copies of all open sessions, most recent first.
func (m *Manager) ListSessions() []*models.EditSession {
	m.mu.RLock()
	states := make([]*SessionState, 0, len(m.sessions))
	for _, st := range m.sessions {
		states = append(states, st)
	}
	m.mu.RUnlock()

	list := make([]*models.EditSession, 0, len(states))
	for _, st := range states {
		st.mu.Lock()
		s := *st.Session
		st.mu.Unlock()
		list = append(list, &s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].OpenedAt.After(list[j].OpenedAt)
	})
	return list
}

// Tree returns the summary of the session's document.
func (m *Manager) Tree(id string) (models.NodeSummary, error) {
	var tree models.NodeSummary
	err := m.withSession(id, func(st *SessionState) error {
		tree = st.Doc.Summary()
		return nil
	})
	return tree, err
}

// Translate moves every vertex or element position of the document.
func (m *Manager) Translate(id string, offset models.Vec3) (*models.EditSession, error) {
	return m.mutate(id, models.EventTranslated, func(st *SessionState) (string, error) {
		st.Doc.Translate(offset)
		return fmt.Sprintf("%g %g %g", offset[0], offset[1], offset[2]), nil
	})
}

// Clear removes every top-level child, keeping head and tail.
func (m *Manager) Clear(id string) (*models.EditSession, error) {
	return m.mutate(id, models.EventCleared, func(st *SessionState) (string, error) {
		st.Doc.Clear()
		return "", nil
	})
}

// BoxSpec describes a box structure to add to an object document.
type BoxSpec struct {
	Group     string
	Structure string
	Length    float64
	Width     float64
	Height    float64
	Material  int
	Offset    models.Vec3
}

func (b BoxSpec) build() (*geometry.Structure, error) {
	if b.Length <= 0 || b.Width <= 0 || b.Height <= 0 {
		return nil, fmt.Errorf("%w: box dimensions must be positive", ErrBadRequest)
	}
	s, err := geometry.NewStructure(b.Structure)
	if err != nil {
		return nil, err
	}
	box, err := geometry.BuildBox(b.Length, b.Width, b.Height, b.Material)
	if err != nil {
		return nil, err
	}
	s.AddSubStructures(box)
	dims := *box.Dimensions
	s.Dimensions = &dims
	return s, nil
}

func objectFile(st *SessionState) (*geometry.ObjectFile, error) {
	obj, ok := st.Doc.(*geometry.ObjectFile)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, st.Session.Kind)
	}
	return obj, nil
}

// groupNamed returns the group called name, appending a new one if absent.
func groupNamed(obj *geometry.ObjectFile, name string) (*geometry.StructureGroup, error) {
	if g, ok := obj.StructureGroup(name); ok {
		return g, nil
	}
	g, err := geometry.NewStructureGroup(name)
	if err != nil {
		return nil, err
	}
	obj.AddStructureGroups(g)
	return g, nil
}

// AddBox builds a box structure, moves it by spec.Offset and appends it to
// the named group of an object document.
func (m *Manager) AddBox(id string, spec BoxSpec) (*models.EditSession, error) {
	return m.mutate(id, models.EventAppended, func(st *SessionState) (string, error) {
		obj, err := objectFile(st)
		if err != nil {
			return "", err
		}
		s, err := spec.build()
		if err != nil {
			return "", err
		}
		s.Translate(spec.Offset)
		g, err := groupNamed(obj, spec.Group)
		if err != nil {
			return "", err
		}
		g.AddStructures(s)
		return fmt.Sprintf("box %q in %q", spec.Structure, spec.Group), nil
	})
}

// LineSpec describes copies of a box lined up along one axis.
type LineSpec struct {
	BoxSpec
	Origin      models.Vec3
	Destination float64
	Axis        int
	MinGap      float64
	MaxGap      float64
	Seed        uint64
}

// spacing draws gaps uniformly from [MinGap, MaxGap] with a seeded source so
// a layout can be reproduced.
func (l LineSpec) spacing() placement.SpacingFunc {
	rng := rand.New(rand.NewPCG(l.Seed, l.Seed))
	return func() float64 {
		return l.MinGap + rng.Float64()*(l.MaxGap-l.MinGap)
	}
}

// PlaceLine lines up copies of a box from spec.Origin towards
// spec.Destination and appends the resulting group.
func (m *Manager) PlaceLine(id string, spec LineSpec) (*models.EditSession, error) {
	return m.mutate(id, models.EventAppended, func(st *SessionState) (string, error) {
		obj, err := objectFile(st)
		if err != nil {
			return "", err
		}
		if spec.MinGap < 0 || spec.MaxGap < spec.MinGap {
			return "", fmt.Errorf("%w: gaps must satisfy 0 <= minGap <= maxGap", ErrBadRequest)
		}
		s, err := spec.build()
		if err != nil {
			return "", err
		}
		group, err := placement.PlaceOnLine(spec.Origin, spec.Destination, spec.Axis, spec.spacing(), s)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		obj.AddStructureGroups(group)
		return fmt.Sprintf("%d copies in %q", group.Len(), group.Name()), nil
	})
}

// ArrangeAntenna positions the elements of the named antenna of a setup
// document along a line.
func (m *Manager) ArrangeAntenna(id, antenna string, origin models.Vec3, angleDeg, spacing float64) (*models.EditSession, error) {
	return m.mutate(id, models.EventTranslated, func(st *SessionState) (string, error) {
		sf, ok := st.Doc.(*setup.SetupFile)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrWrongKind, st.Session.Kind)
		}
		a, ok := sf.Antenna(antenna)
		if !ok {
			return "", fmt.Errorf("%w: antenna %q", ErrNotFound, antenna)
		}
		a.ArrangeLinear(origin, angleDeg, spacing)
		return fmt.Sprintf("antenna %q", antenna), nil
	})
}

// Export encodes the session's document with the given line ending.
func (m *Manager) Export(id string, ending document.LineEnding) ([]byte, string, error) {
	var out []byte
	var name string
	err := m.withSession(id, func(st *SessionState) error {
		var err error
		out, err = document.Encode(st.Doc, ending)
		name = st.Session.FileName
		return err
	})
	return out, name, err
}

// Bounds returns per-structure bounds of an object document, computed by
// the session's DuckDB index. The index is reloaded when the document has
// changed since the last query.
func (m *Manager) Bounds(ctx context.Context, id string) ([]index.StructureBounds, error) {
	var result []index.StructureBounds
	err := m.withSession(id, func(st *SessionState) error {
		obj, err := objectFile(st)
		if err != nil {
			return err
		}
		if st.index == nil {
			gi, err := index.NewGeometryIndex(m.opts.IndexDir, id, m.opts.IndexOptions)
			if err != nil {
				return err
			}
			st.index = gi
			st.indexedAtRev = -1
		}
		if st.indexedAtRev != st.Session.Revision {
			if err := st.index.Load(ctx, obj); err != nil {
				return err
			}
			st.indexedAtRev = st.Session.Revision
		}
		result, err = st.index.StructureBounds(ctx)
		return err
	})
	return result, err
}

// CloseSession drops a session and releases its index.
func (m *Manager) CloseSession(id string) error {
	m.mu.Lock()
	st, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	snapshot := m.release(st)
	m.logger.Infof("closed session %s", id[:min(8, len(id))])
	m.publish(&snapshot, models.EventClosed, "")
	return nil
}

func (m *Manager) release(st *SessionState) models.EditSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Session.Status = models.SessionStatusClosed
	if st.index != nil {
		st.index.Close()
		st.index = nil
	}
	return *st.Session
}

// evictIfNeeded closes the least recently used sessions while at capacity.
func (m *Manager) evictIfNeeded() {
	m.mu.RLock()
	if len(m.sessions) < m.opts.MaxSessions {
		m.mu.RUnlock()
		return
	}
	type aged struct {
		id   string
		last time.Time
	}
	all := make([]aged, 0, len(m.sessions))
	for id, st := range m.sessions {
		st.mu.Lock()
		all = append(all, aged{id, st.LastAccessed})
		st.mu.Unlock()
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].last.Before(all[j].last) })
	toFree := len(all) - m.opts.MaxSessions + 1
	for _, a := range all[:toFree] {
		if err := m.CloseSession(a.id); err == nil {
			m.logger.Infof("evicted session %s to stay within %d sessions", a.id[:min(8, len(a.id))], m.opts.MaxSessions)
		}
	}
}

// CleanupOldSessions closes sessions idle for longer than maxAge, but keeps
// sessions accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-max(maxAge, SessionKeepAliveWindow))

	m.mu.RLock()
	var stale []string
	for id, st := range m.sessions {
		st.mu.Lock()
		if st.LastAccessed.Before(cutoff) {
			stale = append(stale, id)
		}
		st.mu.Unlock()
	}
	m.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if err := m.CloseSession(id); err == nil {
			closed++
		}
	}
	if closed > 0 {
		m.logger.Infof("cleaned up %d idle sessions", closed)
	}
	return closed
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	for _, id := range ids {
		m.CloseSession(id)
	}
}

// TouchSession updates the LastAccessed timestamp for a session.
func (m *Manager) TouchSession(id string) bool {
	return m.withSession(id, func(*SessionState) error { return nil }) == nil
}
