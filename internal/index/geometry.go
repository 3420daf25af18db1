package index

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/marcboeker/go-duckdb"
	"github.com/rwi-modeling/backend/internal/geometry"
)

var logger = log.New("index")

// Logger exposes the package logger so the server can set its level.
func Logger() *log.Logger { return logger }

// Options tunes the DuckDB connection.
type Options struct {
	Threads     int
	MemoryLimit string
}

// DefaultOptions returns the connector settings used when none are configured.
func DefaultOptions() Options {
	return Options{Threads: 2, MemoryLimit: "256MB"}
}

// StructureBounds is the axis-aligned extent of one structure in a group.
// Structures are keyed by position, so equally named structures get their
// own rows.
type StructureBounds struct {
	GroupIndex     int        `json:"groupIndex"`
	StructureIndex int        `json:"structureIndex"`
	Group          string     `json:"group"`
	Structure      string     `json:"structure"`
	Vertices       int        `json:"vertices"`
	Min            [3]float64 `json:"min"`
	Max            [3]float64 `json:"max"`
}

// GeometryIndex mirrors the vertices of an object file into a temporary
// DuckDB database so extents can be queried with SQL.
type GeometryIndex struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
	rows   int
}

// NewGeometryIndex creates a session-scoped index database in dir.
func NewGeometryIndex(dir, sessionID string, opts Options) (*GeometryIndex, error) {
	if opts.Threads <= 0 {
		opts.Threads = DefaultOptions().Threads
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = DefaultOptions().MemoryLimit
	}

	dbPath := filepath.Join(dir, fmt.Sprintf("session_%s.duckdb", sessionID))
	logger.Debugf("creating index at %s", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE vertices (
			grp_idx       INTEGER NOT NULL,
			struct_idx    INTEGER NOT NULL,
			grp           VARCHAR NOT NULL,
			structure     VARCHAR NOT NULL,
			sub_structure VARCHAR NOT NULL,
			face          VARCHAR NOT NULL,
			idx           INTEGER NOT NULL,
			x             DOUBLE NOT NULL,
			y             DOUBLE NOT NULL,
			z             DOUBLE NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &GeometryIndex{db: db, dbPath: dbPath}, nil
}

// Len returns the number of indexed vertices.
func (gi *GeometryIndex) Len() int {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	return gi.rows
}

// Load replaces the indexed rows with every vertex of obj.
func (gi *GeometryIndex) Load(ctx context.Context, obj *geometry.ObjectFile) error {
	gi.mu.Lock()
	defer gi.mu.Unlock()

	start := time.Now()
	if _, err := gi.db.ExecContext(ctx, "DELETE FROM vertices"); err != nil {
		return fmt.Errorf("failed to clear vertices: %w", err)
	}
	gi.rows = 0

	conn, err := gi.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	count := 0
	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "vertices")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for gIdx, g := range obj.StructureGroups() {
			for sIdx, s := range g.Structures() {
				for _, sub := range s.SubStructures() {
					for _, f := range sub.Faces() {
						for i, p := range f.Points() {
							if err := appender.AppendRow(
								int32(gIdx), int32(sIdx),
								g.Name(), s.Name(), sub.Name(), f.Name(),
								int32(i), p[0], p[1], p[2],
							); err != nil {
								return fmt.Errorf("failed to append vertex %d of %q: %w", i, f.Name(), err)
							}
							count++
						}
					}
				}
			}
		}

		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	gi.rows = count
	logger.Debugf("indexed %d vertices in %v", count, time.Since(start))
	return nil
}

// StructureBounds returns the extent of every structure in document order.
func (gi *GeometryIndex) StructureBounds(ctx context.Context) ([]StructureBounds, error) {
	gi.mu.Lock()
	defer gi.mu.Unlock()

	rows, err := gi.db.QueryContext(ctx, `
		SELECT grp_idx, struct_idx, ANY_VALUE(grp), ANY_VALUE(structure), COUNT(*),
		       MIN(x), MIN(y), MIN(z),
		       MAX(x), MAX(y), MAX(z)
		FROM vertices
		GROUP BY grp_idx, struct_idx
		ORDER BY grp_idx, struct_idx
	`)
	if err != nil {
		return nil, fmt.Errorf("bounds query failed: %w", err)
	}
	defer rows.Close()

	result := []StructureBounds{}
	for rows.Next() {
		var b StructureBounds
		if err := rows.Scan(
			&b.GroupIndex, &b.StructureIndex,
			&b.Group, &b.Structure, &b.Vertices,
			&b.Min[0], &b.Min[1], &b.Min[2],
			&b.Max[0], &b.Max[1], &b.Max[2],
		); err != nil {
			return nil, fmt.Errorf("scan bounds: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// Close closes the database and removes the temp file.
func (gi *GeometryIndex) Close() error {
	gi.mu.Lock()
	defer gi.mu.Unlock()

	if gi.db != nil {
		gi.db.Close()
		gi.db = nil
	}
	if gi.dbPath != "" {
		os.Remove(gi.dbPath)
		os.Remove(gi.dbPath + ".wal")
	}
	return nil
}
