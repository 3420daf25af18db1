// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/rwi-modeling/backend/internal/document"
	"github.com/rwi-modeling/backend/internal/index"
	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/session"
)

// FileHandler handles stored document files
type FileHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleUploadRaw(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
}

// SessionHandler handles editing session operations
type SessionHandler interface {
	HandleOpenSession(c echo.Context) error
	HandleListSessions(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleCloseSession(c echo.Context) error
	HandleGetTree(c echo.Context) error
	HandleGetTreeMsgpack(c echo.Context) error
	HandleTranslate(c echo.Context) error
	HandleAddBox(c echo.Context) error
	HandlePlaceLine(c echo.Context) error
	HandleArrangeAntenna(c echo.Context) error
	HandleClear(c echo.Context) error
	HandleExport(c echo.Context) error
	HandleSave(c echo.Context) error
	HandleGetBounds(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// EventHandler streams session events
type EventHandler interface {
	HandleWebSocket(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	Open(fileID, fileName, filePath string) (*models.EditSession, error)
	GetSession(id string) (*models.EditSession, bool)
	ListSessions() []*models.EditSession
	CloseSession(id string) error
	Tree(id string) (models.NodeSummary, error)
	Translate(id string, offset models.Vec3) (*models.EditSession, error)
	AddBox(id string, spec session.BoxSpec) (*models.EditSession, error)
	PlaceLine(id string, spec session.LineSpec) (*models.EditSession, error)
	ArrangeAntenna(id, antenna string, origin models.Vec3, angleDeg, spacing float64) (*models.EditSession, error)
	Clear(id string) (*models.EditSession, error)
	Export(id string, ending document.LineEnding) ([]byte, string, error)
	Bounds(ctx context.Context, id string) ([]index.StructureBounds, error)
	Subscribe(fn session.Listener) func()
}

var _ SessionManager = (*session.Manager)(nil)
