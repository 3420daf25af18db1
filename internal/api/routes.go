// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/rwi-modeling/backend/internal/document"
	"github.com/rwi-modeling/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store           storage.Store
	SessionMgr      SessionManager
	LineEnding      document.LineEnding
	DefaultMaterial int
	Version         string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Files   FileHandler
	Session SessionHandler
	Events  *EventHub
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.SessionMgr),
		Files:   NewFileHandler(deps.Store, deps.SessionMgr),
		Session: NewSessionHandler(deps.Store, deps.SessionMgr, deps.LineEnding, deps.DefaultMaterial),
		Events:  NewEventHub(deps.SessionMgr),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// File routes
	fileGroup := e.Group("/api/files")
	fileGroup.POST("/upload", handlers.Files.HandleUploadFile)
	fileGroup.POST("/upload/raw", handlers.Files.HandleUploadRaw)
	fileGroup.GET("/recent", handlers.Files.HandleGetRecentFiles)
	fileGroup.GET("/:id", handlers.Files.HandleGetFile)
	fileGroup.DELETE("/:id", handlers.Files.HandleDeleteFile)

	// Editing session routes
	sessionGroup := e.Group("/api/sessions")
	sessionGroup.POST("", handlers.Session.HandleOpenSession)
	sessionGroup.GET("", handlers.Session.HandleListSessions)
	sessionGroup.GET("/:id", handlers.Session.HandleGetSession)
	sessionGroup.DELETE("/:id", handlers.Session.HandleCloseSession)
	sessionGroup.GET("/:id/tree", handlers.Session.HandleGetTree)
	sessionGroup.GET("/:id/tree/msgpack", handlers.Session.HandleGetTreeMsgpack)
	sessionGroup.POST("/:id/translate", handlers.Session.HandleTranslate)
	sessionGroup.POST("/:id/boxes", handlers.Session.HandleAddBox)
	sessionGroup.POST("/:id/line", handlers.Session.HandlePlaceLine)
	sessionGroup.POST("/:id/antennas/:name/arrange", handlers.Session.HandleArrangeAntenna)
	sessionGroup.POST("/:id/clear", handlers.Session.HandleClear)
	sessionGroup.GET("/:id/export", handlers.Session.HandleExport)
	sessionGroup.POST("/:id/save", handlers.Session.HandleSave)
	sessionGroup.GET("/:id/bounds", handlers.Session.HandleGetBounds)

	// WebSocket event stream
	e.GET("/api/ws/events", handlers.Events.HandleWebSocket)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
