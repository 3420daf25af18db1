// handlers_session.go - Editing session handlers
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/rwi-modeling/backend/internal/document"
	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/session"
	"github.com/rwi-modeling/backend/internal/storage"
)

// SessionHandlerImpl implements the SessionHandler interface
type SessionHandlerImpl struct {
	store           storage.Store
	sessionMgr      SessionManager
	lineEnding      document.LineEnding
	defaultMaterial int
}

// NewSessionHandler creates a new session handler instance. lineEnding is
// used for exports and saves that do not ask for one.
func NewSessionHandler(store storage.Store, sessionMgr SessionManager, lineEnding document.LineEnding, defaultMaterial int) SessionHandler {
	return &SessionHandlerImpl{
		store:           store,
		sessionMgr:      sessionMgr,
		lineEnding:      lineEnding,
		defaultMaterial: defaultMaterial,
	}
}

// HandleOpenSession parses a stored file into a new editing session
func (h *SessionHandlerImpl) HandleOpenSession(c echo.Context) error {
	var req openSessionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}
	path, err := h.store.GetFilePath(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	sess, err := h.sessionMgr.Open(info.ID, info.Name, path)
	if err != nil {
		return FromError("failed to open document", err)
	}

	return c.JSON(http.StatusCreated, sess)
}

// HandleListSessions returns all open sessions
func (h *SessionHandlerImpl) HandleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessionMgr.ListSessions())
}

// HandleGetSession returns session metadata
func (h *SessionHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("id")
	sess, ok := h.sessionMgr.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleCloseSession closes a session
func (h *SessionHandlerImpl) HandleCloseSession(c echo.Context) error {
	id := c.Param("id")
	if err := h.sessionMgr.CloseSession(id); err != nil {
		return FromError("failed to close session", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleGetTree returns the document tree as JSON
func (h *SessionHandlerImpl) HandleGetTree(c echo.Context) error {
	tree, err := h.sessionMgr.Tree(c.Param("id"))
	if err != nil {
		return FromError("failed to read document", err)
	}
	return c.JSON(http.StatusOK, tree)
}

// HandleGetTreeMsgpack returns the document tree encoded as msgpack
func (h *SessionHandlerImpl) HandleGetTreeMsgpack(c echo.Context) error {
	tree, err := h.sessionMgr.Tree(c.Param("id"))
	if err != nil {
		return FromError("failed to read document", err)
	}
	data, err := msgpack.Marshal(&tree)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleTranslate moves the whole document
func (h *SessionHandlerImpl) HandleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Offset == nil {
		return NewValidationError("offset")
	}

	sess, err := h.sessionMgr.Translate(c.Param("id"), *req.Offset)
	if err != nil {
		return FromError("failed to translate document", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleAddBox appends a box structure to an object document
func (h *SessionHandlerImpl) HandleAddBox(c echo.Context) error {
	var req boxRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	sess, err := h.sessionMgr.AddBox(c.Param("id"), req.spec(h.defaultMaterial))
	if err != nil {
		return FromError("failed to add box", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandlePlaceLine appends a group of boxes lined up along an axis
func (h *SessionHandlerImpl) HandlePlaceLine(c echo.Context) error {
	var req lineRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	spec := session.LineSpec{
		BoxSpec:     req.spec(h.defaultMaterial),
		Origin:      req.Origin,
		Destination: req.Destination,
		Axis:        req.Axis,
		MinGap:      req.MinGap,
		MaxGap:      req.MaxGap,
		Seed:        req.Seed,
	}
	sess, err := h.sessionMgr.PlaceLine(c.Param("id"), spec)
	if err != nil {
		return FromError("failed to place structures", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleArrangeAntenna lines up the elements of one antenna of a setup
// document
func (h *SessionHandlerImpl) HandleArrangeAntenna(c echo.Context) error {
	var req arrangeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	sess, err := h.sessionMgr.ArrangeAntenna(c.Param("id"), c.Param("name"), req.Origin, req.Angle, req.Spacing)
	if err != nil {
		return FromError("failed to arrange antenna", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleClear removes every top-level child of the document
func (h *SessionHandlerImpl) HandleClear(c echo.Context) error {
	sess, err := h.sessionMgr.Clear(c.Param("id"))
	if err != nil {
		return FromError("failed to clear document", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// HandleExport returns the serialized document as text
func (h *SessionHandlerImpl) HandleExport(c echo.Context) error {
	ending, err := h.resolveLineEnding(c.QueryParam("lineEnding"))
	if err != nil {
		return err
	}

	data, name, err := h.sessionMgr.Export(c.Param("id"), ending)
	if err != nil {
		return FromError("failed to export document", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, data)
}

// HandleSave stores the serialized document as a new file
func (h *SessionHandlerImpl) HandleSave(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	ending, err := h.resolveLineEnding(req.LineEnding)
	if err != nil {
		return err
	}

	data, name, err := h.sessionMgr.Export(c.Param("id"), ending)
	if err != nil {
		return FromError("failed to export document", err)
	}
	if req.Name != "" {
		name = req.Name
	}

	info, err := h.store.SaveBytes(name, storage.StatusSaved, data)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleGetBounds returns per-structure bounds computed by the session index
func (h *SessionHandlerImpl) HandleGetBounds(c echo.Context) error {
	bounds, err := h.sessionMgr.Bounds(c.Request().Context(), c.Param("id"))
	if err != nil {
		return FromError("failed to compute bounds", err)
	}
	return c.JSON(http.StatusOK, bounds)
}

func (h *SessionHandlerImpl) resolveLineEnding(s string) (document.LineEnding, error) {
	if s == "" {
		return h.lineEnding, nil
	}
	ending, err := document.ParseLineEnding(s)
	if err != nil {
		return "", NewBadRequestError("invalid lineEnding", err)
	}
	return ending, nil
}

// Request/Response types

type openSessionRequest struct {
	FileID string `json:"fileId"`
}

type translateRequest struct {
	Offset *models.Vec3 `json:"offset"`
}

type boxRequest struct {
	Group     string      `json:"group"`
	Structure string      `json:"structure"`
	Length    float64     `json:"length"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Material  *int        `json:"material"`
	Offset    models.Vec3 `json:"offset"`
}

func (r *boxRequest) validate() error {
	if r.Length <= 0 {
		return NewValidationError("length")
	}
	if r.Width <= 0 {
		return NewValidationError("width")
	}
	if r.Height <= 0 {
		return NewValidationError("height")
	}
	return nil
}

func (r *boxRequest) spec(defaultMaterial int) session.BoxSpec {
	material := defaultMaterial
	if r.Material != nil {
		material = *r.Material
	}
	return session.BoxSpec{
		Group:     r.Group,
		Structure: r.Structure,
		Length:    r.Length,
		Width:     r.Width,
		Height:    r.Height,
		Material:  material,
		Offset:    r.Offset,
	}
}

type lineRequest struct {
	boxRequest
	Origin      models.Vec3 `json:"origin"`
	Destination float64     `json:"destination"`
	Axis        int         `json:"axis"`
	MinGap      float64     `json:"minGap"`
	MaxGap      float64     `json:"maxGap"`
	Seed        uint64      `json:"seed"`
}

func (r *lineRequest) validate() error {
	if err := r.boxRequest.validate(); err != nil {
		return err
	}
	if r.Axis < 0 || r.Axis > 2 {
		return NewValidationError("axis")
	}
	if r.MinGap < 0 || r.MaxGap < r.MinGap {
		return NewValidationError("maxGap")
	}
	return nil
}

type arrangeRequest struct {
	Origin  models.Vec3 `json:"origin"`
	Angle   float64     `json:"angle"`
	Spacing float64     `json:"spacing"`
}

type saveRequest struct {
	Name       string `json:"name"`
	LineEnding string `json:"lineEnding"`
}
