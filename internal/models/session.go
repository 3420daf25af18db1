package models

import "time"

// SessionStatus represents the status of an editing session.
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
)

// EditSession represents a parsed document held open for editing.
type EditSession struct {
	ID               string        `json:"id"`
	FileID           string        `json:"fileId"`
	FileName         string        `json:"fileName"`
	Kind             string        `json:"kind"` // "object" or "setup"
	Status           SessionStatus `json:"status"`
	Revision         int           `json:"revision"` // bumped on every mutation
	ProcessingTimeMs int64         `json:"processingTimeMs,omitempty"`
	OpenedAt         time.Time     `json:"openedAt"`
}

// NewEditSession creates a new EditSession in open status.
func NewEditSession(id, fileID, fileName, kind string) *EditSession {
	return &EditSession{
		ID:       id,
		FileID:   fileID,
		FileName: fileName,
		Kind:     kind,
		Status:   SessionStatusOpen,
		OpenedAt: time.Now(),
	}
}

// SessionEventType names a change applied to a session.
type SessionEventType string

const (
	EventOpened     SessionEventType = "opened"
	EventTranslated SessionEventType = "translated"
	EventAppended   SessionEventType = "appended"
	EventCleared    SessionEventType = "cleared"
	EventClosed     SessionEventType = "closed"
)

// SessionEvent is published after a session changes.
type SessionEvent struct {
	SessionID string           `json:"sessionId"`
	Type      SessionEventType `json:"type"`
	Revision  int              `json:"revision"`
	Detail    string           `json:"detail,omitempty"`
	Timestamp int64            `json:"timestamp"` // Unix ms
}
