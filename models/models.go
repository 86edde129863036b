package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoredError is an ingested error payload persisted by the collector
type StoredError struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ReceivedAt time.Time `gorm:"index" json:"received_at"`
	RemoteAddr string    `gorm:"size:64" json:"remote_addr"`
	Type       string    `gorm:"size:64;default:'error'" json:"type"`
	Message    string    `gorm:"type:text" json:"message"`
	Path       string    `gorm:"index" json:"path"`
	Line       int       `json:"line"`
	Column     int       `json:"column"`
	StackJSON  string    `gorm:"column:stack_json;type:text;default:'[]'" json:"-"`
	Viewport   string    `gorm:"size:32" json:"viewport"`
	TimeSpend  int64     `json:"time_spend"`
	Datetime   string    `gorm:"size:128" json:"datetime"`
}

// GetStackTrace returns the stored stack frames
func (s *StoredError) GetStackTrace() []string {
	frames := []string{}
	if s.StackJSON != "" {
		_ = json.Unmarshal([]byte(s.StackJSON), &frames)
	}
	return frames
}

// SetStackTrace stores the stack frames as JSON
func (s *StoredError) SetStackTrace(frames []string) {
	if frames == nil {
		frames = []string{}
	}
	data, _ := json.Marshal(frames)
	s.StackJSON = string(data)
}

// BeforeCreate GORM hook - assign id and receive time when missing
func (s *StoredError) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if s.ReceivedAt.IsZero() {
		s.ReceivedAt = time.Now()
	}
	return nil
}

// StoredErrorRead response model for reading stored errors
type StoredErrorRead struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	RemoteAddr string    `json:"remote_addr"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Path       string    `json:"path"`
	Line       int       `json:"line"`
	Column     int       `json:"column"`
	StackTrace []string  `json:"stackTrace"`
	Viewport   string    `json:"viewport"`
	TimeSpend  int64     `json:"timeSpend"`
	Datetime   string    `json:"datetime"`
}

// NewStoredError builds a persistable row from an ingested payload
func NewStoredError(p ErrorPayload, remoteAddr string) *StoredError {
	s := &StoredError{
		RemoteAddr: remoteAddr,
		Type:       p.Type,
		Message:    p.Message,
		Path:       p.Path,
		Line:       p.Line,
		Column:     p.Column,
		Viewport:   p.Viewport,
		TimeSpend:  p.TimeSpend,
		Datetime:   p.Datetime,
	}
	s.SetStackTrace(p.StackTrace)
	return s
}

// Read converts the row into its API representation
func (s *StoredError) Read() StoredErrorRead {
	return StoredErrorRead{
		ID:         s.ID,
		ReceivedAt: s.ReceivedAt,
		RemoteAddr: s.RemoteAddr,
		Type:       s.Type,
		Message:    s.Message,
		Path:       s.Path,
		Line:       s.Line,
		Column:     s.Column,
		StackTrace: s.GetStackTrace(),
		Viewport:   s.Viewport,
		TimeSpend:  s.TimeSpend,
		Datetime:   s.Datetime,
	}
}
