package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/researchmatch/job-service/internal/models"
)

const (
	EventSource  = "job-service"
	EventVersion = "1.0"
)

type EventType string

const (
	EventUserRoleChanged       EventType = "user.role_changed"
	EventJobSponsorshipChanged EventType = "job.sponsorship_changed"
)

// Event is the envelope every published event travels in
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps a payload with a fresh id and the current time
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// RoleChangedEvent is published when a recomputed role is saved
type RoleChangedEvent struct {
	UserID    uint            `json:"user_id"`
	Login     string          `json:"login"`
	OldRole   models.UserRole `json:"old_role"`
	NewRole   models.UserRole `json:"new_role"`
	NewLabel  string          `json:"new_label"`
	ChangedBy *uint           `json:"changed_by,omitempty"`
}

// SponsorshipChangedEvent is published after a job's sponsorship is replaced.
// FacultyID is nil when the job was left unsponsored.
type SponsorshipChangedEvent struct {
	JobID     uint  `json:"job_id"`
	FacultyID *uint `json:"faculty_id"`
	ChangedBy uint  `json:"changed_by"`
}

// EventPublisher delivers events to the broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
