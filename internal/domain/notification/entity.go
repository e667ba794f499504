package notification

import (
	"time"
)

// Level is the visual severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Entity types a notification can point at
const (
	EntityAttendance   = "attendance"
	EntityWorkRequest  = "work_request"
	EntityLeave        = "leave"
	EntityCompensatory = "compensatory"
)

// Notification represents a notification entity
type Notification struct {
	ID         string
	UserID     string
	Title      string
	Message    string
	Level      Level
	EntityType *string
	EntityID   *string
	ActionURL  *string
	Read       bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}
