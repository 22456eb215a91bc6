package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MonitorKind represents the kind of watch target a monitor polls
type MonitorKind string

const (
	MonitorKindKeyword MonitorKind = "keyword"
	MonitorKindCompany MonitorKind = "company"
	MonitorKindProfile MonitorKind = "profile"
)

// String returns the string representation of the kind
func (k MonitorKind) String() string {
	return string(k)
}

// Valid checks if the kind is valid
func (k MonitorKind) Valid() bool {
	switch k {
	case MonitorKindKeyword, MonitorKindCompany, MonitorKindProfile:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for MonitorKind
func (k *MonitorKind) Scan(value any) error {
	if value == nil {
		*k = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*k = MonitorKind(v)
	case []byte:
		*k = MonitorKind(string(v))
	default:
		return fmt.Errorf("cannot scan %T into MonitorKind", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for MonitorKind
func (k MonitorKind) Value() (driver.Value, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid MonitorKind: %s", k)
	}
	return string(k), nil
}

// SignalMonitor is a user-configured watch target polled by the scan
// orchestrators. The target value is a keyword for keyword monitors and a
// LinkedIn URN for company/profile monitors. The pipeline itself only ever
// mutates LastRunAt.
type SignalMonitor struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uk_signal_monitors_uuid" json:"uuid"`
	WorkspaceID    int64       `gorm:"not null;index:idx_signal_monitors_workspace_id" json:"workspace_id"`
	Kind           MonitorKind `gorm:"type:monitor_kind;not null;index:idx_signal_monitors_kind" json:"kind"`
	Target         string      `gorm:"size:512;not null" json:"target"`
	DisplayName    string      `gorm:"size:255" json:"display_name"`
	IsActive       bool        `gorm:"not null;default:true;index:idx_signal_monitors_is_active" json:"is_active"`
	CadenceMinutes int         `gorm:"not null;default:360" json:"cadence_minutes"`
	LastRunAt      *time.Time  `json:"last_run_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (SignalMonitor) TableName() string { return "signal_monitors" }

// Cadence returns the monitor's scan cadence as a duration
func (m *SignalMonitor) Cadence() time.Duration {
	return time.Duration(m.CadenceMinutes) * time.Minute
}

// Due reports whether the monitor is due for a scan at the given instant
func (m *SignalMonitor) Due(now time.Time) bool {
	if m.LastRunAt == nil {
		return true
	}
	return now.Sub(*m.LastRunAt) >= m.Cadence()
}

// SignalMonitorFilter represents filter criteria for monitor queries
type SignalMonitorFilter struct {
	ID            *uint
	UUID          *string
	WorkspaceID   *int64
	Kind          *MonitorKind
	Target        *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
