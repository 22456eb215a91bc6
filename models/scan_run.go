package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ScanRunStatus represents the status of one orchestrator cycle for a monitor
type ScanRunStatus string

const (
	ScanRunStatusRunning   ScanRunStatus = "running"
	ScanRunStatusCompleted ScanRunStatus = "completed"
	ScanRunStatusFailed    ScanRunStatus = "failed"
)

// String returns the string representation of the status
func (s ScanRunStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ScanRunStatus) Valid() bool {
	switch s {
	case ScanRunStatusRunning, ScanRunStatusCompleted, ScanRunStatusFailed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ScanRunStatus
func (s *ScanRunStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ScanRunStatus(v)
	case []byte:
		*s = ScanRunStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ScanRunStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ScanRunStatus
func (s ScanRunStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ScanRunStatus: %s", s)
	}
	return string(s), nil
}

// ScanRun is the audit record for one scan cycle of one monitor. The
// orchestrator writes a running row before calling the harvest API and
// finalizes it with counters when the cycle ends.
type ScanRun struct {
	ID          int64         `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	MonitorID   uint          `gorm:"not null;index:idx_scan_runs_monitor_id" json:"monitor_id"`
	WorkspaceID int64         `gorm:"not null;index:idx_scan_runs_workspace_id" json:"workspace_id"`
	Kind        MonitorKind   `gorm:"type:monitor_kind;not null" json:"kind"`
	Status      ScanRunStatus `gorm:"type:scan_run_status;not null;default:'running';index:idx_scan_runs_status" json:"status"`

	PostsSeen         int `gorm:"not null;default:0" json:"posts_seen"`
	EngagersProcessed int `gorm:"not null;default:0" json:"engagers_processed"`
	EngagersMatched   int `gorm:"not null;default:0" json:"engagers_matched"`

	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      *string    `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (ScanRun) TableName() string { return "scan_runs" }

// ScanRunFilter represents filter criteria for scan run queries
type ScanRunFilter struct {
	ID            *int64
	MonitorID     *uint
	WorkspaceID   *int64
	Status        *ScanRunStatus
	StartedAfter  *time.Time
	StartedBefore *time.Time
}
