package dto

import "time"

// CreateMonitorRequest registers a new signal monitor for the workspace
type CreateMonitorRequest struct {
	Kind           string `json:"kind" validate:"required,oneof=keyword company profile"`
	Target         string `json:"target" validate:"required,min=1,max=512"`
	DisplayName    string `json:"display_name" validate:"omitempty,max=255"`
	CadenceMinutes int    `json:"cadence_minutes" validate:"omitempty,min=15,max=10080"`
}

// UpdateMonitorRequest changes mutable monitor settings. Pointer fields
// distinguish "not provided" from zero values.
type UpdateMonitorRequest struct {
	DisplayName    *string `json:"display_name" validate:"omitempty,max=255"`
	IsActive       *bool   `json:"is_active"`
	CadenceMinutes *int    `json:"cadence_minutes" validate:"omitempty,min=15,max=10080"`
}

// MonitorDTO is the API representation of a signal monitor
type MonitorDTO struct {
	UUID           string     `json:"uuid"`
	Kind           string     `json:"kind"`
	Target         string     `json:"target"`
	DisplayName    string     `json:"display_name"`
	IsActive       bool       `json:"is_active"`
	CadenceMinutes int        `json:"cadence_minutes"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ListMonitorsResponse wraps a page of monitors
type ListMonitorsResponse struct {
	Monitors []MonitorDTO `json:"monitors"`
	Total    int64        `json:"total"`
}

// ScanRunDTO is the API representation of one scan execution
type ScanRunDTO struct {
	ID                int64      `json:"id"`
	Status            string     `json:"status"`
	PostsSeen         int        `json:"posts_seen"`
	EngagersProcessed int        `json:"engagers_processed"`
	EngagersMatched   int        `json:"engagers_matched"`
	StartedAt         time.Time  `json:"started_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	Error             *string    `json:"error,omitempty"`
}

// ListScanRunsResponse wraps recent scan runs for a monitor
type ListScanRunsResponse struct {
	Runs []ScanRunDTO `json:"runs"`
}
