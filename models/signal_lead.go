package models

import (
	"time"

	"github.com/google/uuid"
)

// SignalLead is a person discovered through monitoring. The natural key is
// (workspace_id, profile_url) - not monitor-specific, since the same person
// may engage with posts found by several monitors. Repeated discovery
// refreshes the snapshot fields and re-scores against the current ICP
// filter set instead of inserting a second row.
type SignalLead struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_signal_leads_uuid" json:"uuid"`
	WorkspaceID int64     `gorm:"not null;uniqueIndex:uk_signal_leads_workspace_profile;index:idx_signal_leads_workspace_id" json:"workspace_id"`
	ProfileURL  string    `gorm:"size:512;not null;uniqueIndex:uk_signal_leads_workspace_profile" json:"profile_url"`

	// Profile snapshot, refreshed on every sighting
	FullName string `gorm:"size:255" json:"full_name"`
	Headline string `gorm:"size:512" json:"headline"`
	JobTitle string `gorm:"size:255" json:"job_title"`
	Company  string `gorm:"size:255" json:"company"`
	Location string `gorm:"size:255" json:"location"`

	ICPScore   int  `gorm:"not null;default:0;index:idx_signal_leads_icp_score" json:"icp_score"`
	ICPMatched bool `gorm:"not null;default:false;index:idx_signal_leads_icp_matched" json:"icp_matched"`

	FirstSeenAt time.Time `gorm:"not null" json:"first_seen_at"`
	LastSeenAt  time.Time `gorm:"not null;index:idx_signal_leads_last_seen_at" json:"last_seen_at"`

	PushedToOutbound bool       `gorm:"not null;default:false;index:idx_signal_leads_pushed" json:"pushed_to_outbound"`
	PushAttemptedAt  *time.Time `json:"push_attempted_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (SignalLead) TableName() string { return "signal_leads" }

// SignalLeadFilter represents filter criteria for lead queries
type SignalLeadFilter struct {
	ID               *int64
	UUID             *string
	WorkspaceID      *int64
	ProfileURL       *string
	Company          *string
	ICPMatched       *bool
	MinICPScore      *int
	PushedToOutbound *bool
	SeenAfter        *time.Time
	SeenBefore       *time.Time
}
