package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/magnetlab/signal-pipeline/icp"
)

// SignalType represents the kind of engagement that produced an event
type SignalType string

const (
	SignalTypeComment        SignalType = "comment"
	SignalTypeReaction       SignalType = "reaction"
	SignalTypePostAuthorship SignalType = "post_authorship"
)

// String returns the string representation of the signal type
func (t SignalType) String() string {
	return string(t)
}

// Valid checks if the signal type is valid
func (t SignalType) Valid() bool {
	switch t {
	case SignalTypeComment, SignalTypeReaction, SignalTypePostAuthorship:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for SignalType
func (t *SignalType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = SignalType(v)
	case []byte:
		*t = SignalType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SignalType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for SignalType
func (t SignalType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid SignalType: %s", t)
	}
	return string(t), nil
}

// SignalEvent is one observed engagement occurrence for a lead. Events are
// append-only: rows are never updated or deleted, and ordering across
// monitors is carried solely by OccurredAt.
type SignalEvent struct {
	ID         int64          `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	LeadID     int64          `gorm:"not null;index:idx_signal_events_lead_id" json:"lead_id"`
	MonitorID  uint           `gorm:"not null;index:idx_signal_events_monitor_id" json:"monitor_id"`
	SignalType SignalType     `gorm:"type:signal_type;not null;index:idx_signal_events_signal_type" json:"signal_type"`
	Sentiment  *icp.Sentiment `gorm:"type:varchar(16)" json:"sentiment,omitempty"`
	Snippet    string         `gorm:"type:text" json:"snippet,omitempty"`
	OccurredAt time.Time      `gorm:"not null;index:idx_signal_events_occurred_at" json:"occurred_at"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (SignalEvent) TableName() string { return "signal_events" }

// SignalEventFilter represents filter criteria for event queries
type SignalEventFilter struct {
	ID             *int64
	LeadID         *int64
	MonitorID      *uint
	SignalType     *SignalType
	OccurredAfter  *time.Time
	OccurredBefore *time.Time
}
