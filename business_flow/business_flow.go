// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/magnetlab/signal-pipeline/app/dto"
	"github.com/magnetlab/signal-pipeline/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToMonitorDTO converts a monitor model to its API representation
func ToMonitorDTO(monitor models.SignalMonitor) dto.MonitorDTO {
	return dto.MonitorDTO{
		UUID:           monitor.UUID.String(),
		Kind:           string(monitor.Kind),
		Target:         monitor.Target,
		DisplayName:    monitor.DisplayName,
		IsActive:       monitor.IsActive,
		CadenceMinutes: monitor.CadenceMinutes,
		LastRunAt:      monitor.LastRunAt,
		CreatedAt:      monitor.CreatedAt,
	}
}

// ToLeadDTO converts a lead model to its API representation
func ToLeadDTO(lead models.SignalLead) dto.LeadDTO {
	return dto.LeadDTO{
		UUID:             lead.UUID.String(),
		ProfileURL:       lead.ProfileURL,
		FullName:         lead.FullName,
		Headline:         lead.Headline,
		JobTitle:         lead.JobTitle,
		Company:          lead.Company,
		Location:         lead.Location,
		ICPScore:         lead.ICPScore,
		ICPMatched:       lead.ICPMatched,
		FirstSeenAt:      lead.FirstSeenAt,
		LastSeenAt:       lead.LastSeenAt,
		PushedToOutbound: lead.PushedToOutbound,
		PushAttemptedAt:  lead.PushAttemptedAt,
	}
}

// ToEventDTO converts an event model to its API representation
func ToEventDTO(event models.SignalEvent) dto.EventDTO {
	var sentiment *string
	if event.Sentiment != nil {
		s := event.Sentiment.String()
		sentiment = &s
	}
	return dto.EventDTO{
		ID:         event.ID,
		SignalType: string(event.SignalType),
		Sentiment:  sentiment,
		Snippet:    event.Snippet,
		OccurredAt: event.OccurredAt,
		CreatedAt:  event.CreatedAt,
	}
}

// ToScanRunDTO converts a scan run model to its API representation
func ToScanRunDTO(run models.ScanRun) dto.ScanRunDTO {
	return dto.ScanRunDTO{
		ID:                run.ID,
		Status:            string(run.Status),
		PostsSeen:         run.PostsSeen,
		EngagersProcessed: run.EngagersProcessed,
		EngagersMatched:   run.EngagersMatched,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
		Error:             run.Error,
	}
}
