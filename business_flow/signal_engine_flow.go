package businessflow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magnetlab/signal-pipeline/icp"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	"github.com/magnetlab/signal-pipeline/utils"
)

// EngagerInput is one person who engaged with a monitored post, together
// with the engagement itself.
type EngagerInput struct {
	Profile    icp.Profile
	SignalType models.SignalType
	Snippet    string
	OccurredAt time.Time
}

// ProcessResult summarizes one batch of engagers run through the engine
type ProcessResult struct {
	Processed int
	Matched   int
	Failed    int
}

// SignalEngineFlow ingests engagement signals: it upserts leads keyed by
// workspace and profile URL, re-scores them against the current ICP filters,
// and appends immutable engagement events.
type SignalEngineFlow interface {
	UpsertLead(ctx context.Context, workspaceID int64, profile icp.Profile) (*models.SignalLead, error)
	RecordEvent(ctx context.Context, leadID int64, monitorID uint, signalType models.SignalType, snippet string, occurredAt time.Time) (*models.SignalEvent, error)
	ProcessEngagers(ctx context.Context, monitor *models.SignalMonitor, engagers []EngagerInput) (*ProcessResult, error)
}

// SignalEngineFlowImpl implements SignalEngineFlow
type SignalEngineFlowImpl struct {
	db           *gorm.DB
	leadRepo     repository.SignalLeadRepository
	eventRepo    repository.SignalEventRepository
	filterSource ICPFilterSource
	logger       *log.Logger
}

func NewSignalEngineFlow(
	db *gorm.DB,
	leadRepo repository.SignalLeadRepository,
	eventRepo repository.SignalEventRepository,
	filterSource ICPFilterSource,
	logger *log.Logger,
) SignalEngineFlow {
	return &SignalEngineFlowImpl{
		db:           db,
		leadRepo:     leadRepo,
		eventRepo:    eventRepo,
		filterSource: filterSource,
		logger:       logger,
	}
}

// UpsertLead creates or refreshes the lead identified by (workspace, profile
// URL). Every call re-scores the lead against the workspace's current ICP
// filters, so edited filters take effect on the next sighting without a
// backfill.
func (s *SignalEngineFlowImpl) UpsertLead(ctx context.Context, workspaceID int64, profile icp.Profile) (lead *models.SignalLead, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("LEAD_UPSERT_FAILED", "Failed to upsert lead", err)
			}
		}
	}()

	if workspaceID == 0 {
		return nil, ErrWorkspaceRequired
	}
	profileURL := strings.TrimSpace(profile.ProfileURL)
	if profileURL == "" {
		return nil, ErrProfileURLRequired
	}

	filters, err := s.filterSource.FiltersForWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	jobTitle, _ := icp.ExtractJobTitle(profile)
	company, _ := icp.ExtractCompany(profile)
	score := icp.Score(profile, filters)
	matched := icp.Matches(profile, filters)

	// Two scans can surface the same engager at once. The stripe lock keeps
	// the read-then-write below from racing into a duplicate insert.
	mu := lockLead(workspaceID, profileURL)
	defer mu.Unlock()

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.leadRepo.ByWorkspaceAndProfileURL(txCtx, workspaceID, profileURL)
		if err != nil {
			return err
		}

		now := utils.UTCNow()
		if existing == nil {
			lead = &models.SignalLead{
				UUID:        uuid.New(),
				WorkspaceID: workspaceID,
				ProfileURL:  profileURL,
				FullName:    profile.FullName,
				Headline:    profile.Headline,
				JobTitle:    jobTitle,
				Company:     company,
				Location:    profile.Location,
				ICPScore:    score,
				ICPMatched:  matched,
				FirstSeenAt: now,
				LastSeenAt:  now,
			}
			return s.leadRepo.Save(txCtx, lead)
		}

		// Refresh the snapshot but never blank out a field the newer
		// sighting happens to be missing.
		if profile.FullName != "" {
			existing.FullName = profile.FullName
		}
		if profile.Headline != "" {
			existing.Headline = profile.Headline
		}
		if jobTitle != "" {
			existing.JobTitle = jobTitle
		}
		if company != "" {
			existing.Company = company
		}
		if profile.Location != "" {
			existing.Location = profile.Location
		}
		existing.ICPScore = score
		existing.ICPMatched = matched
		existing.LastSeenAt = now

		if err := s.leadRepo.Update(txCtx, existing); err != nil {
			return err
		}
		lead = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// RecordEvent appends one engagement event to a lead's timeline. Events are
// append-only; nothing ever updates or deletes them.
func (s *SignalEngineFlowImpl) RecordEvent(ctx context.Context, leadID int64, monitorID uint, signalType models.SignalType, snippet string, occurredAt time.Time) (event *models.SignalEvent, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("EVENT_RECORD_FAILED", "Failed to record signal event", err)
			}
		}
	}()

	if !signalType.Valid() {
		return nil, ErrInvalidSignalType
	}
	if occurredAt.IsZero() {
		return nil, ErrOccurredAtRequired
	}

	event = &models.SignalEvent{
		LeadID:     leadID,
		MonitorID:  monitorID,
		SignalType: signalType,
		Snippet:    snippet,
		OccurredAt: occurredAt.UTC(),
	}
	// Reactions carry no text, so only comments and posts get a sentiment.
	if strings.TrimSpace(snippet) != "" {
		sentiment := icp.ClassifySentiment(snippet)
		event.Sentiment = &sentiment
	}

	if err := s.eventRepo.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ProcessEngagers runs a batch of engagers from one scan through the engine.
// A failing engager is logged and skipped; the rest of the batch proceeds.
func (s *SignalEngineFlowImpl) ProcessEngagers(ctx context.Context, monitor *models.SignalMonitor, engagers []EngagerInput) (*ProcessResult, error) {
	if monitor == nil {
		return nil, ErrMonitorNotFound
	}

	result := &ProcessResult{}
	for _, engager := range engagers {
		lead, err := s.UpsertLead(ctx, monitor.WorkspaceID, engager.Profile)
		if err != nil {
			result.Failed++
			if s.logger != nil {
				s.logger.Printf("monitor %d: failed to upsert engager %q: %v", monitor.ID, engager.Profile.ProfileURL, err)
			}
			continue
		}

		if _, err := s.RecordEvent(ctx, lead.ID, monitor.ID, engager.SignalType, engager.Snippet, engager.OccurredAt); err != nil {
			result.Failed++
			if s.logger != nil {
				s.logger.Printf("monitor %d: failed to record event for lead %d: %v", monitor.ID, lead.ID, err)
			}
			continue
		}

		result.Processed++
		if lead.ICPMatched {
			result.Matched++
		}
	}
	return result, nil
}
