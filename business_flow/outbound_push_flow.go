package businessflow

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	"github.com/magnetlab/signal-pipeline/utils"
)

// OutboundLead is the shape handed to the outreach service
type OutboundLead struct {
	ProfileURL string `json:"profile_url"`
	FullName   string `json:"full_name"`
	JobTitle   string `json:"job_title,omitempty"`
	Company    string `json:"company,omitempty"`
	ICPScore   int    `json:"icp_score"`
}

// PushOutcome reports which leads the outreach service accepted. The service
// may accept a subset of a batch; rejected leads stay unpushed and are
// retried on a later cycle.
type PushOutcome struct {
	AcceptedProfileURLs []string
}

// OutreachClient delivers qualified leads to the outbound outreach service
type OutreachClient interface {
	PushLeads(ctx context.Context, workspaceID int64, leads []OutboundLead) (*PushOutcome, error)
}

// PushSummary summarizes one push cycle for a workspace
type PushSummary struct {
	WorkspaceID int64
	Attempted   int
	Accepted    int
}

// OutboundPushFlow moves qualified, not-yet-pushed leads into the outreach
// service in bounded batches.
type OutboundPushFlow interface {
	PushQualifiedLeads(ctx context.Context, workspaceID int64) (*PushSummary, error)
	PushAllWorkspaces(ctx context.Context) ([]PushSummary, error)
}

// OutboundPushFlowImpl implements OutboundPushFlow
type OutboundPushFlowImpl struct {
	db             *gorm.DB
	leadRepo       repository.SignalLeadRepository
	outreachClient OutreachClient
	batchSize      int
	logger         *log.Logger
}

func NewOutboundPushFlow(
	db *gorm.DB,
	leadRepo repository.SignalLeadRepository,
	outreachClient OutreachClient,
	batchSize int,
	logger *log.Logger,
) OutboundPushFlow {
	if batchSize <= 0 || batchSize > utils.MaxPushBatch {
		batchSize = utils.MaxPushBatch
	}
	return &OutboundPushFlowImpl{
		db:             db,
		leadRepo:       leadRepo,
		outreachClient: outreachClient,
		batchSize:      batchSize,
		logger:         logger,
	}
}

// PushQualifiedLeads pushes one batch of qualified leads for the workspace.
// Every lead in the batch gets its attempt recorded before the remote call,
// so a crashed push is visible and nothing is silently retried forever.
func (s *OutboundPushFlowImpl) PushQualifiedLeads(ctx context.Context, workspaceID int64) (summary *PushSummary, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("OUTBOUND_PUSH_FAILED", "Failed to push leads to outbound", err)
			}
		}
	}()

	if workspaceID == 0 {
		return nil, ErrWorkspaceRequired
	}

	leads, err := s.leadRepo.ListQualifiedUnpushed(ctx, workspaceID, s.batchSize)
	if err != nil {
		return nil, err
	}
	summary = &PushSummary{WorkspaceID: workspaceID}
	if len(leads) == 0 {
		return summary, nil
	}

	leadIDs := make([]int64, 0, len(leads))
	outbound := make([]OutboundLead, 0, len(leads))
	byProfileURL := make(map[string]*models.SignalLead, len(leads))
	for _, lead := range leads {
		leadIDs = append(leadIDs, lead.ID)
		byProfileURL[lead.ProfileURL] = lead
		outbound = append(outbound, OutboundLead{
			ProfileURL: lead.ProfileURL,
			FullName:   lead.FullName,
			JobTitle:   lead.JobTitle,
			Company:    lead.Company,
			ICPScore:   lead.ICPScore,
		})
	}
	summary.Attempted = len(outbound)

	if err := s.leadRepo.MarkPushAttempted(ctx, leadIDs, utils.UTCNow()); err != nil {
		return nil, err
	}

	outcome, err := s.outreachClient.PushLeads(ctx, workspaceID, outbound)
	if err != nil {
		return nil, NewBusinessError("OUTREACH_CALL_FAILED", "Outreach service call failed", err)
	}
	if outcome == nil {
		return summary, nil
	}

	acceptedIDs := make([]int64, 0, len(outcome.AcceptedProfileURLs))
	for _, profileURL := range outcome.AcceptedProfileURLs {
		if lead, ok := byProfileURL[profileURL]; ok {
			acceptedIDs = append(acceptedIDs, lead.ID)
		}
	}
	if len(acceptedIDs) > 0 {
		err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
			return s.leadRepo.MarkPushed(txCtx, acceptedIDs, utils.UTCNow())
		})
		if err != nil {
			return nil, err
		}
	}
	summary.Accepted = len(acceptedIDs)

	if s.logger != nil && summary.Accepted < summary.Attempted {
		s.logger.Printf("workspace %d: outreach accepted %d of %d leads", workspaceID, summary.Accepted, summary.Attempted)
	}
	return summary, nil
}

// PushAllWorkspaces runs a push cycle for every workspace that has qualified
// unpushed leads. A failing workspace is logged and skipped.
func (s *OutboundPushFlowImpl) PushAllWorkspaces(ctx context.Context) ([]PushSummary, error) {
	workspaceIDs, err := s.leadRepo.WorkspacesWithQualifiedUnpushed(ctx)
	if err != nil {
		return nil, NewBusinessError("OUTBOUND_WORKSPACE_LIST_FAILED", "Failed to list workspaces with qualified leads", err)
	}

	summaries := make([]PushSummary, 0, len(workspaceIDs))
	for _, workspaceID := range workspaceIDs {
		summary, err := s.PushQualifiedLeads(ctx, workspaceID)
		if err != nil {
			if s.logger != nil {
				s.logger.Printf("workspace %d: push cycle failed: %v", workspaceID, err)
			}
			continue
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}
