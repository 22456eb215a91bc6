package businessflow

import (
	"context"
	"log"

	"github.com/magnetlab/signal-pipeline/app/dto"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
)

// LeadFlow serves the dashboard's read side: lead lists, lead detail, and
// per-lead event timelines.
type LeadFlow interface {
	ListLeads(ctx context.Context, workspaceID int64, req *dto.ListLeadsRequest) (*dto.ListLeadsResponse, error)
	GetLead(ctx context.Context, workspaceID int64, leadUUID string) (*dto.LeadDTO, error)
	ListLeadEvents(ctx context.Context, workspaceID int64, leadUUID string, limit int) (*dto.ListEventsResponse, error)
	LeadsForExport(ctx context.Context, workspaceID int64, req *dto.ListLeadsRequest) ([]dto.LeadDTO, error)
}

// LeadFlowImpl implements LeadFlow
type LeadFlowImpl struct {
	leadRepo  repository.SignalLeadRepository
	eventRepo repository.SignalEventRepository
	logger    *log.Logger
}

func NewLeadFlow(
	leadRepo repository.SignalLeadRepository,
	eventRepo repository.SignalEventRepository,
	logger *log.Logger,
) LeadFlow {
	return &LeadFlowImpl{
		leadRepo:  leadRepo,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

func leadFilterFromRequest(workspaceID int64, req *dto.ListLeadsRequest) models.SignalLeadFilter {
	filter := models.SignalLeadFilter{WorkspaceID: &workspaceID}
	if req != nil {
		filter.ICPMatched = req.ICPMatched
		filter.MinICPScore = req.MinICPScore
		filter.Company = req.Company
		filter.PushedToOutbound = req.PushedToOutbound
	}
	return filter
}

func (s *LeadFlowImpl) ListLeads(ctx context.Context, workspaceID int64, req *dto.ListLeadsRequest) (resp *dto.ListLeadsResponse, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("LEAD_LIST_FAILED", "Failed to list leads", err)
			}
		}
	}()

	page := 1
	pageSize := 50
	if req != nil {
		if req.Page < 0 {
			return nil, ErrInvalidPage
		}
		if req.Page > 0 {
			page = req.Page
		}
		if req.PageSize < 0 || req.PageSize > 200 {
			return nil, ErrInvalidPageSize
		}
		if req.PageSize > 0 {
			pageSize = req.PageSize
		}
	}

	filter := leadFilterFromRequest(workspaceID, req)
	leads, err := s.leadRepo.ByFilter(ctx, filter, "last_seen_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.leadRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]dto.LeadDTO, 0, len(leads))
	for _, lead := range leads {
		dtos = append(dtos, ToLeadDTO(*lead))
	}
	return &dto.ListLeadsResponse{
		Leads:    dtos,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *LeadFlowImpl) ownedLead(ctx context.Context, workspaceID int64, leadUUID string) (*models.SignalLead, error) {
	lead, err := s.leadRepo.ByUUID(ctx, leadUUID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}
	if lead.WorkspaceID != workspaceID {
		return nil, ErrLeadAccessDenied
	}
	return lead, nil
}

func (s *LeadFlowImpl) GetLead(ctx context.Context, workspaceID int64, leadUUID string) (*dto.LeadDTO, error) {
	lead, err := s.ownedLead(ctx, workspaceID, leadUUID)
	if err != nil {
		if err != ErrLeadNotFound && err != ErrLeadAccessDenied {
			err = NewBusinessError("LEAD_GET_FAILED", "Failed to get lead", err)
		}
		return nil, err
	}
	result := ToLeadDTO(*lead)
	return &result, nil
}

func (s *LeadFlowImpl) ListLeadEvents(ctx context.Context, workspaceID int64, leadUUID string, limit int) (resp *dto.ListEventsResponse, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("EVENT_LIST_FAILED", "Failed to list lead events", err)
			}
		}
	}()

	lead, err := s.ownedLead(ctx, workspaceID, leadUUID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	events, err := s.eventRepo.ListByLead(ctx, lead.ID, limit, 0)
	if err != nil {
		return nil, err
	}
	dtos := make([]dto.EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, ToEventDTO(*event))
	}
	return &dto.ListEventsResponse{Events: dtos}, nil
}

// LeadsForExport returns every lead matching the filter, unpaginated, for
// spreadsheet export.
func (s *LeadFlowImpl) LeadsForExport(ctx context.Context, workspaceID int64, req *dto.ListLeadsRequest) (dtos []dto.LeadDTO, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("LEAD_EXPORT_FAILED", "Failed to load leads for export", err)
			}
		}
	}()

	filter := leadFilterFromRequest(workspaceID, req)
	leads, err := s.leadRepo.ByFilter(ctx, filter, "icp_score DESC, last_seen_at DESC", 0, 0)
	if err != nil {
		return nil, err
	}
	dtos = make([]dto.LeadDTO, 0, len(leads))
	for _, lead := range leads {
		dtos = append(dtos, ToLeadDTO(*lead))
	}
	return dtos, nil
}
