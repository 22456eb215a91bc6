package businessflow

import (
	"context"
	"log"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/magnetlab/signal-pipeline/app/dto"
	"github.com/magnetlab/signal-pipeline/icp"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	"github.com/magnetlab/signal-pipeline/utils"
)

// ICPFiltersFlow reads and replaces a workspace's ICP filter set. Updates
// only affect leads seen after the change; existing scores are left alone
// until the next sighting re-scores them.
type ICPFiltersFlow interface {
	GetFilters(ctx context.Context, workspaceID int64) (*dto.ICPFiltersDTO, error)
	UpdateFilters(ctx context.Context, workspaceID int64, req *dto.UpdateICPFiltersRequest, metadata *ClientMetadata) (*dto.ICPFiltersDTO, error)
}

// ICPFiltersFlowImpl implements ICPFiltersFlow
type ICPFiltersFlowImpl struct {
	db            *gorm.DB
	filterSetRepo repository.ICPFilterSetRepository
	filterSource  ICPFilterSource
	logger        *log.Logger
}

func NewICPFiltersFlow(
	db *gorm.DB,
	filterSetRepo repository.ICPFilterSetRepository,
	filterSource ICPFilterSource,
	logger *log.Logger,
) ICPFiltersFlow {
	return &ICPFiltersFlowImpl{
		db:            db,
		filterSetRepo: filterSetRepo,
		filterSource:  filterSource,
		logger:        logger,
	}
}

func toICPFiltersDTO(set *models.ICPFilterSet) *dto.ICPFiltersDTO {
	if set == nil {
		// No stored filter set means "match everyone".
		return &dto.ICPFiltersDTO{
			TitleKeywords:     []string{},
			IndustryKeywords:  []string{},
			ExcludedCompanies: []string{},
		}
	}
	updatedAt := set.UpdatedAt
	return &dto.ICPFiltersDTO{
		TitleKeywords:     set.TitleKeywords,
		IndustryKeywords:  set.IndustryKeywords,
		CompanySizeMin:    set.CompanySizeMin,
		CompanySizeMax:    set.CompanySizeMax,
		RequiredSeniority: set.RequiredSeniority,
		ExcludedCompanies: set.ExcludedCompanies,
		UpdatedAt:         &updatedAt,
	}
}

func (s *ICPFiltersFlowImpl) GetFilters(ctx context.Context, workspaceID int64) (resp *dto.ICPFiltersDTO, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("ICP_FILTER_GET_FAILED", "Failed to get ICP filters", err)
			}
		}
	}()

	set, err := s.filterSetRepo.ByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return toICPFiltersDTO(set), nil
}

func (s *ICPFiltersFlowImpl) UpdateFilters(ctx context.Context, workspaceID int64, req *dto.UpdateICPFiltersRequest, metadata *ClientMetadata) (resp *dto.ICPFiltersDTO, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("ICP_FILTER_UPDATE_FAILED", "Failed to update ICP filters", err)
			}
		}
	}()

	if req.CompanySizeMin != nil && req.CompanySizeMax != nil && *req.CompanySizeMin > *req.CompanySizeMax {
		return nil, ErrCompanySizeInverted
	}
	if req.RequiredSeniority != nil && !icp.Seniority(*req.RequiredSeniority).Valid() {
		return nil, ErrInvalidSeniority
	}

	var set *models.ICPFilterSet
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		set, err = s.filterSetRepo.ByWorkspace(txCtx, workspaceID)
		if err != nil {
			return err
		}
		if set == nil {
			set = &models.ICPFilterSet{WorkspaceID: workspaceID}
		}
		set.TitleKeywords = pq.StringArray(req.TitleKeywords)
		set.IndustryKeywords = pq.StringArray(req.IndustryKeywords)
		set.ExcludedCompanies = pq.StringArray(req.ExcludedCompanies)
		set.CompanySizeMin = req.CompanySizeMin
		set.CompanySizeMax = req.CompanySizeMax
		set.RequiredSeniority = req.RequiredSeniority
		set.UpdatedAt = utils.UTCNow()
		if set.ID == 0 {
			return s.filterSetRepo.Save(txCtx, set)
		}
		return s.filterSetRepo.Update(txCtx, set)
	})
	if err != nil {
		return nil, err
	}

	s.filterSource.Invalidate(ctx, workspaceID)
	if s.logger != nil {
		s.logger.Printf("workspace %d: ICP filters updated", workspaceID)
	}
	return toICPFiltersDTO(set), nil
}
