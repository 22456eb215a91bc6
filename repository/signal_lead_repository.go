package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magnetlab/signal-pipeline/models"
	"gorm.io/gorm"
)

// SignalLeadRepositoryImpl implements SignalLeadRepository
type SignalLeadRepositoryImpl struct {
	*BaseRepository[models.SignalLead, models.SignalLeadFilter]
}

func NewSignalLeadRepository(db *gorm.DB) SignalLeadRepository {
	return &SignalLeadRepositoryImpl{BaseRepository: NewBaseRepository[models.SignalLead, models.SignalLeadFilter](db)}
}

// ByLeadID retrieves a lead by its int64 primary key. The embedded ByID
// takes a uint, which is too narrow for bigserial keys.
func (r *SignalLeadRepositoryImpl) ByLeadID(ctx context.Context, leadID int64) (*models.SignalLead, error) {
	db := r.getDB(ctx)
	var lead models.SignalLead
	if err := db.Last(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find lead by ID %d: %w", leadID, err)
	}
	return &lead, nil
}

func (r *SignalLeadRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.SignalLead, error) {
	rows, err := r.ByFilter(ctx, models.SignalLeadFilter{UUID: &uuid}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *SignalLeadRepositoryImpl) ByWorkspaceAndProfileURL(ctx context.Context, workspaceID int64, profileURL string) (*models.SignalLead, error) {
	filter := models.SignalLeadFilter{WorkspaceID: &workspaceID, ProfileURL: &profileURL}
	rows, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *SignalLeadRepositoryImpl) applyFilter(db *gorm.DB, f models.SignalLeadFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.WorkspaceID != nil {
		db = db.Where("workspace_id = ?", *f.WorkspaceID)
	}
	if f.ProfileURL != nil {
		db = db.Where("profile_url = ?", *f.ProfileURL)
	}
	if f.Company != nil {
		db = db.Where("company ILIKE ?", "%"+*f.Company+"%")
	}
	if f.ICPMatched != nil {
		db = db.Where("icp_matched = ?", *f.ICPMatched)
	}
	if f.MinICPScore != nil {
		db = db.Where("icp_score >= ?", *f.MinICPScore)
	}
	if f.PushedToOutbound != nil {
		db = db.Where("pushed_to_outbound = ?", *f.PushedToOutbound)
	}
	if f.SeenAfter != nil {
		db = db.Where("last_seen_at >= ?", *f.SeenAfter)
	}
	if f.SeenBefore != nil {
		db = db.Where("last_seen_at < ?", *f.SeenBefore)
	}
	return db
}

func (r *SignalLeadRepositoryImpl) ByFilter(ctx context.Context, filter models.SignalLeadFilter, orderBy string, limit, offset int) ([]*models.SignalLead, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SignalLead{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.SignalLead
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find signal leads by filter: %w", err)
	}
	return rows, nil
}

func (r *SignalLeadRepositoryImpl) Count(ctx context.Context, filter models.SignalLeadFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SignalLead{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SignalLeadRepositoryImpl) Exists(ctx context.Context, filter models.SignalLeadFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SignalLeadRepositoryImpl) Update(ctx context.Context, lead *models.SignalLead) error {
	db := r.getDB(ctx)
	if err := db.Save(lead).Error; err != nil {
		return fmt.Errorf("failed to update signal lead %d: %w", lead.ID, err)
	}
	return nil
}

func (r *SignalLeadRepositoryImpl) ListQualifiedUnpushed(ctx context.Context, workspaceID int64, limit int) ([]*models.SignalLead, error) {
	matched := true
	pushed := false
	filter := models.SignalLeadFilter{
		WorkspaceID:      &workspaceID,
		ICPMatched:       &matched,
		PushedToOutbound: &pushed,
	}
	return r.ByFilter(ctx, filter, "last_seen_at ASC", limit, 0)
}

func (r *SignalLeadRepositoryImpl) WorkspacesWithQualifiedUnpushed(ctx context.Context) ([]int64, error) {
	db := r.getDB(ctx)
	var ids []int64
	err := db.Model(&models.SignalLead{}).
		Distinct("workspace_id").
		Where("icp_matched = ? AND pushed_to_outbound = ?", true, false).
		Pluck("workspace_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces with unpushed leads: %w", err)
	}
	return ids, nil
}

func (r *SignalLeadRepositoryImpl) MarkPushAttempted(ctx context.Context, leadIDs []int64, attemptedAt time.Time) error {
	if len(leadIDs) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	err := db.Model(&models.SignalLead{}).
		Where("id IN ?", leadIDs).
		Updates(map[string]any{"push_attempted_at": attemptedAt, "updated_at": attemptedAt}).Error
	if err != nil {
		return fmt.Errorf("failed to mark push attempted: %w", err)
	}
	return nil
}

func (r *SignalLeadRepositoryImpl) MarkPushed(ctx context.Context, leadIDs []int64, pushedAt time.Time) error {
	if len(leadIDs) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	err := db.Model(&models.SignalLead{}).
		Where("id IN ?", leadIDs).
		Updates(map[string]any{
			"pushed_to_outbound": true,
			"push_attempted_at":  pushedAt,
			"updated_at":         pushedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark leads pushed: %w", err)
	}
	return nil
}
