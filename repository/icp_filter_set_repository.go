package repository

import (
	"context"
	"fmt"

	"github.com/magnetlab/signal-pipeline/models"
	"gorm.io/gorm"
)

// ICPFilterSetRepositoryImpl implements ICPFilterSetRepository
type ICPFilterSetRepositoryImpl struct {
	*BaseRepository[models.ICPFilterSet, models.ICPFilterSetFilter]
}

func NewICPFilterSetRepository(db *gorm.DB) ICPFilterSetRepository {
	return &ICPFilterSetRepositoryImpl{BaseRepository: NewBaseRepository[models.ICPFilterSet, models.ICPFilterSetFilter](db)}
}

func (r *ICPFilterSetRepositoryImpl) ByWorkspace(ctx context.Context, workspaceID int64) (*models.ICPFilterSet, error) {
	rows, err := r.ByFilter(ctx, models.ICPFilterSetFilter{WorkspaceID: &workspaceID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *ICPFilterSetRepositoryImpl) applyFilter(db *gorm.DB, f models.ICPFilterSetFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.WorkspaceID != nil {
		db = db.Where("workspace_id = ?", *f.WorkspaceID)
	}
	return db
}

func (r *ICPFilterSetRepositoryImpl) ByFilter(ctx context.Context, filter models.ICPFilterSetFilter, orderBy string, limit, offset int) ([]*models.ICPFilterSet, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ICPFilterSet{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ICPFilterSet
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find ICP filter sets by filter: %w", err)
	}
	return rows, nil
}

func (r *ICPFilterSetRepositoryImpl) Count(ctx context.Context, filter models.ICPFilterSetFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ICPFilterSet{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ICPFilterSetRepositoryImpl) Exists(ctx context.Context, filter models.ICPFilterSetFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ICPFilterSetRepositoryImpl) Update(ctx context.Context, set *models.ICPFilterSet) error {
	db := r.getDB(ctx)
	if err := db.Save(set).Error; err != nil {
		return fmt.Errorf("failed to update ICP filter set %d: %w", set.ID, err)
	}
	return nil
}
