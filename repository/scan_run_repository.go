package repository

import (
	"context"
	"fmt"

	"github.com/magnetlab/signal-pipeline/models"
	"gorm.io/gorm"
)

// ScanRunRepositoryImpl implements ScanRunRepository
type ScanRunRepositoryImpl struct {
	*BaseRepository[models.ScanRun, models.ScanRunFilter]
}

func NewScanRunRepository(db *gorm.DB) ScanRunRepository {
	return &ScanRunRepositoryImpl{BaseRepository: NewBaseRepository[models.ScanRun, models.ScanRunFilter](db)}
}

func (r *ScanRunRepositoryImpl) applyFilter(db *gorm.DB, f models.ScanRunFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.MonitorID != nil {
		db = db.Where("monitor_id = ?", *f.MonitorID)
	}
	if f.WorkspaceID != nil {
		db = db.Where("workspace_id = ?", *f.WorkspaceID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", *f.Status)
	}
	if f.StartedAfter != nil {
		db = db.Where("started_at >= ?", *f.StartedAfter)
	}
	if f.StartedBefore != nil {
		db = db.Where("started_at < ?", *f.StartedBefore)
	}
	return db
}

func (r *ScanRunRepositoryImpl) ByFilter(ctx context.Context, filter models.ScanRunFilter, orderBy string, limit, offset int) ([]*models.ScanRun, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanRun{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ScanRun
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find scan runs by filter: %w", err)
	}
	return rows, nil
}

func (r *ScanRunRepositoryImpl) Count(ctx context.Context, filter models.ScanRunFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ScanRun{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScanRunRepositoryImpl) Exists(ctx context.Context, filter models.ScanRunFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ScanRunRepositoryImpl) Update(ctx context.Context, run *models.ScanRun) error {
	db := r.getDB(ctx)
	if err := db.Save(run).Error; err != nil {
		return fmt.Errorf("failed to update scan run %d: %w", run.ID, err)
	}
	return nil
}

func (r *ScanRunRepositoryImpl) ListByMonitor(ctx context.Context, monitorID uint, limit, offset int) ([]*models.ScanRun, error) {
	filter := models.ScanRunFilter{MonitorID: &monitorID}
	return r.ByFilter(ctx, filter, "started_at DESC", limit, offset)
}
