package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magnetlab/signal-pipeline/models"
	"gorm.io/gorm"
)

// SignalMonitorRepositoryImpl implements SignalMonitorRepository
type SignalMonitorRepositoryImpl struct {
	*BaseRepository[models.SignalMonitor, models.SignalMonitorFilter]
}

func NewSignalMonitorRepository(db *gorm.DB) SignalMonitorRepository {
	return &SignalMonitorRepositoryImpl{BaseRepository: NewBaseRepository[models.SignalMonitor, models.SignalMonitorFilter](db)}
}

func (r *SignalMonitorRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.SignalMonitor, error) {
	rows, err := r.ByFilter(ctx, models.SignalMonitorFilter{UUID: &uuid}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *SignalMonitorRepositoryImpl) ListActiveByKind(ctx context.Context, kind models.MonitorKind) ([]*models.SignalMonitor, error) {
	isActive := true
	filter := models.SignalMonitorFilter{Kind: &kind, IsActive: &isActive}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

func (r *SignalMonitorRepositoryImpl) applyFilter(db *gorm.DB, f models.SignalMonitorFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.WorkspaceID != nil {
		db = db.Where("workspace_id = ?", *f.WorkspaceID)
	}
	if f.Kind != nil {
		db = db.Where("kind = ?", *f.Kind)
	}
	if f.Target != nil {
		db = db.Where("target = ?", *f.Target)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *SignalMonitorRepositoryImpl) ByFilter(ctx context.Context, filter models.SignalMonitorFilter, orderBy string, limit, offset int) ([]*models.SignalMonitor, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SignalMonitor{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.SignalMonitor
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find signal monitors by filter: %w", err)
	}
	return rows, nil
}

func (r *SignalMonitorRepositoryImpl) Count(ctx context.Context, filter models.SignalMonitorFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SignalMonitor{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SignalMonitorRepositoryImpl) Exists(ctx context.Context, filter models.SignalMonitorFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SignalMonitorRepositoryImpl) Update(ctx context.Context, monitor *models.SignalMonitor) error {
	db := r.getDB(ctx)
	if err := db.Save(monitor).Error; err != nil {
		return fmt.Errorf("failed to update signal monitor %d: %w", monitor.ID, err)
	}
	return nil
}

// UpdateLastRun stamps last_run_at without touching the rest of the row, so
// a concurrent settings update cannot be overwritten by the orchestrator.
func (r *SignalMonitorRepositoryImpl) UpdateLastRun(ctx context.Context, monitorID uint, ranAt time.Time) error {
	db := r.getDB(ctx)
	err := db.Model(&models.SignalMonitor{}).
		Where("id = ?", monitorID).
		Updates(map[string]any{"last_run_at": ranAt, "updated_at": ranAt}).Error
	if err != nil {
		return fmt.Errorf("failed to update last run for monitor %d: %w", monitorID, err)
	}
	return nil
}

func (r *SignalMonitorRepositoryImpl) Delete(ctx context.Context, monitorID uint) error {
	db := r.getDB(ctx)
	if err := db.Delete(&models.SignalMonitor{}, monitorID).Error; err != nil {
		return fmt.Errorf("failed to delete signal monitor %d: %w", monitorID, err)
	}
	return nil
}
