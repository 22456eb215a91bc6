package repository

import (
	"context"
	"fmt"

	"github.com/magnetlab/signal-pipeline/models"
	"gorm.io/gorm"
)

// SignalEventRepositoryImpl implements SignalEventRepository
type SignalEventRepositoryImpl struct {
	*BaseRepository[models.SignalEvent, models.SignalEventFilter]
}

func NewSignalEventRepository(db *gorm.DB) SignalEventRepository {
	return &SignalEventRepositoryImpl{BaseRepository: NewBaseRepository[models.SignalEvent, models.SignalEventFilter](db)}
}

func (r *SignalEventRepositoryImpl) applyFilter(db *gorm.DB, f models.SignalEventFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.LeadID != nil {
		db = db.Where("lead_id = ?", *f.LeadID)
	}
	if f.MonitorID != nil {
		db = db.Where("monitor_id = ?", *f.MonitorID)
	}
	if f.SignalType != nil {
		db = db.Where("signal_type = ?", *f.SignalType)
	}
	if f.OccurredAfter != nil {
		db = db.Where("occurred_at >= ?", *f.OccurredAfter)
	}
	if f.OccurredBefore != nil {
		db = db.Where("occurred_at < ?", *f.OccurredBefore)
	}
	return db
}

func (r *SignalEventRepositoryImpl) ByFilter(ctx context.Context, filter models.SignalEventFilter, orderBy string, limit, offset int) ([]*models.SignalEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SignalEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.SignalEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find signal events by filter: %w", err)
	}
	return rows, nil
}

func (r *SignalEventRepositoryImpl) Count(ctx context.Context, filter models.SignalEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.SignalEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SignalEventRepositoryImpl) Exists(ctx context.Context, filter models.SignalEventFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SignalEventRepositoryImpl) ListByLead(ctx context.Context, leadID int64, limit, offset int) ([]*models.SignalEvent, error) {
	filter := models.SignalEventFilter{LeadID: &leadID}
	return r.ByFilter(ctx, filter, "occurred_at DESC", limit, offset)
}
