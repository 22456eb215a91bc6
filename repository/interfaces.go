// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/magnetlab/signal-pipeline/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// SignalMonitorRepository defines operations for signal monitors
type SignalMonitorRepository interface {
	Repository[models.SignalMonitor, models.SignalMonitorFilter]
	ByUUID(ctx context.Context, uuid string) (*models.SignalMonitor, error)
	ListActiveByKind(ctx context.Context, kind models.MonitorKind) ([]*models.SignalMonitor, error)
	Update(ctx context.Context, monitor *models.SignalMonitor) error
	UpdateLastRun(ctx context.Context, monitorID uint, ranAt time.Time) error
	Delete(ctx context.Context, monitorID uint) error
}

// SignalLeadRepository defines operations for signal leads
type SignalLeadRepository interface {
	Repository[models.SignalLead, models.SignalLeadFilter]
	ByLeadID(ctx context.Context, leadID int64) (*models.SignalLead, error)
	ByUUID(ctx context.Context, uuid string) (*models.SignalLead, error)
	ByWorkspaceAndProfileURL(ctx context.Context, workspaceID int64, profileURL string) (*models.SignalLead, error)
	Update(ctx context.Context, lead *models.SignalLead) error
	ListQualifiedUnpushed(ctx context.Context, workspaceID int64, limit int) ([]*models.SignalLead, error)
	WorkspacesWithQualifiedUnpushed(ctx context.Context) ([]int64, error)
	MarkPushAttempted(ctx context.Context, leadIDs []int64, attemptedAt time.Time) error
	MarkPushed(ctx context.Context, leadIDs []int64, pushedAt time.Time) error
}

// SignalEventRepository defines operations for signal events. Events are
// append-only; there are deliberately no update or delete operations.
type SignalEventRepository interface {
	Repository[models.SignalEvent, models.SignalEventFilter]
	ListByLead(ctx context.Context, leadID int64, limit, offset int) ([]*models.SignalEvent, error)
}

// ICPFilterSetRepository defines operations for per-workspace ICP filter sets
type ICPFilterSetRepository interface {
	Repository[models.ICPFilterSet, models.ICPFilterSetFilter]
	ByWorkspace(ctx context.Context, workspaceID int64) (*models.ICPFilterSet, error)
	Update(ctx context.Context, set *models.ICPFilterSet) error
}

// ScanRunRepository defines operations for scan run audit records
type ScanRunRepository interface {
	Repository[models.ScanRun, models.ScanRunFilter]
	Update(ctx context.Context, run *models.ScanRun) error
	ListByMonitor(ctx context.Context, monitorID uint, limit, offset int) ([]*models.ScanRun, error)
}
