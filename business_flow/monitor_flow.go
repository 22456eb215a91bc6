package businessflow

import (
	"context"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/magnetlab/signal-pipeline/app/dto"
	"github.com/magnetlab/signal-pipeline/models"
	"github.com/magnetlab/signal-pipeline/repository"
	"github.com/magnetlab/signal-pipeline/utils"
)

// MonitorFlow manages the lifecycle of signal monitors for a workspace
type MonitorFlow interface {
	CreateMonitor(ctx context.Context, workspaceID int64, req *dto.CreateMonitorRequest, metadata *ClientMetadata) (*dto.MonitorDTO, error)
	ListMonitors(ctx context.Context, workspaceID int64) (*dto.ListMonitorsResponse, error)
	GetMonitor(ctx context.Context, workspaceID int64, monitorUUID string) (*dto.MonitorDTO, error)
	UpdateMonitor(ctx context.Context, workspaceID int64, monitorUUID string, req *dto.UpdateMonitorRequest, metadata *ClientMetadata) (*dto.MonitorDTO, error)
	DeleteMonitor(ctx context.Context, workspaceID int64, monitorUUID string, metadata *ClientMetadata) error
	ListScanRuns(ctx context.Context, workspaceID int64, monitorUUID string, limit int) (*dto.ListScanRunsResponse, error)
}

// MonitorFlowImpl implements MonitorFlow
type MonitorFlowImpl struct {
	db          *gorm.DB
	monitorRepo repository.SignalMonitorRepository
	scanRunRepo repository.ScanRunRepository
	logger      *log.Logger
}

func NewMonitorFlow(
	db *gorm.DB,
	monitorRepo repository.SignalMonitorRepository,
	scanRunRepo repository.ScanRunRepository,
	logger *log.Logger,
) MonitorFlow {
	return &MonitorFlowImpl{
		db:          db,
		monitorRepo: monitorRepo,
		scanRunRepo: scanRunRepo,
		logger:      logger,
	}
}

// ownedMonitor resolves a monitor by UUID and checks workspace ownership
func (s *MonitorFlowImpl) ownedMonitor(ctx context.Context, workspaceID int64, monitorUUID string) (*models.SignalMonitor, error) {
	monitor, err := s.monitorRepo.ByUUID(ctx, monitorUUID)
	if err != nil {
		return nil, err
	}
	if monitor == nil {
		return nil, ErrMonitorNotFound
	}
	if monitor.WorkspaceID != workspaceID {
		return nil, ErrMonitorAccessDenied
	}
	return monitor, nil
}

func (s *MonitorFlowImpl) CreateMonitor(ctx context.Context, workspaceID int64, req *dto.CreateMonitorRequest, metadata *ClientMetadata) (monitorDTO *dto.MonitorDTO, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("MONITOR_CREATE_FAILED", "Failed to create monitor", err)
			}
		}
	}()

	kind := models.MonitorKind(req.Kind)
	if !kind.Valid() {
		return nil, ErrInvalidMonitorKind
	}
	if req.Target == "" {
		return nil, ErrMonitorTargetEmpty
	}
	cadence := req.CadenceMinutes
	if cadence == 0 {
		cadence = int(utils.DefaultScanCadence.Minutes())
	}
	if cadence < int(utils.MinScanCadence.Minutes()) {
		return nil, ErrCadenceTooShort
	}

	exists, err := s.monitorRepo.Exists(ctx, models.SignalMonitorFilter{
		WorkspaceID: &workspaceID,
		Kind:        &kind,
		Target:      &req.Target,
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrMonitorAlreadyExists
	}

	monitor := &models.SignalMonitor{
		UUID:           uuid.New(),
		WorkspaceID:    workspaceID,
		Kind:           kind,
		Target:         req.Target,
		DisplayName:    req.DisplayName,
		IsActive:       true,
		CadenceMinutes: cadence,
	}
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.monitorRepo.Save(txCtx, monitor)
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Printf("workspace %d: created %s monitor %s", workspaceID, kind, monitor.UUID)
	}
	result := ToMonitorDTO(*monitor)
	return &result, nil
}

func (s *MonitorFlowImpl) ListMonitors(ctx context.Context, workspaceID int64) (resp *dto.ListMonitorsResponse, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("MONITOR_LIST_FAILED", "Failed to list monitors", err)
			}
		}
	}()

	filter := models.SignalMonitorFilter{WorkspaceID: &workspaceID}
	monitors, err := s.monitorRepo.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return nil, err
	}
	total, err := s.monitorRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]dto.MonitorDTO, 0, len(monitors))
	for _, monitor := range monitors {
		dtos = append(dtos, ToMonitorDTO(*monitor))
	}
	return &dto.ListMonitorsResponse{Monitors: dtos, Total: total}, nil
}

func (s *MonitorFlowImpl) GetMonitor(ctx context.Context, workspaceID int64, monitorUUID string) (*dto.MonitorDTO, error) {
	monitor, err := s.ownedMonitor(ctx, workspaceID, monitorUUID)
	if err != nil {
		if _, ok := err.(*BusinessError); !ok && err != ErrMonitorNotFound && err != ErrMonitorAccessDenied {
			err = NewBusinessError("MONITOR_GET_FAILED", "Failed to get monitor", err)
		}
		return nil, err
	}
	result := ToMonitorDTO(*monitor)
	return &result, nil
}

func (s *MonitorFlowImpl) UpdateMonitor(ctx context.Context, workspaceID int64, monitorUUID string, req *dto.UpdateMonitorRequest, metadata *ClientMetadata) (monitorDTO *dto.MonitorDTO, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("MONITOR_UPDATE_FAILED", "Failed to update monitor", err)
			}
		}
	}()

	if req.DisplayName == nil && req.IsActive == nil && req.CadenceMinutes == nil {
		return nil, ErrMonitorUpdateEmpty
	}
	if req.CadenceMinutes != nil && *req.CadenceMinutes < int(utils.MinScanCadence.Minutes()) {
		return nil, ErrCadenceTooShort
	}

	var monitor *models.SignalMonitor
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		monitor, err = s.ownedMonitor(txCtx, workspaceID, monitorUUID)
		if err != nil {
			return err
		}
		if req.DisplayName != nil {
			monitor.DisplayName = *req.DisplayName
		}
		if req.IsActive != nil {
			monitor.IsActive = *req.IsActive
		}
		if req.CadenceMinutes != nil {
			monitor.CadenceMinutes = *req.CadenceMinutes
		}
		monitor.UpdatedAt = utils.UTCNow()
		return s.monitorRepo.Update(txCtx, monitor)
	})
	if err != nil {
		return nil, err
	}

	result := ToMonitorDTO(*monitor)
	return &result, nil
}

func (s *MonitorFlowImpl) DeleteMonitor(ctx context.Context, workspaceID int64, monitorUUID string, metadata *ClientMetadata) (err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("MONITOR_DELETE_FAILED", "Failed to delete monitor", err)
			}
		}
	}()

	monitor, err := s.ownedMonitor(ctx, workspaceID, monitorUUID)
	if err != nil {
		return err
	}
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		return s.monitorRepo.Delete(txCtx, monitor.ID)
	})
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Printf("workspace %d: deleted monitor %s", workspaceID, monitorUUID)
	}
	return nil
}

func (s *MonitorFlowImpl) ListScanRuns(ctx context.Context, workspaceID int64, monitorUUID string, limit int) (resp *dto.ListScanRunsResponse, err error) {
	defer func() {
		if err != nil {
			if _, ok := err.(*BusinessError); !ok {
				err = NewBusinessError("SCAN_RUN_LIST_FAILED", "Failed to list scan runs", err)
			}
		}
	}()

	monitor, err := s.ownedMonitor(ctx, workspaceID, monitorUUID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := s.scanRunRepo.ListByMonitor(ctx, monitor.ID, limit, 0)
	if err != nil {
		return nil, err
	}
	dtos := make([]dto.ScanRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, ToScanRunDTO(*run))
	}
	return &dto.ListScanRunsResponse{Runs: dtos}, nil
}
