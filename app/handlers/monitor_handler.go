package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/magnetlab/signal-pipeline/app/dto"
	"github.com/magnetlab/signal-pipeline/app/scheduler"
	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/utils"
)

// MonitorHandlerInterface defines the contract for monitor handlers
type MonitorHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	ListScanRuns(c fiber.Ctx) error
	TriggerScan(c fiber.Ctx) error
}

// MonitorHandler handles monitor management HTTP requests
type MonitorHandler struct {
	flow      businessflow.MonitorFlow
	scanner   *scheduler.ScanScheduler
	validator *validator.Validate
}

func NewMonitorHandler(flow businessflow.MonitorFlow, scanner *scheduler.ScanScheduler) *MonitorHandler {
	return &MonitorHandler{
		flow:      flow,
		scanner:   scanner,
		validator: validator.New(),
	}
}

func (h *MonitorHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *MonitorHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

func (h *MonitorHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	timeout := 30 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

func workspaceFromContext(c fiber.Ctx) (int64, bool) {
	workspaceID, ok := c.Locals("workspace_id").(int64)
	return workspaceID, ok
}

// Create registers a new signal monitor
func (h *MonitorHandler) Create(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	var req dto.CreateMonitorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.CreateMonitor(h.createRequestContext(c, "/api/v1/monitors"), workspaceID, &req, metadata)
	if err != nil {
		if businessflow.IsInvalidMonitorKind(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid monitor kind", "INVALID_MONITOR_KIND", nil)
		}
		if businessflow.IsCadenceTooShort(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Scan cadence is too short", "CADENCE_TOO_SHORT", nil)
		}
		if businessflow.IsMonitorAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Monitor already exists for this target", "MONITOR_EXISTS", nil)
		}
		log.Println("Create monitor failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create monitor", "MONITOR_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Monitor created", result)
}

// List returns the workspace's monitors
func (h *MonitorHandler) List(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	result, err := h.flow.ListMonitors(h.createRequestContext(c, "/api/v1/monitors"), workspaceID)
	if err != nil {
		log.Println("List monitors failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list monitors", "MONITOR_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Monitors retrieved", result)
}

// Get returns a single monitor
func (h *MonitorHandler) Get(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	result, err := h.flow.GetMonitor(h.createRequestContext(c, "/api/v1/monitors/:uuid"), workspaceID, c.Params("uuid"))
	if err != nil {
		if businessflow.IsMonitorNotFound(err) || businessflow.IsMonitorAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Monitor not found", "MONITOR_NOT_FOUND", nil)
		}
		log.Println("Get monitor failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get monitor", "MONITOR_GET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Monitor retrieved", result)
}

// Update changes monitor settings
func (h *MonitorHandler) Update(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	var req dto.UpdateMonitorRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	result, err := h.flow.UpdateMonitor(h.createRequestContext(c, "/api/v1/monitors/:uuid"), workspaceID, c.Params("uuid"), &req, metadata)
	if err != nil {
		if businessflow.IsMonitorNotFound(err) || businessflow.IsMonitorAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Monitor not found", "MONITOR_NOT_FOUND", nil)
		}
		if businessflow.IsMonitorUpdateEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "MONITOR_UPDATE_EMPTY", nil)
		}
		if businessflow.IsCadenceTooShort(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Scan cadence is too short", "CADENCE_TOO_SHORT", nil)
		}
		log.Println("Update monitor failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update monitor", "MONITOR_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Monitor updated", result)
}

// Delete removes a monitor
func (h *MonitorHandler) Delete(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	err := h.flow.DeleteMonitor(h.createRequestContext(c, "/api/v1/monitors/:uuid"), workspaceID, c.Params("uuid"), metadata)
	if err != nil {
		if businessflow.IsMonitorNotFound(err) || businessflow.IsMonitorAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Monitor not found", "MONITOR_NOT_FOUND", nil)
		}
		log.Println("Delete monitor failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete monitor", "MONITOR_DELETE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Monitor deleted", nil)
}

// ListScanRuns returns recent scan executions for a monitor
func (h *MonitorHandler) ListScanRuns(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	limit := fiber.Query(c, "limit", 20)
	result, err := h.flow.ListScanRuns(h.createRequestContext(c, "/api/v1/monitors/:uuid/runs"), workspaceID, c.Params("uuid"), limit)
	if err != nil {
		if businessflow.IsMonitorNotFound(err) || businessflow.IsMonitorAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Monitor not found", "MONITOR_NOT_FOUND", nil)
		}
		log.Println("List scan runs failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list scan runs", "SCAN_RUN_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Scan runs retrieved", result)
}

// TriggerScan runs a monitor scan outside its cadence
func (h *MonitorHandler) TriggerScan(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	err := h.scanner.TriggerMonitor(h.createRequestContext(c, "/api/v1/monitors/:uuid/scan"), workspaceID, c.Params("uuid"))
	if err != nil {
		if businessflow.IsMonitorNotFound(err) || businessflow.IsMonitorAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Monitor not found", "MONITOR_NOT_FOUND", nil)
		}
		if businessflow.IsMonitorInactive(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Monitor is inactive", "MONITOR_INACTIVE", nil)
		}
		log.Println("Trigger scan failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to trigger scan", "SCAN_TRIGGER_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusAccepted, "Scan triggered", nil)
}
