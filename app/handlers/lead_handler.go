package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/magnetlab/signal-pipeline/app/dto"
	"github.com/magnetlab/signal-pipeline/app/services"
	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/utils"
)

// LeadHandlerInterface defines the contract for lead handlers
type LeadHandlerInterface interface {
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	ListEvents(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// LeadHandler serves the dashboard's lead list and export endpoints
type LeadHandler struct {
	flow      businessflow.LeadFlow
	exporter  services.ExportService
	validator *validator.Validate
}

func NewLeadHandler(flow businessflow.LeadFlow, exporter services.ExportService) *LeadHandler {
	return &LeadHandler{
		flow:      flow,
		exporter:  exporter,
		validator: validator.New(),
	}
}

func (h *LeadHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *LeadHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

func (h *LeadHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
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

func (h *LeadHandler) bindListRequest(c fiber.Ctx) (*dto.ListLeadsRequest, []string) {
	var req dto.ListLeadsRequest
	if err := c.Bind().Query(&req); err != nil {
		return nil, []string{err.Error()}
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return nil, validationErrors
	}
	return &req, nil
}

// List returns a filtered, paginated lead list
func (h *LeadHandler) List(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	req, validationErrors := h.bindListRequest(c)
	if validationErrors != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.flow.ListLeads(h.createRequestContext(c, "/api/v1/leads"), workspaceID, req)
	if err != nil {
		if businessflow.IsInvalidPage(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", nil)
		}
		log.Println("List leads failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list leads", "LEAD_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Leads retrieved", result)
}

// Get returns one lead
func (h *LeadHandler) Get(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	result, err := h.flow.GetLead(h.createRequestContext(c, "/api/v1/leads/:uuid"), workspaceID, c.Params("uuid"))
	if err != nil {
		if businessflow.IsLeadNotFound(err) || businessflow.IsLeadAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		log.Println("Get lead failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get lead", "LEAD_GET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Lead retrieved", result)
}

// ListEvents returns a lead's engagement timeline
func (h *LeadHandler) ListEvents(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	limit := fiber.Query(c, "limit", 100)
	result, err := h.flow.ListLeadEvents(h.createRequestContext(c, "/api/v1/leads/:uuid/events"), workspaceID, c.Params("uuid"), limit)
	if err != nil {
		if businessflow.IsLeadNotFound(err) || businessflow.IsLeadAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", "LEAD_NOT_FOUND", nil)
		}
		log.Println("List lead events failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list lead events", "EVENT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Events retrieved", result)
}

// Export streams the filtered lead list as an xlsx workbook
func (h *LeadHandler) Export(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	req, validationErrors := h.bindListRequest(c)
	if validationErrors != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	leads, err := h.flow.LeadsForExport(h.createRequestContext(c, "/api/v1/leads/export"), workspaceID, req)
	if err != nil {
		log.Println("Lead export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export leads", "LEAD_EXPORT_FAILED", nil)
	}

	buf, err := h.exporter.LeadsWorkbook(leads)
	if err != nil {
		log.Println("Lead workbook build failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build export", "LEAD_EXPORT_FAILED", nil)
	}

	filename := fmt.Sprintf("leads-%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}
