package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/magnetlab/signal-pipeline/app/dto"
	businessflow "github.com/magnetlab/signal-pipeline/business_flow"
	"github.com/magnetlab/signal-pipeline/utils"
)

// ICPFilterHandlerInterface defines the contract for ICP filter handlers
type ICPFilterHandlerInterface interface {
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
}

// ICPFilterHandler manages the workspace ICP filter set
type ICPFilterHandler struct {
	flow      businessflow.ICPFiltersFlow
	validator *validator.Validate
}

func NewICPFilterHandler(flow businessflow.ICPFiltersFlow) *ICPFilterHandler {
	return &ICPFilterHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ICPFilterHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *ICPFilterHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

func (h *ICPFilterHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
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

// Get returns the workspace's current ICP filters
func (h *ICPFilterHandler) Get(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	result, err := h.flow.GetFilters(h.createRequestContext(c, "/api/v1/icp-filters"), workspaceID)
	if err != nil {
		log.Println("Get ICP filters failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get ICP filters", "ICP_FILTER_GET_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "ICP filters retrieved", result)
}

// Update replaces the workspace's ICP filters
func (h *ICPFilterHandler) Update(c fiber.Ctx) error {
	workspaceID, ok := workspaceFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Workspace not resolved", "WORKSPACE_NOT_RESOLVED", nil)
	}

	var req dto.UpdateICPFiltersRequest
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
	result, err := h.flow.UpdateFilters(h.createRequestContext(c, "/api/v1/icp-filters"), workspaceID, &req, metadata)
	if err != nil {
		if businessflow.IsCompanySizeInverted(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Company size min cannot exceed max", "COMPANY_SIZE_INVERTED", nil)
		}
		if businessflow.IsInvalidSeniority(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid seniority level", "INVALID_SENIORITY", nil)
		}
		log.Println("Update ICP filters failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update ICP filters", "ICP_FILTER_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "ICP filters updated", result)
}
