package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/magnetlab/signal-pipeline/app/dto"
	"github.com/magnetlab/signal-pipeline/app/services"
	"github.com/magnetlab/signal-pipeline/config"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	IssueToken(c fiber.Ctx) error
	RefreshToken(c fiber.Ctx) error
}

// AuthHandler exchanges workspace API keys for dashboard tokens
type AuthHandler struct {
	tokenService services.TokenService
	securityCfg  config.SecurityConfig
	jwtCfg       config.JWTConfig
	validator    *validator.Validate
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(tokenService services.TokenService, securityCfg config.SecurityConfig, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{
		tokenService: tokenService,
		securityCfg:  securityCfg,
		jwtCfg:       jwtCfg,
		validator:    validator.New(),
	}
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// IssueToken exchanges a workspace API key for a token pair
func (h *AuthHandler) IssueToken(c fiber.Ctx) error {
	var req dto.TokenRequest
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

	workspaceID, ok := h.resolveWorkspace(req.APIKey)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid API key", "INVALID_API_KEY", nil)
	}

	access, refresh, err := h.tokenService.GenerateTokens(workspaceID)
	if err != nil {
		log.Println("Token generation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue token", "TOKEN_ISSUE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Token issued", dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.jwtCfg.AccessTokenTTL.Seconds()),
	})
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *AuthHandler) RefreshToken(c fiber.Ctx) error {
	var req dto.RefreshTokenRequest
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

	access, refresh, err := h.tokenService.RefreshToken(req.RefreshToken)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid refresh token", "INVALID_REFRESH_TOKEN", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Token refreshed", dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.jwtCfg.AccessTokenTTL.Seconds()),
	})
}

// resolveWorkspace finds the workspace whose stored hash matches the key.
// The hash map holds a few entries per deployment, so trying each one is
// fine; bcrypt dominates the cost either way.
func (h *AuthHandler) resolveWorkspace(apiKey string) (int64, bool) {
	for workspaceID, hash := range h.securityCfg.APIKeyHashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey)) == nil {
			return workspaceID, true
		}
	}
	return 0, false
}
