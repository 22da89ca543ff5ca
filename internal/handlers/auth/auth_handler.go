// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"crm-service/internal/domain/user"
	"crm-service/internal/middleware"
	xerrors "crm-service/internal/pkg/errors"
	"crm-service/internal/pkg/response"
	authUsecase "crm-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// Register handles user registration (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		status := xerrors.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("registration failed",
				zap.String("email", req.Email),
				zap.Error(err),
			)
			err = xerrors.ErrInternal
		}
		response.Error(c, status, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", resp)
}

// ========== Login ==========

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, authUsecase.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "login failed", err)
			return
		}
		h.logger.Error("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "login failed", xerrors.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, "login successful", resp)
}

// ========== Profile ==========

// Me returns the authenticated user (requires auth)
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", u)
}

// ListUsers lists staff accounts (admin only)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	var filters user.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, "users retrieved", users)
}
