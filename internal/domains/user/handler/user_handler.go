package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"connect-digitals-backend/internal/domains/user"
	"connect-digitals-backend/internal/shared/middleware"
	"connect-digitals-backend/internal/shared/response"
	"connect-digitals-backend/pkg/logger"
)

// UserHandler handles HTTP requests for accounts and auth.
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	userDTO, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated,
		"Account created. Please check your email to verify.", userDTO)
}

// Login handles POST /api/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

// VerifyEmail handles GET /api/auth/verify-email?token=...
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.BadRequest(c, "Missing verification token")
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), token); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Email verified", nil)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK,
		"If that email exists, a reset link has been sent", nil)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Password has been reset", nil)
}

// ChangePassword handles PUT /api/auth/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Password changed successfully", nil)
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// Me handles GET /api/auth/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	dto, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// UpdateProfile handles PUT /api/auth/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	dto, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Profile updated", dto)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListUsers handles GET /api/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req user.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req.SetDefaults()
	totalPages := (total + req.Limit - 1) / req.Limit
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetUser handles GET /api/admin/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	dto, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// UpdateUserRole handles PUT /api/admin/users/:id/role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	var req user.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	if err := h.service.UpdateUserRole(c.Request.Context(), actorID, userID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "User role updated", nil)
}

// UpdateUserStatus handles PUT /api/admin/users/:id/status
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	var req user.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.UpdateUserStatus(c.Request.Context(), actorID, userID, req); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "User status updated", nil)
}

// ========================================
// HELPERS
// ========================================

// handleError maps domain errors to HTTP responses.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		response.ValidationFailed(c, vErrs)
		return
	}

	switch {
	case errors.Is(err, user.ErrSamePassword),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrSelfRoleChange),
		errors.Is(err, user.ErrSelfDeactivate):
		response.BadRequest(c, err.Error())

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrUserInactive):
		response.Unauthorized(c, err.Error())

	case errors.Is(err, user.ErrForbidden):
		response.Forbidden(c, err.Error())

	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, user.ErrEmailAlreadyExists):
		response.Conflict(c, err.Error())

	case errors.Is(err, user.ErrInvalidToken):
		response.ErrorResponse(c, http.StatusGone, "TOKEN_EXPIRED", err.Error())

	case errors.Is(err, user.ErrTooManyAttempts):
		response.ErrorResponse(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", err.Error())

	default:
		logger.Error("user handler: unexpected error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
