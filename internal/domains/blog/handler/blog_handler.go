package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"connect-digitals-backend/internal/domains/blog"
	"connect-digitals-backend/internal/shared/middleware"
	"connect-digitals-backend/internal/shared/response"
	"connect-digitals-backend/pkg/logger"
)

// BlogHandler handles HTTP requests for posts and comments.
type BlogHandler struct {
	service blog.Service
}

func NewBlogHandler(service blog.Service) *BlogHandler {
	return &BlogHandler{service: service}
}

func (h *BlogHandler) actor(c *gin.Context) (blog.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return blog.Actor{}, false
	}
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return blog.Actor{}, false
	}
	return blog.Actor{
		ID:   userID,
		Name: middleware.GetUserName(c),
		Role: role,
	}, true
}

// ========================================
// PUBLIC ENDPOINTS
// ========================================

// ListPublished handles GET /api/blog
func (h *BlogHandler) ListPublished(c *gin.Context) {
	var req blog.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	posts, total, err := h.service.ListPublished(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// The service filled in the effective page and limit.
	totalPages := (total + req.Limit - 1) / req.Limit
	response.SuccessWithMeta(c, http.StatusOK, posts, &response.Meta{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetFeatured handles GET /api/blog/featured
func (h *BlogHandler) GetFeatured(c *gin.Context) {
	posts, err := h.service.GetFeatured(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, posts)
}

// GetCategories handles GET /api/blog/categories
func (h *BlogHandler) GetCategories(c *gin.Context) {
	counts, err := h.service.GetCategories(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, counts)
}

// GetBySlug handles GET /api/blog/:slug
func (h *BlogHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	detail, err := h.service.GetPublishedBySlug(c.Request.Context(), slug)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}

// AddComment handles POST /api/blog/:id/comments
func (h *BlogHandler) AddComment(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	var req blog.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), postID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Comment submitted", comment)
}

// ========================================
// AUTHED ENDPOINTS
// ========================================

// CreatePost handles POST /api/blog
func (h *BlogHandler) CreatePost(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	var req blog.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), actor, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusCreated, "Post created", post)
}

// UpdatePost handles PUT /api/blog/:id
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	var req blog.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	post, err := h.service.UpdatePost(c.Request.Context(), actor, postID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Post updated", post)
}

// DeletePost handles DELETE /api/blog/:id
func (h *BlogHandler) DeletePost(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), actor, postID); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Post deleted", nil)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// AdminListPosts handles GET /api/admin/posts
func (h *BlogHandler) AdminListPosts(c *gin.Context) {
	var req blog.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	posts, total, err := h.service.AdminListPosts(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	totalPages := (total + req.Limit - 1) / req.Limit
	response.SuccessWithMeta(c, http.StatusOK, posts, &response.Meta{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// AdminGetPost handles GET /api/admin/posts/:id
func (h *BlogHandler) AdminGetPost(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	post, err := h.service.AdminGetPost(c.Request.Context(), postID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, post)
}

// ExportPosts handles GET /api/admin/posts/export
func (h *BlogHandler) ExportPosts(c *gin.Context) {
	var req blog.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	data, err := h.service.ExportPosts(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	filename := fmt.Sprintf("posts-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// UpdateStatus handles PUT /api/admin/posts/:id/status
func (h *BlogHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	var req blog.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	post, err := h.service.UpdatePostStatus(c.Request.Context(), actor, postID, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Post status updated", post)
}

// UpdateFeatured handles PUT /api/admin/posts/:id/featured
func (h *BlogHandler) UpdateFeatured(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid post ID")
		return
	}

	var req blog.UpdateFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.UpdatePostFeatured(c.Request.Context(), postID, req.IsFeatured); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Post featured flag updated", nil)
}

// ListComments handles GET /api/admin/comments
func (h *BlogHandler) ListComments(c *gin.Context) {
	var req blog.ListCommentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	comments, total, err := h.service.ListAllComments(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	totalPages := (total + req.Limit - 1) / req.Limit
	response.SuccessWithMeta(c, http.StatusOK, comments, &response.Meta{
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// ModerateComment handles PUT /api/admin/comments/:id
func (h *BlogHandler) ModerateComment(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid comment ID")
		return
	}

	var req blog.ModerateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.ModerateComment(c.Request.Context(), commentID, req.IsApproved); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Comment updated", nil)
}

// DeleteComment handles DELETE /api/admin/comments/:id
func (h *BlogHandler) DeleteComment(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid comment ID")
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), commentID); err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Comment deleted", nil)
}

// ========================================
// HELPERS
// ========================================

// handleError maps domain errors to HTTP responses.
func (h *BlogHandler) handleError(c *gin.Context, err error) {
	var vErrs validation.Errors
	if errors.As(err, &vErrs) {
		response.ValidationFailed(c, vErrs)
		return
	}

	switch {
	case errors.Is(err, blog.ErrNotPublished),
		errors.Is(err, blog.ErrInvalidStatus),
		errors.Is(err, blog.ErrInvalidCategory):
		response.BadRequest(c, err.Error())

	case errors.Is(err, blog.ErrNotOwner):
		response.Forbidden(c, err.Error())

	case errors.Is(err, blog.ErrPostNotFound),
		errors.Is(err, blog.ErrCommentNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, blog.ErrSlugConflict):
		response.Conflict(c, err.Error())

	default:
		logger.Error("blog handler: unexpected error", err)
		response.InternalServerError(c, "Internal server error")
	}
}
