package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"connect-digitals-backend/internal/domains/contact"
	"connect-digitals-backend/internal/shared"
	"connect-digitals-backend/internal/shared/response"
	"connect-digitals-backend/pkg/logger"
)

// ContactEnqueuer hands the submission off to the background worker.
type ContactEnqueuer interface {
	EnqueueContactMessage(payload shared.ContactMessagePayload) error
}

// ContactHandler accepts public contact form submissions.
type ContactHandler struct {
	enqueuer ContactEnqueuer
}

func NewContactHandler(enqueuer ContactEnqueuer) *ContactHandler {
	return &ContactHandler{enqueuer: enqueuer}
}

// SubmitMessage handles POST /api/contact
func (h *ContactHandler) SubmitMessage(c *gin.Context) {
	var req contact.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.ValidationFailed(c, err)
		return
	}

	err := h.enqueuer.EnqueueContactMessage(shared.ContactMessagePayload{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		logger.Error("contact handler: enqueue message", err)
		response.InternalServerError(c, "Could not submit message, please try again later")
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, "Message received, we will get back to you soon", nil)
}
