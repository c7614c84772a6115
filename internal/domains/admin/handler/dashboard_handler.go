package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"connect-digitals-backend/internal/domains/admin"
	"connect-digitals-backend/internal/shared/response"
	"connect-digitals-backend/pkg/logger"
)

// DashboardHandler serves the admin dashboard aggregate.
type DashboardHandler struct {
	service admin.Service
}

func NewDashboardHandler(service admin.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// GetDashboard handles GET /api/admin/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		logger.Error("admin handler: load dashboard", err)
		response.InternalServerError(c, "Internal server error")
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}
