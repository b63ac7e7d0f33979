package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/middleware"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

// DashboardHandler serves the admin landing page rollup.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	dashboard, err := h.dashboardService.Get(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, dashboard, "")
}
