package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sportmate/server/middleware"
	"github.com/sportmate/server/service"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func (c *DashboardController) Get(ctx *gin.Context) {
	dashboard, err := c.DashboardService.Load(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": dashboard})
}
