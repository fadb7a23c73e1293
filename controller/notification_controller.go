package controller

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sportmate/server/middleware"
	"github.com/sportmate/server/realtime"
	"github.com/sportmate/server/service"
)

type NotificationController struct {
	NotificationService *service.NotificationService
	Hub                 *realtime.Hub
}

func (c *NotificationController) List(ctx *gin.Context) {
	pageNumber, _ := strconv.Atoi(ctx.Query("page"))

	userID := middleware.UserID(ctx)
	notifications, err := c.NotificationService.FindManyByUserID(ctx.Request.Context(), userID, pageNumber)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	unread, err := c.NotificationService.CountUnread(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": notifications, "unread": unread})
}

// Stream holds an SSE connection open and forwards hub messages. A ping
// every 30s keeps proxies from reaping the idle connection.
func (c *NotificationController) Stream(ctx *gin.Context) {
	ch, cancel := c.Hub.Subscribe(middleware.UserID(ctx))
	defer cancel()

	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	ctx.Stream(func(w io.Writer) bool {
		select {
		case notification, ok := <-ch:
			if !ok {
				return false
			}
			ctx.SSEvent("notification", notification)
			return true
		case <-ticker.C:
			ctx.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}

func (c *NotificationController) MarkRead(ctx *gin.Context) {
	notificationID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	err := c.NotificationService.MarkRead(ctx.Request.Context(), notificationID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	if err := c.NotificationService.MarkAllRead(ctx.Request.Context(), middleware.UserID(ctx)); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
