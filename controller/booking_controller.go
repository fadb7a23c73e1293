package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sportmate/server/middleware"
	"github.com/sportmate/server/service"
)

type BookingController struct {
	CatalogService *service.CatalogService
	BookingService *service.BookingService
}

type createServiceRequest struct {
	Title       string  `json:"title" binding:"required"`
	Sport       string  `json:"sport" binding:"required"`
	Description string  `json:"description"`
	PricePerHr  float64 `json:"pricePerHour" binding:"min=0"`
	Currency    string  `json:"currency"`
}

func (c *BookingController) CreateService(ctx *gin.Context) {
	var req createServiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	created, err := c.CatalogService.CreateService(ctx.Request.Context(), middleware.UserID(ctx), service.CreateServiceInput{
		Title:       req.Title,
		Sport:       req.Sport,
		Description: req.Description,
		PricePerHr:  req.PricePerHr,
		Currency:    req.Currency,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": created})
}

func (c *BookingController) ListServices(ctx *gin.Context) {
	services, err := c.CatalogService.FindManyActive(ctx.Request.Context(), ctx.Query("sport"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": services})
}

func (c *BookingController) GetService(ctx *gin.Context) {
	serviceID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	found, err := c.CatalogService.FindOneByID(ctx.Request.Context(), serviceID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": found})
}

type bookRequest struct {
	StartsAt time.Time `json:"startsAt" binding:"required"`
	Hours    int       `json:"hours" binding:"required,min=1"`
}

func (c *BookingController) Book(ctx *gin.Context) {
	serviceID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	var req bookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	booking, err := c.BookingService.Book(ctx.Request.Context(), serviceID, middleware.UserID(ctx), req.StartsAt, req.Hours)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": booking})
}

func (c *BookingController) Confirm(ctx *gin.Context) {
	bookingID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	booking, err := c.BookingService.Confirm(ctx.Request.Context(), bookingID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

func (c *BookingController) Decline(ctx *gin.Context) {
	bookingID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	booking, err := c.BookingService.Decline(ctx.Request.Context(), bookingID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

func (c *BookingController) Cancel(ctx *gin.Context) {
	bookingID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	booking, err := c.BookingService.Cancel(ctx.Request.Context(), bookingID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": booking})
}

func (c *BookingController) ListBookings(ctx *gin.Context) {
	bookings, err := c.BookingService.FindManyByUserID(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": bookings})
}
