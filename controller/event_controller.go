package controller

import (
	"net/http"
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/middleware"
	"github.com/sportmate/server/repository"
	"github.com/sportmate/server/service"
)

type EventController struct {
	EventService *service.EventService
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(t)
	})
	return d
}()

func (c *EventController) List(ctx *gin.Context) {
	var filter repository.EventFilter
	if err := queryDecoder.Decode(&filter, ctx.Request.URL.Query()); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", "invalid filter")
		return
	}

	events, err := c.EventService.Search(ctx.Request.Context(), filter)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": events})
}

func (c *EventController) Get(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	event, err := c.EventService.FindOneByID(ctx.Request.Context(), eventID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

type createEventRequest struct {
	Title            string             `json:"title" binding:"required"`
	Sport            string             `json:"sport" binding:"required"`
	Description      string             `json:"description"`
	Location         string             `json:"location"`
	StartsAt         time.Time          `json:"startsAt" binding:"required"`
	Status           entity.EventStatus `json:"status"`
	RequiresApproval bool               `json:"requiresApproval"`
	Pricing          entity.Pricing     `json:"pricing"`
	MaxCapacity      int                `json:"maxCapacity" binding:"required,min=1"`
}

func (c *EventController) Create(ctx *gin.Context) {
	var req createEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	event, err := c.EventService.CreateEvent(ctx.Request.Context(), middleware.UserID(ctx), service.CreateEventInput{
		Title:            req.Title,
		Sport:            req.Sport,
		Description:      req.Description,
		Location:         req.Location,
		StartsAt:         req.StartsAt,
		Status:           req.Status,
		RequiresApproval: req.RequiresApproval,
		Pricing:          req.Pricing,
		MaxCapacity:      req.MaxCapacity,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": event})
}

type updateEventRequest struct {
	Title            *string             `json:"title"`
	Sport            *string             `json:"sport"`
	Description      *string             `json:"description"`
	Location         *string             `json:"location"`
	StartsAt         *time.Time          `json:"startsAt"`
	Status           *entity.EventStatus `json:"status"`
	RequiresApproval *bool               `json:"requiresApproval"`
	Pricing          *entity.Pricing     `json:"pricing"`
	MaxCapacity      *int                `json:"maxCapacity"`
}

func (c *EventController) Update(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	var req updateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	event, err := c.EventService.UpdateEvent(ctx.Request.Context(), eventID, middleware.UserID(ctx), service.UpdateEventInput{
		Title:            req.Title,
		Sport:            req.Sport,
		Description:      req.Description,
		Location:         req.Location,
		StartsAt:         req.StartsAt,
		Status:           req.Status,
		RequiresApproval: req.RequiresApproval,
		Pricing:          req.Pricing,
		MaxCapacity:      req.MaxCapacity,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

func (c *EventController) Delete(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.EventService.DeleteEvent(ctx.Request.Context(), eventID, middleware.UserID(ctx)); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

type joinRequest struct {
	TransactionCode string `json:"transactionCode"`
}

func (c *EventController) Join(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	var req joinRequest
	_ = ctx.ShouldBindJSON(&req)

	outcome, err := c.EventService.AttemptJoin(ctx.Request.Context(), eventID, middleware.UserID(ctx), req.TransactionCode)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"result":  outcome.Result,
		"event":   outcome.Event,
		"request": outcome.Request,
	})
}

func (c *EventController) Leave(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	event, err := c.EventService.Leave(ctx.Request.Context(), eventID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

func (c *EventController) JoinWaitlist(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	event, err := c.EventService.JoinWaitlist(ctx.Request.Context(), eventID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

func (c *EventController) LeaveWaitlist(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	event, err := c.EventService.LeaveWaitlist(ctx.Request.Context(), eventID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

func (c *EventController) ApproveRequest(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	requestID, ok := objectIDParam(ctx, "requestId")
	if !ok {
		return
	}
	event, err := c.EventService.ApproveRequest(ctx.Request.Context(), eventID, requestID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

func (c *EventController) RejectRequest(ctx *gin.Context) {
	eventID, ok := objectIDParam(ctx, "id")
	if !ok {
		return
	}
	requestID, ok := objectIDParam(ctx, "requestId")
	if !ok {
		return
	}
	event, err := c.EventService.RejectRequest(ctx.Request.Context(), eventID, requestID, middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": event})
}

// MyJoinRequests lists requests the authenticated user has filed.
func (c *EventController) MyJoinRequests(ctx *gin.Context) {
	requests, err := c.EventService.FindRequestsByUserID(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": requests})
}

// MyEventsRequests lists pending requests on events the user organizes.
func (c *EventController) MyEventsRequests(ctx *gin.Context) {
	requests, err := c.EventService.FindPendingRequestsByOrganizerID(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": requests})
}
