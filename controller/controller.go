package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sportmate/server/repository"
	"github.com/sportmate/server/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func objectIDParam(ctx *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(name))
	if err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeError(ctx *gin.Context, status int, code, message string) {
	ctx.JSON(status, gin.H{"error": code, "message": message})
}

// respondServiceError maps the workflow error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a 500 with no detail leaked.
func respondServiceError(ctx *gin.Context, err error) {
	var paymentErr *service.PaymentRequiredError
	if errors.As(err, &paymentErr) {
		ctx.JSON(http.StatusPaymentRequired, gin.H{
			"error":    "payment_required",
			"message":  "this event is paid, provide a transaction code",
			"amount":   paymentErr.Amount,
			"currency": paymentErr.Currency,
			"display":  paymentErr.Display(requestLang(ctx)),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrServiceNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, repository.ErrNotFound):
		writeError(ctx, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(ctx, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrAlreadyJoined):
		writeError(ctx, http.StatusConflict, "already_joined", err.Error())
	case errors.Is(err, service.ErrDuplicateRequest):
		writeError(ctx, http.StatusConflict, "duplicate_request", err.Error())
	case errors.Is(err, service.ErrCapacityExceeded):
		writeError(ctx, http.StatusConflict, "capacity_exceeded", err.Error())
	case errors.Is(err, service.ErrAlreadyProcessed):
		writeError(ctx, http.StatusConflict, "already_processed", err.Error())
	case errors.Is(err, service.ErrNotAParticipant):
		writeError(ctx, http.StatusConflict, "not_a_participant", err.Error())
	case errors.Is(err, service.ErrAlreadyWaitlisted):
		writeError(ctx, http.StatusConflict, "already_waitlisted", err.Error())
	case errors.Is(err, service.ErrNotWaitlisted):
		writeError(ctx, http.StatusConflict, "not_waitlisted", err.Error())
	case errors.Is(err, service.ErrEventNotFull):
		writeError(ctx, http.StatusConflict, "event_not_full", err.Error())
	case errors.Is(err, service.ErrApprovalRequired):
		writeError(ctx, http.StatusConflict, "approval_required", err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		writeError(ctx, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(ctx, http.StatusUnauthorized, "invalid_credentials", err.Error())
	default:
		log.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("request failed")
		writeError(ctx, http.StatusInternalServerError, "internal", "internal error")
	}
}

func requestLang(ctx *gin.Context) string {
	lang := ctx.GetHeader("Accept-Language")
	if i := strings.IndexAny(lang, ",;"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" {
		return "en"
	}
	return lang
}
