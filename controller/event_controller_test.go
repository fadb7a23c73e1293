package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/middleware"
	"github.com/sportmate/server/repository"
	"github.com/sportmate/server/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubEventStore serves a single event; only the methods the join endpoint
// touches are implemented.
type stubEventStore struct {
	service.EventStore
	event *entity.Event
}

func (s *stubEventStore) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.Event, error) {
	if s.event == nil || s.event.ID != ID {
		return nil, repository.ErrNotFound
	}
	clone := *s.event
	return &clone, nil
}

func (s *stubEventStore) AdmitParticipant(_ context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	if s.event == nil || s.event.ID != eventID || s.event.HasParticipant(userID) || s.event.IsFull() {
		return nil, repository.ErrNotFound
	}
	s.event.ParticipantIDs = append(s.event.ParticipantIDs, userID)
	s.event.Capacity.Current++
	clone := *s.event
	return &clone, nil
}

var testSecret = []byte("controller-test-secret")

func joinRouter(store service.EventStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	controller := &EventController{
		EventService: service.NewEventService(store, service.NopEmitter{}),
	}
	r := gin.New()
	r.POST("/events/:id/join", middleware.Auth(testSecret), controller.Join)
	return r
}

func doJoin(t *testing.T, r *gin.Engine, eventID primitive.ObjectID, body, acceptLanguage string) *httptest.ResponseRecorder {
	t.Helper()

	token, err := middleware.GenerateToken(primitive.NewObjectID(), testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/events/"+eventID.Hex()+"/join", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJoinResponds200(t *testing.T) {
	event := &entity.Event{
		ID:       primitive.NewObjectID(),
		Title:    "Morning Run",
		Status:   entity.EventStatusPublished,
		Capacity: entity.Capacity{Max: 5},
	}
	r := joinRouter(&stubEventStore{event: event})

	w := doJoin(t, r, event.ID, `{}`, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result string `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "joined", body.Result)
}

func TestJoinRespondsPaymentRequired(t *testing.T) {
	event := &entity.Event{
		ID:       primitive.NewObjectID(),
		Title:    "Padel Clinic",
		Status:   entity.EventStatusPublished,
		Pricing:  entity.Pricing{Type: entity.PricingPaid, Amount: 15, Currency: "USD"},
		Capacity: entity.Capacity{Max: 5},
	}
	r := joinRouter(&stubEventStore{event: event})

	w := doJoin(t, r, event.ID, `{}`, "en-US,en;q=0.9")
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var body struct {
		Error    string  `json:"error"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		Display  string  `json:"display"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "payment_required", body.Error)
	assert.Equal(t, 15.0, body.Amount)
	assert.Equal(t, "USD", body.Currency)
	assert.Equal(t, "$15.00", body.Display)
}

func TestJoinRespondsConflictWhenFull(t *testing.T) {
	event := &entity.Event{
		ID:             primitive.NewObjectID(),
		Title:          "Five-a-side",
		Status:         entity.EventStatusPublished,
		Capacity:       entity.Capacity{Current: 1, Max: 1},
		ParticipantIDs: []primitive.ObjectID{primitive.NewObjectID()},
	}
	r := joinRouter(&stubEventStore{event: event})

	w := doJoin(t, r, event.ID, `{}`, "")
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "capacity_exceeded", body.Error)
}

func TestJoinRespondsNotFound(t *testing.T) {
	r := joinRouter(&stubEventStore{})

	w := doJoin(t, r, primitive.NewObjectID(), `{}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJoinRejectsBadID(t *testing.T) {
	r := joinRouter(&stubEventStore{})

	token, err := middleware.GenerateToken(primitive.NewObjectID(), testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/events/not-an-id/join", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
