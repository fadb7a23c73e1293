package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"
	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

// EventStore is the persistence surface the join workflow runs against. The
// guarded mutators (Admit…, Append…, Approve…, Remove…) restate their
// preconditions in the underlying document filter and return
// repository.ErrNotFound when the document no longer matches, so every
// admission is a compare-and-swap rather than a read-modify-write.
type EventStore interface {
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Event, error)
	FindManyPublished(ctx context.Context, filter repository.EventFilter) ([]*entity.Event, error)
	FindManyByOrganizerID(ctx context.Context, organizerID primitive.ObjectID) ([]*entity.Event, error)
	FindManyByParticipantID(ctx context.Context, userID primitive.ObjectID) ([]*entity.Event, error)
	FindManyWithRequestsByUserID(ctx context.Context, userID primitive.ObjectID) ([]*entity.Event, error)
	FindManyWithPendingRequestsByOrganizerID(ctx context.Context, organizerID primitive.ObjectID) ([]*entity.Event, error)
	InsertOne(ctx context.Context, event *entity.Event) (*entity.Event, error)
	UpdateOne(ctx context.Context, event *entity.Event) (*entity.Event, error)
	DeleteOne(ctx context.Context, ID primitive.ObjectID) error

	AdmitParticipant(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error)
	AppendJoinRequest(ctx context.Context, eventID primitive.ObjectID, request *entity.JoinRequest) (*entity.Event, error)
	ApproveJoinRequest(ctx context.Context, eventID, requestID, userID primitive.ObjectID) (*entity.Event, error)
	RejectJoinRequest(ctx context.Context, eventID, requestID primitive.ObjectID) (*entity.Event, error)
	RemoveParticipantAndPromote(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error)
	AppendToWaitlist(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error)
	RemoveFromWaitlist(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error)
}

type EventService struct {
	eventStore EventStore
	emitter    Emitter
}

func NewEventService(eventStore EventStore, emitter Emitter) *EventService {
	return &EventService{
		eventStore: eventStore,
		emitter:    emitter,
	}
}

type JoinResult string

const (
	Joined          JoinResult = "joined"
	PendingApproval JoinResult = "pending_approval"
)

type JoinOutcome struct {
	Result  JoinResult
	Event   *entity.Event
	Request *entity.JoinRequest
}

// AttemptJoin converts a join intent into immediate admission or a pending
// approval request. Precondition order: existence, membership, payment,
// capacity, duplicate request. Capacity is checked before the approval
// branch: a full event refuses new requests too.
func (s *EventService) AttemptJoin(ctx context.Context, eventID, userID primitive.ObjectID, transactionCode string) (*JoinOutcome, error) {
	event, err := s.findPublished(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := checkJoinPreconditions(event, userID, transactionCode); err != nil {
		return nil, err
	}

	if !event.RequiresApproval {
		updated, err := s.eventStore.AdmitParticipant(ctx, eventID, userID)
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race between the read and the swap. One re-read names
			// the precondition that now fails.
			return nil, s.classifyJoinMiss(ctx, eventID, userID, transactionCode)
		}
		if err != nil {
			return nil, fmt.Errorf("admit participant: %w", err)
		}

		s.emitter.Emit(entity.NotificationParticipantJoined, Payload{
			EventID:       updated.ID,
			EventTitle:    updated.Title,
			EventStartsAt: updated.StartsAt,
			OrganizerID:   updated.OrganizerID,
			UserID:        userID,
		})
		return &JoinOutcome{Result: Joined, Event: updated}, nil
	}

	code := transactionCode
	if code == "" {
		code = "FREE"
	}
	request := &entity.JoinRequest{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		TransactionCode: code,
		Status:          entity.JoinRequestPending,
		RequestedAt:     time.Now().UTC(),
	}

	updated, err := s.eventStore.AppendJoinRequest(ctx, eventID, request)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.classifyJoinMiss(ctx, eventID, userID, transactionCode)
	}
	if err != nil {
		return nil, fmt.Errorf("append join request: %w", err)
	}

	s.emitter.Emit(entity.NotificationJoinRequestCreated, Payload{
		EventID:       updated.ID,
		EventTitle:    updated.Title,
		EventStartsAt: updated.StartsAt,
		OrganizerID:   updated.OrganizerID,
		UserID:        userID,
	})
	return &JoinOutcome{Result: PendingApproval, Event: updated, Request: request}, nil
}

func checkJoinPreconditions(event *entity.Event, userID primitive.ObjectID, transactionCode string) error {
	if event.HasParticipant(userID) {
		return ErrAlreadyJoined
	}
	if event.IsPaid() && transactionCode == "" {
		return &PaymentRequiredError{
			Amount:   event.Pricing.Amount,
			Currency: event.Pricing.Currency,
		}
	}
	if event.IsFull() {
		return ErrCapacityExceeded
	}
	if event.RequiresApproval && event.PendingRequestFor(userID) != nil {
		return ErrDuplicateRequest
	}
	return nil
}

func (s *EventService) classifyJoinMiss(ctx context.Context, eventID, userID primitive.ObjectID, transactionCode string) error {
	event, err := s.findPublished(ctx, eventID)
	if err != nil {
		return err
	}
	if err := checkJoinPreconditions(event, userID, transactionCode); err != nil {
		return err
	}
	// The document changed again between the swap and this read; the only
	// guard that can flap without tripping a check above is capacity.
	return ErrCapacityExceeded
}

// ApproveRequest admits the requester, unless the roster filled up since the
// request was made. Approval never overrides capacity.
func (s *EventService) ApproveRequest(ctx context.Context, eventID, requestID, approverID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return nil, err
	}
	request, err := checkDecisionPreconditions(event, requestID, approverID)
	if err != nil {
		return nil, err
	}
	if event.IsFull() {
		return nil, ErrCapacityExceeded
	}

	updated, err := s.eventStore.ApproveJoinRequest(ctx, eventID, requestID, request.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.classifyDecisionMiss(ctx, eventID, requestID, approverID)
	}
	if err != nil {
		return nil, fmt.Errorf("approve join request: %w", err)
	}

	s.emitter.Emit(entity.NotificationJoinRequestApproved, Payload{
		EventID:       updated.ID,
		EventTitle:    updated.Title,
		EventStartsAt: updated.StartsAt,
		OrganizerID:   updated.OrganizerID,
		UserID:        request.UserID,
	})
	return updated, nil
}

// RejectRequest transitions the request only; the roster is untouched.
func (s *EventService) RejectRequest(ctx context.Context, eventID, requestID, approverID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return nil, err
	}
	request, err := checkDecisionPreconditions(event, requestID, approverID)
	if err != nil {
		return nil, err
	}

	updated, err := s.eventStore.RejectJoinRequest(ctx, eventID, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.classifyDecisionMiss(ctx, eventID, requestID, approverID)
	}
	if err != nil {
		return nil, fmt.Errorf("reject join request: %w", err)
	}

	s.emitter.Emit(entity.NotificationJoinRequestRejected, Payload{
		EventID:       updated.ID,
		EventTitle:    updated.Title,
		EventStartsAt: updated.StartsAt,
		OrganizerID:   updated.OrganizerID,
		UserID:        request.UserID,
	})
	return updated, nil
}

func checkDecisionPreconditions(event *entity.Event, requestID, approverID primitive.ObjectID) (*entity.JoinRequest, error) {
	if event.OrganizerID != approverID {
		return nil, ErrForbidden
	}
	request := event.GetJoinRequest(requestID)
	if request == nil {
		return nil, ErrRequestNotFound
	}
	if request.Status != entity.JoinRequestPending {
		return nil, ErrAlreadyProcessed
	}
	return request, nil
}

func (s *EventService) classifyDecisionMiss(ctx context.Context, eventID, requestID, approverID primitive.ObjectID) error {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return err
	}
	if _, err := checkDecisionPreconditions(event, requestID, approverID); err != nil {
		return err
	}
	return ErrCapacityExceeded
}

// Leave removes the participant and unconditionally promotes the waitlist
// head into the freed slot, regardless of the approval gate.
func (s *EventService) Leave(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.HasParticipant(userID) {
		return nil, ErrNotAParticipant
	}

	updated, err := s.eventStore.RemoveParticipantAndPromote(ctx, eventID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotAParticipant
	}
	if err != nil {
		return nil, fmt.Errorf("remove participant: %w", err)
	}

	if len(event.Waitlist) > 0 && updated.HasParticipant(event.Waitlist[0]) {
		s.emitter.Emit(entity.NotificationWaitlistPromoted, Payload{
			EventID:       updated.ID,
			EventTitle:    updated.Title,
			EventStartsAt: updated.StartsAt,
			OrganizerID:   updated.OrganizerID,
			UserID:        event.Waitlist[0],
		})
	}
	return updated, nil
}

// JoinWaitlist queues the user behind a full immediate-admission event.
func (s *EventService) JoinWaitlist(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.findPublished(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := checkWaitlistPreconditions(event, userID); err != nil {
		return nil, err
	}

	updated, err := s.eventStore.AppendToWaitlist(ctx, eventID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		event, err := s.findPublished(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if err := checkWaitlistPreconditions(event, userID); err != nil {
			return nil, err
		}
		return nil, ErrEventNotFull
	}
	if err != nil {
		return nil, fmt.Errorf("append to waitlist: %w", err)
	}
	return updated, nil
}

func checkWaitlistPreconditions(event *entity.Event, userID primitive.ObjectID) error {
	if event.HasParticipant(userID) {
		return ErrAlreadyJoined
	}
	if event.IsWaitlisted(userID) {
		return ErrAlreadyWaitlisted
	}
	if event.RequiresApproval {
		return ErrApprovalRequired
	}
	if !event.IsFull() {
		return ErrEventNotFull
	}
	return nil
}

func (s *EventService) LeaveWaitlist(ctx context.Context, eventID, userID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsWaitlisted(userID) {
		return nil, ErrNotWaitlisted
	}

	updated, err := s.eventStore.RemoveFromWaitlist(ctx, eventID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotWaitlisted
	}
	if err != nil {
		return nil, fmt.Errorf("remove from waitlist: %w", err)
	}
	return updated, nil
}

type CreateEventInput struct {
	Title            string
	Sport            string
	Description      string
	Location         string
	StartsAt         time.Time
	Status           entity.EventStatus
	RequiresApproval bool
	Pricing          entity.Pricing
	MaxCapacity      int
}

func (s *EventService) CreateEvent(ctx context.Context, organizerID primitive.ObjectID, input CreateEventInput) (*entity.Event, error) {
	if err := validateEventInput(&input); err != nil {
		return nil, err
	}
	event := &entity.Event{
		OrganizerID:      organizerID,
		Title:            input.Title,
		Sport:            input.Sport,
		Description:      input.Description,
		Location:         input.Location,
		StartsAt:         input.StartsAt.UTC(),
		Status:           input.Status,
		RequiresApproval: input.RequiresApproval,
		Pricing:          input.Pricing,
		Capacity:         entity.Capacity{Current: 0, Max: input.MaxCapacity},
		ParticipantIDs:   []primitive.ObjectID{},
		Waitlist:         []primitive.ObjectID{},
		JoinRequests:     []*entity.JoinRequest{},
	}
	return s.eventStore.InsertOne(ctx, event)
}

func validateEventInput(input *CreateEventInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return errors.New("title is required")
	}
	if input.MaxCapacity < 1 {
		return errors.New("capacity must be positive")
	}
	if input.Status == "" {
		input.Status = entity.EventStatusDraft
	}
	if input.Status != entity.EventStatusDraft && input.Status != entity.EventStatusPublished {
		return fmt.Errorf("invalid status %q", input.Status)
	}
	if input.Pricing.Type == "" {
		input.Pricing.Type = entity.PricingFree
	}
	if input.Pricing.Type == entity.PricingPaid {
		if input.Pricing.Amount <= 0 {
			return errors.New("paid events need a positive amount")
		}
		if input.Pricing.Currency == "" {
			return errors.New("paid events need a currency")
		}
	}
	return nil
}

type UpdateEventInput struct {
	Title            *string
	Sport            *string
	Description      *string
	Location         *string
	StartsAt         *time.Time
	Status           *entity.EventStatus
	RequiresApproval *bool
	Pricing          *entity.Pricing
	MaxCapacity      *int
}

func (s *EventService) UpdateEvent(ctx context.Context, eventID, organizerID primitive.ObjectID, input UpdateEventInput) (*entity.Event, error) {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID {
		return nil, ErrForbidden
	}

	if input.Title != nil {
		event.Title = *input.Title
	}
	if input.Sport != nil {
		event.Sport = *input.Sport
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.StartsAt != nil {
		event.StartsAt = input.StartsAt.UTC()
	}
	if input.Status != nil {
		event.Status = *input.Status
	}
	if input.RequiresApproval != nil {
		event.RequiresApproval = *input.RequiresApproval
	}
	if input.Pricing != nil {
		event.Pricing = *input.Pricing
	}
	if input.MaxCapacity != nil {
		if *input.MaxCapacity < len(event.ParticipantIDs) {
			return nil, fmt.Errorf("capacity %d below current roster of %d", *input.MaxCapacity, len(event.ParticipantIDs))
		}
		event.Capacity.Max = *input.MaxCapacity
	}

	updated, err := s.eventStore.UpdateOne(ctx, event)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	return updated, err
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID, organizerID primitive.ObjectID) error {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != organizerID {
		return ErrForbidden
	}
	return s.eventStore.DeleteOne(ctx, eventID)
}

func (s *EventService) FindOneByID(ctx context.Context, eventID primitive.ObjectID) (*entity.Event, error) {
	return s.findOne(ctx, eventID)
}

// Search lists published events; with a query it re-ranks them by title
// similarity and drops poor matches.
func (s *EventService) Search(ctx context.Context, filter repository.EventFilter) ([]*entity.Event, error) {
	events, err := s.eventStore.FindManyPublished(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.Query == "" {
		return events, nil
	}
	return rankByTitle(events, filter.Query), nil
}

const searchSimilarityFloor = 0.55

func rankByTitle(events []*entity.Event, query string) []*entity.Event {
	query = strings.ToLower(query)

	scores := make(map[primitive.ObjectID]float32, len(events))
	var matched []*entity.Event
	for _, event := range events {
		title := strings.ToLower(event.Title)
		score, err := edlib.StringsSimilarity(query, title, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if strings.Contains(title, query) && score < 1 {
			score = 1
		}
		if score < searchSimilarityFloor {
			continue
		}
		scores[event.ID] = score
		matched = append(matched, event)
	}

	slices.SortStableFunc(matched, func(a, b *entity.Event) int {
		switch {
		case scores[a.ID] > scores[b.ID]:
			return -1
		case scores[a.ID] < scores[b.ID]:
			return 1
		default:
			return 0
		}
	})
	return matched
}

func (s *EventService) FindManyByOrganizerID(ctx context.Context, organizerID primitive.ObjectID) ([]*entity.Event, error) {
	return s.eventStore.FindManyByOrganizerID(ctx, organizerID)
}

func (s *EventService) FindManyByParticipantID(ctx context.Context, userID primitive.ObjectID) ([]*entity.Event, error) {
	return s.eventStore.FindManyByParticipantID(ctx, userID)
}

// UserJoinRequest is a join request paired with the event it belongs to.
type UserJoinRequest struct {
	EventID    primitive.ObjectID  `json:"eventId"`
	EventTitle string              `json:"eventTitle"`
	Request    *entity.JoinRequest `json:"request"`
}

// FindRequestsByUserID lists every request the user ever filed, newest first
// within each event.
func (s *EventService) FindRequestsByUserID(ctx context.Context, userID primitive.ObjectID) ([]*UserJoinRequest, error) {
	events, err := s.eventStore.FindManyWithRequestsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	var requests []*UserJoinRequest
	for _, event := range events {
		for _, request := range event.JoinRequests {
			if request.UserID == userID {
				requests = append(requests, &UserJoinRequest{
					EventID:    event.ID,
					EventTitle: event.Title,
					Request:    request,
				})
			}
		}
	}
	return requests, nil
}

// FindPendingRequestsByOrganizerID lists requests awaiting the organizer's
// decision across all their events.
func (s *EventService) FindPendingRequestsByOrganizerID(ctx context.Context, organizerID primitive.ObjectID) ([]*UserJoinRequest, error) {
	events, err := s.eventStore.FindManyWithPendingRequestsByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	var requests []*UserJoinRequest
	for _, event := range events {
		for _, request := range event.JoinRequests {
			if request.Status == entity.JoinRequestPending {
				requests = append(requests, &UserJoinRequest{
					EventID:    event.ID,
					EventTitle: event.Title,
					Request:    request,
				})
			}
		}
	}
	return requests, nil
}

func (s *EventService) findOne(ctx context.Context, eventID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.eventStore.FindOneByID(ctx, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return event, nil
}

// findPublished treats drafts and cancelled events as invisible to joiners.
func (s *EventService) findPublished(ctx context.Context, eventID primitive.ObjectID) (*entity.Event, error) {
	event, err := s.findOne(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != entity.EventStatusPublished {
		return nil, ErrEventNotFound
	}
	return event, nil
}
