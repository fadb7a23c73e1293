package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStore interface {
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Booking, error)
	FindManyByClientID(ctx context.Context, clientID primitive.ObjectID) ([]*entity.Booking, error)
	FindManyByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]*entity.Booking, error)
	InsertOne(ctx context.Context, booking *entity.Booking) (*entity.Booking, error)
	TransitionStatus(ctx context.Context, ID primitive.ObjectID, to entity.BookingStatus) (*entity.Booking, error)
}

// BookingService runs the coach-booking workflow:
// pending -> confirmed | declined (coach) or cancelled (client).
type BookingService struct {
	bookingStore BookingStore
	serviceStore ServiceStore
	emitter      Emitter
}

func NewBookingService(bookingStore BookingStore, serviceStore ServiceStore, emitter Emitter) *BookingService {
	return &BookingService{
		bookingStore: bookingStore,
		serviceStore: serviceStore,
		emitter:      emitter,
	}
}

func (s *BookingService) Book(ctx context.Context, serviceID, clientID primitive.ObjectID, startsAt time.Time, hours int) (*entity.Booking, error) {
	service, err := s.serviceStore.FindOneByID(ctx, serviceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find service: %w", err)
	}
	if !service.Active {
		return nil, ErrServiceNotFound
	}
	if service.CoachID == clientID {
		return nil, ErrForbidden
	}
	if hours < 1 {
		return nil, errors.New("booking must be at least one hour")
	}
	if startsAt.Before(time.Now()) {
		return nil, errors.New("booking must start in the future")
	}

	booking, err := s.bookingStore.InsertOne(ctx, &entity.Booking{
		ServiceID: service.ID,
		CoachID:   service.CoachID,
		ClientID:  clientID,
		Reference: uuid.NewString(),
		StartsAt:  startsAt.UTC(),
		Hours:     hours,
		Status:    entity.BookingPending,
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(entity.NotificationBookingRequested, Payload{
		BookingID:    booking.ID,
		ServiceTitle: service.Title,
		OrganizerID:  service.CoachID,
		UserID:       clientID,
	})
	return booking, nil
}

// Confirm is coach-only and valid on pending bookings.
func (s *BookingService) Confirm(ctx context.Context, bookingID, coachID primitive.ObjectID) (*entity.Booking, error) {
	return s.decide(ctx, bookingID, coachID, entity.BookingConfirmed, entity.NotificationBookingConfirmed)
}

func (s *BookingService) Decline(ctx context.Context, bookingID, coachID primitive.ObjectID) (*entity.Booking, error) {
	return s.decide(ctx, bookingID, coachID, entity.BookingDeclined, entity.NotificationBookingDeclined)
}

func (s *BookingService) decide(ctx context.Context, bookingID, coachID primitive.ObjectID, to entity.BookingStatus, notification string) (*entity.Booking, error) {
	booking, err := s.findOne(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CoachID != coachID {
		return nil, ErrForbidden
	}
	if booking.Status.Terminal() {
		return nil, ErrAlreadyProcessed
	}

	updated, err := s.bookingStore.TransitionStatus(ctx, bookingID, to)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("transition booking: %w", err)
	}

	service, err := s.serviceStore.FindOneByID(ctx, updated.ServiceID)
	serviceTitle := ""
	if err == nil {
		serviceTitle = service.Title
	}
	s.emitter.Emit(notification, Payload{
		BookingID:    updated.ID,
		ServiceTitle: serviceTitle,
		OrganizerID:  updated.CoachID,
		UserID:       updated.ClientID,
	})
	return updated, nil
}

// Cancel is client-only and valid while the booking is still pending.
func (s *BookingService) Cancel(ctx context.Context, bookingID, clientID primitive.ObjectID) (*entity.Booking, error) {
	booking, err := s.findOne(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != clientID {
		return nil, ErrForbidden
	}
	if booking.Status.Terminal() {
		return nil, ErrAlreadyProcessed
	}

	updated, err := s.bookingStore.TransitionStatus(ctx, bookingID, entity.BookingCancelled)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("transition booking: %w", err)
	}
	return updated, nil
}

// FindManyByUserID merges the user's bookings as client and as coach.
func (s *BookingService) FindManyByUserID(ctx context.Context, userID primitive.ObjectID) ([]*entity.Booking, error) {
	asClient, err := s.bookingStore.FindManyByClientID(ctx, userID)
	if err != nil {
		return nil, err
	}
	asCoach, err := s.bookingStore.FindManyByCoachID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(asClient, asCoach...), nil
}

func (s *BookingService) findOne(ctx context.Context, bookingID primitive.ObjectID) (*entity.Booking, error) {
	booking, err := s.bookingStore.FindOneByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return booking, nil
}
