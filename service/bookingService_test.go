package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeServiceStore struct {
	mu       sync.Mutex
	services map[primitive.ObjectID]*entity.SportService
}

func newFakeServiceStore(services ...*entity.SportService) *fakeServiceStore {
	s := &fakeServiceStore{services: make(map[primitive.ObjectID]*entity.SportService)}
	for _, service := range services {
		if service.ID.IsZero() {
			service.ID = primitive.NewObjectID()
		}
		s.services[service.ID] = service
	}
	return s
}

func (s *fakeServiceStore) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.SportService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	service, ok := s.services[ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *service
	return &clone, nil
}

func (s *fakeServiceStore) FindManyActive(_ context.Context, sport string) ([]*entity.SportService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var services []*entity.SportService
	for _, service := range s.services {
		if service.Active && (sport == "" || service.Sport == sport) {
			clone := *service
			services = append(services, &clone)
		}
	}
	return services, nil
}

func (s *fakeServiceStore) FindManyByCoachID(_ context.Context, coachID primitive.ObjectID) ([]*entity.SportService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var services []*entity.SportService
	for _, service := range s.services {
		if service.CoachID == coachID {
			clone := *service
			services = append(services, &clone)
		}
	}
	return services, nil
}

func (s *fakeServiceStore) InsertOne(_ context.Context, service *entity.SportService) (*entity.SportService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	service.ID = primitive.NewObjectID()
	clone := *service
	s.services[service.ID] = &clone
	return service, nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*entity.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[primitive.ObjectID]*entity.Booking)}
}

func (s *fakeBookingStore) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *booking
	return &clone, nil
}

func (s *fakeBookingStore) FindManyByClientID(_ context.Context, clientID primitive.ObjectID) ([]*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bookings []*entity.Booking
	for _, booking := range s.bookings {
		if booking.ClientID == clientID {
			clone := *booking
			bookings = append(bookings, &clone)
		}
	}
	return bookings, nil
}

func (s *fakeBookingStore) FindManyByCoachID(_ context.Context, coachID primitive.ObjectID) ([]*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var bookings []*entity.Booking
	for _, booking := range s.bookings {
		if booking.CoachID == coachID {
			clone := *booking
			bookings = append(bookings, &clone)
		}
	}
	return bookings, nil
}

func (s *fakeBookingStore) InsertOne(_ context.Context, booking *entity.Booking) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking.ID = primitive.NewObjectID()
	clone := *booking
	s.bookings[booking.ID] = &clone
	return booking, nil
}

// TransitionStatus only swaps out of pending, like the guarded update in the
// Mongo repository.
func (s *fakeBookingStore) TransitionStatus(_ context.Context, ID primitive.ObjectID, to entity.BookingStatus) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[ID]
	if !ok || booking.Status != entity.BookingPending {
		return nil, repository.ErrNotFound
	}
	booking.Status = to
	clone := *booking
	return &clone, nil
}

func coachService(coachID primitive.ObjectID) *entity.SportService {
	return &entity.SportService{
		ID:         primitive.NewObjectID(),
		CoachID:    coachID,
		Title:      "Tennis Lesson",
		Sport:      "tennis",
		PricePerHr: 30,
		Currency:   "EUR",
		Active:     true,
	}
}

func TestBook(t *testing.T) {
	coach := primitive.NewObjectID()
	client := primitive.NewObjectID()
	service := coachService(coach)

	emitter := &recordingEmitter{}
	s := NewBookingService(newFakeBookingStore(), newFakeServiceStore(service), emitter)

	booking, err := s.Book(context.Background(), service.ID, client, time.Now().Add(48*time.Hour), 2)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingPending, booking.Status)
	assert.Equal(t, coach, booking.CoachID)
	assert.Equal(t, 2, booking.Hours)
	assert.NotEmpty(t, booking.Reference)

	name, payload := emitter.last()
	assert.Equal(t, entity.NotificationBookingRequested, name)
	assert.Equal(t, coach, payload.OrganizerID)
	assert.Equal(t, client, payload.UserID)
	assert.Equal(t, service.Title, payload.ServiceTitle)
}

func TestBookValidation(t *testing.T) {
	coach := primitive.NewObjectID()
	service := coachService(coach)
	inactive := coachService(primitive.NewObjectID())
	inactive.Active = false

	s := NewBookingService(newFakeBookingStore(), newFakeServiceStore(service, inactive), NopEmitter{})

	_, err := s.Book(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), time.Now().Add(time.Hour), 1)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = s.Book(context.Background(), inactive.ID, primitive.NewObjectID(), time.Now().Add(time.Hour), 1)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = s.Book(context.Background(), service.ID, coach, time.Now().Add(time.Hour), 1)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Book(context.Background(), service.ID, primitive.NewObjectID(), time.Now().Add(time.Hour), 0)
	assert.Error(t, err)

	_, err = s.Book(context.Background(), service.ID, primitive.NewObjectID(), time.Now().Add(-time.Hour), 1)
	assert.Error(t, err)
}

func TestConfirmAndDecline(t *testing.T) {
	coach := primitive.NewObjectID()
	client := primitive.NewObjectID()
	service := coachService(coach)

	emitter := &recordingEmitter{}
	s := NewBookingService(newFakeBookingStore(), newFakeServiceStore(service), emitter)

	booking, err := s.Book(context.Background(), service.ID, client, time.Now().Add(48*time.Hour), 1)
	require.NoError(t, err)

	_, err = s.Confirm(context.Background(), booking.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := s.Confirm(context.Background(), booking.ID, coach)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingConfirmed, confirmed.Status)

	name, payload := emitter.last()
	assert.Equal(t, entity.NotificationBookingConfirmed, name)
	assert.Equal(t, client, payload.UserID)

	_, err = s.Decline(context.Background(), booking.ID, coach)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestCancel(t *testing.T) {
	coach := primitive.NewObjectID()
	client := primitive.NewObjectID()
	service := coachService(coach)

	s := NewBookingService(newFakeBookingStore(), newFakeServiceStore(service), NopEmitter{})

	booking, err := s.Book(context.Background(), service.ID, client, time.Now().Add(48*time.Hour), 1)
	require.NoError(t, err)

	_, err = s.Cancel(context.Background(), booking.ID, coach)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := s.Cancel(context.Background(), booking.ID, client)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingCancelled, cancelled.Status)

	_, err = s.Cancel(context.Background(), booking.ID, client)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestFindManyByUserIDMergesRoles(t *testing.T) {
	coach := primitive.NewObjectID()
	client := primitive.NewObjectID()
	service := coachService(coach)
	otherService := coachService(primitive.NewObjectID())

	s := NewBookingService(newFakeBookingStore(), newFakeServiceStore(service, otherService), NopEmitter{})

	_, err := s.Book(context.Background(), service.ID, client, time.Now().Add(24*time.Hour), 1)
	require.NoError(t, err)
	_, err = s.Book(context.Background(), otherService.ID, coach, time.Now().Add(24*time.Hour), 1)
	require.NoError(t, err)

	bookings, err := s.FindManyByUserID(context.Background(), coach)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestCreateService(t *testing.T) {
	s := NewCatalogService(newFakeServiceStore())

	_, err := s.CreateService(context.Background(), primitive.NewObjectID(), CreateServiceInput{Title: "  "})
	assert.Error(t, err)

	_, err = s.CreateService(context.Background(), primitive.NewObjectID(), CreateServiceInput{Title: "Padel Clinic", PricePerHr: 25})
	assert.Error(t, err)

	service, err := s.CreateService(context.Background(), primitive.NewObjectID(), CreateServiceInput{
		Title:      "Padel Clinic",
		Sport:      "padel",
		PricePerHr: 25,
		Currency:   "EUR",
	})
	require.NoError(t, err)
	assert.True(t, service.Active)
}
