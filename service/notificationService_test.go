package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*entity.User
}

func newFakeUserStore(users ...*entity.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[primitive.ObjectID]*entity.User)}
	for _, user := range users {
		if user.ID.IsZero() {
			user.ID = primitive.NewObjectID()
		}
		s.users[user.ID] = user
	}
	return s
}

func (s *fakeUserStore) FindOneByID(_ context.Context, ID primitive.ObjectID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *fakeUserStore) FindOneByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) FindManyByIDs(_ context.Context, IDs []primitive.ObjectID) ([]*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var users []*entity.User
	for _, ID := range IDs {
		if user, ok := s.users[ID]; ok {
			clone := *user
			users = append(users, &clone)
		}
	}
	return users, nil
}

func (s *fakeUserStore) InsertOne(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	clone := *user
	s.users[user.ID] = &clone
	return user, nil
}

func (s *fakeUserStore) UpdateOne(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	s.users[user.ID] = &clone
	return user, nil
}

type fakeNotificationStore struct {
	mu       sync.Mutex
	inserted []*entity.Notification
}

func (s *fakeNotificationStore) InsertOne(_ context.Context, notification *entity.Notification) (*entity.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	s.inserted = append(s.inserted, notification)
	return notification, nil
}

func (s *fakeNotificationStore) FindManyByUserID(context.Context, primitive.ObjectID, int) ([]*entity.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.Notification(nil), s.inserted...), nil
}

func (s *fakeNotificationStore) CountUnreadByUserID(context.Context, primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.inserted)), nil
}

func (s *fakeNotificationStore) MarkRead(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}

func (s *fakeNotificationStore) MarkAllRead(context.Context, primitive.ObjectID) error {
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published map[primitive.ObjectID][]*entity.Notification
}

func (p *fakePublisher) Publish(userID primitive.ObjectID, notification *entity.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.published == nil {
		p.published = make(map[primitive.ObjectID][]*entity.Notification)
	}
	p.published[userID] = append(p.published[userID], notification)
}

type fakePushSender struct {
	mu     sync.Mutex
	tokens []string
	fails  int
}

func (p *fakePushSender) Send(token, _, _ string, _ map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fails > 0 {
		p.fails--
		return errors.New("push gateway unavailable")
	}
	p.tokens = append(p.tokens, token)
	return nil
}

func TestDeliverRoutesToOrganizer(t *testing.T) {
	organizer := &entity.User{Name: "Olha", Lang: "en", AllowsNotifications: true, PushTokens: []string{"ExponentPushToken[abc]"}}
	actor := &entity.User{Name: "Marko", Lang: "en"}
	users := newFakeUserStore(organizer, actor)

	store := &fakeNotificationStore{}
	publisher := &fakePublisher{}
	sender := &fakePushSender{}
	s := NewNotificationService(store, users, publisher, sender)

	eventID := primitive.NewObjectID()
	err := s.deliver(context.Background(), entity.NotificationParticipantJoined, Payload{
		EventID:       eventID,
		EventTitle:    "Morning Run",
		EventStartsAt: time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC),
		OrganizerID:   organizer.ID,
		UserID:        actor.ID,
	})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	stored := store.inserted[0]
	assert.Equal(t, organizer.ID, stored.UserID)
	assert.Equal(t, entity.NotificationParticipantJoined, stored.Type)
	assert.Contains(t, stored.Body, "Marko")
	assert.Contains(t, stored.Body, "Morning Run")
	assert.Equal(t, "event", stored.RefType)
	assert.Equal(t, eventID, stored.RefID)

	assert.Len(t, publisher.published[organizer.ID], 1)
	assert.Equal(t, []string{"ExponentPushToken[abc]"}, sender.tokens)
}

func TestDeliverRoutesToAffectedUser(t *testing.T) {
	user := &entity.User{Name: "Ira", Lang: "en"}
	users := newFakeUserStore(user)

	store := &fakeNotificationStore{}
	s := NewNotificationService(store, users, &fakePublisher{}, &fakePushSender{})

	err := s.deliver(context.Background(), entity.NotificationJoinRequestApproved, Payload{
		EventID:     primitive.NewObjectID(),
		EventTitle:  "Padel Doubles",
		OrganizerID: primitive.NewObjectID(),
		UserID:      user.ID,
	})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, user.ID, store.inserted[0].UserID)
	assert.Contains(t, store.inserted[0].Body, "Padel Doubles")
}

func TestDeliverSkipsPushWhenOptedOut(t *testing.T) {
	user := &entity.User{Name: "Ira", Lang: "en", AllowsNotifications: false, PushTokens: []string{"ExponentPushToken[x]"}}
	users := newFakeUserStore(user)

	sender := &fakePushSender{}
	s := NewNotificationService(&fakeNotificationStore{}, users, &fakePublisher{}, sender)

	err := s.deliver(context.Background(), entity.NotificationWaitlistPromoted, Payload{
		EventID:    primitive.NewObjectID(),
		EventTitle: "Evening Yoga",
		UserID:     user.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, sender.tokens)
}

func TestDeliverRetriesPush(t *testing.T) {
	user := &entity.User{Name: "Ira", Lang: "en", AllowsNotifications: true, PushTokens: []string{"ExponentPushToken[x]"}}
	users := newFakeUserStore(user)

	sender := &fakePushSender{fails: 2}
	s := NewNotificationService(&fakeNotificationStore{}, users, &fakePublisher{}, sender)

	err := s.deliver(context.Background(), entity.NotificationWaitlistPromoted, Payload{
		EventID:    primitive.NewObjectID(),
		EventTitle: "Evening Yoga",
		UserID:     user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[x]"}, sender.tokens)
}

func TestDeliverBookingReference(t *testing.T) {
	coach := &entity.User{Name: "Coach", Lang: "en"}
	client := &entity.User{Name: "Client", Lang: "en"}
	users := newFakeUserStore(coach, client)

	store := &fakeNotificationStore{}
	s := NewNotificationService(store, users, &fakePublisher{}, &fakePushSender{})

	bookingID := primitive.NewObjectID()
	err := s.deliver(context.Background(), entity.NotificationBookingRequested, Payload{
		BookingID:    bookingID,
		ServiceTitle: "Tennis Lesson",
		OrganizerID:  coach.ID,
		UserID:       client.ID,
	})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	stored := store.inserted[0]
	assert.Equal(t, coach.ID, stored.UserID)
	assert.Equal(t, "booking", stored.RefType)
	assert.Equal(t, bookingID, stored.RefID)
	assert.Contains(t, stored.Body, "Tennis Lesson")
}
