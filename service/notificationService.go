package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/klauspost/lctime"
	"github.com/rs/zerolog/log"
	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/txt"
	"github.com/sportmate/server/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type NotificationStore interface {
	InsertOne(ctx context.Context, notification *entity.Notification) (*entity.Notification, error)
	FindManyByUserID(ctx context.Context, userID primitive.ObjectID, pageNumber int) ([]*entity.Notification, error)
	CountUnreadByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, ID, userID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
}

// LivePublisher pushes a stored notification to the user's open streams.
type LivePublisher interface {
	Publish(userID primitive.ObjectID, notification *entity.Notification)
}

// PushSender delivers one push message to one device token.
type PushSender interface {
	Send(token, title, body string, data map[string]string) error
}

// NotificationService implements Emitter: it persists a notification record
// for the recipient, feeds the realtime hub, and mirrors the message to the
// user's devices. Everything here is best effort; a delivery failure is
// logged and swallowed, never surfaced to the workflow that emitted.
type NotificationService struct {
	notificationStore NotificationStore
	userStore         UserStore
	publisher         LivePublisher
	pushSender        PushSender
}

func NewNotificationService(notificationStore NotificationStore, userStore UserStore, publisher LivePublisher, pushSender PushSender) *NotificationService {
	return &NotificationService{
		notificationStore: notificationStore,
		userStore:         userStore,
		publisher:         publisher,
		pushSender:        pushSender,
	}
}

func (s *NotificationService) Emit(event string, payload Payload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.deliver(ctx, event, payload); err != nil {
			log.Error().Err(err).Str("event", event).Msg("notification delivery failed")
		}
	}()
}

// Directed at the other side of the transition: these go to the organizer or
// coach, everything else goes to the acting/affected user.
func recipientFor(event string, payload Payload) (primitive.ObjectID, bool) {
	switch event {
	case entity.NotificationParticipantJoined,
		entity.NotificationJoinRequestCreated,
		entity.NotificationBookingRequested:
		return payload.OrganizerID, true
	default:
		return payload.UserID, false
	}
}

func (s *NotificationService) deliver(ctx context.Context, event string, payload Payload) error {
	recipientID, aboutActor := recipientFor(event, payload)

	recipient, err := s.userStore.FindOneByID(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("find recipient: %w", err)
	}

	title := txt.Get("notification."+event+".title", recipient.Lang)
	body := txt.Get("notification."+event+".body", recipient.Lang)
	subject := s.subject(payload, recipient.Lang)

	if aboutActor {
		actorName := "Someone"
		if actor, err := s.userStore.FindOneByID(ctx, payload.UserID); err == nil {
			actorName = actor.Name
		}
		body = fmt.Sprintf(body, actorName, subject)
	} else {
		body = fmt.Sprintf(body, subject)
	}

	notification := &entity.Notification{
		UserID: recipientID,
		Type:   event,
		Title:  title,
		Body:   body,
	}
	if !payload.EventID.IsZero() {
		notification.RefType = "event"
		notification.RefID = payload.EventID
	} else if !payload.BookingID.IsZero() {
		notification.RefType = "booking"
		notification.RefID = payload.BookingID
	}

	notification, err = s.notificationStore.InsertOne(ctx, notification)
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	s.publisher.Publish(recipientID, notification)

	if !recipient.AllowsNotifications || len(recipient.PushTokens) == 0 {
		return nil
	}
	return s.push(recipient.PushTokens, notification)
}

// subject renders what the notification is about: the service title for
// bookings, otherwise the event title with its localized start time.
func (s *NotificationService) subject(payload Payload, lang string) string {
	if payload.ServiceTitle != "" {
		return payload.ServiceTitle
	}
	if payload.EventStartsAt.IsZero() {
		return payload.EventTitle
	}
	t, err := lctime.StrftimeLoc(util.IetfToIsoLangCode(lang), "%d %B, %H:%M", payload.EventStartsAt)
	if err != nil {
		return payload.EventTitle
	}
	return fmt.Sprintf("%s (%s)", payload.EventTitle, t)
}

func (s *NotificationService) push(tokens []string, notification *entity.Notification) error {
	data := map[string]string{
		"type":    notification.Type,
		"refType": notification.RefType,
		"refId":   notification.RefID.Hex(),
	}

	g := new(errgroup.Group)
	for _, token := range tokens {
		token := token
		g.Go(func() error {
			retrier := retry.NewRetrier(5, 100*time.Millisecond, time.Second)
			return retrier.Run(func() error {
				return s.pushSender.Send(token, notification.Title, notification.Body, data)
			})
		})
	}
	return g.Wait()
}

func (s *NotificationService) FindManyByUserID(ctx context.Context, userID primitive.ObjectID, pageNumber int) ([]*entity.Notification, error) {
	return s.notificationStore.FindManyByUserID(ctx, userID, pageNumber)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationStore.CountUnreadByUserID(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, ID, userID primitive.ObjectID) error {
	return s.notificationStore.MarkRead(ctx, ID, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.notificationStore.MarkAllRead(ctx, userID)
}
