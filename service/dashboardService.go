package service

import (
	"context"

	"github.com/sportmate/server/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type Dashboard struct {
	JoinedEvents    []*entity.Event    `json:"joinedEvents"`
	OrganizedEvents []*entity.Event    `json:"organizedEvents"`
	MyRequests      []*UserJoinRequest `json:"myRequests"`
	PendingApproval []*UserJoinRequest `json:"pendingApproval"`
	Bookings        []*entity.Booking  `json:"bookings"`
	UnreadCount     int64              `json:"unreadCount"`
}

// DashboardService aggregates the home-screen view from the other services
// in parallel.
type DashboardService struct {
	eventService        *EventService
	bookingService      *BookingService
	notificationService *NotificationService
}

func NewDashboardService(eventService *EventService, bookingService *BookingService, notificationService *NotificationService) *DashboardService {
	return &DashboardService{
		eventService:        eventService,
		bookingService:      bookingService,
		notificationService: notificationService,
	}
}

func (s *DashboardService) Load(ctx context.Context, userID primitive.ObjectID) (*Dashboard, error) {
	var dashboard Dashboard

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		events, err := s.eventService.FindManyByParticipantID(ctx, userID)
		dashboard.JoinedEvents = events
		return err
	})
	g.Go(func() error {
		events, err := s.eventService.FindManyByOrganizerID(ctx, userID)
		dashboard.OrganizedEvents = events
		return err
	})
	g.Go(func() error {
		requests, err := s.eventService.FindRequestsByUserID(ctx, userID)
		dashboard.MyRequests = requests
		return err
	})
	g.Go(func() error {
		requests, err := s.eventService.FindPendingRequestsByOrganizerID(ctx, userID)
		dashboard.PendingApproval = requests
		return err
	})
	g.Go(func() error {
		bookings, err := s.bookingService.FindManyByUserID(ctx, userID)
		dashboard.Bookings = bookings
		return err
	})
	g.Go(func() error {
		count, err := s.notificationService.CountUnread(ctx, userID)
		dashboard.UnreadCount = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dashboard, nil
}
