package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sportmate/server/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepository struct {
	mongoClient *mongo.Client
	dbName      string
}

func NewBookingRepository(mongoClient *mongo.Client, dbName string) *BookingRepository {
	return &BookingRepository{
		mongoClient: mongoClient,
		dbName:      dbName,
	}
}

func (r *BookingRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.dbName).Collection("bookings")
}

func (r *BookingRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.collection().FindOne(ctx, bson.M{"_id": ID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) FindManyByClientID(ctx context.Context, clientID primitive.ObjectID) ([]*entity.Booking, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

func (r *BookingRepository) FindManyByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]*entity.Booking, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

func (r *BookingRepository) find(ctx context.Context, m bson.M) ([]*entity.Booking, error) {
	cursor, err := r.collection().Find(ctx, m, options.Find().SetSort(bson.M{"startsAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*entity.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) InsertOne(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	res, err := r.collection().InsertOne(ctx, booking)
	if err != nil {
		return nil, err
	}
	booking.ID = res.InsertedID.(primitive.ObjectID)
	return booking, nil
}

// TransitionStatus moves a pending booking to a terminal status. The pending
// guard in the filter keeps decided bookings from flipping.
func (r *BookingRepository) TransitionStatus(ctx context.Context, ID primitive.ObjectID, to entity.BookingStatus) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.collection().FindOneAndUpdate(ctx,
		bson.M{"_id": ID, "status": entity.BookingPending},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
