package repository

import (
	"context"
	"time"

	"github.com/sportmate/server/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationsPageSize = 50

type NotificationRepository struct {
	mongoClient *mongo.Client
	dbName      string
}

func NewNotificationRepository(mongoClient *mongo.Client, dbName string) *NotificationRepository {
	return &NotificationRepository{
		mongoClient: mongoClient,
		dbName:      dbName,
	}
}

func (r *NotificationRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.dbName).Collection("notifications")
}

func (r *NotificationRepository) FindManyByUserID(ctx context.Context, userID primitive.ObjectID, pageNumber int) ([]*entity.Notification, error) {
	cursor, err := r.collection().Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.M{"createdAt": -1}).
			SetSkip(int64(pageNumber*notificationsPageSize)).
			SetLimit(notificationsPageSize),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []*entity.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *NotificationRepository) CountUnreadByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection().CountDocuments(ctx, bson.M{"userId": userID, "read": false})
}

func (r *NotificationRepository) InsertOne(ctx context.Context, notification *entity.Notification) (*entity.Notification, error) {
	notification.CreatedAt = time.Now().UTC()
	res, err := r.collection().InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}
	notification.ID = res.InsertedID.(primitive.ObjectID)
	return notification, nil
}

// MarkRead is scoped by user so one user cannot ack another's notification.
func (r *NotificationRepository) MarkRead(ctx context.Context, ID, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := r.collection().UpdateOne(ctx,
		bson.M{"_id": ID, "userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := r.collection().UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": now}},
	)
	return err
}
