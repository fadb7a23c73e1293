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

type UserRepository struct {
	mongoClient *mongo.Client
	dbName      string
}

func NewUserRepository(mongoClient *mongo.Client, dbName string) *UserRepository {
	return &UserRepository{
		mongoClient: mongoClient,
		dbName:      dbName,
	}
}

func (r *UserRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.dbName).Collection("users")
}

func (r *UserRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": ID})
}

func (r *UserRepository) FindOneByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, m bson.M) (*entity.User, error) {
	var user entity.User
	err := r.collection().FindOne(ctx, m).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindManyByIDs(ctx context.Context, IDs []primitive.ObjectID) ([]*entity.User, error) {
	cursor, err := r.collection().Find(ctx, bson.M{"_id": bson.M{"$in": IDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*entity.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) InsertOne(ctx context.Context, user *entity.User) (*entity.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	res, err := r.collection().InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (r *UserRepository) UpdateOne(ctx context.Context, user *entity.User) (*entity.User, error) {
	var updated entity.User
	err := r.collection().FindOneAndUpdate(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"name":                user.Name,
			"lang":                user.Lang,
			"allowsNotifications": user.AllowsNotifications,
			"pushTokens":          user.PushTokens,
			"updatedAt":           time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
