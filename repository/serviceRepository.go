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

type ServiceRepository struct {
	mongoClient *mongo.Client
	dbName      string
}

func NewServiceRepository(mongoClient *mongo.Client, dbName string) *ServiceRepository {
	return &ServiceRepository{
		mongoClient: mongoClient,
		dbName:      dbName,
	}
}

func (r *ServiceRepository) collection() *mongo.Collection {
	return r.mongoClient.Database(r.dbName).Collection("services")
}

func (r *ServiceRepository) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.SportService, error) {
	var service entity.SportService
	err := r.collection().FindOne(ctx, bson.M{"_id": ID}).Decode(&service)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) FindManyActive(ctx context.Context, sport string) ([]*entity.SportService, error) {
	m := bson.M{"active": true}
	if sport != "" {
		m["sport"] = sport
	}
	return r.find(ctx, m)
}

func (r *ServiceRepository) FindManyByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]*entity.SportService, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

func (r *ServiceRepository) find(ctx context.Context, m bson.M) ([]*entity.SportService, error) {
	cursor, err := r.collection().Find(ctx, m, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var services []*entity.SportService
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *ServiceRepository) InsertOne(ctx context.Context, service *entity.SportService) (*entity.SportService, error) {
	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now
	res, err := r.collection().InsertOne(ctx, service)
	if err != nil {
		return nil, err
	}
	service.ID = res.InsertedID.(primitive.ObjectID)
	return service, nil
}
