package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ServiceStore interface {
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.SportService, error)
	FindManyActive(ctx context.Context, sport string) ([]*entity.SportService, error)
	FindManyByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]*entity.SportService, error)
	InsertOne(ctx context.Context, service *entity.SportService) (*entity.SportService, error)
}

// CatalogService manages the coach-service listings that bookings are made
// against.
type CatalogService struct {
	serviceStore ServiceStore
}

func NewCatalogService(serviceStore ServiceStore) *CatalogService {
	return &CatalogService{serviceStore: serviceStore}
}

type CreateServiceInput struct {
	Title       string
	Sport       string
	Description string
	PricePerHr  float64
	Currency    string
}

func (s *CatalogService) CreateService(ctx context.Context, coachID primitive.ObjectID, input CreateServiceInput) (*entity.SportService, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	if input.PricePerHr < 0 {
		return nil, errors.New("price cannot be negative")
	}
	if input.PricePerHr > 0 && input.Currency == "" {
		return nil, errors.New("priced services need a currency")
	}
	return s.serviceStore.InsertOne(ctx, &entity.SportService{
		CoachID:     coachID,
		Title:       input.Title,
		Sport:       input.Sport,
		Description: input.Description,
		PricePerHr:  input.PricePerHr,
		Currency:    input.Currency,
		Active:      true,
	})
}

func (s *CatalogService) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.SportService, error) {
	service, err := s.serviceStore.FindOneByID(ctx, ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find service: %w", err)
	}
	return service, nil
}

func (s *CatalogService) FindManyActive(ctx context.Context, sport string) ([]*entity.SportService, error) {
	return s.serviceStore.FindManyActive(ctx, sport)
}

func (s *CatalogService) FindManyByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]*entity.SportService, error) {
	return s.serviceStore.FindManyByCoachID(ctx, coachID)
}
