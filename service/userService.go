package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sportmate/server/entity"
	"github.com/sportmate/server/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.User, error)
	FindOneByEmail(ctx context.Context, email string) (*entity.User, error)
	FindManyByIDs(ctx context.Context, IDs []primitive.ObjectID) ([]*entity.User, error)
	InsertOne(ctx context.Context, user *entity.User) (*entity.User, error)
	UpdateOne(ctx context.Context, user *entity.User) (*entity.User, error)
}

type UserService struct {
	userStore UserStore
}

func NewUserService(userStore UserStore) *UserService {
	return &UserService{userStore: userStore}
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, errors.New("name and email are required")
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	if _, err := s.userStore.FindOneByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.userStore.InsertOne(ctx, &entity.User{
		Name:                name,
		Email:               email,
		PasswordHash:        string(hash),
		Lang:                "en",
		AllowsNotifications: true,
	})
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userStore.FindOneByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) FindOneByID(ctx context.Context, ID primitive.ObjectID) (*entity.User, error) {
	user, err := s.userStore.FindOneByID(ctx, ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

type UpdateProfileInput struct {
	Name                *string
	Lang                *string
	AllowsNotifications *bool
	PushTokens          []string
}

func (s *UserService) UpdateProfile(ctx context.Context, ID primitive.ObjectID, input UpdateProfileInput) (*entity.User, error) {
	user, err := s.FindOneByID(ctx, ID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Lang != nil {
		user.Lang = *input.Lang
	}
	if input.AllowsNotifications != nil {
		user.AllowsNotifications = *input.AllowsNotifications
	}
	if input.PushTokens != nil {
		user.PushTokens = input.PushTokens
	}
	return s.userStore.UpdateOne(ctx, user)
}
