package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
)

// UserService handles user-related business logic operations.
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService creates a new UserService with the provided repository dependencies.
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser stores a new user with a generated ID.
func (s *UserService) CreateUser(ctx context.Context, req request.CreateUserRequest) (*model.User, error) {
	user := &model.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.userRepo.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.GetUser(ctx, userID)
}

// GetUsers retrieves every user.
func (s *UserService) GetUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.GetUsers(ctx)
}
