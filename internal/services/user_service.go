package services

import (
	"context"
	"errors"
	"fmt"

	"crudapi/internal/models"
	"crudapi/internal/repositories"

	"github.com/sirupsen/logrus"
)

// CreateUserInput carries the fields of a new user. PasswordHash is empty
// for users created outside registration.
type CreateUserInput struct {
	Name         string
	Email        string
	Age          *int
	PasswordHash string
}

// UpdateUserInput is a partial update; nil fields keep their current value.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Age   *int
}

// UserService handles business logic related to users.
type UserService struct {
	repo   repositories.UserRepository
	events eventNotifier
}

// NewUserService creates a new UserService. publisher may be nil.
func NewUserService(repo repositories.UserRepository, publisher EventPublisher, log logrus.FieldLogger) *UserService {
	return &UserService{
		repo:   repo,
		events: eventNotifier{publisher: publisher, log: log},
	}
}

// GetAllUsers retrieves all users, newest first.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.FindAll(ctx)
}

// GetUserByID returns nil without an error when no user has the given id.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, nil
	}
	return user, err
}

// GetUserByEmail returns nil without an error when the email is unknown.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, nil
	}
	return user, err
}

// CreateUser persists a new user. Callers check email uniqueness first;
// a collision that slips past that check surfaces as ErrEmailAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Age:          in.Age,
		PasswordHash: in.PasswordHash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.events.notify(EventUserCreated, user)
	return user, nil
}

// UpdateUser applies the provided fields. It returns nil without side
// effects when the user does not exist.
func (s *UserService) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Age != nil {
		user.Age = in.Age
	}

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRecordNotFound):
			// Deleted between the lookup and the write.
			return nil, nil
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	s.events.notify(EventUserUpdated, user)
	return user, nil
}

// DeleteUser removes the user and its addresses. It reports false when the
// user does not exist.
func (s *UserService) DeleteUser(ctx context.Context, id uint) (bool, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil || user == nil {
		return false, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	s.events.notify(EventUserDeleted, map[string]interface{}{"id": id})
	return true, nil
}
