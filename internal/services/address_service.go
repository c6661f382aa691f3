package services

import (
	"context"
	"errors"
	"fmt"

	"crudapi/internal/models"
	"crudapi/internal/repositories"

	"github.com/sirupsen/logrus"
)

// UserLookup is the slice of UserService the address logic depends on.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// CreateAddressInput carries the fields of a new address.
type CreateAddressInput struct {
	Street  string
	City    string
	ZipCode string
	Country string
	UserID  uint
}

// UpdateAddressInput is a partial update; nil fields keep their current
// value. The owner cannot be changed.
type UpdateAddressInput struct {
	Street  *string
	City    *string
	ZipCode *string
	Country *string
}

// AddressService handles business logic related to addresses.
type AddressService struct {
	repo   repositories.AddressRepository
	users  UserLookup
	events eventNotifier
}

// NewAddressService creates a new AddressService. publisher may be nil.
func NewAddressService(repo repositories.AddressRepository, users UserLookup, publisher EventPublisher, log logrus.FieldLogger) *AddressService {
	return &AddressService{
		repo:   repo,
		users:  users,
		events: eventNotifier{publisher: publisher, log: log},
	}
}

// GetAllAddresses retrieves all addresses with their owners.
func (s *AddressService) GetAllAddresses(ctx context.Context) ([]models.Address, error) {
	return s.repo.FindAll(ctx)
}

// GetAddressByID returns nil without an error when the address does not exist.
func (s *AddressService) GetAddressByID(ctx context.Context, id uint) (*models.Address, error) {
	address, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, nil
	}
	return address, err
}

// GetAddressesByUserID lists the addresses of a user. An unknown user
// simply has no addresses.
func (s *AddressService) GetAddressesByUserID(ctx context.Context, userID uint) ([]models.Address, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// CreateAddress persists a new address for an existing user. It returns
// ErrUserNotFound, and stores nothing, when the owner does not exist.
func (s *AddressService) CreateAddress(ctx context.Context, in CreateAddressInput) (*models.Address, error) {
	owner, err := s.users.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up address owner: %w", err)
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	address := &models.Address{
		Street:  in.Street,
		City:    in.City,
		ZipCode: in.ZipCode,
		Country: in.Country,
		UserID:  in.UserID,
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, err
	}

	s.events.notify(EventAddressCreated, address)
	return address, nil
}

// UpdateAddress applies the provided fields. It returns nil without side
// effects when the address does not exist.
func (s *AddressService) UpdateAddress(ctx context.Context, id uint, in UpdateAddressInput) (*models.Address, error) {
	address, err := s.GetAddressByID(ctx, id)
	if err != nil || address == nil {
		return nil, err
	}

	if in.Street != nil {
		address.Street = *in.Street
	}
	if in.City != nil {
		address.City = *in.City
	}
	if in.ZipCode != nil {
		address.ZipCode = *in.ZipCode
	}
	if in.Country != nil {
		address.Country = *in.Country
	}

	if err := s.repo.Update(ctx, address); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update address %d: %w", id, err)
	}

	s.events.notify(EventAddressUpdated, address)
	return address, nil
}

// DeleteAddress reports false when the address does not exist.
func (s *AddressService) DeleteAddress(ctx context.Context, id uint) (bool, error) {
	address, err := s.GetAddressByID(ctx, id)
	if err != nil || address == nil {
		return false, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete address %d: %w", id, err)
	}

	s.events.notify(EventAddressDeleted, map[string]interface{}{"id": id, "userId": address.UserID})
	return true, nil
}
