package repositories

import (
	"context"

	"crudapi/internal/models"
)

// AddressRepository defines the interface for address data access.
// Read methods populate Address.User with the owning user.
type AddressRepository interface {
	FindAll(ctx context.Context) ([]models.Address, error)
	FindByID(ctx context.Context, id uint) (*models.Address, error)
	FindByUserID(ctx context.Context, userID uint) ([]models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	// Update persists street, city, zipCode and country. The owner is immutable.
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, id uint) error
}
