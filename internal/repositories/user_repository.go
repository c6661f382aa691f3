package repositories

import (
	"context"

	"crudapi/internal/models"
)

// UserRepository defines the interface for user data access.
// Lookups return ErrRecordNotFound when nothing matches.
type UserRepository interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user together with every address it owns.
	Delete(ctx context.Context, id uint) error
}
