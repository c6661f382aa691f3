package repositories

import (
	"context"

	"crudapi/internal/models"

	"gorm.io/gorm"
)

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{
		db: db,
	}
}

func (r *GORMAddressRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User")
}

// FindAll retrieves all addresses with their owners.
func (r *GORMAddressRepository) FindAll(ctx context.Context) ([]models.Address, error) {
	addresses := make([]models.Address, 0)
	if err := r.withOwner(ctx).Order("id ASC").Find(&addresses).Error; err != nil {
		return nil, translateError("failed to get all addresses", err)
	}
	return addresses, nil
}

// FindByID retrieves a single address with its owner.
func (r *GORMAddressRepository) FindByID(ctx context.Context, id uint) (*models.Address, error) {
	var address models.Address
	if err := r.withOwner(ctx).First(&address, "id = ?", id).Error; err != nil {
		return nil, translateError("failed to get address by id", err)
	}
	return &address, nil
}

// FindByUserID retrieves every address owned by userID.
func (r *GORMAddressRepository) FindByUserID(ctx context.Context, userID uint) ([]models.Address, error) {
	addresses := make([]models.Address, 0)
	err := r.withOwner(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, translateError("failed to get addresses by user id", err)
	}
	return addresses, nil
}

// Create inserts a new address. The owner must already exist.
func (r *GORMAddressRepository) Create(ctx context.Context, address *models.Address) error {
	// Omit the association so a populated User is never upserted.
	if err := r.db.WithContext(ctx).Omit("User").Create(address).Error; err != nil {
		return translateError("failed to create address", err)
	}
	return nil
}

// Update writes the mutable columns of an existing address.
func (r *GORMAddressRepository) Update(ctx context.Context, address *models.Address) error {
	res := r.db.WithContext(ctx).
		Model(address).
		Select("Street", "City", "ZipCode", "Country", "UpdatedAt").
		Omit("User").
		Updates(address)
	if res.Error != nil {
		return translateError("failed to update address", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes an address by its ID.
func (r *GORMAddressRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Address{}, "id = ?", id)
	if res.Error != nil {
		return translateError("failed to delete address", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
