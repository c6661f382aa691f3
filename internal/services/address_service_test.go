package services_test

import (
	"fmt"
	"testing"

	"crudapi/internal/models"
	"crudapi/internal/repositories"
	"crudapi/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAddressService(addresses *MockAddressRepository, users *MockUserRepository, publisher services.EventPublisher) *services.AddressService {
	log := quietLogger()
	userService := services.NewUserService(users, nil, log)
	return services.NewAddressService(addresses, userService, publisher, log)
}

func TestAddressService_GetAllAddresses(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	service := newAddressService(mockAddresses, new(MockUserRepository), nil)

	owner := &models.User{ID: 1, Name: "John Doe", Email: "john@example.com"}
	expected := []models.Address{
		{ID: 1, Street: "1 Main St", City: "Springfield", ZipCode: "12345", Country: "USA", UserID: 1, User: owner},
	}
	mockAddresses.On("FindAll", mock.Anything).Return(expected, nil).Once()

	addresses, err := service.GetAllAddresses(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expected, addresses)
	mockAddresses.AssertExpectations(t)
}

func TestAddressService_GetAddressByID_NotFound(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	service := newAddressService(mockAddresses, new(MockUserRepository), nil)

	mockAddresses.On("FindByID", mock.Anything, uint(42)).Return(nil, repositories.ErrRecordNotFound).Once()

	address, err := service.GetAddressByID(ctx, 42)

	assert.NoError(t, err)
	assert.Nil(t, address)
}

func TestAddressService_GetAddressesByUserID(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	service := newAddressService(mockAddresses, new(MockUserRepository), nil)

	mockAddresses.On("FindByUserID", mock.Anything, uint(999)).Return([]models.Address{}, nil).Once()

	addresses, err := service.GetAddressesByUserID(ctx, 999)

	assert.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestAddressService_CreateAddress(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	mockUsers := new(MockUserRepository)
	mockPublisher := new(MockPublisher)
	service := newAddressService(mockAddresses, mockUsers, mockPublisher)

	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(&models.User{ID: 1}, nil).Once()
	mockAddresses.On("Create", mock.Anything, mock.AnythingOfType("*models.Address")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Address).ID = 5
		}).
		Return(nil).Once()
	mockPublisher.On("PublishEvent", services.EventAddressCreated, mock.AnythingOfType("*models.Address")).Return(nil).Once()

	address, err := service.CreateAddress(ctx, services.CreateAddressInput{
		Street:  "1 Main St",
		City:    "Springfield",
		ZipCode: "12345",
		Country: "USA",
		UserID:  1,
	})

	assert.NoError(t, err)
	assert.Equal(t, uint(5), address.ID)
	assert.Equal(t, uint(1), address.UserID)
	mockUsers.AssertExpectations(t)
	mockAddresses.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAddressService_CreateAddress_UnknownOwner(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	mockUsers := new(MockUserRepository)
	service := newAddressService(mockAddresses, mockUsers, nil)

	mockUsers.On("FindByID", mock.Anything, uint(999)).Return(nil, repositories.ErrRecordNotFound).Once()

	address, err := service.CreateAddress(ctx, services.CreateAddressInput{
		Street:  "1 Main St",
		City:    "Springfield",
		ZipCode: "12345",
		Country: "USA",
		UserID:  999,
	})

	assert.ErrorIs(t, err, services.ErrUserNotFound)
	assert.Nil(t, address)
	mockAddresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddressService_CreateAddress_OwnerLookupFails(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	mockUsers := new(MockUserRepository)
	service := newAddressService(mockAddresses, mockUsers, nil)

	mockUsers.On("FindByID", mock.Anything, uint(1)).Return(nil, fmt.Errorf("connection refused")).Once()

	address, err := service.CreateAddress(ctx, services.CreateAddressInput{UserID: 1})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrUserNotFound)
	assert.Nil(t, address)
}

func TestAddressService_UpdateAddress(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	service := newAddressService(mockAddresses, new(MockUserRepository), nil)

	existing := &models.Address{ID: 1, Street: "1 Main St", City: "Springfield", ZipCode: "12345", Country: "USA", UserID: 1}
	mockAddresses.On("FindByID", mock.Anything, uint(1)).Return(existing, nil).Once()
	mockAddresses.On("Update", mock.Anything, mock.AnythingOfType("*models.Address")).Return(nil).Once()

	address, err := service.UpdateAddress(ctx, 1, services.UpdateAddressInput{City: strPtr("Shelbyville")})

	assert.NoError(t, err)
	assert.Equal(t, "Shelbyville", address.City)
	assert.Equal(t, "1 Main St", address.Street)
	assert.Equal(t, "12345", address.ZipCode)
	assert.Equal(t, "USA", address.Country)
	assert.Equal(t, uint(1), address.UserID)
	mockAddresses.AssertExpectations(t)
}

func TestAddressService_UpdateAddress_NotFound(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	service := newAddressService(mockAddresses, new(MockUserRepository), nil)

	mockAddresses.On("FindByID", mock.Anything, uint(9)).Return(nil, repositories.ErrRecordNotFound).Once()

	address, err := service.UpdateAddress(ctx, 9, services.UpdateAddressInput{City: strPtr("Nowhere")})

	assert.NoError(t, err)
	assert.Nil(t, address)
	mockAddresses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddressService_DeleteAddress(t *testing.T) {
	mockAddresses := new(MockAddressRepository)
	mockPublisher := new(MockPublisher)
	service := newAddressService(mockAddresses, new(MockUserRepository), mockPublisher)

	// Test successful deletion
	mockAddresses.On("FindByID", mock.Anything, uint(1)).Return(&models.Address{ID: 1, UserID: 3}, nil).Once()
	mockAddresses.On("Delete", mock.Anything, uint(1)).Return(nil).Once()
	mockPublisher.On("PublishEvent", services.EventAddressDeleted, map[string]interface{}{"id": uint(1), "userId": uint(3)}).Return(nil).Once()

	deleted, err := service.DeleteAddress(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, deleted)

	// Test address not found
	mockAddresses.On("FindByID", mock.Anything, uint(2)).Return(nil, repositories.ErrRecordNotFound).Once()

	deleted, err = service.DeleteAddress(ctx, 2)
	assert.NoError(t, err)
	assert.False(t, deleted)

	mockAddresses.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}
