package handlers

import (
	"errors"

	"crudapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CreateAddressRequest is the body of POST /addresses.
type CreateAddressRequest struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
	UserID  uint   `json:"userId" validate:"required"`
}

// UpdateAddressRequest is the body of PATCH /addresses/:id. userId is not
// accepted: an address never changes owner.
type UpdateAddressRequest struct {
	Street  *string `json:"street" validate:"omitempty,min=1"`
	City    *string `json:"city" validate:"omitempty,min=1"`
	ZipCode *string `json:"zipCode" validate:"omitempty,min=1"`
	Country *string `json:"country" validate:"omitempty,min=1"`
}

// AddressHandler handles HTTP requests for addresses.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService, log logrus.FieldLogger) *AddressHandler {
	return &AddressHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the address routes.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/addresses")
	addressRoutes.Get("/", h.HandleGetAddresses)
	addressRoutes.Get("/user/:userId", h.HandleGetAddressesByUserID)
	addressRoutes.Get("/:id", h.HandleGetAddressByID)
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Patch("/:id", h.HandleUpdateAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
}

// HandleGetAddresses lists all addresses with their owners.
func (h *AddressHandler) HandleGetAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.GetAllAddresses(c.UserContext())
	if err != nil {
		return respondInternal(c, h.log, "Error fetching addresses", err)
	}
	return respondList(c, addresses)
}

// HandleGetAddressByID returns a single address with its owner.
func (h *AddressHandler) HandleGetAddressByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid address ID")
	}

	address, err := h.service.GetAddressByID(c.UserContext(), id)
	if err != nil {
		return respondInternal(c, h.log, "Error fetching address", err)
	}
	if address == nil {
		return respondError(c, fiber.StatusNotFound, "Address not found")
	}
	return respond(c, fiber.StatusOK, "", address)
}

// HandleGetAddressesByUserID lists the addresses of one user.
func (h *AddressHandler) HandleGetAddressesByUserID(c *fiber.Ctx) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	addresses, err := h.service.GetAddressesByUserID(c.UserContext(), userID)
	if err != nil {
		return respondInternal(c, h.log, "Error fetching addresses for user", err)
	}
	return respondList(c, addresses)
}

// HandleCreateAddress creates an address for an existing user.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	var req CreateAddressRequest
	if err := parseBody(c, &req); err != nil {
		return respondValidation(c, "Invalid request body", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, "All fields are required", joinDetails(failedFields(err)))
	}

	address, err := h.service.CreateAddress(c.UserContext(), services.CreateAddressInput{
		Street:  req.Street,
		City:    req.City,
		ZipCode: req.ZipCode,
		Country: req.Country,
		UserID:  req.UserID,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return respondError(c, fiber.StatusNotFound, "User not found")
		}
		return respondInternal(c, h.log, "Error creating address", err)
	}
	return respond(c, fiber.StatusCreated, "Address created successfully", address)
}

// HandleUpdateAddress applies a partial update.
func (h *AddressHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid address ID")
	}

	var req UpdateAddressRequest
	if err := parseBody(c, &req); err != nil {
		return respondValidation(c, "Invalid request body", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, "Invalid address data", joinDetails(failedFields(err)))
	}

	address, err := h.service.UpdateAddress(c.UserContext(), id, services.UpdateAddressInput{
		Street:  req.Street,
		City:    req.City,
		ZipCode: req.ZipCode,
		Country: req.Country,
	})
	if err != nil {
		return respondInternal(c, h.log, "Error updating address", err)
	}
	if address == nil {
		return respondError(c, fiber.StatusNotFound, "Address not found")
	}
	return respond(c, fiber.StatusOK, "Address updated successfully", address)
}

// HandleDeleteAddress removes an address.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid address ID")
	}

	deleted, err := h.service.DeleteAddress(c.UserContext(), id)
	if err != nil {
		return respondInternal(c, h.log, "Error deleting address", err)
	}
	if !deleted {
		return respondError(c, fiber.StatusNotFound, "Address not found")
	}
	return respond(c, fiber.StatusOK, "Address deleted successfully", nil)
}
