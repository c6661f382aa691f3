package handlers

import (
	"errors"

	"crudapi/internal/repositories"
	"crudapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Age   *int   `json:"age" validate:"omitempty,gte=0"`
}

// UpdateUserRequest is the body of PATCH /users/:id.
type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,min=1"`
	Age   *int    `json:"age" validate:"omitempty,gte=0"`
}

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Get("/:id", h.HandleGetUserByID)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Patch("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleGetUsers lists all users, newest first.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetAllUsers(c.UserContext())
	if err != nil {
		return respondInternal(c, h.log, "Error fetching users", err)
	}
	return respondList(c, users)
}

// HandleGetUserByID returns a single user.
func (h *UserHandler) HandleGetUserByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	user, err := h.service.GetUserByID(c.UserContext(), id)
	if err != nil {
		return respondInternal(c, h.log, "Error fetching user", err)
	}
	if user == nil {
		return respondError(c, fiber.StatusNotFound, "User not found")
	}
	return respond(c, fiber.StatusOK, "", user)
}

// HandleCreateUser creates a user after checking the email is free.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return respondValidation(c, "Invalid request body", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		fields := failedFields(err)
		if _, bad := fields["age"]; bad && len(fields) == 1 {
			return respondValidation(c, "Age must be a non-negative integer", joinDetails(fields))
		}
		return respondValidation(c, "Name and email are required", joinDetails(fields))
	}

	existing, err := h.service.GetUserByEmail(c.UserContext(), req.Email)
	if err != nil {
		return respondInternal(c, h.log, "Error creating user", err)
	}
	if existing != nil {
		return respondError(c, fiber.StatusConflict, "User with this email already exists")
	}

	user, err := h.service.CreateUser(c.UserContext(), services.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			return respondError(c, fiber.StatusConflict, "User with this email already exists")
		}
		return respondInternal(c, h.log, "Error creating user", err)
	}
	return respond(c, fiber.StatusCreated, "User created successfully", user)
}

// HandleUpdateUser applies a partial update. A new email must not belong
// to another user.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return respondValidation(c, "Invalid request body", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, "Invalid user data", joinDetails(failedFields(err)))
	}

	if req.Email != nil {
		existing, err := h.service.GetUserByEmail(c.UserContext(), *req.Email)
		if err != nil {
			return respondInternal(c, h.log, "Error updating user", err)
		}
		if existing != nil && existing.ID != id {
			return respondError(c, fiber.StatusConflict, "User with this email already exists")
		}
	}

	user, err := h.service.UpdateUser(c.UserContext(), id, services.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) || errors.Is(err, repositories.ErrDuplicateKey) {
			return respondError(c, fiber.StatusConflict, "User with this email already exists")
		}
		return respondInternal(c, h.log, "Error updating user", err)
	}
	if user == nil {
		return respondError(c, fiber.StatusNotFound, "User not found")
	}
	return respond(c, fiber.StatusOK, "User updated successfully", user)
}

// HandleDeleteUser removes a user and its addresses.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return respondError(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	deleted, err := h.service.DeleteUser(c.UserContext(), id)
	if err != nil {
		return respondInternal(c, h.log, "Error deleting user", err)
	}
	if !deleted {
		return respondError(c, fiber.StatusNotFound, "User not found")
	}
	return respond(c, fiber.StatusOK, "User deleted successfully", nil)
}
