package handlers

import (
	"errors"

	"crudapi/internal/auth"
	"crudapi/internal/middleware"
	"crudapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Age      *int   `json:"age" validate:"omitempty,gte=0"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes. The profile route
// sits behind the bearer token middleware.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/profile", middleware.AuthRequired(h.authService), h.HandleProfile)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondValidation(c, "Invalid request body", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		fields := failedFields(err)
		if _, bad := fields["age"]; bad && len(fields) == 1 {
			return respondValidation(c, "Age must be a non-negative integer", joinDetails(fields))
		}
		return respondValidation(c, "Name, email and password are required", joinDetails(fields))
	}

	result, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailAlreadyExists) {
			return respondError(c, fiber.StatusConflict, "User with this email already exists")
		}
		return respondInternal(c, h.log, "Error registering user", err)
	}
	return respond(c, fiber.StatusCreated, "User registered successfully", result)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return respondValidation(c, "Invalid request body", err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, "Email and password are required", joinDetails(failedFields(err)))
	}

	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.log.WithField("email", req.Email).Info("login rejected")
			return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return respondInternal(c, h.log, "Error logging in", err)
	}
	return respond(c, fiber.StatusOK, "Login successful", result)
}

// HandleProfile returns the authenticated user's public profile.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	claims, ok := c.Locals(middleware.ClaimsKey).(*auth.Claims)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Access token required")
	}

	profile, err := h.authService.Profile(c.UserContext(), claims)
	if err != nil {
		return respondInternal(c, h.log, "Error fetching profile", err)
	}
	if profile == nil {
		return respondError(c, fiber.StatusNotFound, "User not found")
	}
	return respond(c, fiber.StatusOK, "", profile)
}
