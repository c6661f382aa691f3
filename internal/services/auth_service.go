package services

import (
	"context"
	"fmt"

	"crudapi/internal/auth"
	"crudapi/internal/models"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

// AuthResult is returned by successful registrations and logins.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	users  *UserService
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *UserService, hasher *auth.PasswordHasher, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a user with a hashed password and issues a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	existing, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, CreateUserInput{
		Name:         in.Name,
		Email:        in.Email,
		Age:          in.Age,
		PasswordHash: hashed,
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// Login verifies the credentials and issues a fresh token. Unknown emails
// and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !s.hasher.Compare(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Profile returns the public view of the user behind a verified token, or
// nil when that user no longer exists.
func (s *AuthService) Profile(ctx context.Context, claims *auth.Claims) (*models.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, claims.ID)
	if err != nil || user == nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// ValidateToken parses a bearer token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*auth.Claims, error) {
	return s.tokens.Verify(tokenString)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, _, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}
