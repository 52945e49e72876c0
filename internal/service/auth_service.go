package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tomlord1122/todo-threads/internal/auth"
	"github.com/Tomlord1122/todo-threads/internal/domain"
	"github.com/Tomlord1122/todo-threads/internal/repository"
	"github.com/Tomlord1122/todo-threads/internal/validation"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// Session is a signed bearer token and the account it belongs to.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SignIn(ctx context.Context, req SignInRequest) (*Session, error)

	// Current returns the caller resolved by the auth middleware.
	Current(ctx context.Context) (*UserResponse, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	pipeline *Pipeline
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, pipeline *Pipeline) AuthService {
	return &authService{users: users, tokens: tokens, pipeline: pipeline}
}

func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validation.IsValidEmail(email) {
		return nil, domain.InvalidArgument("Invalid email address.")
	}
	if !validation.IsValidPassword(req.Password) {
		return nil, domain.InvalidArgument("Invalid password. Must be at least %d characters and at most %d bytes.",
			validation.MinPassword, validation.MaxPassword)
	}
	name := validation.SanitizeText(req.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	if !validation.IsValidName(name) {
		return nil, domain.InvalidArgument("Invalid name. Must be 1-%d characters.", validation.MaxName)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.pipeline.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.InvalidArgument("Email already registered.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

func (s *authService) SignIn(ctx context.Context, req SignInRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, invalidCredentials()
	}
	return s.issue(user)
}

func (s *authService) Current(ctx context.Context) (*UserResponse, error) {
	user, err := s.pipeline.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return newUserResponse(user), nil
}

func (s *authService) issue(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: newUserResponse(user)}, nil
}

func invalidCredentials() error {
	return &domain.Error{Code: domain.CodeUnauthenticated, Message: "Invalid credentials"}
}
