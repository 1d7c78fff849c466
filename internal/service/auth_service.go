package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/auth"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/model"
	"github.com/Jaydipsinh000/CarhubReact-sub000/internal/repository"
	"github.com/go-playground/validator/v10"
)

// AuthService handles account registration and login.
type AuthService struct {
	users    UserStore
	validate *validator.Validate
	secret   string
	expiry   time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(users UserStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		validate: validator.New(),
		secret:   secret,
		expiry:   expiry,
	}
}

// Register creates an account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, req.Name, req.Email, req.Phone, hash)
	if err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user, s.secret, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user, s.secret, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}
