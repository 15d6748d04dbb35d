package services

import (
	"context"
	"errors"
	"fmt"
	"unicode"

	"github.com/arda/classplanner/internal/app/models"
	"github.com/arda/classplanner/internal/app/models/dto"
	"github.com/arda/classplanner/internal/pkg/apperrors"
	"github.com/arda/classplanner/internal/pkg/auth"
	"github.com/arda/classplanner/internal/pkg/logger"
)

// UserStore is the account persistence surface authentication needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (int64, error)
}

// AuthService handles operator authentication
type AuthService struct {
	userStore  UserStore
	jwtService *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(userStore UserStore, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userStore:  userStore,
		jwtService: jwtService,
	}
}

// validatePassword checks if password meets requirements
func (s *AuthService) validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters long")
	}

	hasLetter := false
	hasDigit := false
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.NewValidationError("password must contain at least one letter and one digit")
	}

	return nil
}

// Register creates a new operator account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		RoleType:     models.RoleType(req.RoleType),
	}

	id, err := s.userStore.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	logger.Info().Int64("userID", id).Str("role", req.RoleType).Msg("Operator account registered")
	return s.issueToken(user)
}

// Login authenticates an operator by email and password.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userStore.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Same response as a wrong password, do not leak which
			// accounts exist.
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *models.User) (*dto.TokenResponse, error) {
	accessToken, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		UserID:      user.ID,
		RoleType:    string(user.RoleType),
	}, nil
}
