package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/to-do-list-api/internal/auth"
	"github.com/yukikurage/to-do-list-api/internal/models"
	"github.com/yukikurage/to-do-list-api/internal/permissions"
	"github.com/yukikurage/to-do-list-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = errors.New("no active account found with the given credentials")
	ErrInvalidToken         = errors.New("token is invalid or expired")
	ErrUsernameRequired     = errors.New("username is required")
	ErrPasswordRequired     = errors.New("password is required")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService issues tokens and turns verified tokens into identities.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.JWTManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// ObtainTokenPair verifies credentials and returns an access and refresh token.
func (s *AuthService) ObtainTokenPair(ctx context.Context, username, password string) (auth.TokenPair, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return auth.TokenPair{}, ErrInvalidCredentials
		}
		return auth.TokenPair{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return auth.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.IsStaff)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("failed to sign tokens: %w", err)
	}
	return pair, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return "", err
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.IsStaff)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return access, nil
}

// ResolveIdentity verifies an access token and loads the current roles of
// its user. Roles come from the user record, not the token, so revoking
// staff or deactivating an account applies to tokens already issued.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (*permissions.Identity, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &permissions.Identity{
		Subject:         user.ID,
		IsAuthenticated: true,
		IsStaff:         user.IsStaff,
	}, nil
}

// EnsureUser creates the user if it does not exist, or resets its password
// and staff flag if it does.
func (s *AuthService) EnsureUser(ctx context.Context, username, password string, isStaff bool) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user = &models.User{
			Username:     username,
			PasswordHash: string(hashedPassword),
			IsStaff:      isStaff,
			IsActive:     true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.IsStaff = isStaff
	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) activeUser(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return user, nil
}
