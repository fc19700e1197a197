package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"fitcoach/internal/model"
	"fitcoach/internal/model/auth"
	"fitcoach/internal/pkg/id"
	"fitcoach/internal/pkg/jwt"
	"fitcoach/internal/pkg/password"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidPassword = errors.New("wrong password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
)

// AuthService is the identity provider: it owns the accounts collection and
// token issuance. The rest of the system only ever sees opaque user ids.
type AuthService struct {
	userRepo         AccountStore
	refreshTokenRepo RefreshStore
	profileRepo      ProfileCreator
	jwt              *jwt.JWT
	refreshExpiry    time.Duration
}

// AccountStore is the identity-record access the auth flow needs.
// FindByEmail returns nil, nil when no account exists under the email.
type AccountStore interface {
	Create(ctx context.Context, user *auth.User) error
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdateLastLoginAt(ctx context.Context, id string) error
}

// RefreshStore persists refresh tokens for login sessions.
type RefreshStore interface {
	Create(ctx context.Context, token *auth.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*auth.RefreshToken, error)
	DeleteByToken(ctx context.Context, token string) error
}

// ProfileCreator writes the users mirror document at registration time.
type ProfileCreator interface {
	Create(ctx context.Context, profile *model.UserProfile) error
}

// NewAuthService wires the identity provider.
func NewAuthService(
	userRepo AccountStore,
	refreshTokenRepo RefreshStore,
	profileRepo ProfileCreator,
	jwtSecret string,
	accessTokenExpiry time.Duration,
	refreshTokenExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		profileRepo:      profileRepo,
		jwt:              jwt.NewJWT(jwtSecret, accessTokenExpiry),
		refreshExpiry:    refreshTokenExpiry,
	}
}

// RegisterResult is returned on successful registration.
type RegisterResult struct {
	UserID string
	Email  string
	Name   string
}

// Register creates a new account and its profile mirror document.
func (s *AuthService) Register(ctx context.Context, email, pwd, name string) (*RegisterResult, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// A store failure must not read as "email free".
		log.Error().Err(err).Msg("failed to check email availability")
		return nil, errors.New("failed to check email availability")
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := password.Hash(pwd)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return nil, errors.New("failed to hash password")
	}

	user := &auth.User{
		ID:       id.New(),
		Email:    email,
		Name:     name,
		Password: hashed,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.Error().Err(err).Msg("failed to create account")
		return nil, errors.New("failed to create account")
	}

	// Mirror document for the admin listing. Registration still counts if
	// this write fails; the listing just misses the user until re-created.
	profile := &model.UserProfile{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to write profile mirror")
	}

	return &RegisterResult{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}, nil
}

// LoginResult is returned on successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	TokenType    string
	User         *auth.User
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, pwd string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up account")
		return nil, errors.New("failed to look up account")
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !password.Verify(pwd, user.Password) {
		return nil, ErrInvalidPassword
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return nil, errors.New("failed to generate token")
	}

	refreshTokenValue := jwt.GenerateRefreshToken()
	refreshToken := &auth.RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		Token:     refreshTokenValue,
		ExpiresAt: time.Now().Add(s.refreshExpiry),
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		log.Error().Err(err).Msg("failed to store refresh token")
		return nil, errors.New("failed to store refresh token")
	}

	if err := s.userRepo.UpdateLastLoginAt(ctx, user.ID); err != nil {
		log.Warn().Err(err).Msg("failed to update last login time")
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenValue,
		ExpiresIn:    int(s.jwt.GetExpiration().Seconds()),
		TokenType:    "Bearer",
		User:         user,
	}, nil
}

// RefreshResult is returned from a token refresh.
type RefreshResult struct {
	AccessToken string
	ExpiresIn   int
	TokenType   string
}

// Refresh exchanges a live refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenValue string) (*RefreshResult, error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenValue)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if refreshToken.IsExpired() {
		_ = s.refreshTokenRepo.DeleteByToken(ctx, refreshTokenValue)
		return nil, ErrExpiredToken
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		return nil, errors.New("failed to generate token")
	}

	return &RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwt.GetExpiration().Seconds()),
		TokenType:   "Bearer",
	}, nil
}

// Logout revokes a refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshTokenValue string) error {
	return s.refreshTokenRepo.DeleteByToken(ctx, refreshTokenValue)
}

// GetUserByID returns the identity record for the user id.
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// JWT exposes the signer so middleware can validate tokens.
func (s *AuthService) JWT() *jwt.JWT {
	return s.jwt
}
