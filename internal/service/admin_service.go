package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"fitcoach/internal/model"
	"fitcoach/internal/model/auth"
	"fitcoach/internal/pkg/cache"
)

var (
	// ErrUnauthorized rejects an admin action by a caller with no marker.
	ErrUnauthorized = errors.New("not an administrator")

	// ErrAccountNotFound means the email has no identity record.
	ErrAccountNotFound = errors.New("account not found")
)

// IdentityStore is the slice of the identity provider the admin flow needs.
// FindByEmail returns nil, nil when no account exists under the email.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	Delete(ctx context.Context, id string) error
}

// ProfileStore lists and deletes the user-profile mirror documents.
type ProfileStore interface {
	List(ctx context.Context) ([]*model.UserProfile, error)
	Delete(ctx context.Context, userID string) error
}

// AdminStore manages the presence-only admin markers.
type AdminStore interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Upsert(ctx context.Context, marker *model.AdminMarker) error
	Delete(ctx context.Context, userID string) error
}

// ConversationAdminStore is the conversation access the admin flow needs.
type ConversationAdminStore interface {
	Find(ctx context.Context, userID string) (*model.Conversation, error)
	Delete(ctx context.Context, userID string) error
}

// StatsAdminStore deletes usage counters during user removal.
type StatsAdminStore interface {
	Delete(ctx context.Context, userID string) error
}

// TokenStore revokes refresh tokens during user removal.
type TokenStore interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// ViewCache is the optional read-through cache for conversation views.
type ViewCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// DeleteUserError reports which step of the user-deletion sequence failed.
// Deletion is not transactional: steps before the failing one have already
// taken effect and are not rolled back.
type DeleteUserError struct {
	Step string
	Err  error
}

func (e *DeleteUserError) Error() string {
	return fmt.Sprintf("delete user: %s: %v", e.Step, e.Err)
}

func (e *DeleteUserError) Unwrap() error {
	return e.Err
}

// AdminService implements the admin surface: user listing, conversation
// view, user deletion and marker provisioning.
type AdminService struct {
	identities IdentityStore
	profiles   ProfileStore
	admins     AdminStore
	convs      ConversationAdminStore
	stats      StatsAdminStore
	tokens     TokenStore
	cache      ViewCache
}

// NewAdminService wires the admin surface. viewCache may be nil.
func NewAdminService(
	identities IdentityStore,
	profiles ProfileStore,
	admins AdminStore,
	convs ConversationAdminStore,
	stats StatsAdminStore,
	tokens TokenStore,
	viewCache ViewCache,
) *AdminService {
	return &AdminService{
		identities: identities,
		profiles:   profiles,
		admins:     admins,
		convs:      convs,
		stats:      stats,
		tokens:     tokens,
		cache:      viewCache,
	}
}

// IsAdmin reports whether the user id carries an admin marker.
func (s *AdminService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.admins.Exists(ctx, userID)
}

// ListUsers returns every profile document as a flat list.
func (s *AdminService) ListUsers(ctx context.Context) ([]*model.UserProfile, error) {
	return s.profiles.List(ctx)
}

// GetConversation returns a user's message history verbatim, empty when the
// user never chatted. Served through the cache when one is configured.
func (s *AdminService) GetConversation(ctx context.Context, userID string) ([]model.Message, error) {
	key := cache.ConversationKey(userID)

	if s.cache != nil {
		var cached []model.Message
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	conv, err := s.convs.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, conv.Messages, cache.ConversationTTL); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to cache conversation")
		}
	}

	return conv.Messages, nil
}

// DeleteUser removes a user after verifying the acting admin's marker. The
// removal is a sequence of independent deletes (identity record, profile
// mirror, conversation, usage counter, refresh tokens, admin marker); any
// failure stops the sequence and reports the failing step without undoing
// earlier ones.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID string) error {
	if adminID == "" || userID == "" {
		return ErrMissingFields
	}

	isAdmin, err := s.admins.Exists(ctx, adminID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrUnauthorized
	}

	if err := s.identities.Delete(ctx, userID); err != nil {
		return &DeleteUserError{Step: "identity record", Err: err}
	}
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return &DeleteUserError{Step: "user profile", Err: err}
	}
	if err := s.convs.Delete(ctx, userID); err != nil {
		return &DeleteUserError{Step: "conversation", Err: err}
	}
	if err := s.stats.Delete(ctx, userID); err != nil {
		return &DeleteUserError{Step: "usage counter", Err: err}
	}
	if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
		return &DeleteUserError{Step: "refresh tokens", Err: err}
	}
	// The target may themselves be an admin; their marker goes too.
	if err := s.admins.Delete(ctx, userID); err != nil {
		return &DeleteUserError{Step: "admin marker", Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.ConversationKey(userID)); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("failed to drop cached conversation")
		}
	}

	log.Info().Str("admin_id", adminID).Str("user_id", userID).Msg("user deleted")
	return nil
}

// MakeAdmin provisions an admin marker for the account registered under the
// given email. Idempotent: re-running overwrites the existing marker.
func (s *AdminService) MakeAdmin(ctx context.Context, email, addedBy string) (*model.AdminMarker, error) {
	user, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account with email %s", ErrAccountNotFound, email)
	}

	marker := &model.AdminMarker{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    "admin",
		AddedAt: time.Now(),
		AddedBy: addedBy,
	}

	if err := s.admins.Upsert(ctx, marker); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("email", email).Msg("admin marker provisioned")
	return marker, nil
}
