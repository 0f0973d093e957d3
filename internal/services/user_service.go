package services

import (
	"context"
	"net/http"
	"time"

	"user-profile-api/internal/models"
	"user-profile-api/internal/repositories"
	"user-profile-api/internal/transformers"
	"user-profile-api/internal/validators"
	"user-profile-api/pkg/logger"
)

// DefaultCacheTTL applies when no TTL is configured.
const DefaultCacheTTL = 5 * time.Minute

type UserService struct {
	repo      repositories.UserRepository
	cache     repositories.UserCache
	trans     transformers.ProfileTransformer
	validator validators.UserValidator
	cacheTTL  time.Duration
}

func NewUserService(
	repo repositories.UserRepository,
	cache repositories.UserCache,
	trans transformers.ProfileTransformer,
	validator validators.UserValidator,
	cacheTTL time.Duration,
) *UserService {
	if cache == nil {
		cache = repositories.NewUserCache(nil)
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &UserService{
		repo:      repo,
		cache:     cache,
		trans:     trans,
		validator: validator,
		cacheTTL:  cacheTTL,
	}
}

// CreateOrUpdateUser upserts the profile keyed by the body's supabaseUid.
func (s *UserService) CreateOrUpdateUser(ctx context.Context, body map[string]interface{}) (*models.User, error) {
	uid, err := s.validator.ValidateCreate(body)
	if err != nil {
		return nil, err
	}
	update, err := s.trans.ForUpsert(body)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Upsert(ctx, uid, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.SupabaseUID)
	logger.GlobalLogger.Printf("Successfully upserted user: %s (uid %s, %d fields, %d addresses)", user.ID, uid, update.Len(), len(user.Addresses))
	return user, nil
}

// GetUser looks a user up by uid or email. Only uid lookups go through the cache.
func (s *UserService) GetUser(ctx context.Context, uid, email string) (*models.User, error) {
	lookup, err := s.validator.ValidateLookup(http.MethodGet, uid, email)
	if err != nil {
		return nil, err
	}

	fill := false
	var version int64
	if lookup.UID != "" {
		cached, err := s.cache.GetUser(ctx, lookup.UID)
		if err != nil {
			logger.GlobalLogger.Warnf("Cache read failed for %s: %v", lookup, err)
		}
		if cached != nil {
			logger.GlobalLogger.Debugf("Cache hit for %s", lookup)
			return cached, nil
		}
		// the generation must be read before the row; a write committing in
		// between bumps it and the fill below is discarded
		version, err = s.cache.Version(ctx, lookup.UID)
		if err != nil {
			logger.GlobalLogger.Warnf("Cache version read failed for %s: %v", lookup, err)
		} else {
			fill = true
		}
	}

	user, err := s.repo.Find(ctx, lookup)
	if err != nil {
		return nil, err
	}

	if fill {
		if err := s.cache.SetUser(ctx, user, version, s.cacheTTL); err != nil {
			logger.GlobalLogger.Warnf("Cache write failed for %s: %v", lookup, err)
		}
	}
	return user, nil
}

// UpdateUser applies the supplied fields to the user named by supabaseUid or email.
func (s *UserService) UpdateUser(ctx context.Context, body map[string]interface{}) (*models.User, error) {
	lookup, err := s.validator.ValidateUpdate(body)
	if err != nil {
		return nil, err
	}
	update, err := s.trans.ForUpdate(body)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, lookup, update)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.SupabaseUID)
	logger.GlobalLogger.Printf("Updated user by %s (%d fields)", lookup, update.Len())
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, uid, email string) error {
	lookup, err := s.validator.ValidateLookup(http.MethodDelete, uid, email)
	if err != nil {
		return err
	}

	user, err := s.repo.Delete(ctx, lookup)
	if err != nil {
		return err
	}
	s.invalidate(ctx, user.SupabaseUID)
	logger.GlobalLogger.Printf("Deleted user by %s", lookup)
	return nil
}

// Ping checks the database and, when enabled, the cache.
func (s *UserService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return err
	}
	return s.cache.Ping(ctx)
}

func (s *UserService) invalidate(ctx context.Context, uid string) {
	if err := s.cache.InvalidateUser(ctx, uid); err != nil {
		logger.GlobalLogger.Warnf("Cache invalidation failed for uid %s: %v", uid, err)
	}
}
