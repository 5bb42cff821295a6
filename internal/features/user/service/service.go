package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "venture-match-backend/internal/common/errors"
	"venture-match-backend/internal/common/logger"
	"venture-match-backend/internal/common/validation"
	"venture-match-backend/internal/features/user/models"
	"venture-match-backend/internal/features/user/repository"
)

// ProfileCache is the read-side cache for public profiles. A nil cache
// disables caching.
type ProfileCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateUserCache(ctx context.Context, userID int64) error
}

type UserService interface {
	GetOrCreateUser(ctx context.Context, externalID string, defaults models.ProfileDefaults) (*models.UserResponse, error)
	GetUser(ctx context.Context, id int64) (*models.UserResponse, error)
	GetRole(ctx context.Context, externalID string) (*models.Role, error)
	AssignRole(ctx context.Context, externalID string, role string, defaults models.ProfileDefaults) (models.Role, error)
	UpsertInvestorProfile(ctx context.Context, externalID string, input models.InvestorProfileInput) (*models.UserResponse, error)
	UpsertEntrepreneurProfile(ctx context.Context, externalID string, input models.EntrepreneurProfileInput) (*models.UserResponse, error)
}

type userService struct {
	repo     repository.UserRepository
	cache    ProfileCache
	cacheTTL time.Duration
}

func NewUserService(repo repository.UserRepository, cache ProfileCache, cacheTTL time.Duration) UserService {
	return &userService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// GetOrCreateUser resolves the caller's record, creating it from the identity
// provider claims on first contact. The role stays unassigned on creation.
func (s *userService) GetOrCreateUser(ctx context.Context, externalID string, defaults models.ProfileDefaults) (*models.UserResponse, error) {
	user, err := s.repo.GetByExternalID(ctx, externalID)
	if err == nil {
		return user.ToResponse(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewStoreError("get user", err)
	}

	newUser := &models.User{
		ExternalID: externalID,
		Name:       defaults.Name,
		Email:      defaults.Email,
		ImageURL:   defaults.ImageURL,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent first request for the same caller.
			user, err = s.repo.GetByExternalID(ctx, externalID)
			if err != nil {
				return nil, apperrors.NewStoreError("get user", err)
			}
			return user.ToResponse(), nil
		}
		return nil, apperrors.NewStoreError("create user", err)
	}

	logger.Info().Int64("user_id", newUser.ID).Msg("User created")

	return newUser.ToResponse(), nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.UserResponse, error) {
	cacheKey := profileCacheKey(id)
	if s.cache != nil {
		var cached models.UserResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUserNotFoundError(id)
		}
		return nil, apperrors.NewStoreError("get user", err)
	}

	response := user.ToResponse()
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, s.cacheTTL); err != nil {
			logger.Warn().Err(err).Int64("user_id", id).Msg("Failed to cache user profile")
		}
	}

	return response, nil
}

// GetRole reports the caller's role. A missing record or an unassigned role
// both read as nil; only store failures surface as errors.
func (s *userService) GetRole(ctx context.Context, externalID string) (*models.Role, error) {
	user, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewStoreError("get user", err)
	}

	return user.Role, nil
}

// AssignRole applies the write-once role transition Unassigned -> Assigned.
// Any attempt to move out of Assigned fails with RoleAlreadyAssigned.
func (s *userService) AssignRole(ctx context.Context, externalID string, role string, defaults models.ProfileDefaults) (models.Role, error) {
	if err := validation.ValidateRole(role); err != nil {
		return "", apperrors.NewValidationError("role", err.Error())
	}
	assigned := models.Role(role)

	user, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.NewStoreError("get user", err)
		}

		newUser := &models.User{
			ExternalID: externalID,
			Name:       defaults.Name,
			Email:      defaults.Email,
			ImageURL:   defaults.ImageURL,
			Role:       &assigned,
		}
		if err := s.repo.Create(ctx, newUser); err != nil {
			return "", apperrors.NewStoreError("create user", err)
		}

		logger.Info().Int64("user_id", newUser.ID).Str("role", role).Msg("User created with role")
		return assigned, nil
	}

	if current, ok := user.RoleState(); ok {
		return "", apperrors.NewRoleAlreadyAssignedError(string(current))
	}

	if err := s.repo.AssignRole(ctx, user.ID, assigned); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Zero rows: either a concurrent call won the write-once slot
			// or the user vanished. Re-read to report the right failure.
			winner, readErr := s.repo.GetByExternalID(ctx, externalID)
			if readErr == nil {
				if won, ok := winner.RoleState(); ok {
					return "", apperrors.NewRoleAlreadyAssignedError(string(won))
				}
			} else if errors.Is(readErr, gorm.ErrRecordNotFound) {
				return "", apperrors.NewUserNotFoundError(externalID)
			}
			return "", apperrors.NewStoreError("assign role", err)
		}
		return "", apperrors.NewStoreError("assign role", err)
	}

	s.invalidate(ctx, user.ID)
	logger.Info().Int64("user_id", user.ID).Str("role", role).Msg("Role assigned")

	return assigned, nil
}

func (s *userService) UpsertInvestorProfile(ctx context.Context, externalID string, input models.InvestorProfileInput) (*models.UserResponse, error) {
	user, err := s.requireRole(ctx, externalID, models.RoleInvestor)
	if err != nil {
		return nil, err
	}

	profile := &models.InvestorProfile{
		UserID:       user.ID,
		FirmName:     input.FirmName,
		FundingFocus: input.FundingFocus,
		CheckSizeMin: input.CheckSizeMin,
		CheckSizeMax: input.CheckSizeMax,
	}
	if err := s.repo.UpsertInvestorProfile(ctx, profile); err != nil {
		return nil, apperrors.NewStoreError("upsert investor profile", err)
	}

	s.invalidate(ctx, user.ID)
	return s.reload(ctx, user.ID)
}

func (s *userService) UpsertEntrepreneurProfile(ctx context.Context, externalID string, input models.EntrepreneurProfileInput) (*models.UserResponse, error) {
	user, err := s.requireRole(ctx, externalID, models.RoleEntrepreneur)
	if err != nil {
		return nil, err
	}

	if len(input.Pitch) > validation.MaxPitchLength {
		return nil, apperrors.NewValidationError("pitch", "pitch is too long")
	}

	profile := &models.EntrepreneurProfile{
		UserID:       user.ID,
		StartupName:  input.StartupName,
		Pitch:        input.Pitch,
		FundingStage: input.FundingStage,
	}
	if err := s.repo.UpsertEntrepreneurProfile(ctx, profile); err != nil {
		return nil, apperrors.NewStoreError("upsert entrepreneur profile", err)
	}

	s.invalidate(ctx, user.ID)
	return s.reload(ctx, user.ID)
}

// requireRole resolves the caller and checks that the stated role is assigned.
func (s *userService) requireRole(ctx context.Context, externalID string, role models.Role) (*models.User, error) {
	user, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUserNotFoundError(externalID)
		}
		return nil, apperrors.NewStoreError("get user", err)
	}

	current, ok := user.RoleState()
	if !ok {
		return nil, apperrors.NewValidationError("role", "a role must be assigned before editing the profile")
	}
	if current != role {
		return nil, apperrors.NewValidationError("role", "profile does not match the assigned role")
	}

	return user, nil
}

func (s *userService) reload(ctx context.Context, id int64) (*models.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewStoreError("get user", err)
	}
	return user.ToResponse(), nil
}

func (s *userService) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserCache(ctx, userID); err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to invalidate user cache")
	}
}

func profileCacheKey(id int64) string {
	return fmt.Sprintf("user_profile:%d", id)
}
