package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/repository"
)

// SettingsService reads and updates per-user AI settings.
type SettingsService struct {
	userRepo     *repository.UserRepository
	settingsRepo *repository.SettingsRepository
	validator    *Validator
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(userRepo *repository.UserRepository, settingsRepo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		validator:    NewValidator(nil),
	}
}

// Get returns the stored settings of a user, or the defaults if none are stored.
func (s *SettingsService) Get(ctx context.Context, userID string) (*domain.AISettings, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return domain.DefaultSettings(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Update validates and stores the settings of a user.
func (s *SettingsService) Update(ctx context.Context, settings *domain.AISettings) (*domain.AISettings, error) {
	if _, err := s.userRepo.GetByID(ctx, settings.UserID); err != nil {
		return nil, err
	}

	if err := s.validator.ValidateSettings(settings); err != nil {
		return nil, err
	}

	saved, err := s.settingsRepo.Upsert(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	slog.Info("ai settings updated",
		"user_id", saved.UserID,
		"personality", saved.Personality,
		"timezone", saved.Timezone,
	)

	return saved, nil
}
