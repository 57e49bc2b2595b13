package usecase

import (
	"context"

	"github.com/recruiterhub/wabot/domains/settings"
	"github.com/recruiterhub/wabot/validations"
)

// SettingsService exposes the flat settings object edited in the admin
// panel.
type SettingsService struct {
	repo settings.ISettingsRepository
}

func NewSettingsService(repo settings.ISettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// Get returns the current settings with defaults filled in.
func (s *SettingsService) Get(ctx context.Context) (settings.DTO, error) {
	m, err := s.repo.GetAll(ctx)
	if err != nil {
		return settings.DTO{}, err
	}
	return settings.FromMap(m), nil
}

// Save validates and persists every settings key.
func (s *SettingsService) Save(ctx context.Context, dto settings.DTO) error {
	if err := validations.ValidateSaveSettings(ctx, dto); err != nil {
		return err
	}
	for k, v := range dto.ToMap() {
		if err := s.repo.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
