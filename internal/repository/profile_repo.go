package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hirolabs/hirehub-api/internal/models"
)

// ProfileRepository persists cached account records and their session tokens.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	GetByRemoteID(ctx context.Context, remoteID string) (models.Profile, error)
	DeleteByRemoteID(ctx context.Context, remoteID string) error
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

type profileRepository struct {
	db *gorm.DB
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	var existing models.Profile
	err := r.db.WithContext(ctx).Where("remote_id = ?", profile.RemoteID).First(&existing).Error
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(profile).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(profile).Error
	default:
		return err
	}
}

func (r *profileRepository) GetByRemoteID(ctx context.Context, remoteID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("remote_id = ?", remoteID).First(&profile).Error
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *profileRepository) DeleteByRemoteID(ctx context.Context, remoteID string) error {
	return r.db.WithContext(ctx).Where("remote_id = ?", remoteID).Delete(&models.Profile{}).Error
}
