package store

import (
	"context"

	"hamprofile/pkg/model"
)

// ProfileStore handles radio path profile persistence.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	SaveProfile(ctx context.Context, p *model.Profile) error
	ListProfiles(ctx context.Context, limit int) ([]model.ProfileSummary, error)
	DeleteProfile(ctx context.Context, id string) (bool, error)
	CountProfiles(ctx context.Context) (int, error)
}
