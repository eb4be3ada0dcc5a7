package repository

import (
	"context"

	"paperapi/internal/model"
)

// ProfileRepository persists user profiles keyed by auth user id.
type ProfileRepository interface {
	// Upsert inserts the profile or refreshes email and name of an existing one. Role is never downgraded.
	Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error)
	FindByID(ctx context.Context, id string) (*model.Profile, error)
	Count(ctx context.Context) (int, error)
}
