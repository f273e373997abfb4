package postgres

import (
	"context"
	"database/sql"
	"errors"

	"lumaevents/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, full_name, avatar_url, email
		FROM profiles
		WHERE id = $1
	`
	p := &domain.Profile{}
	var fullName, avatarURL sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &fullName, &avatarURL, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify(err)
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if avatarURL.Valid {
		p.AvatarURL = &avatarURL.String
	}
	return p, nil
}
