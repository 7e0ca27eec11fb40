package repository

import (
	"context"

	"persona-match/internal/database"
	"persona-match/internal/domain/user"

	"github.com/google/uuid"
)

// ProfileRepository is the read side of the match job: it rebuilds the
// population snapshot from whatever profile/persona data currently exists.
// Missing profile or persona rows surface as nil pointers on the snapshot,
// never as zero-valued defaults.
type ProfileRepository interface {
	FetchAll(ctx context.Context) ([]user.Snapshot, error)
	FetchByUserID(ctx context.Context, userID uuid.UUID) (user.Snapshot, bool, error)
	ExistsByID(ctx context.Context, userID uuid.UUID) (bool, error)
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const snapshotSelect = `
SELECT u.id,
       p.user_id IS NOT NULL,
       COALESCE(p.headline, ''), COALESCE(p.bio, ''),
       COALESCE(p.city, ''), COALESCE(p.state, ''), COALESCE(p.country, ''),
       p.latitude, p.longitude,
       COALESCE(p.profession, ''), COALESCE(p.company, ''),
       COALESCE(p.skills, '{}'), COALESCE(p.interests, '{}'),
       pe.user_id IS NOT NULL,
       COALESCE(pe.match_type, ''),
       COALESCE(pe.skills_desired, '{}'),
       COALESCE(pe.industry_preferences, '{}'),
       COALESCE(pe.experience_level_preference, ''),
       COALESCE(sp.declared_industry, '')
FROM users u
LEFT JOIN user_profiles p ON p.user_id = u.id
LEFT JOIN user_personas pe ON pe.user_id = u.id
LEFT JOIN social_profiles sp ON sp.user_id = u.id`

func (r *PostgresProfileRepository) FetchAll(ctx context.Context) ([]user.Snapshot, error) {
	rows, err := r.db.Query(ctx, snapshotSelect+` ORDER BY u.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.Snapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) FetchByUserID(ctx context.Context, userID uuid.UUID) (user.Snapshot, bool, error) {
	rows, err := r.db.Query(ctx, snapshotSelect+` WHERE u.id = $1`, userID)
	if err != nil {
		return user.Snapshot{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return user.Snapshot{}, false, rows.Err()
	}
	snap, err := scanSnapshot(rows)
	if err != nil {
		return user.Snapshot{}, false, err
	}
	return snap, true, rows.Err()
}

func (r *PostgresProfileRepository) ExistsByID(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

func scanSnapshot(rows database.Rows) (user.Snapshot, error) {
	var (
		snap       user.Snapshot
		hasProfile bool
		hasPersona bool
		profile    user.Profile
		persona    user.Persona
		matchType  string
		expPref    string
	)

	err := rows.Scan(
		&snap.UserID,
		&hasProfile,
		&profile.Headline, &profile.Bio,
		&profile.City, &profile.State, &profile.Country,
		&profile.Latitude, &profile.Longitude,
		&profile.Profession, &profile.Company,
		&profile.Skills, &profile.Interests,
		&hasPersona,
		&matchType,
		&persona.SkillsDesired,
		&persona.IndustryPreferences,
		&expPref,
		&snap.Social.DeclaredIndustry,
	)
	if err != nil {
		return user.Snapshot{}, err
	}

	if hasProfile {
		snap.Profile = &profile
	}
	if hasPersona {
		persona.MatchType = user.MatchType(matchType)
		persona.ExperienceLevelPreference = user.ExperienceLevel(expPref)
		snap.Persona = &persona
	}
	return snap, nil
}
