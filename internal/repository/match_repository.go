package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"persona-match/internal/database"
	"persona-match/internal/domain/match"

	"github.com/google/uuid"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	// Upsert writes one directional match atomically. A fresh row starts
	// pending; an existing row keeps any status a user or downstream
	// workflow advanced it to, and only its score columns are refreshed.
	// Returns true when a new row was inserted.
	Upsert(ctx context.Context, userID, matchedUserID uuid.UUID, score match.Score) (bool, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]match.Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (match.Record, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status match.Status, scheduledTime *time.Time) error
	CountByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}

type PostgresMatchRepository struct {
	db database.DB
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

// The status CASE keeps the upsert a single atomic statement: two concurrent
// runs racing a user's accept can never both observe pending and clobber the
// accepted status, because the conflict resolution reads the committed row.
func (r *PostgresMatchRepository) Upsert(ctx context.Context, userID, matchedUserID uuid.UUID, score match.Score) (bool, error) {
	if userID == uuid.Nil || matchedUserID == uuid.Nil || userID == matchedUserID {
		return false, errors.New("invalid match pair")
	}

	details, err := json.Marshal(score.Details)
	if err != nil {
		return false, err
	}

	var inserted bool
	err = r.db.QueryRow(ctx,
		`INSERT INTO matches (
			id, user_id, matched_user_id, status,
			skills_alignment, industry_alignment, professional_fit,
			personal_fit, experience_compatibility, overall_score, score_details
		 )
		 VALUES ($1,$2,$3,'pending',$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (user_id, matched_user_id) DO UPDATE SET
			skills_alignment = EXCLUDED.skills_alignment,
			industry_alignment = EXCLUDED.industry_alignment,
			professional_fit = EXCLUDED.professional_fit,
			personal_fit = EXCLUDED.personal_fit,
			experience_compatibility = EXCLUDED.experience_compatibility,
			overall_score = EXCLUDED.overall_score,
			score_details = EXCLUDED.score_details,
			status = CASE WHEN matches.status = 'pending' THEN 'pending' ELSE matches.status END,
			updated_at = now()
		 RETURNING (xmax = 0)`,
		uuid.New(), userID, matchedUserID,
		score.SkillsAlignment, score.IndustryAlignment, score.ProfessionalFit,
		score.PersonalFit, score.ExperienceCompatibility, score.Overall,
		details,
	).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

const matchSelect = `
SELECT id, user_id, matched_user_id, status,
       skills_alignment, industry_alignment, professional_fit,
       personal_fit, experience_compatibility, overall_score, score_details,
       scheduled_time, user_feedback, matched_user_feedback,
       created_at, updated_at
FROM matches`

func (r *PostgresMatchRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]match.Record, error) {
	rows, err := r.db.Query(ctx,
		matchSelect+` WHERE user_id = $1 ORDER BY overall_score DESC, created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Record, 0)
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (match.Record, error) {
	rows, err := r.db.Query(ctx, matchSelect+` WHERE id = $1`, id)
	if err != nil {
		return match.Record{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return match.Record{}, err
		}
		return match.Record{}, ErrMatchNotFound
	}
	return scanMatch(rows)
}

func (r *PostgresMatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status match.Status, scheduledTime *time.Time) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE matches
		 SET status = $2,
		     scheduled_time = COALESCE($3, scheduled_time),
		     updated_at = now()
		 WHERE id = $1`,
		id, string(status), scheduledTime,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *PostgresMatchRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM matches WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func scanMatch(rows database.Rows) (match.Record, error) {
	var (
		rec     match.Record
		status  string
		details []byte
	)
	err := rows.Scan(
		&rec.ID, &rec.UserID, &rec.MatchedUserID, &status,
		&rec.Score.SkillsAlignment, &rec.Score.IndustryAlignment, &rec.Score.ProfessionalFit,
		&rec.Score.PersonalFit, &rec.Score.ExperienceCompatibility, &rec.Score.Overall, &details,
		&rec.ScheduledTime, &rec.UserFeedback, &rec.MatchedUserFeedback,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return match.Record{}, err
	}
	rec.Status = match.Status(status)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &rec.Score.Details); err != nil {
			return match.Record{}, err
		}
	}
	return rec, nil
}
