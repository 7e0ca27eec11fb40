package repository

import (
	"context"
	"strings"
	"time"

	"persona-match/internal/database"

	"github.com/google/uuid"
)

// SocialRepository persists the supplementary industry signal the scraper
// collects. The match job only reads it back through ProfileRepository.
type SocialRepository interface {
	UpsertDeclaredIndustry(ctx context.Context, userID uuid.UUID, industry, source string) error
	ListUsersByCompany(ctx context.Context) (map[string][]uuid.UUID, error)
}

type PostgresSocialRepository struct {
	db database.DB
}

func NewPostgresSocialRepository(db database.DB) *PostgresSocialRepository {
	return &PostgresSocialRepository{db: db}
}

func (r *PostgresSocialRepository) UpsertDeclaredIndustry(ctx context.Context, userID uuid.UUID, industry, source string) error {
	industry = strings.TrimSpace(industry)
	if userID == uuid.Nil || industry == "" {
		return nil
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO social_profiles (user_id, declared_industry, source, fetched_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
			declared_industry = EXCLUDED.declared_industry,
			source = EXCLUDED.source,
			fetched_at = EXCLUDED.fetched_at,
			updated_at = now()`,
		userID, industry, strings.TrimSpace(source), time.Now().UTC(),
	)
	return err
}

// ListUsersByCompany groups user ids by the company on their profile so the
// industry scraper fetches each company page once.
func (r *PostgresSocialRepository) ListUsersByCompany(ctx context.Context) (map[string][]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id, company FROM user_profiles WHERE company <> '' ORDER BY company ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		var company string
		if err := rows.Scan(&id, &company); err != nil {
			return nil, err
		}
		company = strings.TrimSpace(company)
		if company == "" {
			continue
		}
		out[company] = append(out[company], id)
	}
	return out, rows.Err()
}
