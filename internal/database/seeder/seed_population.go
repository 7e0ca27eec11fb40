package seeder

import (
	"context"
	"fmt"
	"math/rand"

	"persona-match/internal/database"
	"persona-match/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PopulationSeeder writes a synthetic population with varied profiles,
// personas and industry signals so a local instance has something for the
// match job to chew on. Deterministic for a fixed Seed.
type PopulationSeeder struct {
	Count int
	Seed  int64
}

func (s PopulationSeeder) Name() string { return "population" }

var (
	seedSkills = []string{
		"go", "python", "typescript", "kubernetes", "postgresql", "terraform",
		"react", "product strategy", "sales", "marketing", "data analysis",
		"machine learning", "ux design", "public speaking", "fundraising",
	}
	seedInterests = []string{
		"open source", "startups", "mentoring", "climbing", "chess", "running",
	}
	seedProfessions = []string{
		"software engineer", "product manager", "designer", "data scientist",
		"founder", "sales lead",
	}
	seedIndustries = []string{
		"technology", "finance", "healthcare", "education", "retail",
	}
	seedCities = []struct {
		City  string
		State string
		Lat   float64
		Lon   float64
	}{
		{"san francisco", "ca", 37.7749, -122.4194},
		{"oakland", "ca", 37.8044, -122.2712},
		{"new york", "ny", 40.7128, -74.0060},
		{"austin", "tx", 30.2672, -97.7431},
		{"seattle", "wa", 47.6062, -122.3321},
	}
	seedLevels = []user.ExperienceLevel{
		user.ExperienceEntryLevel, user.ExperienceMidLevel,
		user.ExperienceSenior, user.ExperienceExecutive, user.ExperienceAny,
	}
)

func (s PopulationSeeder) Run(ctx context.Context, db database.DB) error {
	count := s.Count
	if count <= 0 {
		count = 50
	}
	rng := rand.New(rand.NewSource(s.Seed))

	hash, err := bcrypt.GenerateFromPassword([]byte("seed-password"), bcrypt.MinCost)
	if err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		id := uuid.New()
		email := fmt.Sprintf("seed-user-%03d@example.test", i)

		affected, err := db.Exec(ctx,
			`INSERT INTO users (id, email, password_hash) VALUES ($1,$2,$3)
			 ON CONFLICT (email) DO NOTHING`,
			id, email, string(hash))
		if err != nil {
			return err
		}
		if affected == 0 {
			continue
		}

		loc := seedCities[rng.Intn(len(seedCities))]
		profession := seedProfessions[rng.Intn(len(seedProfessions))]

		if _, err := db.Exec(ctx,
			`INSERT INTO user_profiles
				(user_id, headline, city, state, country, latitude, longitude, profession, company, skills, interests)
			 VALUES ($1,$2,$3,$4,'us',$5,$6,$7,$8,$9,$10)`,
			id,
			fmt.Sprintf("%s in %s", profession, loc.City),
			loc.City, loc.State, loc.Lat, loc.Lon,
			profession,
			fmt.Sprintf("company-%d", rng.Intn(12)),
			pick(rng, seedSkills, 2+rng.Intn(4)),
			pick(rng, seedInterests, 1+rng.Intn(3)),
		); err != nil {
			return err
		}

		matchType := user.MatchTypeMirror
		if rng.Intn(2) == 0 {
			matchType = user.MatchTypeComplement
		}
		if _, err := db.Exec(ctx,
			`INSERT INTO user_personas
				(user_id, match_type, skills_desired, industry_preferences, experience_level_preference)
			 VALUES ($1,$2,$3,$4,$5)`,
			id,
			string(matchType),
			pick(rng, seedSkills, 1+rng.Intn(4)),
			pick(rng, seedIndustries, 1+rng.Intn(2)),
			string(seedLevels[rng.Intn(len(seedLevels))]),
		); err != nil {
			return err
		}

		if _, err := db.Exec(ctx,
			`INSERT INTO social_profiles (user_id, declared_industry, source)
			 VALUES ($1,$2,'seed')`,
			id, seedIndustries[rng.Intn(len(seedIndustries))],
		); err != nil {
			return err
		}
	}

	return nil
}

func pick(rng *rand.Rand, pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}
