package dto

import (
	"time"

	"github.com/google/uuid"
)

type ScoreResponse struct {
	SkillsAlignment         float64           `json:"skills_alignment"`
	IndustryAlignment       float64           `json:"industry_alignment"`
	ProfessionalFit         float64           `json:"professional_fit"`
	PersonalFit             float64           `json:"personal_fit"`
	ExperienceCompatibility float64           `json:"experience_compatibility"`
	Overall                 float64           `json:"overall"`
	Details                 map[string]string `json:"details,omitempty"`
}

type MatchedUserResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	Headline   string    `json:"headline"`
	Profession string    `json:"profession"`
	Company    string    `json:"company"`
	City       string    `json:"city"`
	State      string    `json:"state"`
}

type MatchResponse struct {
	ID            uuid.UUID           `json:"id"`
	MatchedUser   MatchedUserResponse `json:"matched_user"`
	Status        string              `json:"status"`
	Score         ScoreResponse       `json:"score"`
	ScheduledTime *time.Time          `json:"scheduled_time,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
	Total   int             `json:"total"`
}
