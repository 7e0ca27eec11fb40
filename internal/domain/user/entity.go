package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MatchType string

const (
	MatchTypeComplement MatchType = "complement"
	MatchTypeMirror     MatchType = "mirror"
)

type ExperienceLevel string

const (
	ExperienceEntryLevel ExperienceLevel = "entry_level"
	ExperienceMidLevel   ExperienceLevel = "mid_level"
	ExperienceSenior     ExperienceLevel = "senior"
	ExperienceExecutive  ExperienceLevel = "executive"
	ExperienceAny        ExperienceLevel = "any"
)

type Profile struct {
	Headline   string
	Bio        string
	City       string
	State      string
	Country    string
	Latitude   *float64
	Longitude  *float64
	Profession string
	Company    string
	Skills     []string
	Interests  []string
}

type Persona struct {
	MatchType                 MatchType
	SkillsDesired             []string
	IndustryPreferences       []string
	ExperienceLevelPreference ExperienceLevel
}

type SocialSignal struct {
	DeclaredIndustry string
}

// Snapshot is one user's matching input as of a single job run. Profile and
// Persona are nil when the user has not published them; the match job skips
// such users rather than defaulting the missing data.
type Snapshot struct {
	UserID  uuid.UUID
	Profile *Profile
	Persona *Persona
	Social  SocialSignal
}

func (s Snapshot) Complete() bool {
	return s.Profile != nil && s.Persona != nil
}
