package match

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether a status was advanced past pending by a user or a
// downstream workflow. A rescoring run must never move such a record back to
// pending.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	return s == StatusPending || s.Terminal()
}

// Score is the result of one directional compatibility evaluation. All
// sub-scores and Overall are in [0,1]; full float precision is persisted,
// rounding is a display concern.
type Score struct {
	SkillsAlignment         float64
	IndustryAlignment       float64
	ProfessionalFit         float64
	PersonalFit             float64
	ExperienceCompatibility float64
	Overall                 float64
	Details                 map[string]string
}

type Record struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	MatchedUserID       uuid.UUID
	Status              Status
	Score               Score
	ScheduledTime       *time.Time
	UserFeedback        *string
	MatchedUserFeedback *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
