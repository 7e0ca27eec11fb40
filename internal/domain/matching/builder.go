package matching

import (
	"context"

	"persona-match/internal/domain/match"
	"persona-match/internal/domain/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultThreshold = 0.5

// Proposal is one directional match candidate that cleared the threshold.
type Proposal struct {
	UserID        uuid.UUID
	MatchedUserID uuid.UUID
	Score         match.Score
}

// Builder walks subjects against the whole population and keeps every
// directional pair whose overall score clears the threshold. It holds no
// state between runs; the population snapshot is immutable for the duration
// of a build.
type Builder struct {
	threshold float64
	logger    *zap.Logger
}

func NewBuilder(threshold float64, logger *zap.Logger) *Builder {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{threshold: threshold, logger: logger}
}

// Build evaluates every subject against every other user in population. With
// an empty subjects slice, every user in population is a subject. Reverse
// pairs are not deduplicated: (A,B) and (B,A) are independent evaluations
// with independently computed, possibly asymmetric scores, since the subject
// supplies the persona. Cancellation is checked between subjects, never
// mid-pair.
func (b *Builder) Build(ctx context.Context, subjects []uuid.UUID, population []user.Snapshot) ([]Proposal, int, error) {
	byID := make(map[uuid.UUID]user.Snapshot, len(population))
	for _, snap := range population {
		byID[snap.UserID] = snap
	}

	if len(subjects) == 0 {
		subjects = make([]uuid.UUID, 0, len(population))
		for _, snap := range population {
			subjects = append(subjects, snap.UserID)
		}
	}

	proposals := make([]Proposal, 0, len(subjects))
	skipped := 0

	for _, subjectID := range subjects {
		if err := ctx.Err(); err != nil {
			return proposals, skipped, err
		}

		subject, ok := byID[subjectID]
		if !ok {
			b.logger.Warn("subject missing from population snapshot",
				zap.String("subject_id", subjectID.String()))
			skipped++
			continue
		}
		if !subject.Complete() {
			b.logger.Warn("subject lacks profile or persona, skipping",
				zap.String("subject_id", subjectID.String()))
			skipped++
			continue
		}

		for _, candidate := range population {
			if candidate.UserID == subject.UserID {
				continue
			}
			if !candidate.Complete() {
				b.logger.Warn("candidate lacks profile or persona, skipping pair",
					zap.String("subject_id", subject.UserID.String()),
					zap.String("candidate_id", candidate.UserID.String()))
				skipped++
				continue
			}

			score, ok := b.scorePair(subject, candidate)
			if !ok {
				skipped++
				continue
			}
			if score.Overall < b.threshold {
				continue
			}

			proposals = append(proposals, Proposal{
				UserID:        subject.UserID,
				MatchedUserID: candidate.UserID,
				Score:         score,
			})
		}
	}

	return proposals, skipped, nil
}

// scorePair isolates one evaluation so an unexpected panic drops only that
// pair, never the batch.
func (b *Builder) scorePair(subject, candidate user.Snapshot) (score match.Score, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("pair evaluation panicked, dropping pair",
				zap.String("subject_id", subject.UserID.String()),
				zap.String("candidate_id", candidate.UserID.String()),
				zap.Any("panic", r))
			ok = false
		}
	}()
	return Score(subject, candidate), true
}
