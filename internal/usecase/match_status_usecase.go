package usecase

import (
	"context"
	"errors"
	"time"

	"persona-match/internal/domain/match"
	"persona-match/internal/repository"

	"github.com/google/uuid"
)

// User-driven lifecycle. The scoring job never calls this path; it is the
// only place a record leaves pending.
var allowedTransitions = map[match.Status][]match.Status{
	match.StatusPending:   {match.StatusAccepted, match.StatusRejected},
	match.StatusAccepted:  {match.StatusScheduled, match.StatusCancelled},
	match.StatusScheduled: {match.StatusCompleted, match.StatusCancelled},
}

type UpdateStatusInput struct {
	MatchID       uuid.UUID
	CallerID      uuid.UUID
	Status        match.Status
	ScheduledTime *time.Time
}

type MatchStatusUsecase interface {
	UpdateStatus(ctx context.Context, in UpdateStatusInput) (match.Record, error)
}

type MatchStatus struct {
	matches     repository.MatchRepository
	invalidator MatchInvalidator
	notifier    MatchNotifier
}

func NewMatchStatusUsecase(matches repository.MatchRepository, invalidator MatchInvalidator, notifier MatchNotifier) *MatchStatus {
	return &MatchStatus{matches: matches, invalidator: invalidator, notifier: notifier}
}

func (u *MatchStatus) UpdateStatus(ctx context.Context, in UpdateStatusInput) (match.Record, error) {
	if in.CallerID == uuid.Nil {
		return match.Record{}, ErrUnauthorized
	}
	if in.MatchID == uuid.Nil || !in.Status.Valid() || in.Status == match.StatusPending {
		return match.Record{}, ErrInvalidInput
	}
	if in.Status == match.StatusScheduled && in.ScheduledTime == nil {
		return match.Record{}, ErrInvalidInput
	}

	rec, err := u.matches.GetByID(ctx, in.MatchID)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return match.Record{}, ErrMatchNotFound
		}
		return match.Record{}, ErrInternal
	}
	if rec.UserID != in.CallerID {
		return match.Record{}, ErrForbidden
	}

	if !transitionAllowed(rec.Status, in.Status) {
		return match.Record{}, ErrInvalidTransition
	}

	if err := u.matches.UpdateStatus(ctx, in.MatchID, in.Status, in.ScheduledTime); err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return match.Record{}, ErrMatchNotFound
		}
		return match.Record{}, ErrInternal
	}

	updated, err := u.matches.GetByID(ctx, in.MatchID)
	if err != nil {
		return match.Record{}, ErrInternal
	}

	if u.invalidator != nil {
		u.invalidator.InvalidateMatches(ctx, []uuid.UUID{rec.UserID})
	}
	if u.notifier != nil {
		u.notifier.MatchesUpdated(rec.UserID)
	}

	return updated, nil
}

func transitionAllowed(from, to match.Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
