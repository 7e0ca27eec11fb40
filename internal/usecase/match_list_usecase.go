package usecase

import (
	"context"
	"time"

	"persona-match/internal/domain/match"
	"persona-match/internal/infrastructure/cache"
	"persona-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const matchListCacheTTL = 5 * time.Minute

// MatchListItem is one entry of a user's directional match list, enriched
// with a summary of the matched user's profile.
type MatchListItem struct {
	Record  match.Record
	Summary MatchedUserSummary
}

type MatchedUserSummary struct {
	UserID     uuid.UUID
	Headline   string
	Profession string
	Company    string
	City       string
	State      string
}

type MatchListUsecase interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]MatchListItem, error)
}

type MatchList struct {
	matches  repository.MatchRepository
	profiles repository.ProfileRepository
	redis    *cache.Redis
	logger   *zap.Logger
}

func NewMatchListUsecase(matches repository.MatchRepository, profiles repository.ProfileRepository, redis *cache.Redis, logger *zap.Logger) *MatchList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchList{matches: matches, profiles: profiles, redis: redis, logger: logger}
}

func (u *MatchList) ListForUser(ctx context.Context, userID uuid.UUID) ([]MatchListItem, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	key := cache.MatchListKey(userID)
	var cached []MatchListItem
	if hit, err := u.redis.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	records, err := u.matches.ListByUserID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	items := make([]MatchListItem, 0, len(records))
	for _, rec := range records {
		item := MatchListItem{Record: rec, Summary: MatchedUserSummary{UserID: rec.MatchedUserID}}

		snap, found, err := u.profiles.FetchByUserID(ctx, rec.MatchedUserID)
		if err != nil {
			u.logger.Warn("matched profile lookup failed",
				zap.String("matched_user_id", rec.MatchedUserID.String()),
				zap.Error(err))
		} else if found && snap.Profile != nil {
			item.Summary.Headline = snap.Profile.Headline
			item.Summary.Profession = snap.Profile.Profession
			item.Summary.Company = snap.Profile.Company
			item.Summary.City = snap.Profile.City
			item.Summary.State = snap.Profile.State
		}
		items = append(items, item)
	}

	if err := u.redis.SetJSON(ctx, key, items, matchListCacheTTL); err != nil {
		u.logger.Warn("match list cache write failed", zap.Error(err))
	}

	return items, nil
}
