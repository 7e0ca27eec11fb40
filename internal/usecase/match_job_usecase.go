package usecase

import (
	"context"
	"errors"
	"time"

	"persona-match/internal/config"
	"persona-match/internal/domain/matching"
	"persona-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunResult is what a triggering caller gets back. Failed pairs are reported,
// never folded into the success count.
type RunResult struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

func (r RunResult) Written() int {
	return r.Created + r.Updated
}

// MatchInvalidator drops any cached view of a user's match list after a run
// rewrites it.
type MatchInvalidator interface {
	InvalidateMatches(ctx context.Context, userIDs []uuid.UUID)
}

// MatchNotifier signals affected users that their match list changed.
// Fire-and-forget; downstream icebreaker/venue generation hangs off it.
type MatchNotifier interface {
	MatchesUpdated(userID uuid.UUID)
}

type MatchJobUsecase interface {
	RecomputeForUser(ctx context.Context, userID uuid.UUID) (RunResult, error)
	RecomputeForPopulation(ctx context.Context) (RunResult, error)
}

// MatchJob is the externally triggered scoring job: one bulk population read,
// all scoring in memory, then a sequence of independent per-pair upserts.
// A transient write failure therefore never forces a re-fetch, and a timed
// out run leaves only individually complete rows behind.
type MatchJob struct {
	profiles repository.ProfileRepository
	matches  repository.MatchRepository
	builder  *matching.Builder

	invalidator MatchInvalidator
	notifier    MatchNotifier

	cfg    config.MatchingConfig
	logger *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewMatchJob(
	profiles repository.ProfileRepository,
	matches repository.MatchRepository,
	cfg config.MatchingConfig,
	invalidator MatchInvalidator,
	notifier MatchNotifier,
	logger *zap.Logger,
) *MatchJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchJob{
		profiles:    profiles,
		matches:     matches,
		builder:     matching.NewBuilder(cfg.Threshold, logger),
		invalidator: invalidator,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

func (j *MatchJob) RecomputeForUser(ctx context.Context, userID uuid.UUID) (RunResult, error) {
	if userID == uuid.Nil {
		return RunResult{}, ErrInvalidInput
	}

	exists, err := j.profiles.ExistsByID(ctx, userID)
	if err != nil {
		return RunResult{}, ErrInternal
	}
	if !exists {
		return RunResult{}, ErrUserNotFound
	}

	return j.run(ctx, []uuid.UUID{userID})
}

func (j *MatchJob) RecomputeForPopulation(ctx context.Context) (RunResult, error) {
	return j.run(ctx, nil)
}

func (j *MatchJob) run(ctx context.Context, subjects []uuid.UUID) (RunResult, error) {
	if j.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.cfg.JobTimeout)
		defer cancel()
	}

	started := time.Now()

	// Fetch failure is fatal: nothing has been written yet, so abort clean.
	population, err := j.profiles.FetchAll(ctx)
	if err != nil {
		j.logger.Error("population fetch failed, aborting run", zap.Error(err))
		return RunResult{}, ErrInternal
	}

	proposals, skipped, buildErr := j.builder.Build(ctx, subjects, population)

	res := RunResult{Skipped: skipped}
	touched := make(map[uuid.UUID]struct{})

	for _, p := range proposals {
		if ctx.Err() != nil {
			// Rows written so far are each individually complete; the
			// caller may simply retry the run.
			break
		}

		created, err := j.upsertWithRetry(ctx, p)
		if err != nil {
			res.Failed++
			j.logger.Warn("match upsert failed after retries",
				zap.String("subject_id", p.UserID.String()),
				zap.String("candidate_id", p.MatchedUserID.String()),
				zap.Error(err))
			continue
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
		touched[p.UserID] = struct{}{}
	}

	j.afterRun(touched)

	j.logger.Info("match job run finished",
		zap.Int("subjects", len(subjects)),
		zap.Int("population", len(population)),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", time.Since(started)))

	// A timed out or cancelled run surfaces as an error alongside the
	// partial counts; every row already written is individually complete.
	if buildErr != nil {
		return res, buildErr
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

func (j *MatchJob) upsertWithRetry(ctx context.Context, p matching.Proposal) (bool, error) {
	attempts := j.cfg.UpsertRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
			if err := j.sleep(ctx, backoff); err != nil {
				return false, errors.Join(lastErr, err)
			}
		}

		created, err := j.matches.Upsert(ctx, p.UserID, p.MatchedUserID, p.Score)
		if err == nil {
			return created, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return false, lastErr
}

func (j *MatchJob) afterRun(touched map[uuid.UUID]struct{}) {
	if len(touched) == 0 {
		return
	}

	ids := make([]uuid.UUID, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}

	if j.invalidator != nil {
		// Fresh context: invalidation should still happen when the run
		// context already timed out.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		j.invalidator.InvalidateMatches(ctx, ids)
	}
	if j.notifier != nil {
		for _, id := range ids {
			j.notifier.MatchesUpdated(id)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
