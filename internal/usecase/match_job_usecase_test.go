package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"persona-match/internal/config"
	"persona-match/internal/domain/match"
	"persona-match/internal/domain/user"

	"github.com/google/uuid"
)

type stubProfileRepo struct {
	population []user.Snapshot
	fetchErr   error
	existing   map[uuid.UUID]bool
	existsErr  error
}

func (s *stubProfileRepo) FetchAll(ctx context.Context) ([]user.Snapshot, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.population, nil
}

func (s *stubProfileRepo) FetchByUserID(ctx context.Context, userID uuid.UUID) (user.Snapshot, bool, error) {
	for _, snap := range s.population {
		if snap.UserID == userID {
			return snap, true, nil
		}
	}
	return user.Snapshot{}, false, nil
}

func (s *stubProfileRepo) ExistsByID(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.existing[userID], nil
}

type upsertCall struct {
	userID        uuid.UUID
	matchedUserID uuid.UUID
	score         match.Score
}

type stubMatchRepo struct {
	mu       sync.Mutex
	calls    []upsertCall
	upsertFn func(call int, userID, matchedUserID uuid.UUID) (bool, error)
}

func (s *stubMatchRepo) Upsert(ctx context.Context, userID, matchedUserID uuid.UUID, score match.Score) (bool, error) {
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, upsertCall{userID, matchedUserID, score})
	s.mu.Unlock()
	if s.upsertFn != nil {
		return s.upsertFn(n, userID, matchedUserID)
	}
	return true, nil
}

func (s *stubMatchRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]match.Record, error) {
	return nil, nil
}

func (s *stubMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (match.Record, error) {
	return match.Record{}, errors.New("not implemented")
}

func (s *stubMatchRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status match.Status, scheduledTime *time.Time) error {
	return errors.New("not implemented")
}

func (s *stubMatchRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	return len(s.calls), nil
}

type stubInvalidator struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (s *stubInvalidator) InvalidateMatches(ctx context.Context, userIDs []uuid.UUID) {
	s.mu.Lock()
	s.ids = append(s.ids, userIDs...)
	s.mu.Unlock()
}

type stubNotifier struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (s *stubNotifier) MatchesUpdated(userID uuid.UUID) {
	s.mu.Lock()
	s.ids = append(s.ids, userID)
	s.mu.Unlock()
}

func jobSnapshot() user.Snapshot {
	return user.Snapshot{
		UserID: uuid.New(),
		Profile: &user.Profile{
			City:       "Austin",
			State:      "TX",
			Profession: "Software Engineer",
			Skills:     []string{"Go", "PostgreSQL"},
		},
		Persona: &user.Persona{
			MatchType:                 user.MatchTypeMirror,
			SkillsDesired:             []string{"Go"},
			ExperienceLevelPreference: user.ExperienceAny,
		},
	}
}

func jobConfig() config.MatchingConfig {
	return config.MatchingConfig{
		Threshold:     0.5,
		UpsertRetries: 3,
	}
}

func newTestJob(profiles *stubProfileRepo, matches *stubMatchRepo, cfg config.MatchingConfig) *MatchJob {
	j := NewMatchJob(profiles, matches, cfg, nil, nil, nil)
	j.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return j
}

func TestRecomputeForPopulationCounts(t *testing.T) {
	pop := []user.Snapshot{jobSnapshot(), jobSnapshot(), jobSnapshot()}
	profiles := &stubProfileRepo{population: pop}
	matches := &stubMatchRepo{}

	job := newTestJob(profiles, matches, jobConfig())
	res, err := job.RecomputeForPopulation(context.Background())
	if err != nil {
		t.Fatalf("RecomputeForPopulation: %v", err)
	}

	// Three mutually compatible users yield six directional pairs, all new.
	if res.Created != 6 || res.Updated != 0 || res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("result = %+v, want 6 created", res)
	}
	if len(matches.calls) != 6 {
		t.Fatalf("upsert calls = %d, want 6", len(matches.calls))
	}
	if res.Written() != 6 {
		t.Fatalf("Written() = %d, want 6", res.Written())
	}
}

func TestRecomputeForPopulationUpdatedCount(t *testing.T) {
	pop := []user.Snapshot{jobSnapshot(), jobSnapshot()}
	profiles := &stubProfileRepo{population: pop}
	matches := &stubMatchRepo{
		upsertFn: func(call int, _, _ uuid.UUID) (bool, error) {
			return call == 0, nil // first row fresh, second pre-existing
		},
	}

	job := newTestJob(profiles, matches, jobConfig())
	res, err := job.RecomputeForPopulation(context.Background())
	if err != nil {
		t.Fatalf("RecomputeForPopulation: %v", err)
	}
	if res.Created != 1 || res.Updated != 1 {
		t.Fatalf("result = %+v, want 1 created and 1 updated", res)
	}
}

func TestRecomputeForUserScopesSubject(t *testing.T) {
	pop := []user.Snapshot{jobSnapshot(), jobSnapshot(), jobSnapshot()}
	subject := pop[1].UserID
	profiles := &stubProfileRepo{
		population: pop,
		existing:   map[uuid.UUID]bool{subject: true},
	}
	matches := &stubMatchRepo{}

	job := newTestJob(profiles, matches, jobConfig())
	res, err := job.RecomputeForUser(context.Background(), subject)
	if err != nil {
		t.Fatalf("RecomputeForUser: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("created = %d, want 2", res.Created)
	}
	for _, c := range matches.calls {
		if c.userID != subject {
			t.Fatalf("upsert for unexpected subject %s", c.userID)
		}
	}
}

func TestRecomputeForUserUnknown(t *testing.T) {
	profiles := &stubProfileRepo{existing: map[uuid.UUID]bool{}}
	job := newTestJob(profiles, &stubMatchRepo{}, jobConfig())

	if _, err := job.RecomputeForUser(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if _, err := job.RecomputeForUser(context.Background(), uuid.Nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nil id err = %v, want ErrInvalidInput", err)
	}
}

func TestRunFetchFailureAborts(t *testing.T) {
	profiles := &stubProfileRepo{fetchErr: errors.New("connection refused")}
	matches := &stubMatchRepo{}

	job := newTestJob(profiles, matches, jobConfig())
	if _, err := job.RecomputeForPopulation(context.Background()); !errors.Is(err, ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}
	if len(matches.calls) != 0 {
		t.Fatalf("upsert calls = %d, want 0 after fetch failure", len(matches.calls))
	}
}

func TestRunRetriesTransientUpsert(t *testing.T) {
	pop := []user.Snapshot{jobSnapshot(), jobSnapshot()}
	profiles := &stubProfileRepo{population: pop}
	matches := &stubMatchRepo{
		upsertFn: func(call int, _, _ uuid.UUID) (bool, error) {
			if call == 0 {
				return false, errors.New("deadlock detected")
			}
			return true, nil
		},
	}

	job := newTestJob(profiles, matches, jobConfig())
	res, err := job.RecomputeForPopulation(context.Background())
	if err != nil {
		t.Fatalf("RecomputeForPopulation: %v", err)
	}
	if res.Failed != 0 || res.Created != 2 {
		t.Fatalf("result = %+v, want retry to recover both pairs", res)
	}
	// One retry on top of the two base calls.
	if len(matches.calls) != 3 {
		t.Fatalf("upsert calls = %d, want 3", len(matches.calls))
	}
}

func TestRunCountsExhaustedRetriesAsFailed(t *testing.T) {
	pop := []user.Snapshot{jobSnapshot(), jobSnapshot()}
	first := pop[0].UserID
	profiles := &stubProfileRepo{population: pop}
	matches := &stubMatchRepo{
		upsertFn: func(_ int, userID, _ uuid.UUID) (bool, error) {
			if userID == first {
				return false, errors.New("constraint violation")
			}
			return true, nil
		},
	}

	cfg := jobConfig()
	cfg.UpsertRetries = 2
	job := newTestJob(profiles, matches, cfg)

	res, err := job.RecomputeForPopulation(context.Background())
	if err != nil {
		t.Fatalf("RecomputeForPopulation: %v", err)
	}

	// The failing pair must not abort the run or hide inside the counts.
	if res.Failed != 1 || res.Created != 1 {
		t.Fatalf("result = %+v, want 1 failed and 1 created", res)
	}
}

func TestRunTimeoutSurfacesPartialResult(t *testing.T) {
	pop := []user.Snapshot{jobSnapshot(), jobSnapshot()}
	profiles := &stubProfileRepo{population: pop}

	ctx, cancel := context.WithCancel(context.Background())
	matches := &stubMatchRepo{
		upsertFn: func(call int, _, _ uuid.UUID) (bool, error) {
			if call == 0 {
				cancel() // run loses its context after the first write
			}
			return true, nil
		},
	}

	job := newTestJob(profiles, matches, jobConfig())
	res, err := job.RecomputeForPopulation(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res.Created != 1 {
		t.Fatalf("created = %d, want the one row written before cancellation", res.Created)
	}
	if len(matches.calls) != 1 {
		t.Fatalf("upsert calls = %d, want 1", len(matches.calls))
	}
}

func TestRunNotifiesTouchedUsers(t *testing.T) {
	pop := []user.Snapshot{jobSnapshot(), jobSnapshot()}
	profiles := &stubProfileRepo{population: pop}
	matches := &stubMatchRepo{}
	inv := &stubInvalidator{}
	notif := &stubNotifier{}

	job := NewMatchJob(profiles, matches, jobConfig(), inv, notif, nil)
	job.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }

	if _, err := job.RecomputeForPopulation(context.Background()); err != nil {
		t.Fatalf("RecomputeForPopulation: %v", err)
	}

	if len(inv.ids) != 2 {
		t.Fatalf("invalidated %d users, want 2", len(inv.ids))
	}
	if len(notif.ids) != 2 {
		t.Fatalf("notified %d users, want 2", len(notif.ids))
	}
}

func TestRunEmptyPopulation(t *testing.T) {
	profiles := &stubProfileRepo{}
	matches := &stubMatchRepo{}
	inv := &stubInvalidator{}

	job := NewMatchJob(profiles, matches, jobConfig(), inv, nil, nil)
	res, err := job.RecomputeForPopulation(context.Background())
	if err != nil {
		t.Fatalf("RecomputeForPopulation: %v", err)
	}
	if res != (RunResult{}) {
		t.Fatalf("result = %+v, want zero", res)
	}
	if len(inv.ids) != 0 {
		t.Fatalf("invalidated %d users, want none on an empty run", len(inv.ids))
	}
}
