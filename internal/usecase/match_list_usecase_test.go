package usecase

import (
	"context"
	"testing"

	"persona-match/internal/domain/match"
	"persona-match/internal/domain/user"

	"github.com/google/uuid"
)

type listMatchRepo struct {
	stubMatchRepo
	records []match.Record
	listErr error
}

func (s *listMatchRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]match.Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.records, nil
}

func TestListForUserEnrichesSummaries(t *testing.T) {
	owner := uuid.New()
	counterpart := jobSnapshot()
	counterpart.Profile.Headline = "Backend engineer"
	counterpart.Profile.Company = "Acme"

	repo := &listMatchRepo{records: []match.Record{
		{
			ID:            uuid.New(),
			UserID:        owner,
			MatchedUserID: counterpart.UserID,
			Status:        match.StatusPending,
			Score:         match.Score{Overall: 0.8},
		},
	}}
	profiles := &stubProfileRepo{population: []user.Snapshot{counterpart}}

	uc := NewMatchListUsecase(repo, profiles, nil, nil)
	items, err := uc.ListForUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	got := items[0]
	if got.Record.MatchedUserID != counterpart.UserID {
		t.Fatalf("matched user = %s, want %s", got.Record.MatchedUserID, counterpart.UserID)
	}
	if got.Summary.Headline != "Backend engineer" || got.Summary.Company != "Acme" {
		t.Fatalf("summary = %+v, want profile fields carried over", got.Summary)
	}
}

func TestListForUserMissingProfile(t *testing.T) {
	owner := uuid.New()
	matched := uuid.New()

	repo := &listMatchRepo{records: []match.Record{
		{ID: uuid.New(), UserID: owner, MatchedUserID: matched, Status: match.StatusPending},
	}}
	profiles := &stubProfileRepo{}

	uc := NewMatchListUsecase(repo, profiles, nil, nil)
	items, err := uc.ListForUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want the record even without a profile", len(items))
	}
	if items[0].Summary.UserID != matched {
		t.Fatalf("summary user id = %s, want %s", items[0].Summary.UserID, matched)
	}
	if items[0].Summary.Headline != "" {
		t.Fatalf("summary headline = %q, want empty", items[0].Summary.Headline)
	}
}

func TestListForUserRequiresCaller(t *testing.T) {
	uc := NewMatchListUsecase(&listMatchRepo{}, &stubProfileRepo{}, nil, nil)
	if _, err := uc.ListForUser(context.Background(), uuid.Nil); err != ErrUnauthorized {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestListForUserEmpty(t *testing.T) {
	uc := NewMatchListUsecase(&listMatchRepo{}, &stubProfileRepo{}, nil, nil)
	items, err := uc.ListForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}
