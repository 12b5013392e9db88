package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubReviewRepo struct {
	mu      sync.Mutex
	reviews []domain.Review
	deleted map[string]bool
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{deleted: make(map[string]bool)}
}

func (r *stubReviewRepo) Create(_ context.Context, rev *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, *rev)
	return nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, id string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.reviews {
		if rev.ID == id && !r.deleted[id] {
			return &rev, nil
		}
	}
	return nil, domain.ErrReviewNotFound
}

func (r *stubReviewRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted[id] = true
	return nil
}

func (r *stubReviewRepo) List(_ context.Context, location string) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rev := range r.reviews {
		if r.deleted[rev.ID] || (location != "" && rev.Location != location) {
			continue
		}
		out = append(out, rev)
	}
	return out, nil
}

func (r *stubReviewRepo) ExistsByAuthorText(_ context.Context, name, text string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.reviews {
		if rev.Name == name && rev.ReviewText == text {
			return true, nil
		}
	}
	return false, nil
}

type stubReviewSource struct {
	byPlace map[string][]domain.ExternalReview
	errs    map[string]error
	calls   []string
}

func (s *stubReviewSource) FetchReviews(_ context.Context, placeID string) ([]domain.ExternalReview, error) {
	s.calls = append(s.calls, placeID)
	if err := s.errs[placeID]; err != nil {
		return nil, err
	}
	return s.byPlace[placeID], nil
}

func newReviewSvc() (*ReviewService, *stubReviewRepo) {
	repo := newStubReviewRepo()
	return NewReviewService(repo, NewAuditLog(&stubAuditSink{}, zerolog.Nop()), zerolog.Nop()), repo
}

// ---------------------------------------------------------------------------
// ReviewService
// ---------------------------------------------------------------------------

func TestReviewService_Submit(t *testing.T) {
	svc, _ := newReviewSvc()

	r, err := svc.Submit(context.Background(), ports.ReviewInput{
		Location: "Barry", Name: "Pat", Email: "pat@example.com", Rating: 5,
		ReviewText: "Lovely staff <script>alert(1)</script>", Source: "kiosk",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.ReviewText != "Lovely staff" || r.Source != domain.ReviewSourceKiosk {
		t.Fatalf("unexpected review: %+v", r)
	}
}

func TestReviewService_SubmitCannotClaimImportedSource(t *testing.T) {
	svc, _ := newReviewSvc()
	r, err := svc.Submit(context.Background(), ports.ReviewInput{Location: "Barry", Name: "Pat", Email: "pat@example.com", Rating: 4, ReviewText: "Good", Source: "google"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Source != domain.ReviewSourceWebsite {
		t.Fatalf("source = %q", r.Source)
	}
}

func TestReviewService_SubmitValidation(t *testing.T) {
	svc, repo := newReviewSvc()
	_, err := svc.Submit(context.Background(), ports.ReviewInput{Location: "Barry", Name: "Pat", Email: "pat@example.com", Rating: 6, ReviewText: "Good"})
	var v *domain.ValidationError
	if !errors.As(err, &v) || v.Fields[0].Field != "rating" {
		t.Fatalf("expected rating error, got %v", err)
	}
	if len(repo.reviews) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestReviewService_DeleteIsSoft(t *testing.T) {
	svc, repo := newReviewSvc()
	ctx := context.Background()
	r, err := svc.Submit(ctx, ports.ReviewInput{Location: "Barry", Name: "Pat", Email: "pat@example.com", Rating: 3, ReviewText: "Fine"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ := svc.List(ctx, "Barry")
	if len(list) != 0 {
		t.Fatalf("deleted review still listed")
	}
	if len(repo.reviews) != 1 {
		t.Fatalf("row must be kept")
	}
	if err := svc.Delete(ctx, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// ReviewImporter
// ---------------------------------------------------------------------------

func TestReviewImporter_IsIdempotent(t *testing.T) {
	repo := newStubReviewRepo()
	posted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	source := &stubReviewSource{byPlace: map[string][]domain.ExternalReview{
		"place-barry": {
			{AuthorName: "Jo", Rating: 5, Text: "Wonderful care", Time: posted},
			{AuthorName: "Al", Rating: 4, Text: "Friendly"},
			{AuthorName: "", Rating: 4, Text: "anonymous"},
		},
	}}
	locations := []domain.ReviewLocation{
		{Name: "Bellavista Barry", PlaceID: "place-barry"},
		{Name: "New Home", PlaceID: "PLACEHOLDER_ID"},
	}
	counts := map[string]int{}
	imp := NewReviewImporter(repo, source, locations, zerolog.Nop()).OnImported(func(loc string, n int) { counts[loc] += n })

	first, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.Locations != 1 || first.Fetched != 3 || first.Imported != 2 || first.Skipped != 1 {
		t.Fatalf("unexpected first run: %+v", first)
	}
	if len(source.calls) != 1 {
		t.Fatalf("placeholder place id must not be fetched: %v", source.calls)
	}

	second, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if second.Imported != 0 || second.Skipped != 3 {
		t.Fatalf("second run should import nothing: %+v", second)
	}
	if len(repo.reviews) != 2 || counts["Bellavista Barry"] != 2 {
		t.Fatalf("reviews=%d counts=%v", len(repo.reviews), counts)
	}

	jo := repo.reviews[0]
	if jo.Source != domain.ReviewSourceGoogle || jo.Email != domain.ImportedReviewEmail || !jo.CreatedAt.Equal(posted) || jo.Location != "Bellavista Barry" {
		t.Fatalf("unexpected imported review: %+v", jo)
	}
}

func TestReviewImporter_FailingLocationDoesNotStopOthers(t *testing.T) {
	repo := newStubReviewRepo()
	source := &stubReviewSource{
		byPlace: map[string][]domain.ExternalReview{"ok": {{AuthorName: "Jo", Rating: 5, Text: "Great"}}},
		errs:    map[string]error{"bad": errors.New("status REQUEST_DENIED")},
	}
	imp := NewReviewImporter(repo, source, []domain.ReviewLocation{{Name: "A", PlaceID: "bad"}, {Name: "B", PlaceID: "ok"}}, zerolog.Nop())

	res, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Failed != 1 || res.Imported != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestReviewImporter_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	imp := NewReviewImporter(newStubReviewRepo(), &stubReviewSource{}, []domain.ReviewLocation{{Name: "A", PlaceID: "p"}}, zerolog.Nop())

	if _, err := imp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidPlaceID(t *testing.T) {
	for id, want := range map[string]bool{"ChIJH2gGQZIFbkgR": true, "": false, "  ": false, "placeholder-1": false} {
		if got := validPlaceID(id); got != want {
			t.Errorf("validPlaceID(%q) = %v", id, got)
		}
	}
}
