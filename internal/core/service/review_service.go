package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/pkg/sanitize"
)

// ReviewService accepts reviews from the public site and the kiosk.
type ReviewService struct {
	repo  ports.ReviewRepository
	audit *AuditLog
	log   zerolog.Logger
}

func NewReviewService(repo ports.ReviewRepository, audit *AuditLog, log zerolog.Logger) *ReviewService {
	return &ReviewService{repo: repo, audit: audit, log: log}
}

// List returns live reviews, newest first. An empty location lists all homes.
func (s *ReviewService) List(ctx context.Context, location string) ([]domain.Review, error) {
	return s.repo.List(ctx, sanitize.Text(location))
}

func (s *ReviewService) Submit(ctx context.Context, in ports.ReviewInput) (*domain.Review, error) {
	r := &domain.Review{
		ID:         uuid.NewString(),
		Location:   sanitize.Text(in.Location),
		Name:       sanitize.Text(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Rating:     in.Rating,
		ReviewText: sanitize.Text(in.ReviewText),
		Source:     domain.ReviewSourceWebsite,
		CreatedAt:  time.Now().UTC(),
	}
	if in.Source == domain.ReviewSourceKiosk {
		r.Source = domain.ReviewSourceKiosk
	}

	v := &domain.ValidationError{}
	requireText(v, "location", &r.Location)
	requireText(v, "name", &r.Name)
	requireText(v, "email", &r.Email)
	requireText(v, "reviewText", &r.ReviewText)
	if r.Rating < 1 || r.Rating > 5 {
		v.Add("rating", "must be between 1 and 5")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.audit.LogAction(ctx, actionCreate, "review", r.ID, nil, false)
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "review", r.ID, map[string]any{"location": r.Location, "rating": r.Rating, "source": r.Source}, true)
	return r, nil
}

// Delete hides a review. The row is kept so the audit trail still resolves.
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.LogAction(ctx, actionDelete, "review", id, nil, false)
		return err
	}
	s.audit.LogAction(ctx, actionDelete, "review", id, nil, true)
	return nil
}

// ---------------------------------------------------------------------------
// Import from external listings
// ---------------------------------------------------------------------------

// ReviewImporter copies reviews from an external listing into the review
// table. Reviews already stored under the same author and text are skipped,
// so repeated runs over unchanged listings insert nothing.
type ReviewImporter struct {
	repo       ports.ReviewRepository
	source     ports.ReviewSource
	locations  []domain.ReviewLocation
	log        zerolog.Logger
	onImported func(location string, n int)
}

func NewReviewImporter(repo ports.ReviewRepository, source ports.ReviewSource, locations []domain.ReviewLocation, log zerolog.Logger) *ReviewImporter {
	return &ReviewImporter{repo: repo, source: source, locations: locations, log: log}
}

// OnImported registers a callback run after each location with the number of
// new reviews stored.
func (i *ReviewImporter) OnImported(fn func(location string, n int)) *ReviewImporter {
	i.onImported = fn
	return i
}

// Run imports every configured location. A failing location is logged and
// counted; the others still run. The error is non-nil only when ctx ended.
func (i *ReviewImporter) Run(ctx context.Context) (ports.ImportResult, error) {
	var res ports.ImportResult
	started := time.Now()

	for _, loc := range i.locations {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !validPlaceID(loc.PlaceID) {
			i.log.Warn().Str("location", loc.Name).Str("place_id", loc.PlaceID).Msg("skipping review import: invalid place id")
			continue
		}
		res.Locations++

		imported, err := i.importLocation(ctx, loc, &res)
		if err != nil {
			res.Failed++
			i.log.Error().Err(err).Str("location", loc.Name).Msg("review import failed")
			continue
		}
		if i.onImported != nil {
			i.onImported(loc.Name, imported)
		}
		i.log.Info().Str("location", loc.Name).Int("imported", imported).Msg("review import finished for location")
	}

	i.log.Info().
		Int("locations", res.Locations).
		Int("fetched", res.Fetched).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("took", time.Since(started)).
		Msg("review import run complete")
	return res, nil
}

func (i *ReviewImporter) importLocation(ctx context.Context, loc domain.ReviewLocation, res *ports.ImportResult) (int, error) {
	reviews, err := i.source.FetchReviews(ctx, loc.PlaceID)
	if err != nil {
		return 0, err
	}
	res.Fetched += len(reviews)

	imported := 0
	for _, ext := range reviews {
		name := sanitize.Text(ext.AuthorName)
		text := sanitize.Text(ext.Text)
		if name == "" || text == "" || ext.Rating < 1 || ext.Rating > 5 {
			res.Skipped++
			continue
		}

		exists, err := i.repo.ExistsByAuthorText(ctx, name, text)
		if err != nil {
			return imported, fmt.Errorf("check duplicate: %w", err)
		}
		if exists {
			res.Skipped++
			continue
		}

		created := ext.Time.UTC()
		if ext.Time.IsZero() {
			created = time.Now().UTC()
		}
		r := &domain.Review{
			ID:         uuid.NewString(),
			Location:   loc.Name,
			Name:       name,
			Email:      domain.ImportedReviewEmail,
			Rating:     ext.Rating,
			ReviewText: text,
			Source:     domain.ReviewSourceGoogle,
			CreatedAt:  created,
		}
		if err := i.repo.Create(ctx, r); err != nil {
			return imported, fmt.Errorf("store review: %w", err)
		}
		imported++
		res.Imported++
	}
	return imported, nil
}

func validPlaceID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && !strings.Contains(strings.ToUpper(id), "PLACEHOLDER")
}
