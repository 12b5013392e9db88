package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/core/ports"
	"github.com/bellavista/carehome-cms/internal/pkg/sanitize"
)

const (
	maxSlugLen       = 50
	maxExcerptLen    = 180
	defaultNewsPlace = "All Locations"
)

// NewsService manages news articles.
type NewsService struct {
	repo  ports.NewsRepository
	audit *AuditLog
	log   zerolog.Logger
}

func NewNewsService(repo ports.NewsRepository, audit *AuditLog, log zerolog.Logger) *NewsService {
	return &NewsService{repo: repo, audit: audit, log: log}
}

// List returns articles newest first.
func (s *NewsService) List(ctx context.Context) ([]domain.NewsItem, error) {
	return s.repo.List(ctx)
}

func (s *NewsService) Get(ctx context.Context, id string) (*domain.NewsItem, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *NewsService) Create(ctx context.Context, in ports.NewsInput) (*domain.NewsItem, error) {
	v := &domain.ValidationError{}
	requireText(v, "title", in.Title)
	requireText(v, "fullDescription", in.FullDescription)
	requireText(v, "author", in.Author)
	checkCategory(v, in.Category)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	item := &domain.NewsItem{
		Category:  domain.NewsCategories[0],
		Location:  defaultNewsPlace,
		Gallery:   []string{},
		CreatedAt: time.Now().UTC(),
	}
	applyNews(item, in)
	item.ID = newsID(item.Title)

	if err := s.repo.Create(ctx, item); err != nil {
		s.audit.LogAction(ctx, actionCreate, "news", item.ID, nil, false)
		return nil, fmt.Errorf("create news: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "news", item.ID, changedFields(in), true)
	return item, nil
}

func (s *NewsService) Update(ctx context.Context, id string, in ports.NewsInput) (*domain.NewsItem, error) {
	item, err := s.repo.Update(ctx, id, func(n *domain.NewsItem) error {
		v := &domain.ValidationError{}
		if in.Title != nil && sanitize.Text(*in.Title) == "" {
			v.Add("title", "must not be empty")
		}
		checkCategory(v, in.Category)
		if err := v.OrNil(); err != nil {
			return err
		}
		applyNews(n, in)
		return nil
	})
	if err != nil {
		s.audit.LogAction(ctx, actionUpdate, "news", id, nil, false)
		return nil, err
	}
	s.audit.LogAction(ctx, actionUpdate, "news", id, changedFields(in), true)
	return item, nil
}

func (s *NewsService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.LogAction(ctx, actionDelete, "news", id, nil, false)
		return err
	}
	s.audit.LogAction(ctx, actionDelete, "news", id, nil, true)
	return nil
}

func applyNews(n *domain.NewsItem, in ports.NewsInput) {
	setText(&n.Title, in.Title)
	setText(&n.Excerpt, in.Excerpt)
	n.Excerpt = truncate(n.Excerpt, maxExcerptLen)
	setText(&n.FullDescription, in.FullDescription)
	setText(&n.Image, in.Image)
	setText(&n.Category, in.Category)
	setText(&n.Date, in.Date)
	setText(&n.Location, in.Location)
	setText(&n.Author, in.Author)
	setText(&n.Badge, in.Badge)
	setBool(&n.Important, in.Important)
	setList(&n.Gallery, in.Gallery)
	setText(&n.VideoURL, in.VideoURL)
	setText(&n.VideoDescription, in.VideoDescription)
}

func checkCategory(v *domain.ValidationError, category *string) {
	if category != nil && !slices.Contains(domain.NewsCategories, sanitize.Text(*category)) {
		v.Add("category", "must be one of "+strings.Join(domain.NewsCategories, ", "))
	}
}

// newsID builds a readable id from the title plus a random suffix, e.g.
// "summer-fete-a1b2c3".
func newsID(title string) string {
	base := Slug(title)
	if base == "" {
		return uuid.NewString()
	}
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return base + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	}
	return base + "-" + hex.EncodeToString(b)
}

// Slug lower-cases s, joins words with hyphens and cuts it to 50 characters.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	return out
}

// FAQService manages frequently asked questions.
type FAQService struct {
	repo  ports.FAQRepository
	audit *AuditLog
	log   zerolog.Logger
}

func NewFAQService(repo ports.FAQRepository, audit *AuditLog, log zerolog.Logger) *FAQService {
	return &FAQService{repo: repo, audit: audit, log: log}
}

// List returns FAQs by display order, then age.
func (s *FAQService) List(ctx context.Context) ([]domain.FAQ, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b domain.FAQ) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return items, nil
}

func (s *FAQService) Create(ctx context.Context, in ports.FAQInput) (*domain.FAQ, error) {
	v := &domain.ValidationError{}
	requireText(v, "question", in.Question)
	requireText(v, "answer", in.Answer)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	faq := &domain.FAQ{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if in.ID != nil {
		if id := sanitize.Text(*in.ID); id != "" {
			faq.ID = id
		}
	}
	setText(&faq.Question, in.Question)
	setText(&faq.Answer, in.Answer)
	setInt(&faq.Order, in.Order)

	if err := s.repo.Create(ctx, faq); err != nil {
		s.audit.LogAction(ctx, actionCreate, "faq", faq.ID, nil, false)
		return nil, fmt.Errorf("create faq: %w", err)
	}
	s.audit.LogAction(ctx, actionCreate, "faq", faq.ID, changedFields(in), true)
	return faq, nil
}

func (s *FAQService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.audit.LogAction(ctx, actionDelete, "faq", id, nil, false)
		return err
	}
	s.audit.LogAction(ctx, actionDelete, "faq", id, nil, true)
	return nil
}
