// Package places fetches listing reviews from the Google Places Details API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/pkg/retry"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place/details/json"
	requestTimeout = 10 * time.Second
	maxBodyBytes   = 2 << 20
)

// Client implements ports.ReviewSource. Outbound calls are throttled so a
// long location list cannot exhaust the API quota.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   retry.Config
	log     zerolog.Logger
}

// NewClient allows one request per second with a burst of two.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		retry:   retry.DefaultConfig(),
		log:     log,
	}
}

// WithBaseURL points the client at another endpoint.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// WithRetry replaces the retry schedule.
func (c *Client) WithRetry(cfg retry.Config) *Client {
	c.retry = cfg
	return c
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Reviews []struct {
			AuthorName string `json:"author_name"`
			Rating     int    `json:"rating"`
			Text       string `json:"text"`
			Time       int64  `json:"time"`
		} `json:"reviews"`
	} `json:"result"`
}

// FetchReviews returns the reviews Google exposes for placeID.
func (c *Client) FetchReviews(ctx context.Context, placeID string) ([]domain.ExternalReview, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("places: no api key configured")
	}
	return retry.Do(ctx, c.retry, c.log, "places.details", func(ctx context.Context) ([]domain.ExternalReview, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &retry.Permanent{Err: err}
		}
		return c.fetch(ctx, placeID)
	})
}

func (c *Client) fetch(ctx context.Context, placeID string) ([]domain.ExternalReview, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "reviews")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &retry.Permanent{Err: fmt.Errorf("places request: %w", err)}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places call: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("places: http %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, &retry.Permanent{Err: fmt.Errorf("places: http %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("places read: %w", err)
	}
	var out detailsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &retry.Permanent{Err: fmt.Errorf("places decode: %w", err)}
	}

	switch out.Status {
	case "OK":
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		return nil, fmt.Errorf("places: status %s", out.Status)
	default:
		return nil, &retry.Permanent{Err: fmt.Errorf("places: status %s: %s", out.Status, out.ErrorMessage)}
	}

	reviews := make([]domain.ExternalReview, 0, len(out.Result.Reviews))
	for _, r := range out.Result.Reviews {
		ext := domain.ExternalReview{AuthorName: r.AuthorName, Rating: r.Rating, Text: r.Text}
		if r.Time > 0 {
			ext.Time = time.Unix(r.Time, 0).UTC()
		}
		reviews = append(reviews, ext)
	}
	return reviews, nil
}
