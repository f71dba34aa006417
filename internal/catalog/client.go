// Package catalog provides a client for the TMDB v3 API, used to enrich
// imported and manually added entries with canonical title metadata.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/reelistapp/reelist/internal/model"
)

const (
	defaultBaseURL   = "https://api.themoviedb.org/3"
	posterBaseURL    = "https://image.tmdb.org/t/p/w500"
	defaultCacheSize = 256
	searchLimit      = 5
)

// Client calls the TMDB search and details endpoints. Requests are rate
// limited and search results are cached, since an import run frequently
// repeats the same query.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	cache       *lru.Cache[string, []Candidate]
	logger      *slog.Logger
}

// NewClient creates a TMDB client. timeout bounds each request; a lookup
// that exceeds it surfaces as an error that import callers degrade on.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	cache, err := lru.New[string, []Candidate](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create search cache: %w", err)
	}

	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		// TMDB allows ~50 req/s; stay well under with a small burst.
		rateLimiter: rate.NewLimiter(rate.Limit(20), 5),
		cache:       cache,
		logger:      logger,
	}, nil
}

// SearchTitle searches the catalog for titles matching the query.
func (c *Client) SearchTitle(ctx context.Context, query string, mediaType model.MediaType) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	cacheKey := string(mediaType) + ":" + strings.ToLower(query)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := "/search/movie"
	if mediaType == model.MediaTV {
		endpoint = "/search/tv"
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("api_key", c.apiKey)

	var resp searchResponse
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	c.logger.Debug("catalog search",
		"query", query,
		"media_type", mediaType,
		"results", len(resp.Results),
	)

	candidates := make([]Candidate, 0, searchLimit)
	for i := range resp.Results {
		if len(candidates) == searchLimit {
			break
		}
		r := &resp.Results[i]
		candidates = append(candidates, Candidate{
			ID:        r.ID,
			MediaType: mediaType,
			Title:     pickTitle(r.Title, r.Name),
			Year:      yearOf(pickTitle(r.ReleaseDate, r.FirstAirDate)),
			PosterURL: posterURL(r.PosterPath),
		})
	}

	c.cache.Add(cacheKey, candidates)
	return candidates, nil
}

// GetDetails fetches canonical metadata for one title by catalog ID.
func (c *Client) GetDetails(ctx context.Context, mediaType model.MediaType, id int64) (*Details, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid catalog id %d", id)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	endpoint := "/movie/" + strconv.FormatInt(id, 10)
	if mediaType == model.MediaTV {
		endpoint = "/tv/" + strconv.FormatInt(id, 10)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)

	var resp detailsResponse
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, fmt.Errorf("details %d: %w", id, err)
	}

	return &Details{
		ID:        resp.ID,
		MediaType: mediaType,
		Title:     pickTitle(resp.Title, resp.Name),
		Year:      yearOf(pickTitle(resp.ReleaseDate, resp.FirstAirDate)),
		Overview:  resp.Overview,
		PosterURL: posterURL(resp.PosterPath),
	}, nil
}

// getJSON performs a GET against the API and decodes the JSON body.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

func pickTitle(movie, tv string) string {
	if movie != "" {
		return movie
	}
	return tv
}

// yearOf extracts the year from a "2006-01-02" release date, 0 if absent.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func posterURL(path string) string {
	if path == "" {
		return ""
	}
	return posterBaseURL + path
}
