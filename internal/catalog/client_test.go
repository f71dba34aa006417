package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/reelistapp/reelist/internal/model"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient("test-key", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestClient_SearchTitle_Movie(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/search/movie",
		httpmock.NewStringResponder(200, `{
			"page": 1,
			"total_results": 2,
			"results": [
				{"id": 27205, "title": "Inception", "release_date": "2010-07-15", "poster_path": "/abc.jpg"},
				{"id": 64956, "title": "Inception: The Cobol Job", "release_date": "2010-12-07"}
			]
		}`))

	candidates, err := c.SearchTitle(context.Background(), "Inception", model.MediaMovie)
	if err != nil {
		t.Fatalf("SearchTitle() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}

	got := candidates[0]
	if got.ID != 27205 || got.Title != "Inception" {
		t.Errorf("candidate = %+v", got)
	}
	if got.Year != 2010 {
		t.Errorf("Year = %d, want 2010", got.Year)
	}
	if got.PosterURL != posterBaseURL+"/abc.jpg" {
		t.Errorf("PosterURL = %q", got.PosterURL)
	}
	if got.MediaType != model.MediaMovie {
		t.Errorf("MediaType = %q, want movie", got.MediaType)
	}
}

func TestClient_SearchTitle_TVUsesNameFields(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/search/tv",
		httpmock.NewStringResponder(200, `{
			"results": [
				{"id": 70523, "name": "Dark", "first_air_date": "2017-12-01"}
			]
		}`))

	candidates, err := c.SearchTitle(context.Background(), "Dark", model.MediaTV)
	if err != nil {
		t.Fatalf("SearchTitle() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(candidates))
	}
	if candidates[0].Title != "Dark" || candidates[0].Year != 2017 {
		t.Errorf("candidate = %+v", candidates[0])
	}
}

func TestClient_SearchTitle_CachesRepeatedQueries(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/search/movie",
		httpmock.NewStringResponder(200, `{"results": [{"id": 1, "title": "Heat"}]}`))

	for i := 0; i < 3; i++ {
		if _, err := c.SearchTitle(context.Background(), "Heat", model.MediaMovie); err != nil {
			t.Fatalf("SearchTitle() #%d error = %v", i, err)
		}
	}
	// Case-insensitive cache key.
	if _, err := c.SearchTitle(context.Background(), "HEAT", model.MediaMovie); err != nil {
		t.Fatalf("SearchTitle(HEAT) error = %v", err)
	}

	if calls := httpmock.GetTotalCallCount(); calls != 1 {
		t.Errorf("HTTP calls = %d, want 1 (cache hit)", calls)
	}
}

func TestClient_SearchTitle_Errors(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/search/movie",
		httpmock.NewStringResponder(500, `{"status_message": "boom"}`))

	if _, err := c.SearchTitle(context.Background(), "Heat", model.MediaMovie); err == nil {
		t.Error("SearchTitle() error = nil, want error on 500")
	}

	if _, err := c.SearchTitle(context.Background(), "   ", model.MediaMovie); err == nil {
		t.Error("SearchTitle() error = nil, want error on empty query")
	}
}

func TestClient_SearchTitle_CapsResults(t *testing.T) {
	c := newTestClient(t)

	body := `{"results": [
		{"id": 1, "title": "A"}, {"id": 2, "title": "B"}, {"id": 3, "title": "C"},
		{"id": 4, "title": "D"}, {"id": 5, "title": "E"}, {"id": 6, "title": "F"},
		{"id": 7, "title": "G"}
	]}`
	httpmock.RegisterResponder("GET", defaultBaseURL+"/search/movie",
		httpmock.NewStringResponder(200, body))

	candidates, err := c.SearchTitle(context.Background(), "letter", model.MediaMovie)
	if err != nil {
		t.Fatalf("SearchTitle() error = %v", err)
	}
	if len(candidates) != searchLimit {
		t.Errorf("len(candidates) = %d, want %d", len(candidates), searchLimit)
	}
}

func TestClient_GetDetails(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/movie/27205",
		httpmock.NewStringResponder(200, `{
			"id": 27205, "title": "Inception", "release_date": "2010-07-15",
			"overview": "A thief who steals corporate secrets.",
			"poster_path": "/abc.jpg"
		}`))

	details, err := c.GetDetails(context.Background(), model.MediaMovie, 27205)
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}
	if details.Title != "Inception" || details.Year != 2010 {
		t.Errorf("details = %+v", details)
	}
	if details.Overview == "" {
		t.Error("Overview empty")
	}
}

func TestClient_GetDetails_TVEndpoint(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("GET", defaultBaseURL+"/tv/70523",
		httpmock.NewStringResponder(200, `{"id": 70523, "name": "Dark", "first_air_date": "2017-12-01"}`))

	details, err := c.GetDetails(context.Background(), model.MediaTV, 70523)
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}
	if details.Title != "Dark" || details.MediaType != model.MediaTV {
		t.Errorf("details = %+v", details)
	}
}

func TestClient_GetDetails_InvalidID(t *testing.T) {
	c := newTestClient(t)
	if _, err := c.GetDetails(context.Background(), model.MediaMovie, 0); err == nil {
		t.Error("GetDetails(0) error = nil, want error")
	}
}
