package catalog

import "github.com/reelistapp/reelist/internal/model"

// Candidate is one search result for a title query.
type Candidate struct {
	ID        int64           `json:"id"`
	MediaType model.MediaType `json:"mediaType"`
	Title     string          `json:"title"`
	Year      int             `json:"year,omitempty"`
	PosterURL string          `json:"posterUrl,omitempty"`
}

// Details is the canonical metadata for one catalog title.
type Details struct {
	ID        int64           `json:"id"`
	MediaType model.MediaType `json:"mediaType"`
	Title     string          `json:"title"`
	Year      int             `json:"year,omitempty"`
	Overview  string          `json:"overview,omitempty"`
	PosterURL string          `json:"posterUrl,omitempty"`
}

// searchResponse is the wire shape of a TMDB search call.
type searchResponse struct {
	Page         int            `json:"page"`
	TotalResults int            `json:"total_results"`
	Results      []searchResult `json:"results"`
}

// searchResult covers both movie and TV search hits; movies carry
// title/release_date, TV carries name/first_air_date.
type searchResult struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
}

// detailsResponse is the wire shape of a TMDB details call.
type detailsResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
}
