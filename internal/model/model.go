// Package model defines the domain types shared across the application:
// lists, entries, watches, users, and invites.
package model

import "time"

// Status is the viewing state of a watch (and, derived, of an entry).
type Status string

const (
	StatusPlanned  Status = "planned"
	StatusWatching Status = "watching"
	StatusFinished Status = "finished"
)

// MediaType distinguishes movies from TV series.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// Rating is a coarse three-tier rating a user assigns to an entry.
type Rating string

const (
	RatingDisliked Rating = "disliked"
	RatingLiked    Rating = "liked"
	RatingLoved    Rating = "loved"
)

// Role controls what a list member may do.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// User is an account that can own lists and contribute watches.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// List is a named collection of entries shared among members.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member ties a user to a list with a role.
type Member struct {
	ListID   string    `json:"listId"`
	UserID   string    `json:"userId"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Invite is a single-use code that grants membership on a list.
type Invite struct {
	Code      string     `json:"code"`
	ListID    string     `json:"listId"`
	Role      Role       `json:"role"`
	CreatedBy string     `json:"createdBy"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedBy    string     `json:"usedBy,omitempty"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// Watch is one recorded viewing event of an entry.
//
// StartDate and EndDate are ISO calendar dates ("2006-01-02"); the empty
// string means the date is unknown. When both are present, EndDate is
// never before StartDate.
type Watch struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	StartDate string    `json:"startDate,omitempty"`
	EndDate   string    `json:"endDate,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntryMeta is the derived summary of an entry's watch set.
//
// It is always recomputed from the full watch set and persisted alongside
// it; nothing mutates these fields directly.
type EntryMeta struct {
	Status         Status `json:"status"`
	FirstStartDate string `json:"firstStartDate,omitempty"`
	FirstEndDate   string `json:"firstEndDate,omitempty"`
	LastStartDate  string `json:"lastStartDate,omitempty"`
	LastEndDate    string `json:"lastEndDate,omitempty"`
	LastPlatform   string `json:"lastPlatform,omitempty"`
}

// Entry is one title tracked on one list, with its watch history.
type Entry struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId"`
	CatalogID int64     `json:"catalogId,omitempty"`
	MediaType MediaType `json:"mediaType"`
	Title     string    `json:"title"`
	Year      int       `json:"year,omitempty"`
	Overview  string    `json:"overview,omitempty"`
	PosterURL string    `json:"posterUrl,omitempty"`
	Rating    Rating    `json:"rating,omitempty"`
	Stub      bool      `json:"stub,omitempty"`
	Watches   []Watch   `json:"watches"`
	Meta      EntryMeta `json:"meta"`
	AddedBy   string    `json:"addedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPlanned, StatusWatching, StatusFinished:
		return true
	}
	return false
}

// ValidMediaType reports whether m is one of the known media types.
func ValidMediaType(m MediaType) bool {
	return m == MediaMovie || m == MediaTV
}

// ValidRating reports whether r is one of the known ratings.
func ValidRating(r Rating) bool {
	switch r {
	case RatingDisliked, RatingLiked, RatingLoved:
		return true
	}
	return false
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanEdit reports whether the role allows mutating entries and watches.
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}
