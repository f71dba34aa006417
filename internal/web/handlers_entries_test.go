package web

import (
	"testing"

	"github.com/reelistapp/reelist/internal/model"
)

func TestValidateDates(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr bool
	}{
		{"both empty", "", "", false},
		{"start only", "2024-01-05", "", false},
		{"valid range", "2024-01-05", "2024-02-01", false},
		{"same day", "2024-01-05", "2024-01-05", false},
		{"end before start", "2024-02-01", "2024-01-05", true},
		{"bad start format", "01/05/2024", "", true},
		{"bad end format", "", "yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateDates(tt.start, tt.end)
			if (msg != "") != tt.wantErr {
				t.Errorf("validateDates(%q, %q) = %q, wantErr %v", tt.start, tt.end, msg, tt.wantErr)
			}
		})
	}
}

func TestRemoveWatch(t *testing.T) {
	watches := []model.Watch{
		{ID: "w1", Status: model.StatusFinished},
		{ID: "w2", Status: model.StatusWatching},
	}

	remaining, msg := removeWatch(watches, "w1")
	if msg != "" {
		t.Fatalf("removeWatch() error = %q", msg)
	}
	if len(remaining) != 1 || remaining[0].ID != "w2" {
		t.Errorf("remaining = %+v, want only w2", remaining)
	}

	if _, msg = removeWatch(watches, "nope"); msg != "watch not found" {
		t.Errorf("unknown watch error = %q", msg)
	}
}

// The last remaining watch cannot be deleted on its own: that would leave
// a watchless entry whose summary silently reverts to planned.
func TestRemoveWatch_RefusesLastWatch(t *testing.T) {
	watches := []model.Watch{{ID: "w1", Status: model.StatusFinished}}

	remaining, msg := removeWatch(watches, "w1")
	if msg == "" {
		t.Fatalf("removeWatch() allowed deleting the last watch, remaining = %+v", remaining)
	}
	if msg == "watch not found" {
		t.Errorf("error = %q, want a last-watch refusal", msg)
	}
}

func TestBuildWatch(t *testing.T) {
	w, msg := buildWatch(watchRequest{
		Status:    model.StatusFinished,
		StartDate: "2024-01-05",
		EndDate:   "2024-01-06",
		Platform:  "  Netflix  ",
	}, "user1")
	if msg != "" {
		t.Fatalf("buildWatch() error = %q", msg)
	}
	if w.ID == "" {
		t.Error("watch has no ID")
	}
	if w.Platform != "Netflix" {
		t.Errorf("Platform = %q, want trimmed", w.Platform)
	}
	if w.UserID != "user1" {
		t.Errorf("UserID = %q", w.UserID)
	}

	// Missing status defaults to planned.
	w, msg = buildWatch(watchRequest{}, "user1")
	if msg != "" {
		t.Fatalf("buildWatch() error = %q", msg)
	}
	if w.Status != model.StatusPlanned {
		t.Errorf("Status = %q, want planned", w.Status)
	}

	// Unknown status is rejected.
	if _, msg = buildWatch(watchRequest{Status: "binged"}, "user1"); msg == "" {
		t.Error("unknown status accepted")
	}

	// Inverted dates are rejected.
	if _, msg = buildWatch(watchRequest{StartDate: "2024-02-01", EndDate: "2024-01-05"}, "user1"); msg == "" {
		t.Error("inverted dates accepted")
	}
}
