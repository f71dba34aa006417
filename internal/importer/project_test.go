package importer

import (
	"testing"
	"time"

	"github.com/reelistapp/reelist/internal/model"
)

func TestComputeEntryMeta_EmptySet(t *testing.T) {
	got := ComputeEntryMeta(nil)
	want := model.EntryMeta{Status: model.StatusPlanned}
	if got != want {
		t.Errorf("ComputeEntryMeta(nil) = %+v, want %+v", got, want)
	}
}

func TestComputeEntryMeta_LastWatchWins(t *testing.T) {
	watches := []model.Watch{
		{Status: model.StatusFinished, StartDate: "2024-03-01", EndDate: "2024-03-02", Platform: "Hulu"},
		{Status: model.StatusWatching, StartDate: "2024-01-10", Platform: "Netflix"},
	}

	got := ComputeEntryMeta(watches)

	if got.Status != model.StatusFinished {
		t.Errorf("Status = %q, want finished (chronologically last watch)", got.Status)
	}
	if got.FirstStartDate != "2024-01-10" {
		t.Errorf("FirstStartDate = %q, want 2024-01-10", got.FirstStartDate)
	}
	if got.LastStartDate != "2024-03-01" || got.LastEndDate != "2024-03-02" {
		t.Errorf("Last dates = %q/%q, want 2024-03-01/2024-03-02", got.LastStartDate, got.LastEndDate)
	}
	if got.LastPlatform != "Hulu" {
		t.Errorf("LastPlatform = %q, want Hulu", got.LastPlatform)
	}
}

// The projection depends on chronology, not on the order watches were
// recorded or edited.
func TestComputeEntryMeta_OrderIndependent(t *testing.T) {
	a := model.Watch{Status: model.StatusWatching, StartDate: "2024-01-10"}
	b := model.Watch{Status: model.StatusFinished, StartDate: "2024-03-01"}

	forward := ComputeEntryMeta([]model.Watch{a, b})
	reversed := ComputeEntryMeta([]model.Watch{b, a})

	if forward != reversed {
		t.Errorf("projection differs by input order: %+v vs %+v", forward, reversed)
	}
}

func TestComputeEntryMeta_Idempotent(t *testing.T) {
	watches := []model.Watch{
		{Status: model.StatusFinished, StartDate: "2024-03-01"},
		{Status: model.StatusWatching, StartDate: "2024-01-10"},
	}

	first := ComputeEntryMeta(watches)
	second := ComputeEntryMeta(watches)
	if first != second {
		t.Errorf("projection not idempotent: %+v vs %+v", first, second)
	}
}

// Undated watches order by creation time, so a dateless planned watch
// recorded after a dated one still projects as the latest state — creation
// timestamps sort after any plain date string of the same era.
func TestComputeEntryMeta_UndatedWatchUsesCreationTime(t *testing.T) {
	watches := []model.Watch{
		{Status: model.StatusFinished, StartDate: "2024-03-01", EndDate: "2024-03-02"},
		{Status: model.StatusWatching, CreatedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
	}

	got := ComputeEntryMeta(watches)
	if got.Status != model.StatusWatching {
		t.Errorf("Status = %q, want watching (undated watch created later)", got.Status)
	}
	if got.FirstStartDate != "2024-03-01" {
		t.Errorf("FirstStartDate = %q, want 2024-03-01", got.FirstStartDate)
	}
}
