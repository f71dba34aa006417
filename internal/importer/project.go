package importer

import (
	"sort"
	"time"

	"github.com/reelistapp/reelist/internal/model"
)

// ComputeEntryMeta recomputes an entry's derived summary from its full
// watch set. It is pure and order-independent: callers may pass watches
// in any order and concurrent use needs no synchronization.
//
// An empty set projects to planned with no dates or platform. Otherwise
// watches sort ascending by start date, falling back to creation time for
// undated watches; both keys are ISO-formatted strings, so lexicographic
// comparison preserves chronological order. The summary status is the
// status of the chronologically last watch, not the most recently edited
// one.
//
// Every watch mutation must persist the result of this function together
// with the watch set; the summary is never an independent source of
// truth.
func ComputeEntryMeta(watches []model.Watch) model.EntryMeta {
	if len(watches) == 0 {
		return model.EntryMeta{Status: model.StatusPlanned}
	}

	sorted := make([]model.Watch, len(watches))
	copy(sorted, watches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return watchSortKey(sorted[i]) < watchSortKey(sorted[j])
	})

	first := sorted[0]
	last := sorted[len(sorted)-1]

	return model.EntryMeta{
		Status:         last.Status,
		FirstStartDate: first.StartDate,
		FirstEndDate:   first.EndDate,
		LastStartDate:  last.StartDate,
		LastEndDate:    last.EndDate,
		LastPlatform:   last.Platform,
	}
}

// watchSortKey is the chronological ordering key for a watch: its start
// date when present, else its creation timestamp in RFC 3339 form.
func watchSortKey(w model.Watch) string {
	if w.StartDate != "" {
		return w.StartDate
	}
	return w.CreatedAt.UTC().Format(time.RFC3339)
}
