package importer

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error", nil, "GEN000"},
		{"decode error", &DecodeError{Reason: "empty file"}, "IMP001"},
		{"mapping error", &MappingError{Reason: "title unbound"}, "IMP002"},
		{"too many runs", ErrTooManyRuns, "IMP003"},
		{"run not found", ErrRunNotFound, "IMP004"},
		{"wrapped run not found", fmt.Errorf("lookup: %w", ErrRunNotFound), "IMP004"},
		{"duplicate key", errors.New(`ERROR: duplicate key value violates unique constraint "entries_pkey"`), "DB001"},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "DB002"},
		{"timeout", errors.New("context deadline exceeded: timeout"), "DB004"},
		{"unknown error", errors.New("some novel failure"), "GEN001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if got.Message == "" {
				t.Error("empty user message")
			}
		})
	}
}
