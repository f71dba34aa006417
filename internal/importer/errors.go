package importer

import (
	"errors"
	"strings"
)

// DecodeError indicates the uploaded document could not be decoded into
// at least one data row. It is fatal: no row processing happens after it.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "decode: " + e.Reason
}

// MappingError indicates the column mapping cannot drive an import,
// e.g. the title field is unbound. It is fatal and surfaced before any
// row processing.
type MappingError struct {
	Reason string
}

func (e *MappingError) Error() string {
	return "mapping: " + e.Reason
}

// ErrTooManyRuns is returned when all import slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyRuns = errors.New("too many concurrent imports, please try again later")

// ErrRunNotFound is returned when a run ID does not match an active or
// recently completed run.
var ErrRunNotFound = errors.New("import run not found")

// UserMessage is a user-facing rendering of an internal error, with a
// stable code that can be quoted to support.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// errorPatterns maps substrings of internal error text to user messages.
// Checked in order; first match wins.
var errorPatterns = []struct {
	substr string
	msg    UserMessage
}{
	{"decode:", UserMessage{
		Code:    "IMP001",
		Message: "The file could not be read as delimited text",
		Action:  "Export your data as a CSV file and try again",
	}},
	{"mapping:", UserMessage{
		Code:    "IMP002",
		Message: "The column mapping is incomplete",
		Action:  "Map a column to the title field before importing",
	}},
	{"too many concurrent imports", UserMessage{
		Code:    "IMP003",
		Message: "The server is busy with other imports",
		Action:  "Wait a moment and try again",
	}},
	{"import run not found", UserMessage{
		Code:    "IMP004",
		Message: "This import run is no longer available",
		Action:  "Start a new import",
	}},
	{"duplicate key", UserMessage{
		Code:    "DB001",
		Message: "A record with this identity already exists",
		Action:  "Review the failed rows and re-run",
	}},
	{"connection refused", UserMessage{
		Code:    "DB002",
		Message: "The database is unreachable",
		Action:  "Try again in a few moments",
	}},
	{"connection reset", UserMessage{
		Code:    "DB003",
		Message: "The database connection was interrupted",
		Action:  "Try again",
	}},
	{"timeout", UserMessage{
		Code:    "DB004",
		Message: "The operation timed out",
		Action:  "Try a smaller file or try again later",
	}},
}

// MapError translates an internal error into a user-facing message.
// Unrecognized errors get a generic message with the GEN001 code.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Code: "GEN000", Message: "OK"}
	}

	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(text, p.substr) {
			return p.msg
		}
	}

	return UserMessage{
		Code:    "GEN001",
		Message: "Something went wrong processing the request",
		Action:  "Try again, or contact support with code GEN001",
	}
}
