package catalog

import (
	"errors"
	"fmt"
)

// ErrIngestion is matched (errors.Is) by every IngestionError.
var ErrIngestion = errors.New("catalog ingestion failed")

// ErrRoomNotFound is returned by Get when no room has the requested ID.
var ErrRoomNotFound = errors.New("room not found")

// IngestionError reports that a source chart could not produce a usable
// catalog.  Issues carries the per-row problems that led there, if any.
type IngestionError struct {
	Reason string
	Issues []Issue
	Err    error
}

func (e *IngestionError) Error() string {
	msg := "catalog ingestion failed: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Issues) > 0 {
		msg += fmt.Sprintf(" (%d rows rejected)", len(e.Issues))
	}
	return msg
}

func (e *IngestionError) Unwrap() error { return e.Err }

func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }

// Issue describes one source row, or one field of a row, that was skipped.
type Issue struct {
	Row    int    `json:"row"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}
