// Package queue defines the events exchanged over the message broker and the
// audit consumer that records them.
package queue

import (
    "encoding/json"
    "fmt"
    "time"
)

// Event types carried in Envelope.Type.
const (
    TypeCatalogReloaded      = "catalog.reloaded"
    TypeRecommendationIssued = "recommendation.issued"
)

// Envelope wraps every message on the events queue so a single consumer can
// dispatch on Type.
type Envelope struct {
    Type       string          `json:"type"`
    OccurredAt time.Time       `json:"occurred_at"`
    Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload under typ.
func NewEnvelope(typ string, payload any, at time.Time) (Envelope, error) {
    b, err := json.Marshal(payload)
    if err != nil {
        return Envelope{}, fmt.Errorf("marshal %s payload: %w", typ, err)
    }
    return Envelope{Type: typ, OccurredAt: at.UTC(), Payload: b}, nil
}

// CatalogReloadedEvent is published after a new catalog has been swapped in.
type CatalogReloadedEvent struct {
    Version         string `json:"version"`
    PreviousVersion string `json:"previous_version,omitempty"`
    RoomCount       int    `json:"room_count"`
    IssueCount      int    `json:"issue_count"`
    Source          string `json:"source"`            // "file", "upload" or "mysql"
    Subject         string `json:"subject,omitempty"` // operator that triggered the reload
}

// RecommendationIssuedEvent summarises one answered recommendation request.
// It carries no document content.
type RecommendationIssuedEvent struct {
    CatalogVersion string   `json:"catalog_version"`
    AttendeeCount  int      `json:"attendee_count"`
    Style          string   `json:"style"`
    StyleRelaxed   bool     `json:"style_relaxed"`
    RoomIDs        []string `json:"room_ids"`
    Origin         string   `json:"origin"` // "api" or "document"
}
