// Package storage persists prediction runs: the physical parameters a
// light-curve prediction was made with, the predicted photometry and the
// likelihood score, keyed by a generated run ID.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded prediction: inputs, outputs and an optional
// likelihood score when observations were available.
type Run struct {
	ID            string    `json:"id"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
	Parameters    []float64 `json:"parameters"`
	Distance      float64   `json:"distance"`
	Times         []float64 `json:"times"`
	Filters       []string  `json:"filters"`
	Magnitudes    []float64 `json:"magnitudes"`
	LogLikelihood *float64  `json:"log_likelihood,omitempty"`
}

// NewRun stamps a fresh run with an ID, the current schema version and the
// creation time.
func NewRun(parameters []float64, distance float64) Run {
	return Run{
		ID:            uuid.NewString(),
		SchemaVersion: CurrentSchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Parameters:    append([]float64(nil), parameters...),
		Distance:      distance,
	}
}

// Store defines persistence operations for prediction runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context) ([]Run, error)
	DeleteRun(ctx context.Context, id string) error
}
