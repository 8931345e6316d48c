// Package store persists integration run history so past reconciliations
// can be inspected after the fact.
package store

import (
	"context"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for integration run history.
type Store interface {
	CreateRun(ctx context.Context, input model.RunInput) (*model.IntegrationRun, error)
	CompleteRun(ctx context.Context, runID string, summary *model.ReportMetadata) error
	FailRun(ctx context.Context, runID string, msg string) error
	GetRun(ctx context.Context, runID string) (*model.IntegrationRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.IntegrationRun, error)

	Migrate(ctx context.Context) error
	Close() error
}
