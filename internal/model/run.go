package model

import "time"

// RunStatus represents the current state of an integration run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunInput records the file paths an integration run was started with.
type RunInput struct {
	EnglishPath  string `json:"english_path"`
	JapanesePath string `json:"japanese_path"`
	OutputPath   string `json:"output_path"`
	MappingPath  string `json:"mapping_path,omitempty"`
}

// IntegrationRun is one recorded execution of the reconciliation engine.
type IntegrationRun struct {
	ID        string          `json:"id"`
	Input     RunInput        `json:"input"`
	Status    RunStatus       `json:"status"`
	Summary   *ReportMetadata `json:"summary,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
