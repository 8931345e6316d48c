package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testInput() model.RunInput {
	return model.RunInput{
		EnglishPath:  "data/cards_en.json",
		JapanesePath: "data/cards_ja.json",
		OutputPath:   "data/cards_merged.json",
		MappingPath:  "data/mapping_report.json",
	}
}

func TestSQLiteCreateAndGetRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "data/cards_en.json", got.Input.EnglishPath)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.Summary)
	assert.Empty(t, got.Error)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "no-such-run")
	assert.Error(t, err)
}

func TestSQLiteCompleteRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)

	summary := &model.ReportMetadata{
		TotalEnglish:  100,
		TotalJapanese: 90,
		TotalMappings: 85,
		ExactMatches:  80,
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, summary))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, 85, got.Summary.TotalMappings)
}

func TestSQLiteCompleteRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.CompleteRun(context.Background(), "no-such-run", &model.ReportMetadata{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, run.ID, "english collection empty"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "english collection empty", got.Error)
	assert.Nil(t, got.Summary)
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, testInput())
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, first.ID, &model.ReportMetadata{}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, first.ID, complete[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
