package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
	"github.com/pokemon-tcg-ai/cardsync/internal/scrape"
)

func TestCollectRefsFromFlags(t *testing.T) {
	fetchCards = []string{"OBF-101", "SVI 196"}
	fetchFile = ""
	t.Cleanup(func() { fetchCards = nil })

	refs, err := collectRefs()
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "OBF", refs[0].Set)
	assert.Equal(t, "101", refs[0].Number)
	assert.Equal(t, "SVI", refs[1].Set)
}

func TestCollectRefsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.txt")
	require.NoError(t, os.WriteFile(path, []byte("# sv3 chase cards\nOBF-101\n\nOBF-125\n"), 0644))

	fetchCards = nil
	fetchFile = path
	t.Cleanup(func() { fetchFile = "" })

	refs, err := collectRefs()
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "125", refs[1].Number)
}

func TestCollectRefsRejectsGarbage(t *testing.T) {
	fetchCards = []string{"not a card ref"}
	fetchFile = ""
	t.Cleanup(func() { fetchCards = nil })

	_, err := collectRefs()
	assert.Error(t, err)
}

type fakePageFetcher struct {
	pages map[string]string
}

func (f *fakePageFetcher) Get(_ context.Context, rawURL string) ([]byte, error) {
	return []byte(f.pages[rawURL]), nil
}

func TestListSetRefs(t *testing.T) {
	fetchSets = []string{"OBF", "MEW"}
	fetchConcurrency = 2
	t.Cleanup(func() { fetchSets = nil })

	scraper := scrape.NewLimitless(&fakePageFetcher{pages: map[string]string{
		"https://example.test/cards/OBF": `<a href="/cards/OBF/1">x</a><a href="/cards/OBF/2">y</a>`,
		"https://example.test/cards/MEW": `<a href="/cards/MEW/25">z</a>`,
	}}, "https://example.test")

	refs, err := listSetRefs(context.Background(), scraper)
	require.NoError(t, err)

	// Set order is preserved regardless of which page answered first.
	assert.Equal(t, []scrape.CardRef{
		{Set: "OBF", Number: "1"},
		{Set: "OBF", Number: "2"},
		{Set: "MEW", Number: "25"},
	}, refs)
}

func TestListSetRefsNoFlagIsEmpty(t *testing.T) {
	fetchSets = nil
	refs, err := listSetRefs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestLoadExistingMissingFileIsEmpty(t *testing.T) {
	cards, err := loadExisting(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("123456789abc"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatRunsList(t *testing.T) {
	now := time.Now().UTC()
	runs := []model.IntegrationRun{
		{
			ID:        "aaaabbbb-cccc-dddd",
			Status:    model.RunStatusComplete,
			Summary:   &model.ReportMetadata{TotalMappings: 12, Unmatched: 3},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Second),
		},
		{
			ID:        "eeeeffff-0000-1111",
			Status:    model.RunStatusFailed,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "aaaabbbb")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "failed")
}
