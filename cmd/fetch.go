package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pokemon-tcg-ai/cardsync/internal/fetcher"
	"github.com/pokemon-tcg-ai/cardsync/internal/model"
	"github.com/pokemon-tcg-ai/cardsync/internal/scrape"
)

var (
	fetchLang        string
	fetchSets        []string
	fetchCards       []string
	fetchFile        string
	fetchOut         string
	fetchRegulations []string
	fetchLimit       int
	fetchConcurrency int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch card records from the public card databases",
	Long:  "Scrapes English cards from limitlesstcg.com or Japanese cards from pokemon-card.com and appends them to a local collection file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		switch fetchLang {
		case "en":
			return fetchEnglish(cmd)
		case "ja":
			return fetchJapanese(cmd)
		default:
			return eris.Errorf("fetch: --lang must be en or ja, got %q", fetchLang)
		}
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchLang, "lang", "en", "which database to fetch from (en, ja)")
	fetchCmd.Flags().StringSliceVar(&fetchSets, "sets", nil, "set codes to fetch whole, e.g. PAL,OBF (en only)")
	fetchCmd.Flags().StringSliceVar(&fetchCards, "cards", nil, "card references to fetch, e.g. OBF-101 (en only)")
	fetchCmd.Flags().StringVar(&fetchFile, "file", "", "file with one card reference per line (en only)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "collection file to update (defaults under fetch.data_dir)")
	fetchCmd.Flags().StringSliceVar(&fetchRegulations, "regulations", []string{"H", "I", "J"}, "regulation marks to search (ja only)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 50, "max cards per regulation (ja only)")
	fetchCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 4, "parallel fetches (en only)")
	rootCmd.AddCommand(fetchCmd)
}

func fetchEnglish(cmd *cobra.Command) error {
	ctx := cmd.Context()

	scraper := scrape.NewLimitless(newFetcher(), cfg.Fetch.LimitlessBaseURL)

	refs, err := collectRefs()
	if err != nil {
		return err
	}
	setRefs, err := listSetRefs(ctx, scraper)
	if err != nil {
		return err
	}
	refs = append(refs, setRefs...)
	if len(refs) == 0 {
		return eris.New("fetch: no card references given, use --sets, --cards or --file")
	}

	out := fetchOut
	if out == "" {
		out = filepath.Join(cfg.Fetch.DataDir, "cards_en.json")
	}
	existing, err := loadExisting(out)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.ID] = true
	}

	results := make([]model.Card, len(refs))
	fetched := make([]bool, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, ref := range refs {
		if have[fmt.Sprintf("%s-%s", ref.Set, ref.Number)] {
			zap.L().Info("fetch: already in collection", zap.String("set", ref.Set), zap.String("number", ref.Number))
			continue
		}
		g.Go(func() error {
			card, err := scraper.FetchCard(gctx, ref)
			if err != nil {
				return err
			}
			results[i] = card
			fetched[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "fetch: english cards")
	}

	added := 0
	for i := range results {
		if fetched[i] {
			existing = append(existing, results[i])
			added++
		}
	}

	if err := fetcher.SaveCards(out, existing); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d cards, collection now %d (%s)\n", added, len(existing), out)
	return nil
}

func fetchJapanese(cmd *cobra.Command) error {
	ctx := cmd.Context()

	out := fetchOut
	if out == "" {
		out = filepath.Join(cfg.Fetch.DataDir, "cards_ja.json")
	}
	existing, err := loadExisting(out)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c.JapaneseID] = true
	}

	scraper := scrape.NewPokemonCard(newFetcher(), cfg.Fetch.PokemonCardBaseURL)

	added := 0
	for _, regu := range fetchRegulations {
		refs, err := scraper.Search(ctx, regu, fetchLimit)
		if err != nil {
			return eris.Wrapf(err, "fetch: search regulation %s", regu)
		}
		zap.L().Info("fetch: search results",
			zap.String("regulation", regu),
			zap.Int("cards", len(refs)),
		)

		for _, ref := range refs {
			if have[ref.ID] {
				continue
			}
			card, ok, err := scraper.FetchCard(ctx, ref)
			if err != nil {
				return eris.Wrapf(err, "fetch: card %s", ref.ID)
			}
			if !ok {
				continue
			}
			existing = append(existing, card)
			have[ref.ID] = true
			added++
		}
	}

	for _, f := range scraper.Failures() {
		zap.L().Warn("fetch: card page unavailable",
			zap.String("card_id", f.CardID),
			zap.String("regulation", f.Regulation),
			zap.String("reason", f.Reason),
		)
	}

	if err := fetcher.SaveCards(out, existing); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d cards, collection now %d (%s)\n", added, len(existing), out)
	return nil
}

// listSetRefs enumerates full sets named by --sets, one index page per set,
// concurrently.
func listSetRefs(ctx context.Context, scraper *scrape.Limitless) ([]scrape.CardRef, error) {
	if len(fetchSets) == 0 {
		return nil, nil
	}

	perSet := make([][]scrape.CardRef, len(fetchSets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, set := range fetchSets {
		g.Go(func() error {
			refs, err := scraper.FetchSetRefs(gctx, set)
			if err != nil {
				return err
			}
			perSet[i] = refs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "fetch: list sets")
	}

	var refs []scrape.CardRef
	for _, rs := range perSet {
		refs = append(refs, rs...)
	}
	return refs, nil
}

// collectRefs merges --cards and --file into one reference list.
func collectRefs() ([]scrape.CardRef, error) {
	var refs []scrape.CardRef
	for _, s := range fetchCards {
		ref, err := scrape.ParseCardRef(s)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: card reference %q", s)
		}
		refs = append(refs, ref)
	}

	if fetchFile == "" {
		return refs, nil
	}
	f, err := os.Open(fetchFile)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: open %s", fetchFile)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ref, err := scrape.ParseCardRef(line)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: card reference %q", line)
		}
		refs = append(refs, ref)
	}
	return refs, eris.Wrap(scanner.Err(), "fetch: read reference file")
}

// loadExisting reads the collection if present, starting empty otherwise.
func loadExisting(path string) ([]model.Card, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return fetcher.LoadCards(path)
}
