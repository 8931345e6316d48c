package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pokemon-tcg-ai/cardsync/internal/fetcher"
	"github.com/pokemon-tcg-ai/cardsync/internal/match"
	"github.com/pokemon-tcg-ai/cardsync/internal/model"
	"github.com/pokemon-tcg-ai/cardsync/internal/normalize"
	"github.com/pokemon-tcg-ai/cardsync/internal/report"
)

var (
	integrateEnglish  string
	integrateJapanese string
	integrateOut      string
	integrateReport   string
	integrateXLSX     string
)

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Match Japanese cards against the English collection and merge them",
	Long:  "Runs the staged matcher over both collections, overlays Japanese data onto matched English cards, appends Japanese exclusives, and writes the mapping report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("integrate"); err != nil {
			return err
		}

		english := integrateEnglish
		if english == "" {
			english = filepath.Join(cfg.Fetch.DataDir, "cards_en.json")
		}
		japanese := integrateJapanese
		if japanese == "" {
			japanese = filepath.Join(cfg.Fetch.DataDir, "cards_ja.json")
		}
		out := integrateOut
		if out == "" {
			out = filepath.Join(cfg.Fetch.DataDir, "cards_merged.json")
		}
		reportPath := integrateReport
		if reportPath == "" {
			reportPath = filepath.Join(cfg.Fetch.DataDir, "mapping_report.json")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		run, err := st.CreateRun(ctx, model.RunInput{
			EnglishPath:  english,
			JapanesePath: japanese,
			OutputPath:   out,
			MappingPath:  reportPath,
		})
		if err != nil {
			return err
		}

		rep, err := integrate(english, japanese, out, reportPath)
		if err != nil {
			if failErr := st.FailRun(ctx, run.ID, err.Error()); failErr != nil {
				zap.L().Error("record run failure", zap.Error(failErr))
			}
			return err
		}

		if err := st.CompleteRun(ctx, run.ID, &rep.Metadata); err != nil {
			return err
		}

		printSummary(cmd, run.ID, rep.Metadata)
		return nil
	},
}

func init() {
	integrateCmd.Flags().StringVar(&integrateEnglish, "english", "", "English collection file")
	integrateCmd.Flags().StringVar(&integrateJapanese, "japanese", "", "Japanese collection file")
	integrateCmd.Flags().StringVar(&integrateOut, "out", "", "merged collection output file")
	integrateCmd.Flags().StringVar(&integrateReport, "mapping-out", "", "mapping report output file")
	integrateCmd.Flags().StringVar(&integrateXLSX, "xlsx", "", "also write the mapping report as a workbook")
	rootCmd.AddCommand(integrateCmd)
}

func integrate(englishPath, japanesePath, outPath, reportPath string) (*model.Report, error) {
	english, err := fetcher.LoadCards(englishPath)
	if err != nil {
		return nil, err
	}
	japanese, err := fetcher.LoadCards(japanesePath)
	if err != nil {
		return nil, err
	}

	table := normalize.DefaultSetTable()
	if cfg.Sets.TablePath != "" {
		table, err = normalize.LoadSetTable(cfg.Sets.TablePath)
		if err != nil {
			return nil, err
		}
	}

	matcher, err := match.NewMatcher(cfg.Match, table)
	if err != nil {
		return nil, err
	}
	res, err := matcher.Run(english, japanese)
	if err != nil {
		return nil, err
	}

	merged, rep := match.Merge(english, japanese, res, table)

	if err := fetcher.SaveCards(outPath, merged); err != nil {
		return nil, err
	}
	if err := report.WriteJSON(reportPath, rep); err != nil {
		return nil, err
	}
	if integrateXLSX != "" {
		if err := report.WriteXLSX(integrateXLSX, rep); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func printSummary(cmd *cobra.Command, runID string, meta model.ReportMetadata) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s\n", runID)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "English cards:      %d\n", meta.TotalEnglish)
	fmt.Fprintf(w, "Japanese cards:     %d\n", meta.TotalJapanese)
	fmt.Fprintf(w, "Mapped:             %d\n", meta.TotalMappings)
	fmt.Fprintf(w, "  exact key:        %d\n", meta.ExactMatches)
	fmt.Fprintf(w, "  name similarity:  %d\n", meta.SimilarityMatches)
	fmt.Fprintf(w, "  pattern:          %d\n", meta.PatternMatches)
	fmt.Fprintf(w, "Unmatched:          %d\n", meta.Unmatched)
	fmt.Fprintf(w, "Exclusives added:   %d\n", meta.ExclusiveAdded)
	if meta.TotalMappings > 0 {
		fmt.Fprintf(w, "Avg similarity:     %.4f\n", meta.AverageSimilarity)
	}
}
