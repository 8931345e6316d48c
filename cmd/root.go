package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pokemon-tcg-ai/cardsync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cardsync",
	Short: "Bilingual card collection reconciliation",
	Long:  "Fetches English and Japanese card records, matches them across languages, and merges them into one enriched collection with an auditable mapping report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
