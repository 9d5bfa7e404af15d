package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "realtors",
	Short: "Listing page classification and extraction pipeline",
	Long:  "Classifies scraped real-estate pages as category or listing, extracts structured fields through layered strategies, scores quality, and persists accepted records.",
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
