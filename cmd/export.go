package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/export"
	"github.com/Tee-David/realtors-practice-sub002/internal/store"
)

var (
	exportOut      string
	exportFormat   string
	exportSite     string
	exportMinScore int
	exportAll      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records to XLSX or JSONL",
	Long:  "Writes accepted records (or all records with --all) to a spreadsheet or JSONL file for downstream consumers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		filter := store.RecordFilter{
			SiteHint: exportSite,
			MinScore: exportMinScore,
			Limit:    -1,
		}
		if !exportAll {
			accepted := true
			filter.Accepted = &accepted
		}

		records, err := st.ListRecords(ctx, filter)
		if err != nil {
			return err
		}

		switch exportFormat {
		case "xlsx":
			err = export.WriteXLSX(exportOut, records, export.Options{})
		case "jsonl":
			err = export.WriteJSONL(exportOut, records)
		default:
			return eris.Errorf("unknown format %q (want xlsx or jsonl)", exportFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("records", len(records)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "listings.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "output format: xlsx or jsonl")
	exportCmd.Flags().StringVar(&exportSite, "site", "", "filter by site hint")
	exportCmd.Flags().IntVar(&exportMinScore, "min-score", 0, "minimum quality score")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "include rejected records")
	rootCmd.AddCommand(exportCmd)
}
