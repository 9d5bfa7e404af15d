package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Tee-David/realtors-practice-sub002/internal/store"
)

var (
	recordsAccepted bool
	recordsRejected bool
	recordsSite     string
	recordsMinScore int
	recordsLimit    int
	recordsOffset   int
)

var recordsCmd = &cobra.Command{
	Use:   "records [id]",
	Short: "List stored records or show one by id",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			rec, err := st.GetRecord(ctx, args[0])
			if err != nil {
				return err
			}
			return eris.Wrap(enc.Encode(rec), "encode record")
		}

		filter := store.RecordFilter{
			SiteHint: recordsSite,
			MinScore: recordsMinScore,
			Limit:    recordsLimit,
			Offset:   recordsOffset,
		}
		if recordsAccepted != recordsRejected {
			accepted := recordsAccepted
			filter.Accepted = &accepted
		}

		records, err := st.ListRecords(ctx, filter)
		if err != nil {
			return err
		}
		return eris.Wrap(enc.Encode(records), "encode records")
	},
}

var rejectionsCmd = &cobra.Command{
	Use:   "rejections",
	Short: "List the rejection log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		rejections, err := st.ListRejections(ctx, recordsLimit, recordsOffset)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(rejections), "encode rejections")
	},
}

func init() {
	recordsCmd.Flags().BoolVar(&recordsAccepted, "accepted", false, "only records that cleared the quality gate")
	recordsCmd.Flags().BoolVar(&recordsRejected, "rejected", false, "only records that failed the quality gate")
	recordsCmd.Flags().StringVar(&recordsSite, "site", "", "filter by site hint")
	recordsCmd.Flags().IntVar(&recordsMinScore, "min-score", 0, "minimum quality score")
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 0, "maximum records to list")
	recordsCmd.Flags().IntVar(&recordsOffset, "offset", 0, "records to skip")
	rejectionsCmd.Flags().IntVar(&recordsLimit, "limit", 0, "maximum rejections to list")
	rejectionsCmd.Flags().IntVar(&recordsOffset, "offset", 0, "rejections to skip")
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(rejectionsCmd)
}
