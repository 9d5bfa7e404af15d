package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Tee-David/realtors-practice-sub002/internal/classifier"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
	"github.com/Tee-David/realtors-practice-sub002/internal/signals"
)

var classifyURL string

var classifyCmd = &cobra.Command{
	Use:   "classify <html file>",
	Short: "Classify a page as category or listing",
	Long:  "Runs only the classifier over one HTML file and prints the verdict with per-signal contributions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markup, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		url := classifyURL
		if url == "" {
			url = "file://" + args[0]
		}
		pg := page.New(model.PageSample{URL: url, RawMarkup: string(markup)})

		c := classifier.New(cfg.Classifier.CategoryThreshold)
		verdict := c.Classify(pg, signals.All(pg))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(verdict), "encode verdict")
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyURL, "url", "", "source URL (the URL shape is itself a signal)")
	rootCmd.AddCommand(classifyCmd)
}
