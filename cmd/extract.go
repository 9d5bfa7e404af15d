package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Tee-David/realtors-practice-sub002/internal/extract"
	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/locale"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

var extractURL string

var extractCmd = &cobra.Command{
	Use:   "extract <html file>",
	Short: "Extract listing fields from a page",
	Long:  "Runs only the field cascade over one HTML file and prints the extracted fields with strategy and confidence.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markup, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		profile := locale.Naira()
		if cfg.Locale.ProfilePath != "" {
			profile, err = locale.Load(cfg.Locale.ProfilePath)
			if err != nil {
				return eris.Wrap(err, "load locale profile")
			}
		}
		gaz := gazetteer.Default()
		if cfg.Gazetteer.Path != "" {
			gaz, err = gazetteer.Load(cfg.Gazetteer.Path)
			if err != nil {
				return eris.Wrap(err, "load gazetteer")
			}
		}

		url := extractURL
		if url == "" {
			url = "file://" + args[0]
		}
		pg := page.New(model.PageSample{URL: url, RawMarkup: string(markup)})

		result := extract.New(profile, gaz).Extract(pg)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "encode extraction")
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "source URL recorded on the sample")
	rootCmd.AddCommand(extractCmd)
}
