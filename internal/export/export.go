// Package export writes processed records to spreadsheet and JSONL
// files for downstream consumers.
package export

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
)

// Options configures an export.
type Options struct {
	SheetName string // default "Listings"
}

var headers = []string{
	"URL", "Title", "Price (NGN)", "Bedrooms", "Bathrooms", "Toilets",
	"Location", "Property Type", "Area", "Amenities", "Score", "Site",
	"Processed At",
}

var titleCaser = cases.Title(language.English)

// WriteXLSX writes records to an XLSX workbook at path.
func WriteXLSX(path string, records []model.NormalizedRecord, opts Options) error {
	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = "Listings"
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetString(h)
	}

	for i := range records {
		writeRow(sheet.AddRow(), &records[i])
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}

	zap.L().Info("export: wrote xlsx",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}

func writeRow(row *xlsx.Row, rec *model.NormalizedRecord) {
	ext := &rec.Extraction

	row.AddCell().SetString(rec.URL)
	row.AddCell().SetString(ext.StringValue(model.FieldTitle))

	if price, ok := ext.FloatValue(model.FieldPrice); ok {
		row.AddCell().SetFloat(price)
	} else {
		row.AddCell().SetString("")
	}
	for _, field := range []model.FieldName{model.FieldBedrooms, model.FieldBathrooms, model.FieldToilets} {
		if n, ok := ext.IntValue(field); ok {
			row.AddCell().SetInt(n)
		} else {
			row.AddCell().SetString("")
		}
	}

	row.AddCell().SetString(ext.StringValue(model.FieldLocation))
	row.AddCell().SetString(propertyType(rec))
	row.AddCell().SetString(inferredArea(rec))
	row.AddCell().SetString(amenitySummary(rec))
	row.AddCell().SetInt(rec.Quality.Score)
	row.AddCell().SetString(rec.SiteHint)
	if rec.ProcessedAt.IsZero() {
		row.AddCell().SetString("")
	} else {
		row.AddCell().SetString(rec.ProcessedAt.Format("2006-01-02 15:04:05"))
	}
}

func propertyType(rec *model.NormalizedRecord) string {
	if rec.Enhancement == nil || rec.Enhancement.PropertyType == "" {
		return ""
	}
	return titleCaser.String(rec.Enhancement.PropertyType)
}

func inferredArea(rec *model.NormalizedRecord) string {
	if rec.Enhancement == nil {
		return ""
	}
	return rec.Enhancement.InferredArea
}

// amenitySummary flattens the tagged amenity groups into one cell,
// grouped and ordered so diffs between exports stay stable.
func amenitySummary(rec *model.NormalizedRecord) string {
	if rec.Enhancement == nil || len(rec.Enhancement.Amenities) == 0 {
		return ""
	}

	groups := make([]string, 0, len(rec.Enhancement.Amenities))
	for group := range rec.Enhancement.Amenities {
		groups = append(groups, group)
	}
	sort.Strings(groups)

	var parts []string
	for _, group := range groups {
		parts = append(parts, titleCaser.String(group)+": "+
			strings.Join(rec.Enhancement.Amenities[group], ", "))
	}
	return strings.Join(parts, "; ")
}

// WriteJSONL writes records as one JSON object per line.
func WriteJSONL(path string, records []model.NormalizedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return eris.Wrap(err, "export: encode record")
		}
	}

	zap.L().Info("export: wrote jsonl",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}
