// Package report writes the mapping report produced by an integration run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/pokemon-tcg-ai/cardsync/internal/model"
)

// WriteJSON writes the report as indented JSON, creating parent directories
// as needed.
func WriteJSON(path string, rep *model.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "report: mkdir for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return eris.Wrapf(err, "report: encode %s", path)
	}
	return nil
}

// WriteXLSX writes the report as a workbook with a summary sheet, a set
// mapping sheet and one row per mapping entry.
func WriteXLSX(path string, rep *model.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "report: mkdir for %s", path)
	}

	f := xlsx.NewFile()

	if err := addSummarySheet(f, rep.Metadata); err != nil {
		return err
	}
	if err := addSetMappingSheet(f, rep.SetMappings); err != nil {
		return err
	}
	if err := addMappingSheet(f, rep.Mappings); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "report: save %s", path)
}

func addSummarySheet(f *xlsx.File, meta model.ReportMetadata) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	addPair := func(label, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(label)
		row.AddCell().SetString(value)
	}
	addPair("Total English", fmt.Sprint(meta.TotalEnglish))
	addPair("Total Japanese", fmt.Sprint(meta.TotalJapanese))
	addPair("Total Mappings", fmt.Sprint(meta.TotalMappings))
	addPair("Exact Matches", fmt.Sprint(meta.ExactMatches))
	addPair("Similarity Matches", fmt.Sprint(meta.SimilarityMatches))
	addPair("Pattern Matches", fmt.Sprint(meta.PatternMatches))
	addPair("Unmatched", fmt.Sprint(meta.Unmatched))
	addPair("Exclusive Added", fmt.Sprint(meta.ExclusiveAdded))
	addPair("Average Similarity", fmt.Sprintf("%.4f", meta.AverageSimilarity))
	return nil
}

func addSetMappingSheet(f *xlsx.File, mappings map[string]string) error {
	sheet, err := f.AddSheet("Set Mappings")
	if err != nil {
		return eris.Wrap(err, "report: add set mapping sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("English Set")
	header.AddCell().SetString("Japanese Set")

	keys := make([]string, 0, len(mappings))
	for k := range mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		row := sheet.AddRow()
		row.AddCell().SetString(k)
		row.AddCell().SetString(mappings[k])
	}
	return nil
}

func addMappingSheet(f *xlsx.File, entries []model.MappingEntry) error {
	sheet, err := f.AddSheet("Mappings")
	if err != nil {
		return eris.Wrap(err, "report: add mapping sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Outcome", "Mapping Type", "Similarity", "Matched On",
		"Japanese ID", "Japanese Name", "Regulation",
		"English ID", "English Name", "Set", "Reason",
	} {
		header.AddCell().SetString(h)
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().SetString(string(e.Outcome))
		row.AddCell().SetString(string(e.MappingType))
		row.AddCell().SetFloatWithFormat(e.SimilarityScore, "0.0000")
		row.AddCell().SetString(strings.Join(e.MatchedOn, ", "))
		row.AddCell().SetString(e.JapaneseID)
		row.AddCell().SetString(e.JapaneseName)
		row.AddCell().SetString(e.Regulation)
		row.AddCell().SetString(e.EnglishID)
		row.AddCell().SetString(e.EnglishName)
		row.AddCell().SetString(e.Set)
		row.AddCell().SetString(e.Reason)
	}
	return nil
}
