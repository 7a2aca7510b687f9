package utils

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"dealerinspect/models"
)

// ResultRow is one flattened line of a result snapshot export.
type ResultRow struct {
	Category string
	Section  string
	Field    string
	Value    string
	Notes    string
}

var exportHeader = []string{"Category", "Section", "Field", "Value", "Notes"}

// FlattenInspection turns the nested inspection snapshot into export rows in
// tree order.
func FlattenInspection(cats []models.ResultCategory) []ResultRow {
	var rows []ResultRow
	for _, c := range cats {
		rows = append(rows, flattenSections(c.Name, c.Sections)...)
	}
	return rows
}

// FlattenTradeIn turns the flat trade-in snapshot into export rows.
func FlattenTradeIn(secs []models.ResultSection) []ResultRow {
	return flattenSections("Trade-In", secs)
}

func flattenSections(category string, secs []models.ResultSection) []ResultRow {
	var rows []ResultRow
	for _, s := range secs {
		for _, f := range s.Fields {
			rows = append(rows, ResultRow{
				Category: category,
				Section:  s.Name,
				Field:    f.Name,
				Value:    renderValue(f.Value),
				Notes:    f.Notes,
			})
		}
	}
	return rows
}

// renderValue renders a raw snapshot value for a spreadsheet cell. Strings
// lose their quotes; everything else keeps its JSON form.
func renderValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// ResultsCSV renders rows as a CSV document with a header line.
func ResultsCSV(rows []ResultRow) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Category, r.Section, r.Field, r.Value, r.Notes}); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ResultsWorkbook renders rows as a single-sheet XLSX workbook.
func ResultsWorkbook(sheet string, rows []ResultRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for col, h := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, style)
	}

	for i, r := range rows {
		values := []string{r.Category, r.Section, r.Field, r.Value, r.Notes}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// SanitizeFilename strips characters that break Content-Disposition headers.
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", "\"", "", "'", "")
	out := replacer.Replace(name)
	if out == "" {
		out = fmt.Sprintf("export_%d", len(name))
	}
	return out
}
