package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"occratios/internal/config"
	"occratios/internal/ratios"
)

// summaryRecords lays the summary out with one row per statistic and one
// column per ratio.
func summaryRecords(s ratios.Summary) ([]string, [][]string) {
	headers := make([]string, 0, len(s.Columns)+1)
	headers = append(headers, "")
	for _, c := range s.Columns {
		headers = append(headers, c.Name)
	}

	records := make([][]string, 0, len(ratios.StatisticLabels))
	for _, label := range ratios.StatisticLabels {
		row := []string{label}
		for _, c := range s.Columns {
			row = append(row, formatFloat(s.Cell(label, c.Name)))
		}
		records = append(records, row)
	}
	return headers, records
}

// WriteSummaryCSV writes the statistics table as CSV.
func (w *CSVWriter) WriteSummaryCSV(filePath string, s ratios.Summary) (string, error) {
	headers, records := summaryRecords(s)
	return w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records})
}

// WriteSummaryXLSX writes the statistics table to a workbook with a count
// row under the four statistics.
func WriteSummaryXLSX(path string, s ratios.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := config.RatioSummarySheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	numFmt := "0.0000"
	number, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}

	for j, c := range s.Columns {
		cell, _ := excelize.CoordinatesToCellName(j+2, 1)
		if err := f.SetCellStr(sheet, cell, c.Name); err != nil {
			return err
		}
	}

	labels := append(append([]string(nil), ratios.StatisticLabels...), "Observations")
	for i, label := range labels {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellStr(sheet, cell, label); err != nil {
			return err
		}

		for j, c := range s.Columns {
			cell, _ := excelize.CoordinatesToCellName(j+2, row)
			if label == "Observations" {
				if err := f.SetCellInt(sheet, cell, int64(c.Count)); err != nil {
					return err
				}
				continue
			}
			// missing statistics stay blank
			if v := s.Cell(label, c.Name); v.Valid {
				if err := f.SetCellFloat(sheet, cell, v.Value, -1, 64); err != nil {
					return err
				}
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(s.Columns) + 1)
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("A%d", len(labels)+1), header); err != nil {
		return err
	}
	if len(s.Columns) > 0 {
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("%s%d", lastCol, len(ratios.StatisticLabels)+1), number); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "B", lastCol, 22); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 18); err != nil {
		return err
	}

	return f.SaveAs(path)
}
