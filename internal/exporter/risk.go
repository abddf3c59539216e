package exporter

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"occratios/internal/config"
	"occratios/internal/risk"
)

// Axis names used as table headers.
const (
	solvencyAxis = "solvency_cat"
	fundingAxis  = "funding_vul_cat"
)

// Heatmap colours, low to high.
const (
	heatmapLow  = "#FFFFD9"
	heatmapMid  = "#41B6C4"
	heatmapHigh = "#081D58"
)

func riskRecords(tab risk.CrossTab) ([]string, [][]string) {
	headers := append([]string{solvencyAxis}, tab.Columns...)
	records := make([][]string, 0, len(tab.Rows))
	for _, s := range tab.Rows {
		row := []string{s}
		for _, f := range tab.Columns {
			row = append(row, formatFloat(tab.Rate(s, f)))
		}
		records = append(records, row)
	}
	return headers, records
}

// WriteRiskCSV writes the 3×3 table of receivership rates.
func (w *CSVWriter) WriteRiskCSV(filePath string, tab risk.CrossTab) (string, error) {
	headers, records := riskRecords(tab)
	return w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records})
}

// WriteRiskHeatmap writes the rates to a workbook with a three-colour scale
// over the rate cells, plus a sheet of cell counts and the thresholds.
func WriteRiskHeatmap(path string, tab risk.CrossTab) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := config.RiskCrossTabSheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	numFmt := "0.000000"
	rate, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStr(sheet, "A1", "Probability of Failure by Solvency and Funding Vulnerability Categories"); err != nil {
		return err
	}
	if err := writeGrid(f, sheet, 3, tab, func(s, fv string) (interface{}, bool) {
		v := tab.Rate(s, fv)
		return v.Value, v.Valid
	}); err != nil {
		return err
	}

	first, _ := excelize.CoordinatesToCellName(2, 4)
	last, _ := excelize.CoordinatesToCellName(len(tab.Columns)+1, len(tab.Rows)+3)
	if err := f.SetCellStyle(sheet, first, last, rate); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := f.SetConditionalFormat(sheet, first+":"+last, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "min",
		MidType:  "percentile",
		MidValue: "50",
		MaxType:  "max",
		MinColor: heatmapLow,
		MidColor: heatmapMid,
		MaxColor: heatmapHigh,
	}}); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "D", 16); err != nil {
		return err
	}

	counts := "Counts"
	if _, err := f.NewSheet(counts); err != nil {
		return err
	}
	if err := writeGrid(f, counts, 1, tab, func(s, fv string) (interface{}, bool) {
		i, j := indexOf(tab.Rows, s), indexOf(tab.Columns, fv)
		return tab.Cells[i][j].Rows, true
	}); err != nil {
		return err
	}

	thresholds := [][]interface{}{
		{"solvency_p50", tab.Thresholds.SolvencyP50},
		{"solvency_p05", tab.Thresholds.SolvencyP05},
		{"funding_p50", tab.Thresholds.FundingP50},
		{"funding_p95", tab.Thresholds.FundingP95},
		{"categorized", tab.Categorized},
		{"total", tab.Total},
	}
	for i, kv := range thresholds {
		row := len(tab.Rows) + 3 + i
		if err := f.SetCellValue(counts, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return err
		}
		if v, ok := kv[1].(float64); ok && math.IsNaN(v) {
			continue
		}
		if err := f.SetCellValue(counts, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// writeGrid writes the axis labels and one value per cell starting at
// row top. Cells for which value reports false stay blank.
func writeGrid(f *excelize.File, sheet string, top int, tab risk.CrossTab, value func(s, fv string) (interface{}, bool)) error {
	corner, _ := excelize.CoordinatesToCellName(1, top)
	if err := f.SetCellStr(sheet, corner, solvencyAxis+" \\ "+fundingAxis); err != nil {
		return err
	}
	for j, fv := range tab.Columns {
		cell, _ := excelize.CoordinatesToCellName(j+2, top)
		if err := f.SetCellStr(sheet, cell, fv); err != nil {
			return err
		}
	}
	for i, s := range tab.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, top+i+1)
		if err := f.SetCellStr(sheet, cell, s); err != nil {
			return err
		}
		for j, fv := range tab.Columns {
			v, ok := value(s, fv)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+2, top+i+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func indexOf(labels []string, label string) int {
	for i, l := range labels {
		if l == label {
			return i
		}
	}
	return -1
}
