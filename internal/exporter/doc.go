// Package exporter writes analysis results to disk and to the terminal.
//
// CSVWriter: plain CSV tables resolved against the run's output directory.
//
// Summary and risk tables each have a CSV form, an XLSX workbook built with
// excelize, and a fixed-width text rendering for stdout. The risk workbook
// carries a three-colour scale over the rate cells as its heatmap.
//
// Exporter.WriteAll writes several artifacts concurrently; each artifact owns
// its file and reads only immutable results.
//
// Example usage:
//
//	w := exporter.New(paths, logger)
//	artifacts, err := w.WriteAll(ctx,
//		w.SummaryCSV(summary),
//		w.SummaryXLSX(summary),
//	)
package exporter
