package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"occratios/internal/ratios"
	"occratios/internal/risk"
)

// PrintSummary renders the statistics table with four decimals.
func PrintSummary(w io.Writer, s ratios.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(names, "\t"))

	for _, label := range ratios.StatisticLabels {
		cells := make([]string, len(s.Columns))
		for i, c := range s.Columns {
			cells[i] = formatTableFloat(s.Cell(label, c.Name), 4)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", label, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// PrintCrossTab renders the receivership-rate grid under a title line.
func PrintCrossTab(w io.Writer, tab risk.CrossTab) error {
	if _, err := fmt.Fprintln(w, "Probability of Failure by Solvency and Funding Vulnerability Categories:"); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\t\n", fundingAxis, strings.Join(tab.Columns, "\t"))
	fmt.Fprintf(tw, "%s\t%s\t\n", solvencyAxis, strings.Repeat("\t", len(tab.Columns)-1))
	for _, s := range tab.Rows {
		cells := make([]string, len(tab.Columns))
		for j, f := range tab.Columns {
			cells[j] = formatTableFloat(tab.Rate(s, f), 6)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", s, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
