// Package output provides utilities for formatting and displaying dashboard results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iwvelando/msme-risk/internal/analytics"
	"github.com/iwvelando/msme-risk/pkg/format"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Exportable aggregate tables.
const (
	TableSectors    = "sectors"
	TableRegions    = "regions"
	TableComparison = "comparison"
)

// Tables lists the table names accepted by TableCSV.
var Tables = []string{TableSectors, TableRegions, TableComparison}

// ErrUnknownTable is returned by TableCSV for an unsupported table name.
var ErrUnknownTable = eris.New("unknown table")

type sectorRow struct {
	Sector      string  `csv:"sector"`
	Total       int     `csv:"total"`
	Defaults    int     `csv:"defaults"`
	DefaultRate float64 `csv:"default_rate"`
}

type regionRow struct {
	Region      string  `csv:"region"`
	Total       int     `csv:"total"`
	Defaults    int     `csv:"defaults"`
	DefaultRate float64 `csv:"default_rate"`
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, d analytics.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "--- Portfolio (%s) ---\n", d.Source.Source)
	fmt.Fprintf(tw, "Total Loans\t%s\n", format.Count(d.Portfolio.TotalLoans))
	fmt.Fprintf(tw, "Overall Default Rate\t%s\n", format.Percent(d.Portfolio.DefaultRate))
	fmt.Fprintf(tw, "Agriculture Exposure\t%s\n", format.WholePercent(d.Portfolio.AgricultureExposure))
	fmt.Fprintf(tw, "\n--- Selection ---\n")
	fmt.Fprintf(tw, "Regions\t%s\n", strings.Join(d.Selection.Regions, ", "))
	fmt.Fprintf(tw, "Sectors\t%s\n", strings.Join(d.Selection.Sectors, ", "))

	fmt.Fprintf(tw, "\n--- Filtered Loans ---\n")
	if d.Filtered.Empty {
		fmt.Fprintf(tw, "No loans match the selection.\n")
		return tw.Flush()
	}
	fmt.Fprintf(tw, "Total Loans\t%s\n", format.Count(d.Filtered.TotalLoans))
	fmt.Fprintf(tw, "Total Defaults\t%s\n", format.Count(d.Filtered.TotalDefaults))
	fmt.Fprintf(tw, "Portfolio Default Rate\t%s\n", format.Percent(d.Filtered.DefaultRate))
	fmt.Fprintf(tw, "Avg Loan Amount\t%s\n", format.Birr(d.Filtered.AvgLoanAmountETB))

	writeRiskTable(tw, "Default Rate by Sector", "Sector", d.SectorRisk)
	writeRiskTable(tw, "Default Rate by Region", "Region", d.RegionRisk)

	fmt.Fprintf(tw, "\n--- Risk Profile: Defaulted vs Performing ---\n")
	fmt.Fprintf(tw, "Metric\tStatus\tAverage\n")
	for _, row := range d.RiskComparison {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Metric, row.Status, format.Decimal(row.Value))
	}

	fmt.Fprintf(tw, "\n--- Recommendations ---\n")
	for i, rec := range d.Recommendations {
		fmt.Fprintf(tw, "%d. %s\n   %s\n", i+1, rec.Title, rec.Body)
	}
	return tw.Flush()
}

func writeRiskTable(w io.Writer, title, keyLabel string, groups []analytics.RiskGroup) {
	fmt.Fprintf(w, "\n--- %s ---\n", title)
	fmt.Fprintf(w, "%s\tLoans\tDefaults\tDefault Rate\n", keyLabel)
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Key, format.Count(g.Total), format.Count(g.Defaults), format.Percent(g.DefaultRate))
	}
}

// CsvFormat outputs the three aggregate tables as CSV sections separated by
// a blank line, each preceded by a "# <table>" line.
func CsvFormat(w io.Writer, d analytics.Dashboard) error {
	for i, table := range Tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return eris.Wrap(err, "output: write csv")
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n", table); err != nil {
			return eris.Wrap(err, "output: write csv")
		}
		if err := TableCSV(w, table, d); err != nil {
			return err
		}
	}
	return nil
}

// TableCSV writes one aggregate table of d as CSV with a header row.
func TableCSV(w io.Writer, table string, d analytics.Dashboard) error {
	var header, rows interface{}
	switch table {
	case TableSectors:
		out := make([]sectorRow, len(d.SectorRisk))
		for i, g := range d.SectorRisk {
			out[i] = sectorRow{Sector: g.Key, Total: g.Total, Defaults: g.Defaults, DefaultRate: g.DefaultRate}
		}
		header, rows = sectorRow{}, out
	case TableRegions:
		out := make([]regionRow, len(d.RegionRisk))
		for i, g := range d.RegionRisk {
			out[i] = regionRow{Region: g.Key, Total: g.Total, Defaults: g.Defaults, DefaultRate: g.DefaultRate}
		}
		header, rows = regionRow{}, out
	case TableComparison:
		header, rows = analytics.ComparisonRow{}, d.RiskComparison
	default:
		return eris.Wrapf(ErrUnknownTable, "%q (expected one of %s)", table, strings.Join(Tables, ", "))
	}

	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	// Header is written even when there are no rows.
	if err := enc.EncodeHeader(header); err != nil {
		return eris.Wrapf(err, "output: encode %s header", table)
	}
	if err := enc.Encode(rows); err != nil {
		return eris.Wrapf(err, "output: encode %s", table)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrapf(err, "output: flush %s", table)
	}
	return nil
}

// JSONFormat outputs the dashboard as indented JSON.
func JSONFormat(w io.Writer, d analytics.Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return eris.Wrap(err, "output: encode json")
	}
	return nil
}
