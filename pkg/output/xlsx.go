package output

import (
	"io"

	"github.com/iwvelando/msme-risk/internal/analytics"
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetSummary         = "Summary"
	SheetSectors         = "Sectors"
	SheetRegions         = "Regions"
	SheetComparison      = "Comparison"
	SheetRecommendations = "Recommendations"
)

// XLSXFormat writes the dashboard as an Excel workbook with one sheet per
// table.
func XLSXFormat(w io.Writer, d analytics.Dashboard) error {
	f, err := BuildWorkbook(d)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.WriteTo(w); err != nil {
		return eris.Wrap(err, "output: write workbook")
	}
	return nil
}

// BuildWorkbook assembles the dashboard workbook in memory.
func BuildWorkbook(d analytics.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "output: rename summary sheet")
	}

	summary := [][]interface{}{
		{"Metric", "Portfolio", "Filtered"},
		{"Total Loans", d.Portfolio.TotalLoans, d.Filtered.TotalLoans},
		{"Total Defaults", d.Portfolio.TotalDefaults, d.Filtered.TotalDefaults},
		{"Default Rate (%)", d.Portfolio.DefaultRate, d.Filtered.DefaultRate},
		{"Avg Loan Amount (ETB)", d.Portfolio.AvgLoanAmountETB, d.Filtered.AvgLoanAmountETB},
		{"Agriculture Exposure (%)", d.Portfolio.AgricultureExposure, d.Filtered.AgricultureExposure},
		{},
		{"Source", d.Source.Source},
		{"Fingerprint", d.Source.Fingerprint},
	}

	sectors := [][]interface{}{{"Sector", "Loans", "Defaults", "Default Rate (%)"}}
	for _, g := range d.SectorRisk {
		sectors = append(sectors, []interface{}{g.Key, g.Total, g.Defaults, g.DefaultRate})
	}

	regions := [][]interface{}{{"Region", "Loans", "Defaults", "Default Rate (%)"}}
	for _, g := range d.RegionRisk {
		regions = append(regions, []interface{}{g.Key, g.Total, g.Defaults, g.DefaultRate})
	}

	comparison := [][]interface{}{{"Metric", "Status", "Average"}}
	for _, row := range d.RiskComparison {
		comparison = append(comparison, []interface{}{row.Metric, row.Status, row.Value})
	}

	recs := [][]interface{}{{"#", "Recommendation", "Detail"}}
	for i, rec := range d.Recommendations {
		recs = append(recs, []interface{}{i + 1, rec.Title, rec.Body})
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summary},
		{SheetSectors, sectors},
		{SheetRegions, regions},
		{SheetComparison, comparison},
		{SheetRecommendations, recs},
	}

	for _, sheet := range sheets {
		if sheet.name != SheetSummary {
			if _, err := f.NewSheet(sheet.name); err != nil {
				_ = f.Close()
				return nil, eris.Wrapf(err, "output: create sheet %s", sheet.name)
			}
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return eris.Wrapf(err, "output: cell for row %d", i+1)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return eris.Wrapf(err, "output: write %s row %d", sheet, i+1)
		}
	}
	return nil
}
