package analytics

import (
	"github.com/iwvelando/msme-risk/internal/portfolio"
	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/iwvelando/msme-risk/pkg/mathutil"
)

// ComparisonRow is the mean of one risk covariate for one loan status.
type ComparisonRow struct {
	Metric  string  `json:"metric" csv:"metric"`
	Default int     `json:"default" csv:"default"`
	Status  string  `json:"status" csv:"status"`
	Value   float64 `json:"value" csv:"value"`
}

// metric names a covariate and how to read it from a loan.
type metric struct {
	name  string
	value func(portfolio.Loan) float64
}

// comparisonMetrics are emitted in this order.
var comparisonMetrics = []metric{
	{constants.ColumnIncomeVariability, func(l portfolio.Loan) float64 { return l.IncomeVariability }},
	{constants.ColumnMobileTransactions, func(l portfolio.Loan) float64 { return l.MobileTransactions }},
	{constants.ColumnCreditScore, func(l portfolio.Loan) float64 { return l.CreditScore }},
	{constants.ColumnLoanAmountETB, func(l portfolio.Loan) float64 { return l.LoanAmountETB }},
}

// Metrics returns the covariate names compared by RiskComparison.
func Metrics() []string {
	names := make([]string, len(comparisonMetrics))
	for i, m := range comparisonMetrics {
		names[i] = m.name
	}
	return names
}

// RiskComparison averages each covariate over performing and defaulted
// loans, rounded to two decimals. Rows are metric-major with performing
// before defaulted; a status with no loans is omitted.
func RiskComparison(loans []portfolio.Loan) []ComparisonRow {
	var byStatus [2][]portfolio.Loan
	for _, loan := range loans {
		flag := 0
		if loan.Defaulted() {
			flag = 1
		}
		byStatus[flag] = append(byStatus[flag], loan)
	}

	rows := make([]ComparisonRow, 0, len(comparisonMetrics)*2)
	for _, m := range comparisonMetrics {
		for flag, group := range byStatus {
			if len(group) == 0 {
				continue
			}
			values := make([]float64, len(group))
			for i, loan := range group {
				values[i] = m.value(loan)
			}
			rows = append(rows, ComparisonRow{
				Metric:  m.name,
				Default: flag,
				Status:  portfolio.StatusLabel(flag),
				Value:   mathutil.Round(mathutil.Mean(values)),
			})
		}
	}
	return rows
}
