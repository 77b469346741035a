package analytics

import (
	"strings"

	"github.com/iwvelando/msme-risk/internal/portfolio"
	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/iwvelando/msme-risk/pkg/mathutil"
)

// Summary holds the headline metrics of a set of loans. Rates and averages
// are zero when Empty is set.
type Summary struct {
	TotalLoans          int     `json:"totalLoans"`
	TotalDefaults       int     `json:"totalDefaults"`
	DefaultRate         float64 `json:"defaultRate"`
	AvgLoanAmountETB    float64 `json:"avgLoanAmountEtb"`
	AgricultureExposure float64 `json:"agricultureExposure"`
	Empty               bool    `json:"empty"`
}

// Summarize computes the headline metrics of loans.
func Summarize(loans []portfolio.Loan) Summary {
	if len(loans) == 0 {
		return Summary{Empty: true}
	}

	var defaults, agriculture int
	amounts := make([]float64, len(loans))
	for i, loan := range loans {
		if loan.Defaulted() {
			defaults++
		}
		if strings.Contains(loan.Sector, constants.AgricultureSector) {
			agriculture++
		}
		amounts[i] = loan.LoanAmountETB
	}

	total := float64(len(loans))
	return Summary{
		TotalLoans:          len(loans),
		TotalDefaults:       defaults,
		DefaultRate:         defaultRate(defaults, len(loans)),
		AvgLoanAmountETB:    mathutil.Round(mathutil.Mean(amounts)),
		AgricultureExposure: mathutil.RoundTo(mathutil.CalculatePercentage(float64(agriculture), total), constants.RatePlaces),
	}
}
