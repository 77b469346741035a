package analytics

import (
	"github.com/iwvelando/msme-risk/internal/portfolio"
)

// Dashboard is everything one render cycle shows for a selection.
type Dashboard struct {
	// Portfolio summarizes the unfiltered portfolio.
	Portfolio Summary `json:"portfolio"`
	// Filtered summarizes the selected loans.
	Filtered        Summary            `json:"filtered"`
	SectorRisk      []RiskGroup        `json:"sectorRisk"`
	RegionRisk      []RiskGroup        `json:"regionRisk"`
	RiskComparison  []ComparisonRow    `json:"riskComparison"`
	Options         portfolio.Options  `json:"options"`
	Selection       portfolio.Options  `json:"selection"`
	Recommendations []Recommendation   `json:"recommendations"`
	Source          portfolio.Metadata `json:"source"`
}

// BuildDashboard filters p by sel and computes every aggregate over the
// result. It does not modify p.
func BuildDashboard(p *portfolio.Portfolio, sel portfolio.Selection) Dashboard {
	var loans []portfolio.Loan
	if p != nil {
		loans = p.Loans
	}

	options := portfolio.OptionsOf(loans)
	filtered := portfolio.Filter(loans, sel)

	return Dashboard{
		Portfolio:       Summarize(loans),
		Filtered:        Summarize(filtered),
		SectorRisk:      SectorRisk(filtered),
		RegionRisk:      RegionRisk(filtered),
		RiskComparison:  RiskComparison(filtered),
		Options:         options,
		Selection:       sel.Resolve(options),
		Recommendations: Recommendations(),
		Source:          p.Metadata(),
	}
}
