// Package analytics computes the descriptive risk aggregates of a loan
// portfolio: default rates by sector and region, covariate means of
// defaulted versus performing loans, and headline metrics.
//
// Every function is pure. Groups are derived from observed rows, so no group
// is ever empty; an empty input yields empty, non-nil results.
package analytics

import (
	"sort"

	"github.com/iwvelando/msme-risk/internal/portfolio"
	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/iwvelando/msme-risk/pkg/mathutil"
)

// RiskGroup is the default profile of one sector or region.
type RiskGroup struct {
	Key         string  `json:"key" csv:"key"`
	Total       int     `json:"total" csv:"total"`
	Defaults    int     `json:"defaults" csv:"defaults"`
	DefaultRate float64 `json:"defaultRate" csv:"default_rate"`
}

// SectorRisk groups loans by sector, sorted by default rate descending.
func SectorRisk(loans []portfolio.Loan) []RiskGroup {
	return groupRisk(loans, func(l portfolio.Loan) string { return l.Sector })
}

// RegionRisk groups loans by region, sorted by default rate descending.
func RegionRisk(loans []portfolio.Loan) []RiskGroup {
	return groupRisk(loans, func(l portfolio.Loan) string { return l.Region })
}

func groupRisk(loans []portfolio.Loan, key func(portfolio.Loan) string) []RiskGroup {
	index := make(map[string]int)
	groups := make([]RiskGroup, 0)

	for _, loan := range loans {
		k := key(loan)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, RiskGroup{Key: k})
		}
		groups[i].Total++
		if loan.Defaulted() {
			groups[i].Defaults++
		}
	}

	for i := range groups {
		groups[i].DefaultRate = defaultRate(groups[i].Defaults, groups[i].Total)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].DefaultRate != groups[j].DefaultRate {
			return groups[i].DefaultRate > groups[j].DefaultRate
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// defaultRate is defaults/total as a percentage with one decimal.
func defaultRate(defaults, total int) float64 {
	return mathutil.RoundTo(mathutil.CalculatePercentage(float64(defaults), float64(total)), constants.RatePlaces)
}
