package portfolio

import "sort"

// Set is a string membership set. A nil Set leaves its dimension
// unrestricted; an empty non-nil Set matches nothing.
type Set map[string]struct{}

// NewSet builds a non-nil Set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Contains reports membership. A nil Set contains every value.
func (s Set) Contains(value string) bool {
	if s == nil {
		return true
	}
	_, ok := s[value]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Selection is the user's region and sector choice.
type Selection struct {
	Regions Set
	Sectors Set
}

// All selects every loan.
func All() Selection {
	return Selection{}
}

// Matches reports whether a loan falls inside the selection on both dimensions.
func (s Selection) Matches(loan Loan) bool {
	return s.Regions.Contains(loan.Region) && s.Sectors.Contains(loan.Sector)
}

// Resolve replaces unrestricted dimensions with the full option domain and
// returns the effective, sorted selection.
func (s Selection) Resolve(opts Options) Options {
	resolved := Options{Regions: opts.Regions, Sectors: opts.Sectors}
	if s.Regions != nil {
		resolved.Regions = s.Regions.Sorted()
	}
	if s.Sectors != nil {
		resolved.Sectors = s.Sectors.Sorted()
	}
	return resolved
}

// Options is the permissible selection domain: every distinct region and
// sector in the portfolio, sorted.
type Options struct {
	Regions []string `json:"regions"`
	Sectors []string `json:"sectors"`
}

// OptionsOf collects the distinct regions and sectors of loans.
func OptionsOf(loans []Loan) Options {
	regions := make(Set)
	sectors := make(Set)
	for _, loan := range loans {
		regions[loan.Region] = struct{}{}
		sectors[loan.Sector] = struct{}{}
	}
	return Options{Regions: regions.Sorted(), Sectors: sectors.Sorted()}
}

// Filter returns the loans matching the selection. The input is not modified.
func Filter(loans []Loan, sel Selection) []Loan {
	if sel.Regions == nil && sel.Sectors == nil {
		out := make([]Loan, len(loans))
		copy(out, loans)
		return out
	}

	out := make([]Loan, 0, len(loans))
	for _, loan := range loans {
		if sel.Matches(loan) {
			out = append(out, loan)
		}
	}
	return out
}
