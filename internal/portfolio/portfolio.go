// Package portfolio loads the MSME loan portfolio from CSV, keeps it cached
// under an explicit invalidation policy and narrows it by region and sector.
package portfolio

import (
	"time"

	"github.com/iwvelando/msme-risk/pkg/constants"
)

// Loan is one row of the portfolio file.
type Loan struct {
	Region             string  `csv:"region" json:"region"`
	Sector             string  `csv:"sector" json:"sector"`
	Default            int     `csv:"default" json:"default"`
	LoanAmountETB      float64 `csv:"loan_amount_etb" json:"loan_amount_etb"`
	IncomeVariability  float64 `csv:"income_variability" json:"income_variability"`
	MobileTransactions float64 `csv:"mobile_transactions" json:"mobile_transactions"`
	CreditScore        float64 `csv:"credit_score" json:"credit_score"`
}

// Defaulted reports whether the loan is flagged as defaulted.
func (l Loan) Defaulted() bool {
	return l.Default == 1
}

// Status returns the display label for the loan's default flag.
func (l Loan) Status() string {
	return StatusLabel(l.Default)
}

// StatusLabel maps a default flag to its display label.
func StatusLabel(flag int) string {
	if flag == 1 {
		return constants.StatusDefaulted
	}
	return constants.StatusPerforming
}

// Portfolio is an immutable snapshot of the loan file.
type Portfolio struct {
	Loans []Loan

	// Source is the path the portfolio was read from.
	Source string
	// ModTime and Size describe the file at load time.
	ModTime time.Time
	Size    int64
	// Fingerprint is the hex xxhash64 of the file contents.
	Fingerprint string
	LoadedAt    time.Time
}

// Len returns the number of loans.
func (p *Portfolio) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Loans)
}

// Empty reports whether the portfolio holds no loans.
func (p *Portfolio) Empty() bool {
	return p.Len() == 0
}

// Metadata describes a loaded portfolio without its rows.
type Metadata struct {
	Source      string    `json:"source"`
	Loans       int       `json:"loans"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loadedAt"`
}

// Metadata returns the portfolio's load metadata.
func (p *Portfolio) Metadata() Metadata {
	if p == nil {
		return Metadata{}
	}
	return Metadata{
		Source:      p.Source,
		Loans:       len(p.Loans),
		Size:        p.Size,
		ModTime:     p.ModTime,
		Fingerprint: p.Fingerprint,
		LoadedAt:    p.LoadedAt,
	}
}
