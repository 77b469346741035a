package testutil

import (
	"os"
	"strings"
	"testing"
)

func TestPortfolioCSV(t *testing.T) {
	got := PortfolioCSV(Row{Region: "Oromia", Sector: "Agriculture", Default: 1, LoanAmountETB: 1500.5, CreditScore: 600})
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "region,sector,default,loan_amount_etb,income_variability,mobile_transactions,credit_score" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "Oromia,Agriculture,1,1500.5,0,0,600" {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestWritePortfolio(t *testing.T) {
	path := WritePortfolio(t, SampleRows()...)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(SampleRows())+1 {
		t.Errorf("expected %d lines, got %d", len(SampleRows())+1, len(lines))
	}
}
