package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/msme-risk/internal/analytics"
	"github.com/iwvelando/msme-risk/internal/config"
	"github.com/iwvelando/msme-risk/internal/portfolio"
	"github.com/iwvelando/msme-risk/pkg/testutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

func TestListFlag(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantNil bool
		want    string
	}{
		{"Absent", nil, true, ""},
		{"Empty selects nothing", []string{"-region="}, false, ""},
		{"Comma stays in the name", []string{"-region=Southern Nations, Nationalities, and Peoples"}, false, "Southern Nations, Nationalities, and Peoples"},
		{"Repeated", []string{"-region=Oromia", "-region", "Tigray"}, false, "Oromia|Tigray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var regions listFlag
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.Var(&regions, "region", "")
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			set := regions.members()
			if tt.wantNil {
				if set != nil {
					t.Fatalf("expected nil set, got %v", set)
				}
				return
			}
			if set == nil {
				t.Fatal("expected non-nil set")
			}
			if got := strings.Join(set.Sorted(), "|"); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRunJSON(t *testing.T) {
	conf := config.Default()
	conf.Filters.Sectors = []string{"Agriculture"}
	opts := &options{
		dataPath:     testutil.WritePortfolio(t, testutil.SampleRows()...),
		outputFormat: "json",
	}
	if err := opts.regions.Set("Oromia"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := run(context.Background(), zap.NewNop(), conf, opts, &buf); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var d analytics.Dashboard
	if err := json.Unmarshal(buf.Bytes(), &d); err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if d.Filtered.TotalLoans != 2 || d.Filtered.TotalDefaults != 1 {
		t.Errorf("expected 2 Oromia agriculture loans with 1 default, got %+v", d.Filtered)
	}
	if d.Portfolio.TotalLoans != 6 {
		t.Errorf("expected 6 loans in portfolio, got %d", d.Portfolio.TotalLoans)
	}
}

func TestRunWritesOutputFile(t *testing.T) {
	conf := config.Default()
	outPath := filepath.Join(t.TempDir(), "report.csv")
	opts := &options{
		dataPath:     testutil.WritePortfolio(t, testutil.SampleRows()...),
		outputFormat: "csv",
		outputFile:   outPath,
	}

	var stdout bytes.Buffer
	if err := run(context.Background(), zap.NewNop(), conf, opts, &stdout); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", stdout.String())
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	for _, want := range []string{"# sectors", "# regions", "# comparison"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

// failingFile accepts writes but fails on Close, like a full disk
// surfacing at flush time.
type failingFile struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (f *failingFile) Close() error {
	f.closed = true
	return f.closeErr
}

func TestWriteReportReturnsCloseError(t *testing.T) {
	d := analytics.BuildDashboard(&portfolio.Portfolio{Loans: []portfolio.Loan{{Region: "Oromia", Sector: "Trade"}}}, portfolio.All())
	errDiskFull := errors.New("no space left on device")

	f := &failingFile{closeErr: errDiskFull}
	err := writeReport(f, "report.json", "json", d)
	if err == nil || !strings.Contains(err.Error(), errDiskFull.Error()) {
		t.Fatalf("expected close error, got %v", err)
	}
	if !strings.Contains(err.Error(), "report.json") {
		t.Errorf("expected file name in error, got %v", err)
	}
	if f.Len() == 0 {
		t.Error("expected report to be rendered before close")
	}

	f = &failingFile{}
	if err := writeReport(f, "report.json", "json", d); err != nil {
		t.Fatalf("writeReport() error = %v", err)
	}
	if !f.closed {
		t.Error("expected file to be closed")
	}
}

func TestRunPrettyEmptySelection(t *testing.T) {
	conf := config.Default()
	opts := &options{dataPath: testutil.WritePortfolio(t, testutil.SampleRows()...)}
	if err := opts.sectors.Set(""); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := run(context.Background(), zap.NewNop(), conf, opts, &buf); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No loans match the selection.") {
		t.Errorf("expected empty selection notice, got:\n%s", buf.String())
	}
}

func TestRunErrors(t *testing.T) {
	conf := config.Default()

	opts := &options{dataPath: filepath.Join(t.TempDir(), "missing.csv")}
	err := run(context.Background(), zap.NewNop(), conf, opts, &bytes.Buffer{})
	if !eris.Is(err, portfolio.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	opts = &options{
		dataPath:     testutil.WritePortfolio(t, testutil.SampleRows()...),
		outputFormat: "yaml",
	}
	err = run(context.Background(), zap.NewNop(), conf, opts, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "expected output format") {
		t.Fatalf("expected output format error, got %v", err)
	}
}
