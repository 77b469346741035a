package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/msme-risk/internal/analytics"
	"github.com/iwvelando/msme-risk/internal/config"
	"github.com/iwvelando/msme-risk/internal/portfolio"
	"github.com/iwvelando/msme-risk/pkg/constants"
	"github.com/iwvelando/msme-risk/pkg/output"
	"github.com/iwvelando/msme-risk/pkg/validation"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// listFlag collects repeatable values, one literal name per occurrence so
// names containing commas stay whole. It remembers whether it was given at
// all so "-region=" can select nothing.
type listFlag struct {
	set    bool
	values []string
}

func (l *listFlag) String() string {
	return strings.Join(l.values, "; ")
}

func (l *listFlag) Set(value string) error {
	l.set = true
	if value = strings.TrimSpace(value); value != "" {
		l.values = append(l.values, value)
	}
	return nil
}

// members returns nil when the flag was never given.
func (l *listFlag) members() portfolio.Set {
	if !l.set {
		return nil
	}
	return portfolio.NewSet(l.values...)
}

type options struct {
	configLocation string
	dataPath       string
	outputFormat   string
	outputFile     string
	logLevel       string
	regions        listFlag
	sectors        listFlag
}

func main() {
	var opts options
	flag.StringVar(&opts.configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	flag.StringVar(&opts.dataPath, "data", "", "portfolio CSV override")
	flag.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json, xlsx")
	flag.StringVar(&opts.outputFile, "output-file", "", "write output to this file instead of stdout")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.Var(&opts.regions, "region", "region filter; repeat for several regions, empty selects nothing")
	flag.Var(&opts.sectors, "sector", "sector filter; repeat for several sectors, empty selects nothing")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(opts.configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", opts.configLocation, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(conf.Logging, opts.logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(context.Background(), logger, conf, &opts, os.Stdout); err != nil {
		logger.Error("msme-risk failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		_ = logger.Sync()
		os.Exit(1)
	}
}

// run loads the portfolio, builds the dashboard for the selection and
// writes it in the chosen format.
func run(ctx context.Context, logger *zap.Logger, conf *config.Configuration, opts *options, stdout io.Writer) error {
	if opts.dataPath != "" {
		conf.Data.Path = opts.dataPath
	}

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	sel := conf.Selection()
	if opts.regions.set {
		sel.Regions = opts.regions.members()
	}
	if opts.sectors.set {
		sel.Sectors = opts.sectors.members()
	}

	p, err := portfolio.Load(ctx, conf.Data.Path)
	if err != nil {
		if eris.Is(err, portfolio.ErrNotFound) {
			logger.Warn("portfolio file not found; place the CSV next to the binary or pass -data",
				zap.String("op", "main.run"),
				zap.String("path", conf.Data.Path),
			)
		}
		return err
	}
	logger.Debug("portfolio loaded",
		zap.String("op", "main.run"),
		zap.Int("loans", p.Len()),
		zap.String("fingerprint", p.Fingerprint),
	)

	d := analytics.BuildDashboard(p, sel)

	outputFile := conf.Output.File
	if opts.outputFile != "" {
		outputFile = opts.outputFile
	}
	if outputFile == "" {
		return render(stdout, outputFormat, d)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return eris.Wrapf(err, "create output file %s", outputFile)
	}
	return writeReport(f, outputFile, outputFormat, d)
}

// writeReport renders into wc and closes it. A close failure is reported
// when rendering succeeded, since the report may be incomplete on disk.
func writeReport(wc io.WriteCloser, name, outputFormat string, d analytics.Dashboard) error {
	if err := render(wc, outputFormat, d); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return eris.Wrapf(err, "close output file %s", name)
	}
	return nil
}

func render(w io.Writer, outputFormat string, d analytics.Dashboard) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return output.PrettyFormat(w, d)
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, d)
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, d)
	case constants.OutputFormatXLSX:
		return output.XLSXFormat(w, d)
	}
	return nil
}
