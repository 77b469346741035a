// Package constants provides shared constants for the msme-risk application.
package constants

// Portfolio file defaults
const (
	// DefaultDataFile is the CSV loaded when no data path is configured
	DefaultDataFile = "ethiopian_msme_loans_realistic.csv"
)

// Portfolio CSV column names
const (
	ColumnRegion             = "region"
	ColumnSector             = "sector"
	ColumnDefault            = "default"
	ColumnLoanAmountETB      = "loan_amount_etb"
	ColumnIncomeVariability  = "income_variability"
	ColumnMobileTransactions = "mobile_transactions"
	ColumnCreditScore        = "credit_score"
)

// RequiredColumns lists the header columns a portfolio file must carry.
var RequiredColumns = []string{
	ColumnRegion,
	ColumnSector,
	ColumnDefault,
	ColumnLoanAmountETB,
	ColumnIncomeVariability,
	ColumnMobileTransactions,
	ColumnCreditScore,
}

// Loan status labels
const (
	// StatusPerforming labels loans with default flag 0
	StatusPerforming = "Performing"

	// StatusDefaulted labels loans with default flag 1
	StatusDefaulted = "Defaulted"
)

// AgricultureSector is the substring used for the agriculture exposure metric
const AgricultureSector = "Agriculture"

// Rounding precision
const (
	// RatePlaces is the number of decimals kept for default rates
	RatePlaces = 1

	// MeanPlaces is the number of decimals kept for covariate means
	MeanPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Cache invalidation policies
const (
	// CachePolicyNever loads the portfolio once per process
	CachePolicyNever = "never"

	// CachePolicyTTL reloads the portfolio after a fixed age
	CachePolicyTTL = "ttl"

	// CachePolicyMtime reloads the portfolio when the file changes on disk
	CachePolicyMtime = "mtime"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatXLSX is the Excel workbook output format
	OutputFormatXLSX = "xlsx"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. MSME_DATA_PATH
	EnvPrefix = "MSME"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultRateLimitBurst is used when a rate limit is set without a burst
	DefaultRateLimitBurst = 10
)
