// Package constants provides shared constants for the milcalc application.
package constants

import "time"

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// CurrencyPlaces is the number of decimal places shown for money values
	CurrencyPlaces = 2

	// DefaultFrequency is the default frequency for monthly extra payments
	DefaultFrequency = 1

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Loan and insurance defaults
const (
	// DefaultPMIThresholdPercent is the down payment percentage at or above
	// which a conventional loan carries no PMI.
	DefaultPMIThresholdPercent = 20.0

	// DefaultMortgageInsuranceCutoff is the loan-to-value percentage at which
	// PMI is cancelled automatically.
	DefaultMortgageInsuranceCutoff = 78.0

	// DefaultTermMonths is a 30-year fixed mortgage
	DefaultTermMonths = 360

	// DefaultHorizonMonths is the projection horizon used when none is given
	DefaultHorizonMonths = 120
)

// Loan types
const (
	// LoanTypeConventional is a conventional mortgage that may carry PMI
	LoanTypeConventional = "conventional"

	// LoanTypeVA is a VA-guaranteed mortgage that never carries PMI
	LoanTypeVA = "va"
)

// Calculator keys identify which calculator a scenario or snapshot belongs to
const (
	CalculatorMortgage  = "mortgage"
	CalculatorVALoan    = "va-loan"
	CalculatorPMI       = "pmi"
	CalculatorEquity    = "equity"
	CalculatorRentVsBuy = "rent-vs-buy"
	CalculatorBAH       = "bah"
)

// Recurring cost labels produced by the engine and the scenario runner
const (
	LabelPMI           = "PMI"
	LabelPropertyTax   = "Property Tax"
	LabelHomeInsurance = "Home Insurance"
	LabelHOA           = "HOA"
	LabelMaintenance   = "Maintenance"
	LabelUtilities     = "Utilities"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the chart-ready JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultReadTimeout bounds reading a request, body included
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds writing a response
	DefaultWriteTimeout = 30 * time.Second

	// DefaultShutdownTimeout bounds draining in-flight requests on shutdown
	DefaultShutdownTimeout = 10 * time.Second

	// SnapshotKeyPrefix namespaces saved scenarios in the snapshot store
	SnapshotKeyPrefix = "milcalc:snapshot"
)

// Snapshot store backends
const (
	SnapshotBackendMemory = "memory"
	SnapshotBackendRedis  = "redis"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// MaxHomePrice bounds home price input at the validation boundary
	MaxHomePrice = 10_000_000.0

	// MaxInterestRatePercent bounds annual rate input at the validation boundary
	MaxInterestRatePercent = 30.0

	// MaxTermMonths bounds loan term input at the validation boundary
	MaxTermMonths = 480

	// MaxHorizonMonths bounds projection horizon input at the validation boundary
	MaxHorizonMonths = 600

	// MaxAppreciationPercent bounds the magnitude of the appreciation rate input
	MaxAppreciationPercent = 25.0

	// MaxPMIRatePercent bounds the annual PMI rate input
	MaxPMIRatePercent = 5.0

	// MaxMonthlyAmount bounds any single monthly money input
	MaxMonthlyAmount = 1_000_000.0
)
