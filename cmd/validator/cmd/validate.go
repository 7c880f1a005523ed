package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"commute-validation-service/cmd/validator/config"
	"commute-validation-service/internal/parsers"
	"commute-validation-service/internal/pipeline"
	"commute-validation-service/internal/reporter"
	"commute-validation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the validate command
var (
	tripsFile    string
	outputFormat string
	outputFile   string
	batchID      string

	// Policy flags
	targetMonth    int
	targetYear     int
	minAmount      float64
	maxAmount      float64
	officeKeywords []string
	homeKeywords   []string

	// Inference flags
	shiftMinutes   int
	minSamples     int
	enableFallback bool
	fallbackStart  int

	// Classifier flags
	earlyTolerance int
	lateTolerance  int
	homeWindowCap  int
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a batch of ride receipts against commute policy",
	Long: `Validate loads a batch of extracted ride receipts, applies the hard
policy rules (reporting period, amount range, location keywords), infers
the rider's work schedule from office arrival times, and classifies every
trip as valid, invalid, or pending.

This command requires a trips file in JSON or CSV format.

Examples:
  # Basic validation with defaults
  commute-validator validate --trips-file november.json

  # Custom policy window and amount range
  commute-validator validate --trips-file trips.csv \
    --target-month 11 --target-year 2025 --min-amount 150 --max-amount 600

  # Custom location keywords
  commute-validator validate --trips-file trips.json \
    --office-keywords mireka,havelock --home-keywords lauries,43b

  # Allow a default schedule when arrival samples are scarce
  commute-validator validate --trips-file trips.json --enable-fallback

  # JSON report written to a file
  commute-validator validate --trips-file trips.json \
    --output-format json --output-file report.json`,

	PreRunE: validateValidateFlags,
	RunE:    runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	// Required flags
	validateCmd.Flags().StringVarP(&tripsFile, "trips-file", "t", "", "path to trips file, JSON or CSV (required)")

	// Output flags
	validateCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	validateCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	validateCmd.Flags().StringVar(&batchID, "batch-id", "", "batch identifier (default: from file or generated)")

	// Policy flags
	validateCmd.Flags().IntVar(&targetMonth, "target-month", 0, "reporting month 1-12 (default: current month)")
	validateCmd.Flags().IntVar(&targetYear, "target-year", 0, "reporting year (default: current year)")
	validateCmd.Flags().Float64Var(&minAmount, "min-amount", 0, "minimum allowed trip amount")
	validateCmd.Flags().Float64Var(&maxAmount, "max-amount", 0, "maximum allowed trip amount")
	validateCmd.Flags().StringSliceVar(&officeKeywords, "office-keywords", nil, "comma-separated office location keywords")
	validateCmd.Flags().StringSliceVar(&homeKeywords, "home-keywords", nil, "comma-separated home location keywords")

	// Inference flags
	validateCmd.Flags().IntVar(&shiftMinutes, "shift-minutes", 0, "assumed shift length in minutes (default: 540)")
	validateCmd.Flags().IntVar(&minSamples, "min-samples", 0, "arrival samples required before fallback applies (default: 4)")
	validateCmd.Flags().BoolVar(&enableFallback, "enable-fallback", false, "substitute a default schedule when samples are insufficient")
	validateCmd.Flags().IntVar(&fallbackStart, "fallback-start", 0, "fallback shift start in minutes since midnight (default: 540)")

	// Classifier flags
	validateCmd.Flags().IntVar(&earlyTolerance, "early-tolerance", -1, "minutes before shift start an arrival may be (default: 60)")
	validateCmd.Flags().IntVar(&lateTolerance, "late-tolerance", -1, "minutes after shift start an arrival may be (default: 10)")
	validateCmd.Flags().IntVar(&homeWindowCap, "home-window-cap", 0, "minutes after shift end a departure stays valid, 0 = unlimited")

	validateCmd.MarkFlagRequired("trips-file")

	// Bind flags to viper
	viper.BindPFlag("trips-file", validateCmd.Flags().Lookup("trips-file"))
	viper.BindPFlag("output-format", validateCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", validateCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("batch-id", validateCmd.Flags().Lookup("batch-id"))
	viper.BindPFlag("target-month", validateCmd.Flags().Lookup("target-month"))
	viper.BindPFlag("target-year", validateCmd.Flags().Lookup("target-year"))
	viper.BindPFlag("min-amount", validateCmd.Flags().Lookup("min-amount"))
	viper.BindPFlag("max-amount", validateCmd.Flags().Lookup("max-amount"))
	viper.BindPFlag("office-keywords", validateCmd.Flags().Lookup("office-keywords"))
	viper.BindPFlag("home-keywords", validateCmd.Flags().Lookup("home-keywords"))
	viper.BindPFlag("shift-minutes", validateCmd.Flags().Lookup("shift-minutes"))
	viper.BindPFlag("min-samples", validateCmd.Flags().Lookup("min-samples"))
	viper.BindPFlag("enable-fallback", validateCmd.Flags().Lookup("enable-fallback"))
	viper.BindPFlag("fallback-start", validateCmd.Flags().Lookup("fallback-start"))
	viper.BindPFlag("early-tolerance", validateCmd.Flags().Lookup("early-tolerance"))
	viper.BindPFlag("late-tolerance", validateCmd.Flags().Lookup("late-tolerance"))
	viper.BindPFlag("home-window-cap", validateCmd.Flags().Lookup("home-window-cap"))
}

func validateValidateFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	tripsFile = viper.GetString("trips-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	batchID = viper.GetString("batch-id")
	targetMonth = viper.GetInt("target-month")
	targetYear = viper.GetInt("target-year")
	minAmount = viper.GetFloat64("min-amount")
	maxAmount = viper.GetFloat64("max-amount")
	officeKeywords = viper.GetStringSlice("office-keywords")
	homeKeywords = viper.GetStringSlice("home-keywords")
	shiftMinutes = viper.GetInt("shift-minutes")
	minSamples = viper.GetInt("min-samples")
	enableFallback = viper.GetBool("enable-fallback")
	fallbackStart = viper.GetInt("fallback-start")
	earlyTolerance = viper.GetInt("early-tolerance")
	lateTolerance = viper.GetInt("late-tolerance")
	homeWindowCap = viper.GetInt("home-window-cap")

	if tripsFile == "" {
		return fmt.Errorf("trips-file is required")
	}
	if err := validateFileExists(tripsFile, "trips file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if targetMonth < 0 || targetMonth > 12 {
		return fmt.Errorf("target month must be 1-12")
	}
	if minAmount < 0 || maxAmount < 0 {
		return fmt.Errorf("amount bounds cannot be negative")
	}
	if minAmount > 0 && maxAmount > 0 && minAmount > maxAmount {
		return fmt.Errorf("min-amount cannot exceed max-amount")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	errorHandler := NewCLIErrorHandler()

	if viper.GetBool("verbose") {
		if debugLogger, err := logger.NewLogger(logger.DebugConfig()); err == nil {
			logger.SetGlobalLogger(debugLogger)
		}
		fmt.Fprintf(os.Stderr, "Starting validation...\n")
		fmt.Fprintf(os.Stderr, "Trips file: %s\n", tripsFile)
		fmt.Fprintf(os.Stderr, "Output format: %s\n", outputFormat)
		if outputFile != "" {
			fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		}
	}

	// Build component configurations from flags
	policy, err := config.CreatePolicyConfig(config.PolicyOverrides{
		TargetMonth:    targetMonth,
		TargetYear:     targetYear,
		MinAmount:      minAmount,
		MaxAmount:      maxAmount,
		OfficeKeywords: officeKeywords,
		HomeKeywords:   homeKeywords,
	})
	if err != nil {
		return fmt.Errorf("failed to create policy config: %w", err)
	}

	inference := config.CreateInferenceConfig(shiftMinutes, minSamples, enableFallback, fallbackStart)
	classifierConfig := config.CreateClassifierConfig(earlyTolerance, lateTolerance, homeWindowCap)

	// Parse the batch file
	parser, err := parsers.NewTripParser(config.CreateTripParserConfig())
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	fileBatchID, trips, stats, err := parser.ParseFile(tripsFile)
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}
	if stats.HasErrors() && viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Skipped %d unreadable records:\n", stats.ErrorCount)
		for _, parseErr := range stats.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", parseErr)
		}
	}

	// Flag overrides file-carried batch ID.
	if batchID == "" {
		batchID = fileBatchID
	}

	// Run the pipeline
	service, err := pipeline.NewService(config.CreatePipelineConfig(policy, inference, classifierConfig))
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	result, err := service.Validate(ctx, &pipeline.Request{BatchID: batchID, Trips: trips})
	if err != nil {
		os.Exit(errorHandler.HandleError(err))
	}

	// Generate the report
	reportGenerator := reporter.NewReportGenerator(config.CreateReportConfig(outputFormat))

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := reportGenerator.GenerateReport(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nValidation completed successfully.\n")
		fmt.Fprintf(os.Stderr, "Processed %d trips: %d valid, %d invalid, %d pending.\n",
			result.Summary.TotalTrips, result.Summary.ValidCount,
			result.Summary.InvalidCount, result.Summary.PendingCount)
		fmt.Fprintf(os.Stderr, "Total valid amount: %s\n", result.TotalValid)
	}

	return nil
}
