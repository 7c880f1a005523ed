// Package config builds the component configurations the CLI hands to
// the validation pipeline, applying flag overrides on top of defaults.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"commute-validation-service/internal/classifier"
	"commute-validation-service/internal/parsers"
	"commute-validation-service/internal/pipeline"
	"commute-validation-service/internal/reporter"
	"commute-validation-service/internal/rules"
	"commute-validation-service/internal/schedule"
)

// PolicyOverrides carries the CLI flag values for the hard-rule policy.
// Zero values mean "keep the default".
type PolicyOverrides struct {
	TargetMonth    int
	TargetYear     int
	MinAmount      float64
	MaxAmount      float64
	OfficeKeywords []string
	HomeKeywords   []string
}

// CreatePolicyConfig builds the hard-rule policy from defaults plus CLI overrides
func CreatePolicyConfig(overrides PolicyOverrides) (*rules.PolicyConfig, error) {
	policy := rules.DefaultPolicyConfig()

	if overrides.TargetMonth != 0 {
		if overrides.TargetMonth < 1 || overrides.TargetMonth > 12 {
			return nil, fmt.Errorf("target month must be 1-12, got %d", overrides.TargetMonth)
		}
		policy.TargetMonth = time.Month(overrides.TargetMonth)
	}
	if overrides.TargetYear != 0 {
		policy.TargetYear = overrides.TargetYear
	}
	if overrides.MinAmount > 0 {
		policy.MinAmount = decimal.NewFromFloat(overrides.MinAmount)
	}
	if overrides.MaxAmount > 0 {
		policy.MaxAmount = decimal.NewFromFloat(overrides.MaxAmount)
	}
	if len(overrides.OfficeKeywords) > 0 {
		policy.OfficeKeywords = overrides.OfficeKeywords
	}
	if len(overrides.HomeKeywords) > 0 {
		policy.HomeKeywords = overrides.HomeKeywords
	}

	return policy, nil
}

// CreateInferenceConfig builds the schedule inference configuration from
// defaults plus CLI overrides
func CreateInferenceConfig(shiftMinutes, minSamples int, enableFallback bool, fallbackStart int) *schedule.InferenceConfig {
	config := schedule.DefaultInferenceConfig()

	if shiftMinutes > 0 {
		config.ShiftMinutes = shiftMinutes
	}
	if minSamples > 0 {
		config.MinSamples = minSamples
	}
	config.EnableFallback = enableFallback
	if fallbackStart > 0 {
		config.FallbackStartMinutes = fallbackStart
	}

	return config
}

// CreateClassifierConfig builds the classifier tolerances from defaults
// plus CLI overrides. Negative flag values mean "keep the default".
func CreateClassifierConfig(earlyTolerance, lateTolerance, homeWindowCap int) *classifier.Config {
	config := classifier.DefaultConfig()

	if earlyTolerance >= 0 {
		config.EarlyToleranceMinutes = earlyTolerance
	}
	if lateTolerance >= 0 {
		config.LateToleranceMinutes = lateTolerance
	}
	if homeWindowCap > 0 {
		config.HomeWindowCapMinutes = homeWindowCap
	}

	return config
}

// CreatePipelineConfig bundles the component configurations for the service
func CreatePipelineConfig(policy *rules.PolicyConfig, inference *schedule.InferenceConfig, classifierConfig *classifier.Config) *pipeline.Config {
	return &pipeline.Config{
		Policy:     policy,
		Inference:  inference,
		Classifier: classifierConfig,
	}
}

// CreateTripParserConfig creates the trip parser configuration with common
// column aliases for receipt exports
func CreateTripParserConfig() *parsers.TripParserConfig {
	config := parsers.DefaultTripParserConfig()
	config.ColumnAliases = map[string]string{
		"trip_date":   "date",
		"ride_date":   "date",
		"trip_time":   "time",
		"pickup_time": "time",
		"destination": "location",
		"dropoff":     "location",
		"fare":        "amount",
		"price":       "amount",
		"total":       "amount",
	}
	return config
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		config.Format = reporter.FormatConsole
		config.IncludeInvalidTrips = true
		config.IncludePendingTrips = true
	}

	return config
}
