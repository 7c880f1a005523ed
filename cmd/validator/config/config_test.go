package config

import (
	"testing"
	"time"

	"commute-validation-service/internal/reporter"
)

func TestCreatePolicyConfig(t *testing.T) {
	policy, err := CreatePolicyConfig(PolicyOverrides{
		TargetMonth: 11,
		TargetYear:  2025,
		MinAmount:   150,
		MaxAmount:   600,
	})
	if err != nil {
		t.Fatalf("CreatePolicyConfig() error = %v", err)
	}

	if policy.TargetMonth != time.November {
		t.Errorf("TargetMonth = %v, want November", policy.TargetMonth)
	}
	if policy.TargetYear != 2025 {
		t.Errorf("TargetYear = %d", policy.TargetYear)
	}
	if policy.MinAmount.String() != "150" || policy.MaxAmount.String() != "600" {
		t.Errorf("amount range = %s-%s", policy.MinAmount, policy.MaxAmount)
	}
	// Keyword defaults survive when no override is given.
	if len(policy.OfficeKeywords) == 0 || len(policy.HomeKeywords) == 0 {
		t.Error("expected default keyword sets")
	}

	if err := policy.Validate(); err != nil {
		t.Errorf("policy config should be valid: %v", err)
	}
}

func TestCreatePolicyConfigZeroOverridesKeepDefaults(t *testing.T) {
	policy, err := CreatePolicyConfig(PolicyOverrides{})
	if err != nil {
		t.Fatalf("CreatePolicyConfig() error = %v", err)
	}
	if err := policy.Validate(); err != nil {
		t.Errorf("default policy should be valid: %v", err)
	}
}

func TestCreatePolicyConfigRejectsBadMonth(t *testing.T) {
	if _, err := CreatePolicyConfig(PolicyOverrides{TargetMonth: 13}); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestCreateInferenceConfig(t *testing.T) {
	config := CreateInferenceConfig(480, 6, true, 600)

	if config.ShiftMinutes != 480 {
		t.Errorf("ShiftMinutes = %d", config.ShiftMinutes)
	}
	if config.MinSamples != 6 {
		t.Errorf("MinSamples = %d", config.MinSamples)
	}
	if !config.EnableFallback {
		t.Error("expected fallback enabled")
	}
	if config.FallbackStartMinutes != 600 {
		t.Errorf("FallbackStartMinutes = %d", config.FallbackStartMinutes)
	}

	// Zero overrides keep defaults.
	defaults := CreateInferenceConfig(0, 0, false, 0)
	if defaults.ShiftMinutes != 540 || defaults.MinSamples != 4 {
		t.Errorf("defaults = %+v", defaults)
	}
}

func TestCreateClassifierConfig(t *testing.T) {
	config := CreateClassifierConfig(30, 5, 240)
	if config.EarlyToleranceMinutes != 30 || config.LateToleranceMinutes != 5 || config.HomeWindowCapMinutes != 240 {
		t.Errorf("config = %+v", config)
	}

	// Negative tolerances mean "keep the default"; zero is a real value.
	defaults := CreateClassifierConfig(-1, -1, 0)
	if defaults.EarlyToleranceMinutes != 60 || defaults.LateToleranceMinutes != 10 {
		t.Errorf("defaults = %+v", defaults)
	}
	zero := CreateClassifierConfig(0, 0, 0)
	if zero.EarlyToleranceMinutes != 0 || zero.LateToleranceMinutes != 0 {
		t.Errorf("zero tolerances = %+v", zero)
	}
}

func TestCreateTripParserConfig(t *testing.T) {
	config := CreateTripParserConfig()

	if config.DateColumn != "date" || config.AmountColumn != "amount" {
		t.Errorf("columns = %s/%s", config.DateColumn, config.AmountColumn)
	}
	if len(config.ColumnAliases) == 0 {
		t.Error("expected column aliases to be set")
	}
	if config.ColumnAliases["fare"] != "amount" {
		t.Error("expected 'fare' alias to map to 'amount'")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("trip parser config should be valid: %v", err)
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		format string
		want   reporter.OutputFormat
	}{
		{"console", reporter.FormatConsole},
		{"json", reporter.FormatJSON},
		{"csv", reporter.FormatCSV},
		{"unknown", reporter.FormatConsole},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			config := CreateReportConfig(tt.format)
			if config.Format != tt.want {
				t.Errorf("Format = %s, want %s", config.Format, tt.want)
			}
			if err := config.Validate(); err != nil {
				t.Errorf("report config should be valid: %v", err)
			}
		})
	}
}
