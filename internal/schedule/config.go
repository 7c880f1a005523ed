// Package schedule implements work-schedule inference: deriving an
// employee's unobserved shift start and end purely from the distribution
// of their office-arrival timestamps.
//
// The engine takes the office-bound candidates of one batch, computes the
// median arrival minute, rounds it up to the next full clock hour (the
// institutional assumption that employees arrive slightly before a fixed
// hourly shift boundary), and extends it by the configured shift duration.
// Home-bound trips never feed inference; only observed arrivals anchor
// the shift start.
package schedule

import (
	"fmt"
)

// InferenceConfig holds the knobs for schedule inference
type InferenceConfig struct {
	// ShiftMinutes is the assumed shift length appended to the inferred start
	ShiftMinutes int `json:"shift_minutes"`

	// MinSamples is the sample count below which fallback applies (when enabled)
	MinSamples int `json:"min_samples"`

	// EnableFallback substitutes the default window instead of failing the
	// batch when samples are insufficient. Off by default: the canonical
	// policy fails closed because a silent default materially changes
	// validation outcomes.
	EnableFallback bool `json:"enable_fallback"`

	// FallbackStartMinutes is the default shift start used in fallback mode
	FallbackStartMinutes int `json:"fallback_start_minutes"`

	// FallbackConfidence is the fixed confidence reported for a fallback schedule
	FallbackConfidence float64 `json:"fallback_confidence"`
}

// DefaultInferenceConfig returns the canonical fail-closed configuration:
// a 9-hour shift, no fallback.
func DefaultInferenceConfig() *InferenceConfig {
	return &InferenceConfig{
		ShiftMinutes:         540,
		MinSamples:           4,
		EnableFallback:       false,
		FallbackStartMinutes: 540, // 09:00
		FallbackConfidence:   0.50,
	}
}

// FallbackInferenceConfig returns a configuration that substitutes standard
// office hours when the batch lacks enough arrival samples
func FallbackInferenceConfig() *InferenceConfig {
	config := DefaultInferenceConfig()
	config.EnableFallback = true
	return config
}

// Validate checks if the inference configuration is valid
func (ic *InferenceConfig) Validate() error {
	if ic.ShiftMinutes <= 0 || ic.ShiftMinutes > 1440 {
		return fmt.Errorf("shift minutes must be in (0, 1440]: %d", ic.ShiftMinutes)
	}

	if ic.MinSamples < 1 {
		return fmt.Errorf("minimum samples must be at least 1: %d", ic.MinSamples)
	}

	if ic.FallbackStartMinutes < 0 || ic.FallbackStartMinutes >= 1440 {
		return fmt.Errorf("fallback start must be in [0, 1440): %d", ic.FallbackStartMinutes)
	}

	if ic.FallbackConfidence < 0.0 || ic.FallbackConfidence > 1.0 {
		return fmt.Errorf("fallback confidence must be between 0.0 and 1.0: %f", ic.FallbackConfidence)
	}

	return nil
}

// Clone creates a copy of the inference configuration
func (ic *InferenceConfig) Clone() *InferenceConfig {
	if ic == nil {
		return nil
	}
	clone := *ic
	return &clone
}

// String returns a human-readable description of the configuration
func (ic *InferenceConfig) String() string {
	return fmt.Sprintf("InferenceConfig{Shift: %dm, MinSamples: %d, Fallback: %v}",
		ic.ShiftMinutes, ic.MinSamples, ic.EnableFallback)
}
