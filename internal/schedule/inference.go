package schedule

import (
	"sort"
	"time"

	"commute-validation-service/internal/models"
	"commute-validation-service/pkg/logger"
)

// Engine infers a work schedule from one batch's office-bound candidates
type Engine struct {
	config *InferenceConfig
	logger logger.Logger
}

// NewEngine creates an inference engine. A nil config falls back to
// DefaultInferenceConfig.
func NewEngine(config *InferenceConfig) *Engine {
	if config == nil {
		config = DefaultInferenceConfig()
	}
	return &Engine{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("schedule_inference"),
	}
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() *InferenceConfig {
	return e.config
}

// Infer computes the batch's schedule from office-bound candidate trips.
// Unparseable arrival times are discarded. With no usable samples the
// result is a null schedule (fail closed) unless fallback is enabled;
// with samples below MinSamples and fallback enabled, the configured
// default window is substituted at its fixed confidence.
func (e *Engine) Infer(officeTrips []*models.RawTrip, year int) *models.InferredSchedule {
	samples := make([]int, 0, len(officeTrips))
	for _, trip := range officeTrips {
		if minutes, ok := models.ParseClockMinutes(trip.Time); ok {
			samples = append(samples, minutes)
		}
	}

	e.logger.WithFields(logger.Fields{
		"office_trips":  len(officeTrips),
		"valid_samples": len(samples),
	}).Debug("Collected arrival samples")

	if len(samples) < e.config.MinSamples && e.config.EnableFallback {
		e.logger.WithFields(logger.Fields{
			"samples":     len(samples),
			"min_samples": e.config.MinSamples,
		}).Warn("Insufficient samples, substituting fallback schedule")
		return e.fallbackSchedule(len(samples), officeTrips, year)
	}

	if len(samples) == 0 {
		return &models.InferredSchedule{Confidence: 0, SampleSize: 0}
	}

	start := ceilToHour(median(samples))
	end := start + e.config.ShiftMinutes

	schedule := &models.InferredSchedule{
		StartMinutes: &start,
		EndMinutes:   &end,
		Confidence:   confidenceFor(len(samples)),
		SampleSize:   len(samples),
		WorkDays:     WorkDays(officeTrips, year),
	}

	e.logger.WithFields(logger.Fields{
		"start":      models.FormatClockMinutes(start),
		"end":        models.FormatClockMinutes(end),
		"confidence": schedule.Confidence,
		"samples":    schedule.SampleSize,
	}).Info("Inferred work schedule")

	return schedule
}

func (e *Engine) fallbackSchedule(sampleSize int, officeTrips []*models.RawTrip, year int) *models.InferredSchedule {
	start := e.config.FallbackStartMinutes
	end := start + e.config.ShiftMinutes

	return &models.InferredSchedule{
		StartMinutes: &start,
		EndMinutes:   &end,
		Confidence:   e.config.FallbackConfidence,
		SampleSize:   sampleSize,
		WorkDays:     WorkDays(officeTrips, year),
	}
}

// median returns the median of the samples; even-count lists average the
// two central values.
func median(samples []int) int {
	sorted := append([]int(nil), samples...)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ceilToHour rounds minutes up to the next full clock hour
func ceilToHour(minutes int) int {
	if minutes%60 == 0 {
		return minutes
	}
	return (minutes/60 + 1) * 60
}

// confidenceFor is a monotonic step function of sample size. It is
// metadata for downstream consumers, never a pass/fail gate here.
func confidenceFor(sampleSize int) float64 {
	switch {
	case sampleSize >= 20:
		return 0.95
	case sampleSize >= 15:
		return 0.85
	case sampleSize >= 10:
		return 0.75
	case sampleSize >= 5:
		return 0.60
	default:
		return 0.40
	}
}

// WorkDays returns the weekdays on which the batch's trips concentrate,
// ordered Sunday..Saturday. Days tie or beat half the busiest day's count
// to qualify; trips with unparseable dates are skipped.
func WorkDays(trips []*models.RawTrip, year int) []time.Weekday {
	frequency := make(map[time.Weekday]int)
	peak := 0

	for _, trip := range trips {
		date, ok := models.ParseReceiptDate(trip.Date, year)
		if !ok {
			continue
		}
		frequency[date.Weekday()]++
		if frequency[date.Weekday()] > peak {
			peak = frequency[date.Weekday()]
		}
	}

	if peak == 0 {
		return nil
	}

	var days []time.Weekday
	for day := time.Sunday; day <= time.Saturday; day++ {
		if frequency[day]*2 >= peak {
			days = append(days, day)
		}
	}

	return days
}
