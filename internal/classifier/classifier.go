// Package classifier applies the inferred work schedule to each candidate
// trip and decides Valid, Invalid, or Pending.
//
// Office-bound trips must arrive inside a tolerance window around the
// shift start; home-bound trips must depart at or after the shift end.
// Every outcome carries a reason string that embeds the comparison window
// in clock time, so a reviewer can audit the decision without re-deriving
// it.
package classifier

import (
	"fmt"

	"commute-validation-service/internal/models"
	"commute-validation-service/pkg/logger"
)

// Config holds the tolerance windows for time-based classification
type Config struct {
	// EarlyToleranceMinutes is how early before shift start an office
	// arrival may be
	EarlyToleranceMinutes int `json:"early_tolerance_minutes"`

	// LateToleranceMinutes is how late after shift start an office
	// arrival may be
	LateToleranceMinutes int `json:"late_tolerance_minutes"`

	// HomeWindowCapMinutes bounds how long after shift end a home
	// departure stays valid. Zero means no cap; the cap was removed from
	// the mature policy in favor of "any time after shift end is valid".
	HomeWindowCapMinutes int `json:"home_window_cap_minutes"`
}

// DefaultConfig returns the canonical tolerance windows
func DefaultConfig() *Config {
	return &Config{
		EarlyToleranceMinutes: 60,
		LateToleranceMinutes:  10,
		HomeWindowCapMinutes:  0,
	}
}

// Validate checks if the classifier configuration is valid
func (c *Config) Validate() error {
	if c.EarlyToleranceMinutes < 0 {
		return fmt.Errorf("early tolerance cannot be negative: %d", c.EarlyToleranceMinutes)
	}
	if c.LateToleranceMinutes < 0 {
		return fmt.Errorf("late tolerance cannot be negative: %d", c.LateToleranceMinutes)
	}
	if c.HomeWindowCapMinutes < 0 {
		return fmt.Errorf("home window cap cannot be negative: %d", c.HomeWindowCapMinutes)
	}
	return nil
}

// Clone creates a copy of the classifier configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Candidate pairs a trip with the commute zone the hard-rule filter
// assigned it
type Candidate struct {
	Trip *models.RawTrip
	Zone models.Zone
}

// Classifier decides the final status of candidate trips
type Classifier struct {
	config *Config
	logger logger.Logger
}

// NewClassifier creates a classifier. A nil config falls back to
// DefaultConfig.
func NewClassifier(config *Config) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}
	return &Classifier{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("classifier"),
	}
}

// Config returns the configuration the classifier was built with
func (c *Classifier) Config() *Config {
	return c.config
}

// Classify runs every candidate through the schedule check. A panic while
// classifying one trip is isolated: that trip becomes Pending with an
// internal-error reason and the rest of the batch continues.
func (c *Classifier) Classify(candidates []Candidate, schedule *models.InferredSchedule) []models.ClassifiedTrip {
	classified := make([]models.ClassifiedTrip, 0, len(candidates))
	for _, candidate := range candidates {
		classified = append(classified, c.classifyOne(candidate, schedule))
	}
	return classified
}

func (c *Classifier) classifyOne(candidate Candidate, schedule *models.InferredSchedule) (result models.ClassifiedTrip) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("panic", r).Error("Recovered from panic while classifying trip")
			result = models.ClassifiedTrip{
				Status: models.StatusPending,
				Reason: "internal processing error",
				Zone:   candidate.Zone,
			}
			if candidate.Trip != nil {
				result.RawTrip = *candidate.Trip
			}
		}
	}()

	trip := candidate.Trip
	annotate := func(status models.TripStatus, reason string) models.ClassifiedTrip {
		return models.ClassifiedTrip{RawTrip: *trip, Status: status, Reason: reason, Zone: candidate.Zone}
	}

	if !schedule.HasSchedule() {
		return annotate(models.StatusInvalid, "insufficient data to determine shift")
	}

	tripMinutes, ok := models.ParseClockMinutes(trip.Time)
	if !ok {
		return annotate(models.StatusPending, "invalid time format")
	}

	switch candidate.Zone {
	case models.ZoneOffice:
		return c.classifyOffice(annotate, tripMinutes, *schedule.StartMinutes)
	case models.ZoneHome:
		return c.classifyHome(annotate, tripMinutes, *schedule.EndMinutes)
	default:
		return annotate(models.StatusInvalid, fmt.Sprintf("unclassifiable zone %q", candidate.Zone))
	}
}

// classifyOffice validates an arrival against [start-early, start+late]
func (c *Classifier) classifyOffice(annotate func(models.TripStatus, string) models.ClassifiedTrip, tripMinutes, start int) models.ClassifiedTrip {
	windowStart := start - c.config.EarlyToleranceMinutes
	windowEnd := start + c.config.LateToleranceMinutes

	if tripMinutes >= windowStart && tripMinutes <= windowEnd {
		return annotate(models.StatusValid,
			fmt.Sprintf("within arrival window %s - %s",
				models.FormatClockMinutes(windowStart), models.FormatClockMinutes(windowEnd)))
	}

	return annotate(models.StatusInvalid,
		fmt.Sprintf("outside arrival window %s - %s (shift starts %s)",
			models.FormatClockMinutes(windowStart), models.FormatClockMinutes(windowEnd),
			models.FormatClockMinutes(start)))
}

// classifyHome validates a departure at or after the shift end. When the
// window crosses midnight, early-morning trips (before 3 AM) count as
// next-day departures.
func (c *Classifier) classifyHome(annotate func(models.TripStatus, string) models.ClassifiedTrip, tripMinutes, end int) models.ClassifiedTrip {
	windowCrossesMidnight := end >= 1440 ||
		(c.config.HomeWindowCapMinutes > 0 && end+c.config.HomeWindowCapMinutes >= 1440)

	adjusted := tripMinutes
	if windowCrossesMidnight && tripMinutes < 180 {
		adjusted += 1440
	}

	if adjusted < end {
		return annotate(models.StatusInvalid,
			fmt.Sprintf("departure before shift end %s", models.FormatClockMinutes(end)))
	}

	if c.config.HomeWindowCapMinutes > 0 && adjusted > end+c.config.HomeWindowCapMinutes {
		return annotate(models.StatusInvalid,
			fmt.Sprintf("departure after window %s - %s",
				models.FormatClockMinutes(end),
				models.FormatClockMinutes(end+c.config.HomeWindowCapMinutes)))
	}

	return annotate(models.StatusValid,
		fmt.Sprintf("departure at or after shift end %s", models.FormatClockMinutes(end)))
}
