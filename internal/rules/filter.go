package rules

import (
	"fmt"
	"strings"

	"commute-validation-service/internal/models"
)

// Filter applies the hard-rule policy checks to individual trips
type Filter struct {
	config *PolicyConfig
}

// NewFilter creates a filter for the given policy. A nil config falls back
// to DefaultPolicyConfig.
func NewFilter(config *PolicyConfig) *Filter {
	if config == nil {
		config = DefaultPolicyConfig()
	}
	return &Filter{config: config}
}

// Config returns the policy the filter was built with
func (f *Filter) Config() *PolicyConfig {
	return f.config
}

// Check runs the ordered policy rules against one trip. It returns the
// commute zone and an empty reason when the trip passes, or ZoneUnknown
// and a rejection reason on the first rule that fails.
func (f *Filter) Check(trip *models.RawTrip) (models.Zone, string) {
	if reason := f.checkDate(trip); reason != "" {
		return models.ZoneUnknown, reason
	}

	if reason := f.checkAmount(trip); reason != "" {
		return models.ZoneUnknown, reason
	}

	return f.checkLocation(trip)
}

// checkDate enforces the reporting-period policy: the free-form date must
// name the target month.
func (f *Filter) checkDate(trip *models.RawTrip) string {
	date := strings.ToLower(strings.TrimSpace(trip.Date))
	if date == "" {
		return "missing trip date"
	}

	if !strings.Contains(date, f.config.MonthAbbrev()) {
		return fmt.Sprintf("date %q outside reporting period %s %d",
			trip.Date, f.config.TargetMonth, f.config.TargetYear)
	}

	return ""
}

// checkAmount enforces the inclusive fare range, echoing the parsed value
// so the rejection can be audited.
func (f *Filter) checkAmount(trip *models.RawTrip) string {
	amount := models.ParseAmount(trip.Amount)

	if amount.LessThan(f.config.MinAmount) || amount.GreaterThan(f.config.MaxAmount) {
		return fmt.Sprintf("amount %s outside allowed range %s-%s",
			amount, f.config.MinAmount, f.config.MaxAmount)
	}

	return ""
}

// checkLocation matches the destination against the office keyword set,
// then the home set. Office takes precedence when both match.
func (f *Filter) checkLocation(trip *models.RawTrip) (models.Zone, string) {
	location := strings.ToLower(strings.TrimSpace(trip.Location))
	if location == "" {
		return models.ZoneUnknown, "missing trip location"
	}

	if matchesAny(location, f.config.OfficeKeywords) {
		return models.ZoneOffice, ""
	}

	if matchesAny(location, f.config.HomeKeywords) {
		return models.ZoneHome, ""
	}

	return models.ZoneUnknown, fmt.Sprintf("unknown location %q", trip.Location)
}

func matchesAny(location string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(location, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
