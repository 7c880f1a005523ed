// Package aggregator assembles the per-trip classifications of one batch
// into the final result: partitioned trip lists in chronological order,
// a decimal sum of the reimbursable amounts, and summary counts.
package aggregator

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"commute-validation-service/internal/models"
	"commute-validation-service/pkg/logger"
)

// Summary holds the headline counts for a validated batch
type Summary struct {
	ValidCount   int `json:"valid"`
	InvalidCount int `json:"invalid"`
	PendingCount int `json:"pending"`
	TotalTrips   int `json:"total"`

	// ActiveDays counts the distinct dates carrying at least one valid trip
	ActiveDays int `json:"active_days"`
}

// Result is the complete outcome of validating one batch
type Result struct {
	BatchID string `json:"batch_id"`

	// Schedule is the inferred work schedule the classifications were made
	// against; its start/end are nil when inference failed closed.
	Schedule *models.InferredSchedule `json:"schedule"`

	// ScheduleWindow is the schedule rendered in clock time, empty when no
	// schedule was inferred
	ScheduleWindow string `json:"schedule_window,omitempty"`

	Valid   []models.ClassifiedTrip `json:"valid_trips"`
	Invalid []models.ClassifiedTrip `json:"invalid_trips"`
	Pending []models.ClassifiedTrip `json:"pending_trips"`

	// TotalValid is the decimal sum of the valid trips' amounts, rendered
	// with exactly two decimal places
	TotalValid string `json:"total_valid"`

	Summary Summary `json:"summary"`
}

// Aggregator builds batch results from classified trips
type Aggregator struct {
	targetYear int
	logger     logger.Logger
}

// NewAggregator creates an aggregator. The target year anchors the
// month+day receipt dates used for chronological ordering.
func NewAggregator(targetYear int) *Aggregator {
	return &Aggregator{
		targetYear: targetYear,
		logger:     logger.GetGlobalLogger().WithComponent("aggregator"),
	}
}

// Aggregate partitions the classified trips, orders each partition
// chronologically, and totals the reimbursable amounts.
func (a *Aggregator) Aggregate(batchID string, classified []models.ClassifiedTrip, schedule *models.InferredSchedule) *Result {
	result := &Result{
		BatchID:  batchID,
		Schedule: schedule,
		Valid:    make([]models.ClassifiedTrip, 0),
		Invalid:  make([]models.ClassifiedTrip, 0),
		Pending:  make([]models.ClassifiedTrip, 0),
	}
	if schedule.HasSchedule() {
		result.ScheduleWindow = schedule.Window()
	}

	total := decimal.Zero
	activeDates := make(map[string]struct{})

	for _, trip := range classified {
		switch trip.Status {
		case models.StatusValid:
			result.Valid = append(result.Valid, trip)
			total = total.Add(models.ParseAmount(trip.Amount))
			activeDates[a.dateKey(trip.Date)] = struct{}{}
		case models.StatusPending:
			result.Pending = append(result.Pending, trip)
		default:
			result.Invalid = append(result.Invalid, trip)
		}
	}

	a.sortChronologically(result.Valid)
	a.sortChronologically(result.Invalid)
	a.sortChronologically(result.Pending)

	result.TotalValid = total.StringFixed(2)
	result.Summary = Summary{
		ValidCount:   len(result.Valid),
		InvalidCount: len(result.Invalid),
		PendingCount: len(result.Pending),
		TotalTrips:   len(classified),
		ActiveDays:   len(activeDates),
	}

	a.logger.WithFields(logger.Fields{
		"batch_id":    batchID,
		"valid":       result.Summary.ValidCount,
		"invalid":     result.Summary.InvalidCount,
		"pending":     result.Summary.PendingCount,
		"total_valid": result.TotalValid,
	}).Info("Aggregated batch result")

	return result
}

// dateKey normalizes a receipt date for distinct-day counting. Parseable
// dates collapse to a canonical form; unparseable ones fall back to their
// trimmed lowercase text so they still count as one day each.
func (a *Aggregator) dateKey(date string) string {
	if parsed, ok := models.ParseReceiptDate(date, a.targetYear); ok {
		return parsed.Format("2006-01-02")
	}
	return strings.ToLower(strings.TrimSpace(date))
}

// sortChronologically orders trips by receipt date, then clock time.
// Unparseable dates and times sort as zero, which groups malformed records
// at the front without disturbing the relative order of the rest.
func (a *Aggregator) sortChronologically(trips []models.ClassifiedTrip) {
	sort.SliceStable(trips, func(i, j int) bool {
		di, dj := a.sortDate(trips[i].Date), a.sortDate(trips[j].Date)
		if di != dj {
			return di < dj
		}
		return clockOrZero(trips[i].Time) < clockOrZero(trips[j].Time)
	})
}

func (a *Aggregator) sortDate(date string) int64 {
	parsed, ok := models.ParseReceiptDate(date, a.targetYear)
	if !ok {
		return 0
	}
	return parsed.Unix()
}

func clockOrZero(timeStr string) int {
	minutes, ok := models.ParseClockMinutes(timeStr)
	if !ok {
		return 0
	}
	return minutes
}
