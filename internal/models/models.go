package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TripStatus represents the classification outcome for a trip
type TripStatus string

const (
	// StatusValid marks a trip eligible for reimbursement
	StatusValid TripStatus = "VALID"
	// StatusInvalid marks a trip rejected by policy
	StatusInvalid TripStatus = "INVALID"
	// StatusPending marks a trip that passed hard rules but cannot be
	// time-checked yet (missing or malformed timestamp)
	StatusPending TripStatus = "PENDING"
)

// String returns the string representation of TripStatus
func (s TripStatus) String() string {
	return string(s)
}

// IsValid checks if the trip status is a known value
func (s TripStatus) IsValid() bool {
	return s == StatusValid || s == StatusInvalid || s == StatusPending
}

// Zone identifies which end of the commute a trip points at
type Zone string

const (
	// ZoneOffice marks a trip whose destination matches the office keyword set
	ZoneOffice Zone = "office"
	// ZoneHome marks a trip whose destination matches the home keyword set
	ZoneHome Zone = "home"
	// ZoneUnknown marks a trip matching neither keyword set
	ZoneUnknown Zone = "unknown"
)

// String returns the string representation of Zone
func (z Zone) String() string {
	return string(z)
}

// RawTrip is one extracted receipt line item as delivered by the upstream
// extraction collaborator. Fields are free-form and may carry OCR noise;
// the record is never mutated, only annotated via ClassifiedTrip.
type RawTrip struct {
	Date     string `json:"date" csv:"date"`
	Time     string `json:"time,omitempty" csv:"time"`
	Location string `json:"location,omitempty" csv:"location"`
	Amount   string `json:"amount" csv:"amount"`
	BatchID  string `json:"batchId,omitempty" csv:"batchId"`
}

// String returns a string representation of the RawTrip
func (t *RawTrip) String() string {
	return fmt.Sprintf("RawTrip{Date: %s, Time: %s, Location: %s, Amount: %s}",
		t.Date, t.Time, t.Location, t.Amount)
}

// Key returns a deduplication key built from the receipt's identifying fields
func (t *RawTrip) Key() string {
	return strings.ToLower(strings.Join([]string{
		strings.TrimSpace(t.Date),
		strings.TrimSpace(t.Time),
		strings.TrimSpace(t.Location),
		strings.TrimSpace(t.Amount),
	}, "|"))
}

// ClassifiedTrip is a RawTrip annotated with its classification outcome.
// Immutable once produced. Reason is always non-empty, including for valid
// trips, so a reviewer can audit the decision without re-deriving it.
type ClassifiedTrip struct {
	RawTrip
	Status TripStatus `json:"status"`
	Reason string     `json:"reason"`
	Zone   Zone       `json:"zone"`
}

// String returns a string representation of the ClassifiedTrip
func (c *ClassifiedTrip) String() string {
	return fmt.Sprintf("ClassifiedTrip{Date: %s, Time: %s, Zone: %s, Status: %s, Reason: %s}",
		c.Date, c.Time, c.Zone, c.Status, c.Reason)
}

// InferredSchedule is the statistically derived work start/end for one batch.
// Start and End are minutes since midnight; End may nominally exceed 1440
// (shift crossing midnight) and is wrapped only for display. Nil Start/End
// means no schedule could be inferred.
type InferredSchedule struct {
	StartMinutes *int           `json:"startMinutes"`
	EndMinutes   *int           `json:"endMinutes"`
	Confidence   float64        `json:"confidence"`
	SampleSize   int            `json:"sampleSize"`
	WorkDays     []time.Weekday `json:"workDays,omitempty"`
}

// HasSchedule reports whether a usable start/end pair was inferred
func (s *InferredSchedule) HasSchedule() bool {
	return s != nil && s.StartMinutes != nil && s.EndMinutes != nil
}

// String renders the schedule in clock time, or "none" when not inferred
func (s *InferredSchedule) String() string {
	if !s.HasSchedule() {
		return "none"
	}
	return fmt.Sprintf("%s - %s (confidence %.2f, %d samples)",
		FormatClockMinutes(*s.StartMinutes), FormatClockMinutes(*s.EndMinutes),
		s.Confidence, s.SampleSize)
}

// Window returns just the start/end pair rendered in clock time
func (s *InferredSchedule) Window() string {
	if !s.HasSchedule() {
		return ""
	}
	return fmt.Sprintf("%s - %s",
		FormatClockMinutes(*s.StartMinutes), FormatClockMinutes(*s.EndMinutes))
}

// clockPattern matches "H:MM" or "HH:MM", optionally followed by AM/PM.
// Seconds, when present ("HH:MM:SS"), are ignored.
var clockPattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?::\d{2})?\s*(AM|PM)?`)

// ParseClockMinutes converts a free-form clock string to minutes since
// midnight. With an AM/PM suffix the value is treated as 12-hour time
// (12 AM -> 0, 12 PM -> 12); without one the digits are taken as 24-hour.
// Returns ok=false when no clock pattern is found; callers must treat that
// as unparseable, never as midnight.
func ParseClockMinutes(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}

	if hours > 23 || minutes > 59 {
		return 0, false
	}

	switch strings.ToUpper(m[3]) {
	case "PM":
		if hours > 12 {
			return 0, false
		}
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours > 12 {
			return 0, false
		}
		if hours == 12 {
			hours = 0
		}
	}

	return hours*60 + minutes, true
}

// FormatClockMinutes renders minutes since midnight as 12-hour clock time
// ("H:MM AM/PM"). Values outside [0, 1440) wrap modulo one day, which folds
// midnight-crossing shift ends back onto the clock; hour 0 displays as 12.
func FormatClockMinutes(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440

	hours := minutes / 60
	mins := minutes % 60

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}

	display := hours % 12
	if display == 0 {
		display = 12
	}

	return fmt.Sprintf("%d:%02d %s", display, mins, period)
}

var nonAmountChars = regexp.MustCompile(`[^0-9.]`)

// ParseAmount extracts a monetary value from a currency-prefixed or noisy
// string ("LKR340.00", "3,392.64"). Every character that is not a digit or
// a dot is stripped before parsing; anything unparseable yields zero rather
// than an error, because upstream extraction is known to be lossy.
func ParseAmount(v string) decimal.Decimal {
	sanitized := nonAmountChars.ReplaceAllString(strings.TrimSpace(v), "")
	if sanitized == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(sanitized)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var monthsByAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var monthDayPattern = regexp.MustCompile(`(?i)\b(?:([a-z]{3,9})\.?\s+(\d{1,2})|(\d{1,2})\s+([a-z]{3,9})\.?)\b`)

// ParseReceiptDate parses the free-form date of a receipt ("Nov 24",
// "24 nov", "Nov 24, 2025") into a concrete date using the supplied year.
// Returns ok=false when no month+day pair is found.
func ParseReceiptDate(s string, year int) (time.Time, bool) {
	m := monthDayPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	monthText, dayText := m[1], m[2]
	if monthText == "" {
		monthText, dayText = m[4], m[3]
	}

	if len(monthText) > 3 {
		monthText = monthText[:3]
	}
	month, ok := monthsByAbbrev[strings.ToLower(monthText)]
	if !ok {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(dayText)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}
