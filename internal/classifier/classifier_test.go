package classifier

import (
	"strings"
	"testing"

	"commute-validation-service/internal/models"
)

func inferredSchedule(start, end int) *models.InferredSchedule {
	return &models.InferredSchedule{
		StartMinutes: &start,
		EndMinutes:   &end,
		Confidence:   0.60,
		SampleSize:   5,
	}
}

func candidate(timeStr string, zone models.Zone) Candidate {
	return Candidate{
		Trip: &models.RawTrip{Date: "Nov 24", Time: timeStr, Location: "somewhere", Amount: "LKR254.00"},
		Zone: zone,
	}
}

func TestClassifyOfficeWindow(t *testing.T) {
	// Shift 1:00 PM - 10:00 PM; arrival window 12:00 PM - 1:10 PM.
	schedule := inferredSchedule(780, 1320)
	c := NewClassifier(DefaultConfig())

	tests := []struct {
		name       string
		time       string
		wantStatus models.TripStatus
	}{
		{"on the early edge", "12:00 PM", models.StatusValid},
		{"just before start", "12:42 PM", models.StatusValid},
		{"on the late edge", "1:10 PM", models.StatusValid},
		{"one minute early", "11:59 AM", models.StatusInvalid},
		{"one minute late", "1:11 PM", models.StatusInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify([]Candidate{candidate(tt.time, models.ZoneOffice)}, schedule)
			if got[0].Status != tt.wantStatus {
				t.Errorf("status = %s, want %s (reason: %s)", got[0].Status, tt.wantStatus, got[0].Reason)
			}
			if !strings.Contains(got[0].Reason, "12:00 PM") || !strings.Contains(got[0].Reason, "1:10 PM") {
				t.Errorf("reason %q does not name the arrival window", got[0].Reason)
			}
		})
	}
}

func TestClassifyHomeDeparture(t *testing.T) {
	schedule := inferredSchedule(780, 1320)
	c := NewClassifier(DefaultConfig())

	tests := []struct {
		name       string
		time       string
		wantStatus models.TripStatus
	}{
		{"at shift end", "10:00 PM", models.StatusValid},
		{"late departure", "11:45 PM", models.StatusValid},
		{"before shift end", "9:34 PM", models.StatusInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify([]Candidate{candidate(tt.time, models.ZoneHome)}, schedule)
			if got[0].Status != tt.wantStatus {
				t.Errorf("status = %s, want %s (reason: %s)", got[0].Status, tt.wantStatus, got[0].Reason)
			}
			if !strings.Contains(got[0].Reason, "10:00 PM") {
				t.Errorf("reason %q does not name the shift end", got[0].Reason)
			}
		})
	}
}

func TestClassifyHomeMidnightWrap(t *testing.T) {
	// Shift end 1:00 AM next day (minute 1500): a 12:30 AM departure counts
	// as before the end, a 1:15 AM departure counts as after it.
	schedule := inferredSchedule(960, 1500)
	c := NewClassifier(DefaultConfig())

	got := c.Classify([]Candidate{
		candidate("12:30 AM", models.ZoneHome),
		candidate("1:15 AM", models.ZoneHome),
		candidate("11:00 PM", models.ZoneHome),
	}, schedule)

	if got[0].Status != models.StatusInvalid {
		t.Errorf("12:30 AM: status = %s, want INVALID", got[0].Status)
	}
	if got[1].Status != models.StatusValid {
		t.Errorf("1:15 AM: status = %s, want VALID", got[1].Status)
	}
	if got[2].Status != models.StatusInvalid {
		t.Errorf("11:00 PM (same day, before end): status = %s, want INVALID", got[2].Status)
	}
}

func TestClassifyHomeWindowCap(t *testing.T) {
	config := DefaultConfig()
	config.HomeWindowCapMinutes = 240
	schedule := inferredSchedule(780, 1320)
	c := NewClassifier(config)

	got := c.Classify([]Candidate{
		candidate("11:00 PM", models.ZoneHome),
		candidate("2:30 AM", models.ZoneHome),
	}, schedule)

	if got[0].Status != models.StatusValid {
		t.Errorf("inside cap: status = %s, want VALID", got[0].Status)
	}
	// End 1320 with a 240-minute cap closes at minute 1560 (2:00 AM); a
	// 2:30 AM departure wraps to 1590 and falls outside.
	if got[1].Status != models.StatusInvalid {
		t.Errorf("outside cap: status = %s, want INVALID (reason: %s)", got[1].Status, got[1].Reason)
	}
}

func TestClassifyNullSchedule(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	nullSchedule := &models.InferredSchedule{Confidence: 0, SampleSize: 0}

	got := c.Classify([]Candidate{
		candidate("12:42 PM", models.ZoneOffice),
		candidate("10:15 PM", models.ZoneHome),
	}, nullSchedule)

	for _, trip := range got {
		if trip.Status != models.StatusInvalid {
			t.Errorf("status = %s, want INVALID for null schedule", trip.Status)
		}
		if trip.Reason != "insufficient data to determine shift" {
			t.Errorf("reason = %q", trip.Reason)
		}
	}
}

func TestClassifyUnparseableTime(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	schedule := inferredSchedule(780, 1320)

	got := c.Classify([]Candidate{candidate("not a time", models.ZoneOffice)}, schedule)
	if got[0].Status != models.StatusPending {
		t.Errorf("status = %s, want PENDING", got[0].Status)
	}
	if got[0].Reason != "invalid time format" {
		t.Errorf("reason = %q", got[0].Reason)
	}
}

func TestClassifyPanicIsolation(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	schedule := inferredSchedule(780, 1320)

	// A candidate with a nil trip panics inside classifyOne; the schedule
	// lookup dereferences it before any guard. The second candidate must
	// still classify normally.
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic escaped Classify: %v", r)
		}
	}()

	got := c.Classify([]Candidate{
		{Trip: nil, Zone: models.ZoneOffice},
		candidate("12:42 PM", models.ZoneOffice),
	}, schedule)

	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[1].Status != models.StatusValid {
		t.Errorf("healthy trip after panic: status = %s, want VALID", got[1].Status)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero tolerances allowed", func(c *Config) { c.EarlyToleranceMinutes = 0; c.LateToleranceMinutes = 0 }, false},
		{"negative early tolerance", func(c *Config) { c.EarlyToleranceMinutes = -1 }, true},
		{"negative late tolerance", func(c *Config) { c.LateToleranceMinutes = -5 }, true},
		{"negative home cap", func(c *Config) { c.HomeWindowCapMinutes = -60 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
