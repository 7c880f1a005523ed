package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"commute-validation-service/internal/aggregator"
	"commute-validation-service/internal/models"
)

func testResult() *aggregator.Result {
	start, end := 780, 1320
	schedule := &models.InferredSchedule{StartMinutes: &start, EndMinutes: &end, Confidence: 0.60, SampleSize: 5}

	return &aggregator.Result{
		BatchID:        "nov-batch",
		Schedule:       schedule,
		ScheduleWindow: schedule.Window(),
		Valid: []models.ClassifiedTrip{
			{
				RawTrip: models.RawTrip{Date: "Nov 24", Time: "12:42 PM", Location: "Mireka Tower", Amount: "LKR254.00"},
				Status:  models.StatusValid, Reason: "within arrival window 12:00 PM - 1:10 PM", Zone: models.ZoneOffice,
			},
		},
		Invalid: []models.ClassifiedTrip{
			{
				RawTrip: models.RawTrip{Date: "Nov 24", Time: "9:34 PM", Location: "Lauries Rd", Amount: "LKR263.00"},
				Status:  models.StatusInvalid, Reason: "departure before shift end 10:00 PM", Zone: models.ZoneHome,
			},
		},
		Pending:    []models.ClassifiedTrip{},
		TotalValid: "254.00",
		Summary: aggregator.Summary{
			ValidCount: 1, InvalidCount: 1, PendingCount: 0, TotalTrips: 2, ActiveDays: 1,
		},
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	generator := NewReportGenerator(nil)
	var buf bytes.Buffer

	if err := generator.GenerateReport(testResult(), &buf); err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"nov-batch",
		"1:00 PM - 10:00 PM",
		"Total valid:   254.00",
		"departure before shift end 10:00 PM",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("console output missing %q\n%s", want, output)
		}
	}
}

func TestGenerateConsoleReportNullSchedule(t *testing.T) {
	generator := NewReportGenerator(nil)
	result := testResult()
	result.Schedule = &models.InferredSchedule{}
	result.ScheduleWindow = ""

	var buf bytes.Buffer
	if err := generator.GenerateReport(result, &buf); err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), "not inferred") {
		t.Error("console output does not flag the missing schedule")
	}
}

func TestGenerateJSONReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatJSON
	generator := NewReportGenerator(config)

	var buf bytes.Buffer
	if err := generator.GenerateReport(testResult(), &buf); err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	var decoded aggregator.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.TotalValid != "254.00" {
		t.Errorf("TotalValid = %s", decoded.TotalValid)
	}
	if decoded.ScheduleWindow != "1:00 PM - 10:00 PM" {
		t.Errorf("ScheduleWindow = %s", decoded.ScheduleWindow)
	}
}

func TestGenerateCSVReport(t *testing.T) {
	config := DefaultReportConfig()
	config.Format = FormatCSV
	generator := NewReportGenerator(config)

	var buf bytes.Buffer
	if err := generator.GenerateReport(testResult(), &buf); err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	// Header plus two trips.
	if len(records) != 3 {
		t.Fatalf("got %d CSV rows, want 3", len(records))
	}
	if records[0][5] != "status" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][5] != "VALID" || records[2][5] != "INVALID" {
		t.Errorf("statuses = %s, %s", records[1][5], records[2][5])
	}
}

func TestReportConfigValidate(t *testing.T) {
	config := DefaultReportConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	config.Format = "xml"
	if err := config.Validate(); err == nil {
		t.Error("expected error for unsupported format")
	}
}
