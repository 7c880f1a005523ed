package schedule

import (
	"testing"
	"time"

	"commute-validation-service/internal/models"
)

func officeTrips(times ...string) []*models.RawTrip {
	trips := make([]*models.RawTrip, len(times))
	for i, tm := range times {
		trips[i] = &models.RawTrip{Date: "Nov 24", Time: tm, Location: "Mireka Tower", Amount: "LKR254.00"}
	}
	return trips
}

func TestEngineInferMedianRounding(t *testing.T) {
	// Samples 12:40, 12:50, 1:00 PM -> minutes 760, 770, 780; median 770;
	// rounded up to 780 (1:00 PM); end = 780 + 540 = 1320 (10:00 PM).
	engine := NewEngine(DefaultInferenceConfig())
	schedule := engine.Infer(officeTrips("12:40 PM", "12:50 PM", "1:00 PM"), 2025)

	if !schedule.HasSchedule() {
		t.Fatal("expected a schedule to be inferred")
	}
	if *schedule.StartMinutes != 780 {
		t.Errorf("start = %d, want 780", *schedule.StartMinutes)
	}
	if *schedule.EndMinutes != 1320 {
		t.Errorf("end = %d, want 1320", *schedule.EndMinutes)
	}
	if schedule.SampleSize != 3 {
		t.Errorf("sample size = %d, want 3", schedule.SampleSize)
	}
}

func TestEngineInferEvenSampleCount(t *testing.T) {
	// 8:00 and 9:00 AM average to 8:30, rounded up to 9:00.
	engine := NewEngine(DefaultInferenceConfig())
	schedule := engine.Infer(officeTrips("8:00 AM", "9:00 AM"), 2025)

	if !schedule.HasSchedule() {
		t.Fatal("expected a schedule to be inferred")
	}
	if *schedule.StartMinutes != 540 {
		t.Errorf("start = %d, want 540", *schedule.StartMinutes)
	}
}

func TestEngineInferExactHourMedianKept(t *testing.T) {
	engine := NewEngine(DefaultInferenceConfig())
	schedule := engine.Infer(officeTrips("9:00 AM", "9:00 AM", "9:00 AM"), 2025)

	if *schedule.StartMinutes != 540 {
		t.Errorf("start = %d, want 540 (exact hour median keeps its hour)", *schedule.StartMinutes)
	}
}

func TestEngineInferNoSamplesFailsClosed(t *testing.T) {
	engine := NewEngine(DefaultInferenceConfig())

	schedule := engine.Infer(nil, 2025)
	if schedule.HasSchedule() {
		t.Error("expected null schedule for empty input")
	}
	if schedule.Confidence != 0 || schedule.SampleSize != 0 {
		t.Errorf("expected zero confidence and sample size, got %.2f / %d",
			schedule.Confidence, schedule.SampleSize)
	}

	// Unparseable times are discarded, leaving zero samples.
	schedule = engine.Infer(officeTrips("garbage", ""), 2025)
	if schedule.HasSchedule() {
		t.Error("expected null schedule when all times are unparseable")
	}
}

func TestEngineInferFallback(t *testing.T) {
	config := FallbackInferenceConfig()
	engine := NewEngine(config)

	schedule := engine.Infer(officeTrips("12:40 PM"), 2025)
	if !schedule.HasSchedule() {
		t.Fatal("expected fallback schedule")
	}
	if *schedule.StartMinutes != config.FallbackStartMinutes {
		t.Errorf("start = %d, want fallback %d", *schedule.StartMinutes, config.FallbackStartMinutes)
	}
	if *schedule.EndMinutes != config.FallbackStartMinutes+config.ShiftMinutes {
		t.Errorf("end = %d, want %d", *schedule.EndMinutes, config.FallbackStartMinutes+config.ShiftMinutes)
	}
	if schedule.Confidence != config.FallbackConfidence {
		t.Errorf("confidence = %.2f, want %.2f", schedule.Confidence, config.FallbackConfidence)
	}
}

func TestEngineInferFallbackNotUsedAboveThreshold(t *testing.T) {
	engine := NewEngine(FallbackInferenceConfig())

	schedule := engine.Infer(officeTrips("12:40 PM", "12:45 PM", "12:50 PM", "12:55 PM"), 2025)
	if *schedule.StartMinutes != 780 {
		t.Errorf("start = %d, want 780 (inference, not fallback)", *schedule.StartMinutes)
	}
}

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		samples int
		want    float64
	}{
		{25, 0.95}, {20, 0.95}, {15, 0.85}, {10, 0.75}, {5, 0.60}, {4, 0.40}, {0, 0.40},
	}

	for _, tt := range tests {
		if got := confidenceFor(tt.samples); got != tt.want {
			t.Errorf("confidenceFor(%d) = %.2f, want %.2f", tt.samples, got, tt.want)
		}
	}
}

func TestWorkDays(t *testing.T) {
	// November 2025: 24th is a Monday, 25th a Tuesday.
	trips := []*models.RawTrip{
		{Date: "Nov 24"}, {Date: "Nov 24"},
		{Date: "Nov 25"},
		{Date: "garbage"},
	}

	days := WorkDays(trips, 2025)
	if len(days) != 2 {
		t.Fatalf("WorkDays() = %v, want two weekdays", days)
	}
	if days[0] != time.Monday || days[1] != time.Tuesday {
		t.Errorf("WorkDays() = %v, want [Monday Tuesday]", days)
	}

	if got := WorkDays(nil, 2025); got != nil {
		t.Errorf("WorkDays(nil) = %v, want nil", got)
	}
}

func TestInferenceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*InferenceConfig)
		wantErr bool
	}{
		{"valid", func(ic *InferenceConfig) {}, false},
		{"zero shift", func(ic *InferenceConfig) { ic.ShiftMinutes = 0 }, true},
		{"oversized shift", func(ic *InferenceConfig) { ic.ShiftMinutes = 2000 }, true},
		{"zero min samples", func(ic *InferenceConfig) { ic.MinSamples = 0 }, true},
		{"fallback start out of range", func(ic *InferenceConfig) { ic.FallbackStartMinutes = 1440 }, true},
		{"confidence out of range", func(ic *InferenceConfig) { ic.FallbackConfidence = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultInferenceConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore(t *testing.T) {
	store := NewStore()
	start, end := 780, 1320
	schedule := &models.InferredSchedule{StartMinutes: &start, EndMinutes: &end, Confidence: 0.6, SampleSize: 5}

	store.Upsert("batch-1", schedule)
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}

	stored, ok := store.Get("batch-1")
	if !ok {
		t.Fatal("expected stored schedule")
	}
	if stored.Schedule != schedule {
		t.Error("stored schedule does not match")
	}
	if stored.AnalyzedAt.IsZero() {
		t.Error("expected analysis timestamp")
	}

	// Upsert replaces.
	store.Upsert("batch-1", schedule)
	if store.Len() != 1 {
		t.Errorf("Len() after upsert = %d, want 1", store.Len())
	}

	store.Delete("batch-1")
	if _, ok := store.Get("batch-1"); ok {
		t.Error("expected schedule to be deleted")
	}
}
