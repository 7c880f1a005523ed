// Package pipeline orchestrates batch validation end to end: hard-rule
// filtering, duplicate detection, schedule inference, time-based
// classification, and aggregation into a batch result.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"commute-validation-service/internal/aggregator"
	"commute-validation-service/internal/classifier"
	"commute-validation-service/internal/models"
	"commute-validation-service/internal/rules"
	"commute-validation-service/internal/schedule"
	"commute-validation-service/pkg/errors"
	"commute-validation-service/pkg/logger"
)

// Config bundles the component configurations the pipeline wires together
type Config struct {
	Policy     *rules.PolicyConfig       `json:"policy"`
	Inference  *schedule.InferenceConfig `json:"inference"`
	Classifier *classifier.Config        `json:"classifier"`
}

// DefaultConfig returns a pipeline configuration built from each
// component's defaults
func DefaultConfig() *Config {
	return &Config{
		Policy:     rules.DefaultPolicyConfig(),
		Inference:  schedule.DefaultInferenceConfig(),
		Classifier: classifier.DefaultConfig(),
	}
}

// Validate checks every component configuration
func (c *Config) Validate() error {
	if err := c.Policy.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "policy", c.Policy.String(), err)
	}
	if err := c.Inference.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "inference", c.Inference.String(), err)
	}
	if err := c.Classifier.Validate(); err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "classifier", nil, err)
	}
	return nil
}

// Request is one batch of extracted receipts to validate
type Request struct {
	// BatchID identifies the batch; empty means one is generated
	BatchID string `json:"batch_id"`

	Trips []*models.RawTrip `json:"trips"`
}

// Service runs the validation pipeline over one batch at a time. The
// service is stateless apart from the schedule store, so the same request
// always yields the same result.
type Service struct {
	config     *Config
	filter     *rules.Filter
	engine     *schedule.Engine
	classifier *classifier.Classifier
	aggregator *aggregator.Aggregator
	store      *schedule.Store
	logger     logger.Logger
}

// NewService creates a validation pipeline. A nil config falls back to
// DefaultConfig; an invalid config is rejected.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Service{
		config:     config,
		filter:     rules.NewFilter(config.Policy),
		engine:     schedule.NewEngine(config.Inference),
		classifier: classifier.NewClassifier(config.Classifier),
		aggregator: aggregator.NewAggregator(config.Policy.TargetYear),
		store:      schedule.NewStore(),
		logger:     logger.GetGlobalLogger().WithComponent("pipeline"),
	}, nil
}

// Config returns the configuration the service was built with
func (s *Service) Config() *Config {
	return s.config
}

// ScheduleStore exposes the inferred schedules recorded per batch, for
// callers that persist them
func (s *Service) ScheduleStore() *schedule.Store {
	return s.store
}

// Validate runs the full pipeline over one batch. An empty batch yields an
// empty result, never an error. Any status hint already present on a raw
// record is ignored; status is derived from scratch.
func (s *Service) Validate(ctx context.Context, req *Request) (*aggregator.Result, error) {
	if req == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "request", nil, nil)
	}

	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	opLogger := logger.NewOperationLogger("validate_batch", s.logger).
		WithField("batch_id", batchID).
		WithField("trip_count", len(req.Trips))

	if err := ctx.Err(); err != nil {
		return nil, errors.ClassificationError(errors.CodeProcessingError, "batch validation", err)
	}

	// Hard rules first: everything that survives is a candidate with a zone.
	candidates, rejected := s.applyHardRules(req.Trips)
	opLogger.WithField("candidates", len(candidates)).WithField("rejected", len(rejected))
	opLogger.Step("hard_rules")

	// Duplicates are removed before inference so a double-submitted receipt
	// cannot skew the median arrival time.
	candidates, duplicates := s.dropDuplicates(candidates)
	opLogger.WithField("duplicates", len(duplicates))
	opLogger.Step("duplicate_detection")

	officeTrips := make([]*models.RawTrip, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Zone == models.ZoneOffice {
			officeTrips = append(officeTrips, candidate.Trip)
		}
	}

	inferred := s.engine.Infer(officeTrips, s.config.Policy.TargetYear)
	s.store.Upsert(batchID, inferred)
	opLogger.WithField("schedule", inferred.String())
	opLogger.Step("schedule_inference")

	classified := s.classifier.Classify(candidates, inferred)
	classified = append(classified, rejected...)
	classified = append(classified, duplicates...)
	opLogger.Step("classification")

	result := s.aggregator.Aggregate(batchID, classified, inferred)
	opLogger.WithField("valid", result.Summary.ValidCount).
		WithField("invalid", result.Summary.InvalidCount).
		WithField("pending", result.Summary.PendingCount).
		WithField("total_valid", result.TotalValid)
	opLogger.Success("Batch validation completed")

	return result, nil
}

// applyHardRules splits the batch into zone-tagged candidates and trips
// already rejected by policy
func (s *Service) applyHardRules(trips []*models.RawTrip) ([]classifier.Candidate, []models.ClassifiedTrip) {
	candidates := make([]classifier.Candidate, 0, len(trips))
	rejected := make([]models.ClassifiedTrip, 0)

	for _, trip := range trips {
		if trip == nil {
			continue
		}
		zone, reason := s.filter.Check(trip)
		if reason != "" {
			rejected = append(rejected, models.ClassifiedTrip{
				RawTrip: *trip,
				Status:  models.StatusInvalid,
				Reason:  reason,
				Zone:    zone,
			})
			continue
		}
		candidates = append(candidates, classifier.Candidate{Trip: trip, Zone: zone})
	}

	return candidates, rejected
}

// dropDuplicates keeps the first occurrence of each receipt key and marks
// the rest invalid
func (s *Service) dropDuplicates(candidates []classifier.Candidate) ([]classifier.Candidate, []models.ClassifiedTrip) {
	seen := make(map[string]struct{}, len(candidates))
	kept := make([]classifier.Candidate, 0, len(candidates))
	duplicates := make([]models.ClassifiedTrip, 0)

	for _, candidate := range candidates {
		key := candidate.Trip.Key()
		if _, dup := seen[key]; dup {
			duplicates = append(duplicates, models.ClassifiedTrip{
				RawTrip: *candidate.Trip,
				Status:  models.StatusInvalid,
				Reason:  "duplicate receipt",
				Zone:    candidate.Zone,
			})
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, candidate)
	}

	return kept, duplicates
}
