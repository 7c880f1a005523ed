// Package reporter renders batch validation results for people and
// machines.
//
// Supported output formats:
//   - Console: human-readable summary and trip lists for terminal display
//   - JSON: the full result structure for programmatic consumption
//   - CSV: one row per trip for spreadsheet review
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"commute-validation-service/internal/aggregator"
	"commute-validation-service/internal/models"
	"commute-validation-service/pkg/logger"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Console options
	IncludeInvalidTrips bool `json:"include_invalid_trips"`
	IncludePendingTrips bool `json:"include_pending_trips"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:              FormatConsole,
		IncludeInvalidTrips: true,
		IncludePendingTrips: true,
		CSVDelimiter:        ',',
		CSVHeaders:          true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// ReportGenerator renders validation results
type ReportGenerator struct {
	config *ReportConfig
	logger logger.Logger
}

// NewReportGenerator creates a report generator. A nil config falls back
// to DefaultReportConfig.
func NewReportGenerator(config *ReportConfig) *ReportGenerator {
	if config == nil {
		config = DefaultReportConfig()
	}
	return &ReportGenerator{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("reporter"),
	}
}

// GenerateReport writes the result to w in the configured format
func (rg *ReportGenerator) GenerateReport(result *aggregator.Result, w io.Writer) error {
	rg.logger.WithFields(logger.Fields{
		"format":   rg.config.Format,
		"batch_id": result.BatchID,
	}).Debug("Generating report")

	switch rg.config.Format {
	case FormatJSON:
		return rg.generateJSON(result, w)
	case FormatCSV:
		return rg.generateCSV(result, w)
	default:
		return rg.generateConsole(result, w)
	}
}

func (rg *ReportGenerator) generateJSON(result *aggregator.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (rg *ReportGenerator) generateCSV(result *aggregator.Result, w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = rg.config.CSVDelimiter
	defer writer.Flush()

	if rg.config.CSVHeaders {
		if err := writer.Write([]string{"date", "time", "location", "amount", "zone", "status", "reason"}); err != nil {
			return err
		}
	}

	for _, trips := range [][]models.ClassifiedTrip{result.Valid, result.Invalid, result.Pending} {
		for _, trip := range trips {
			record := []string{trip.Date, trip.Time, trip.Location, trip.Amount,
				trip.Zone.String(), trip.Status.String(), trip.Reason}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func (rg *ReportGenerator) generateConsole(result *aggregator.Result, w io.Writer) error {
	var b strings.Builder

	b.WriteString("COMMUTE VALIDATION REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	b.WriteString(fmt.Sprintf("Batch:     %s\n", result.BatchID))
	if result.ScheduleWindow != "" {
		b.WriteString(fmt.Sprintf("Schedule:  %s\n", result.Schedule.String()))
	} else {
		b.WriteString("Schedule:  not inferred\n")
	}
	b.WriteString("\nSUMMARY\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")
	b.WriteString(fmt.Sprintf("Total trips:   %d\n", result.Summary.TotalTrips))
	b.WriteString(fmt.Sprintf("Valid:         %d\n", result.Summary.ValidCount))
	b.WriteString(fmt.Sprintf("Invalid:       %d\n", result.Summary.InvalidCount))
	b.WriteString(fmt.Sprintf("Pending:       %d\n", result.Summary.PendingCount))
	b.WriteString(fmt.Sprintf("Active days:   %d\n", result.Summary.ActiveDays))
	b.WriteString(fmt.Sprintf("Total valid:   %s\n", result.TotalValid))

	writeSection := func(title string, trips []models.ClassifiedTrip) {
		if len(trips) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("\n%s (%d)\n", title, len(trips)))
		b.WriteString(strings.Repeat("-", 50) + "\n")
		for _, trip := range trips {
			b.WriteString(fmt.Sprintf("  %-8s %-10s %-20s %-12s %s\n",
				trip.Date, trip.Time, truncate(trip.Location, 20), trip.Amount, trip.Reason))
		}
	}

	writeSection("VALID TRIPS", result.Valid)
	if rg.config.IncludeInvalidTrips {
		writeSection("INVALID TRIPS", result.Invalid)
	}
	if rg.config.IncludePendingTrips {
		writeSection("PENDING TRIPS", result.Pending)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
