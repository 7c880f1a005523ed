// Package parsers loads extracted receipt batches from disk.
//
// Two input shapes are supported:
//   - JSON batch files, either {"batchId": ..., "trips": [...]} or a bare
//     trip array as produced by the upstream extraction step
//   - CSV exports with a header row and configurable column names
//
// Malformed rows are collected as parse errors with line numbers rather
// than aborting the whole file; the upstream extraction is known to be
// lossy and a batch with a few broken rows is still worth validating.
package parsers

import (
	"fmt"
	"strings"
)

// ParseError records one unreadable row
type ParseError struct {
	Line    int
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at line %d (%s='%s'): %s: %v",
			e.Line, e.Field, e.Value, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error at line %d (%s='%s'): %s",
		e.Line, e.Field, e.Value, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseStats summarizes one file ingestion
type ParseStats struct {
	TotalLines    int
	RecordsParsed int
	ErrorCount    int
	Errors        []*ParseError
}

// NewParseStats creates an empty ParseStats
func NewParseStats() *ParseStats {
	return &ParseStats{Errors: make([]*ParseError, 0)}
}

// AddError records a row-level parse error
func (ps *ParseStats) AddError(err *ParseError) {
	ps.Errors = append(ps.Errors, err)
	ps.ErrorCount++
}

// HasErrors returns true if any rows failed to parse
func (ps *ParseStats) HasErrors() bool {
	return ps.ErrorCount > 0
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d lines, %d records, %d errors",
		ps.TotalLines, ps.RecordsParsed, ps.ErrorCount)
}

// TripParserConfig holds configuration for parsing trip CSV files
type TripParserConfig struct {
	DateColumn     string            `json:"date_column"`
	TimeColumn     string            `json:"time_column"`
	LocationColumn string            `json:"location_column"`
	AmountColumn   string            `json:"amount_column"`
	HasHeader      bool              `json:"has_header"`
	Delimiter      rune              `json:"delimiter"`
	ColumnAliases  map[string]string `json:"column_aliases,omitempty"`
}

// DefaultTripParserConfig returns a configuration matching the standard
// receipt export headers
func DefaultTripParserConfig() *TripParserConfig {
	return &TripParserConfig{
		DateColumn:     "date",
		TimeColumn:     "time",
		LocationColumn: "location",
		AmountColumn:   "amount",
		HasHeader:      true,
		Delimiter:      ',',
		ColumnAliases:  make(map[string]string),
	}
}

// Validate checks if the trip parser configuration is valid
func (tpc *TripParserConfig) Validate() error {
	if strings.TrimSpace(tpc.DateColumn) == "" {
		return fmt.Errorf("date column cannot be empty")
	}
	if strings.TrimSpace(tpc.TimeColumn) == "" {
		return fmt.Errorf("time column cannot be empty")
	}
	if strings.TrimSpace(tpc.LocationColumn) == "" {
		return fmt.Errorf("location column cannot be empty")
	}
	if strings.TrimSpace(tpc.AmountColumn) == "" {
		return fmt.Errorf("amount column cannot be empty")
	}
	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (tpc *TripParserConfig) GetColumnName(standardName string) string {
	if alias, exists := tpc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "date":
		return tpc.DateColumn
	case "time":
		return tpc.TimeColumn
	case "location":
		return tpc.LocationColumn
	case "amount":
		return tpc.AmountColumn
	default:
		return standardName
	}
}
