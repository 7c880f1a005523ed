package parsers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"commute-validation-service/internal/models"
	"commute-validation-service/pkg/errors"
	"commute-validation-service/pkg/logger"
)

// rawField accepts JSON values of any scalar type and coerces them to a
// string, because upstream extraction sometimes emits amounts as numbers.
type rawField string

func (f *rawField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = rawField(s)
		return nil
	}

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = ""
		return nil
	}
	*f = rawField(fmt.Sprintf("%v", v))
	return nil
}

type rawTripRecord struct {
	Date     rawField `json:"date"`
	Time     rawField `json:"time"`
	Location rawField `json:"location"`
	Amount   rawField `json:"amount"`
}

type batchEnvelope struct {
	BatchID string          `json:"batchId"`
	Trips   []rawTripRecord `json:"trips"`
}

// TripParser loads receipt batches from JSON and CSV files
type TripParser struct {
	config *TripParserConfig
	logger logger.Logger
}

// NewTripParser creates a trip parser. A nil config falls back to
// DefaultTripParserConfig; an invalid config is rejected.
func NewTripParser(config *TripParserConfig) (*TripParser, error) {
	if config == nil {
		config = DefaultTripParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "trip_parser", nil, err)
	}

	return &TripParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("trip_parser"),
	}, nil
}

// ParseFile loads a batch from a JSON or CSV file, dispatching on the
// file extension. Returns the batch ID when the file carries one.
func (tp *TripParser) ParseFile(filePath string) (string, []*models.RawTrip, *ParseStats, error) {
	if strings.HasSuffix(strings.ToLower(filePath), ".csv") {
		trips, stats, err := tp.ParseCSV(filePath)
		return "", trips, stats, err
	}
	return tp.ParseJSON(filePath)
}

// ParseJSON loads a JSON batch file: either an envelope with batchId and
// trips, or a bare trip array.
func (tp *TripParser) ParseJSON(filePath string) (string, []*models.RawTrip, *ParseStats, error) {
	tp.logger.WithField("file_path", filePath).Debug("Parsing JSON batch file")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return "", nil, nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}
		return "", nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}

	stats := NewParseStats()

	var envelope batchEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Not an envelope; try a bare trip array.
		var records []rawTripRecord
		if arrErr := json.Unmarshal(data, &records); arrErr != nil {
			return "", nil, nil, errors.ParseError(errors.CodeInvalidFormat,
				filePath, 0, "document", "", err).
				WithSuggestion("provide either a batch object with a trips array or a bare trip array")
		}
		envelope.Trips = records
	}

	trips := make([]*models.RawTrip, 0, len(envelope.Trips))
	for i, record := range envelope.Trips {
		stats.TotalLines++
		trip := &models.RawTrip{
			Date:     strings.TrimSpace(string(record.Date)),
			Time:     strings.TrimSpace(string(record.Time)),
			Location: strings.TrimSpace(string(record.Location)),
			Amount:   strings.TrimSpace(string(record.Amount)),
			BatchID:  envelope.BatchID,
		}
		if trip.Date == "" && trip.Amount == "" {
			stats.AddError(&ParseError{
				Line:    i + 1,
				Field:   "date",
				Message: "record has neither date nor amount",
			})
			continue
		}
		trips = append(trips, trip)
		stats.RecordsParsed++
	}

	tp.logger.WithFields(logger.Fields{
		"file_path": filePath,
		"batch_id":  envelope.BatchID,
		"stats":     stats.String(),
	}).Info("Parsed JSON batch file")

	return envelope.BatchID, trips, stats, nil
}

// ParseCSV loads trips from a CSV export. Rows that cannot be read are
// collected in the stats and skipped, never fatal.
func (tp *TripParser) ParseCSV(filePath string) ([]*models.RawTrip, *ParseStats, error) {
	tp.logger.WithField("file_path", filePath).Debug("Parsing CSV trip file")

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = tp.config.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	stats := NewParseStats()
	line := 0

	columns, err := tp.readHeader(reader, filePath, &line)
	if err != nil {
		return nil, nil, err
	}

	var trips []*models.RawTrip
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		stats.TotalLines++
		if err != nil {
			stats.AddError(&ParseError{Line: line, Field: "row", Message: "unreadable CSV row", Err: err})
			continue
		}
		if isEmptyRecord(record) {
			continue
		}

		trip := &models.RawTrip{
			Date:     fieldValue(record, columns["date"]),
			Time:     fieldValue(record, columns["time"]),
			Location: fieldValue(record, columns["location"]),
			Amount:   fieldValue(record, columns["amount"]),
		}
		if trip.Date == "" && trip.Amount == "" {
			stats.AddError(&ParseError{Line: line, Field: "date", Message: "record has neither date nor amount"})
			continue
		}
		trips = append(trips, trip)
		stats.RecordsParsed++
	}

	tp.logger.WithFields(logger.Fields{
		"file_path": filePath,
		"stats":     stats.String(),
	}).Info("Parsed CSV trip file")

	return trips, stats, nil
}

// readHeader maps the standard field names to column indices. Without a
// header row the configured column order is assumed.
func (tp *TripParser) readHeader(reader *csv.Reader, filePath string, line *int) (map[string]int, error) {
	columns := map[string]int{"date": 0, "time": 1, "location": 2, "amount": 3}
	if !tp.config.HasHeader {
		return columns, nil
	}

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.ValidationError(errors.CodeMissingField, "file_content", "empty", nil).
				WithSuggestion("ensure the file contains header and data rows")
		}
		return nil, errors.ParseError(errors.CodeInvalidFormat, filePath, 1, "headers", "", err)
	}
	*line++

	headerIndex := make(map[string]int, len(headers))
	for i, header := range headers {
		headerIndex[strings.ToLower(strings.TrimSpace(header))] = i
	}

	for _, standard := range []string{"date", "time", "location", "amount"} {
		name := strings.ToLower(tp.config.GetColumnName(standard))
		index, ok := headerIndex[name]
		if !ok {
			index, ok = tp.findAliasedColumn(headerIndex, standard)
		}
		if !ok {
			if standard == "date" || standard == "amount" {
				return nil, errors.ParseError(errors.CodeMissingColumn, filePath, 1, name, "", nil).
					WithSuggestion(fmt.Sprintf("ensure the CSV has a %q column", name))
			}
			index = -1
		}
		columns[standard] = index
	}

	return columns, nil
}

// findAliasedColumn looks for any header registered as an alias of the
// standard field name
func (tp *TripParser) findAliasedColumn(headerIndex map[string]int, standard string) (int, bool) {
	for alias, target := range tp.config.ColumnAliases {
		if !strings.EqualFold(target, standard) {
			continue
		}
		if index, ok := headerIndex[strings.ToLower(alias)]; ok {
			return index, true
		}
	}
	return -1, false
}

func fieldValue(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
