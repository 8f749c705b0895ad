package mitigate

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// JSONFileSource loads records from a JSON file holding either a bare array
// or a {"records": [...]} envelope.
type JSONFileSource struct {
	Path string
}

func (s *JSONFileSource) Load(ctx context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", s.Path, err)
	}
	return DecodeRecords(data)
}

// DecodeRecords parses a JSON dataset body, accepting a bare array or a
// {"records": [...]} envelope.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	var envelope struct {
		Records []Record `json:"records"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}
	if envelope.Records == nil {
		return nil, fmt.Errorf("dataset JSON has no records")
	}
	return envelope.Records, nil
}

// CSVFileSource loads records from a CSV file with a header row naming at
// least timestamp, bytes_transferred, protocol and anomaly_label.
type CSVFileSource struct {
	Path string
}

func (s *CSVFileSource) Load(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", s.Path, err)
	}
	defer f.Close()
	return decodeCSV(f)
}

func decodeCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"timestamp", "bytes_transferred", "protocol", "anomaly_label"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %s", required)
		}
	}

	var records []Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line+1, err)
		}
		line++
		bytes, err := strconv.ParseFloat(strings.TrimSpace(row[columns["bytes_transferred"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("CSV line %d has invalid bytes_transferred: %w", line, err)
		}
		records = append(records, Record{
			Timestamp:        strings.TrimSpace(row[columns["timestamp"]]),
			BytesTransferred: bytes,
			Protocol:         strings.TrimSpace(row[columns["protocol"]]),
			Label:            strings.TrimSpace(row[columns["anomaly_label"]]),
		})
	}
	return records, nil
}

// SQLSource loads labeled records from a database table, typically the
// sqlite file the upstream classifier writes its output to.
type SQLSource struct {
	Driver string // defaults to sqlite3
	DSN    string
	Table  string
	Query  string // optional override of the generated SELECT
}

func (s *SQLSource) Load(ctx context.Context) ([]Record, error) {
	driver := s.Driver
	if driver == "" {
		driver = "sqlite3"
	}
	db, err := sqlx.ConnectContext(ctx, driver, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to dataset %s: %w", s.DSN, err)
	}
	defer db.Close()

	query := s.Query
	if query == "" {
		if s.Table == "" {
			return nil, fmt.Errorf("SQL source needs a table or query")
		}
		query = fmt.Sprintf("SELECT timestamp, bytes_transferred, protocol, anomaly_label FROM %s", s.Table)
	}

	var records []Record
	if err := db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to load dataset from %s: %w", s.DSN, err)
	}
	return records, nil
}
