package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads a labelled sighting dataset
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Path is the dataset file
func (l *Loader) Path() string {
	return l.datasetPath
}

// Load loads records from a dataset file (JSONL or Parquet)
func (l *Loader) Load() ([]SightingRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	var (
		records []SightingRecord
		err     error
	)
	switch ext {
	case ".parquet":
		records, err = l.loadParquet()
	case ".jsonl", ".json":
		records, err = l.loadJSONL()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = fmt.Sprintf("row-%d", i+1)
		}
	}
	return records, nil
}

// LoadSample loads at most limit records; a negative limit loads everything
func (l *Loader) LoadSample(limit int) ([]SightingRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}
	if limit >= 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func (l *Loader) loadJSONL() ([]SightingRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []SightingRecord
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record SightingRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

func (l *Loader) loadParquet() ([]SightingRecord, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[SightingRecord](pf)
	defer reader.Close()

	var records []SightingRecord
	rows := make([]SightingRecord, 128)

	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records))
	return records, nil
}
