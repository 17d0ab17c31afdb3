// Package scenario loads P&L observation samples from files and replays
// them into the risk engine. Supported formats: CSV (one observation per
// row, first column), JSON (bare array or an object with an observations
// field) and XLSX (first column of the first sheet).
package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

// Load reads observations from path, dispatching on the file extension.
func Load(path string) ([]float64, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return LoadCSV(f)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return LoadJSON(f)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported scenario format %q", filepath.Ext(path))
	}
}

// LoadCSV parses one observation per record from the first column.
// A single non-numeric leading record is tolerated as a header.
func LoadCSV(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var obs []float64
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line++
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		obs = append(obs, v)
	}
	return obs, nil
}

// jsonScenario is the object form of the JSON format.
type jsonScenario struct {
	PortfolioID  string    `json:"portfolio_id"`
	Observations []float64 `json:"observations"`
}

// LoadJSON accepts either a bare array of numbers or an object with an
// observations field.
func LoadJSON(r io.Reader) ([]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}

	var obs []float64
	if err := json.Unmarshal(data, &obs); err == nil {
		return obs, nil
	}

	var s jsonScenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing json scenario: %w", err)
	}
	return s.Observations, nil
}

// LoadXLSX parses observations from the first column of the first sheet.
// A single non-numeric leading cell is tolerated as a header.
func LoadXLSX(path string) ([]float64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	var obs []float64
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("sheet %s row %d: %w", sheets[0], i+1, err)
		}
		obs = append(obs, v)
	}
	return obs, nil
}
