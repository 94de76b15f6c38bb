package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"suumo-scraper/models"
)

const csvSink = "csv"

// utf8BOM lets spreadsheet tools detect the encoding of the Japanese text.
const utf8BOM = "\ufeff"

var csvHeader = []string{
	"building_name", "station_text", "rent", "floor_plan", "size_m2", "building_age_years",
}

// CSVWriter writes normalized listings to a CSV file.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the BOM and header row. Intermediate directories are created
// automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("create output dir: %w", err)}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("create file %q: %w", path, err)}
	}

	if _, err := f.WriteString(utf8BOM); err != nil {
		_ = f.Close()
		return nil, &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("write BOM: %w", err)}
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("write header: %w", err)}
	}
	w.Flush()

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

// Write appends one row per listing. Numbers are written in their shortest
// exact form so ReadCSV gives back the same values. A cancelled ctx is
// checked once, before any row is written.
func (c *CSVWriter) Write(ctx context.Context, listings []*models.Listing) error {
	if err := ctx.Err(); err != nil {
		return &models.PersistenceError{Sink: csvSink, Err: err}
	}

	for _, l := range listings {
		age := ""
		if l.BuildingAgeYears != nil {
			age = formatFloat(*l.BuildingAgeYears)
		}
		row := []string{
			l.BuildingName,
			l.StationText,
			formatFloat(l.Rent),
			string(l.FloorPlan),
			formatFloat(l.SizeM2),
			age,
		}
		if err := c.writer.Write(row); err != nil {
			return &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("write row: %w", err)}
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return &models.PersistenceError{Sink: csvSink, Err: err}
	}
	return nil
}

// Path returns the file the writer targets.
func (c *CSVWriter) Path() string { return c.path }

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// ReadCSV loads listings written by CSVWriter.
func ReadCSV(path string) ([]*models.Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.PersistenceError{Sink: csvSink, Err: err}
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if r, _, err := br.ReadRune(); err == nil && r != '\ufeff' {
		_ = br.UnreadRune()
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("read header: %w", err)}
	}
	if !slices.Equal(header, csvHeader) {
		return nil, &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("unexpected header %v", header)}
	}

	var listings []*models.Listing
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &models.PersistenceError{Sink: csvSink, Err: err}
		}
		l, err := parseRecord(rec)
		if err != nil {
			return nil, &models.PersistenceError{Sink: csvSink, Err: fmt.Errorf("line %d: %w", len(listings)+2, err)}
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func parseRecord(rec []string) (*models.Listing, error) {
	rent, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return nil, fmt.Errorf("rent: %w", err)
	}
	size, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return nil, fmt.Errorf("size_m2: %w", err)
	}
	l := &models.Listing{
		BuildingName: rec[0],
		StationText:  rec[1],
		Rent:         rent,
		FloorPlan:    models.FloorPlan(rec[3]),
		SizeM2:       size,
	}
	if rec[5] != "" {
		age, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, fmt.Errorf("building_age_years: %w", err)
		}
		l.BuildingAgeYears = &age
	}
	return l, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
