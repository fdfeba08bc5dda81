// Package dataset provides the in-memory tabular abstraction the
// engines operate on, plus CSV and SQL ingestion.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// LoadCSV reads a CSV file with a header row into a Dataset. Empty
// cells load as nulls; column kinds are inferred from the values.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV reads CSV data with a header row from r.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	ds := &Dataset{Columns: make([]*Column, len(header))}
	for i, name := range header {
		ds.Columns[i] = &Column{Name: name}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("CSV record has %d fields, header has %d",
				len(record), len(header))
		}

		for i, value := range record {
			ds.Columns[i].Cells = append(ds.Columns[i].Cells, Cell{
				Value: value,
				Null:  value == "",
			})
		}
	}

	for _, c := range ds.Columns {
		c.Kind = InferKind(c)
	}

	return ds, nil
}

// SaveCSV writes the dataset to path with a header row. Null cells
// write as empty fields, round-tripping with LoadCSV.
func SaveCSV(ds *Dataset, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	return WriteCSV(ds, file)
}

// WriteCSV writes the dataset as CSV to w.
func WriteCSV(ds *Dataset, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := make([]string, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c.Name
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(ds.Columns))
	for row := 0; row < ds.Rows(); row++ {
		for i, c := range ds.Columns {
			if c.Cells[row].Null {
				record[i] = ""
			} else {
				record[i] = c.Cells[row].Value
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
