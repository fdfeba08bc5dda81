package dataset

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Kind is the inferred or declared semantic type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindDate        Kind = "date"
	KindLocation    Kind = "location"
	KindFreeText    Kind = "free-text"
	KindAddress     Kind = "address"
	KindIP          Kind = "ip"
)

// Cell is a single nullable value.
type Cell struct {
	Value string
	Null  bool
}

// Column is a named, ordered, nullable series of values aligned to the
// dataset's row index.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Dataset is an in-memory table of row-aligned columns.
type Dataset struct {
	Columns []*Column
}

// Rows returns the number of rows, zero for an empty dataset.
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Cells)
}

// Column returns the named column, or nil.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Clone returns a deep copy; anonymization never mutates its input.
func (d *Dataset) Clone() *Dataset {
	clone := &Dataset{Columns: make([]*Column, len(d.Columns))}
	for i, c := range d.Columns {
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		clone.Columns[i] = &Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return clone
}

// SameShape verifies that other has the same columns and row count,
// which measurement requires.
func (d *Dataset) SameShape(other *Dataset) error {
	if len(d.Columns) != len(other.Columns) {
		return fmt.Errorf("datasets have different column counts: %d vs %d",
			len(d.Columns), len(other.Columns))
	}
	for i, c := range d.Columns {
		o := other.Columns[i]
		if c.Name != o.Name {
			return fmt.Errorf("column %d differs: %q vs %q", i, c.Name, o.Name)
		}
		if len(c.Cells) != len(o.Cells) {
			return fmt.Errorf("column %q has different row counts: %d vs %d",
				c.Name, len(c.Cells), len(o.Cells))
		}
	}
	return nil
}

// NonNull returns the values of every non-null cell, in row order.
func (c *Column) NonNull() []string {
	values := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.Null {
			values = append(values, cell.Value)
		}
	}
	return values
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
}

// ParseDate parses a cell value using the date layouts the loader
// recognizes.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", value)
}

// InferKind classifies a column from its non-null values. Columns with
// no usable signal default to categorical.
func InferKind(c *Column) Kind {
	values := c.NonNull()
	if len(values) == 0 {
		return KindCategorical
	}

	numeric, date, ip := true, true, true
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
		}
		if _, err := ParseDate(v); err != nil {
			date = false
		}
		if net.ParseIP(v) == nil {
			ip = false
		}
		if !numeric && !date && !ip {
			return KindCategorical
		}
	}

	switch {
	case numeric:
		return KindNumeric
	case date:
		return KindDate
	case ip:
		return KindIP
	default:
		return KindCategorical
	}
}
