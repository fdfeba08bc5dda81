package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// SQLConfig describes a database query to load as a dataset.
type SQLConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
	Query  string `yaml:"query" mapstructure:"query"`
}

// LoadSQL runs the configured query and materializes the result as a
// Dataset. SQL NULLs load as null cells; every value is read through
// its string form, matching the CSV loader, and kinds are inferred.
func LoadSQL(ctx context.Context, cfg SQLConfig) (*Dataset, error) {
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryxContext(ctx, cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	ds := &Dataset{Columns: make([]*Column, len(names))}
	for i, name := range names {
		ds.Columns[i] = &Column{Name: name}
	}

	values := make([]sql.NullString, len(names))
	scan := make([]interface{}, len(names))
	for i := range values {
		scan[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			ds.Columns[i].Cells = append(ds.Columns[i].Cells, Cell{
				Value: v.String,
				Null:  !v.Valid,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	for _, c := range ds.Columns {
		c.Kind = InferKind(c)
	}

	return ds, nil
}
