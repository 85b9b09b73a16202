// Package db keeps an in-memory DuckDB snapshot of the facility catalog for
// ad-hoc read-only analysis.
package db

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joeblew999/plat-hospitel/internal/service"
)

// ErrReadOnly is returned for statements other than queries.
var ErrReadOnly = eris.New("only read-only queries are allowed")

var schema = []string{
	`CREATE TABLE facilities (
		id VARCHAR PRIMARY KEY,
		name VARCHAR,
		address VARCHAR,
		contact VARCHAR,
		lat DOUBLE,
		lng DOUBLE,
		available INTEGER,
		total INTEGER,
		tier VARCHAR,
		wait_hours DOUBLE,
		distance_km DOUBLE,
		eta_minutes DOUBLE
	)`,
	`CREATE TABLE resources (facility_id VARCHAR, name VARCHAR, value INTEGER)`,
	`CREATE TABLE waypoints (facility_id VARCHAR, seq INTEGER, lat DOUBLE, lng DOUBLE)`,
	`CREATE TABLE route_steps (facility_id VARCHAR, seq INTEGER, label VARCHAR, elapsed VARCHAR)`,
}

// Snapshot is an in-memory DuckDB database loaded from a catalog.
type Snapshot struct {
	db *sql.DB
}

// Result is a generic query result.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Open creates an in-memory database and loads catalog into it.
func Open(ctx context.Context, catalog *service.Catalog) (*Snapshot, error) {
	conn, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, eris.Wrap(err, "db: open duckdb")
	}
	s := &Snapshot{db: conn}

	if err := s.load(ctx, catalog); err != nil {
		conn.Close()
		return nil, err
	}
	zap.L().Info("duckdb snapshot loaded", zap.Int("facilities", catalog.Len()))
	return s, nil
}

func (s *Snapshot) load(ctx context.Context, catalog *service.Catalog) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "db: create schema")
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "db: begin")
	}
	defer tx.Rollback()

	for _, f := range catalog.List() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO facilities VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.Name, f.Address, f.Contact, f.Position.Lat, f.Position.Lng,
			f.Capacity.Available, f.Capacity.Total, string(service.Classify(f.Capacity.Available)),
			f.WaitHours, f.DistanceKm, f.EtaMinutes,
		); err != nil {
			return eris.Wrapf(err, "db: insert facility %s", f.ID)
		}
		for name, value := range f.Resources {
			if _, err := tx.ExecContext(ctx, `INSERT INTO resources VALUES (?, ?, ?)`, f.ID, name, value); err != nil {
				return eris.Wrapf(err, "db: insert resource %s/%s", f.ID, name)
			}
		}
		for i, wp := range f.Route.Waypoints {
			if _, err := tx.ExecContext(ctx, `INSERT INTO waypoints VALUES (?, ?, ?, ?)`, f.ID, i, wp.Lat, wp.Lng); err != nil {
				return eris.Wrapf(err, "db: insert waypoint %s/%d", f.ID, i)
			}
		}
		for i, st := range f.Route.Steps {
			if _, err := tx.ExecContext(ctx, `INSERT INTO route_steps VALUES (?, ?, ?, ?)`, f.ID, i, st.Label, st.Elapsed); err != nil {
				return eris.Wrapf(err, "db: insert step %s/%d", f.ID, i)
			}
		}
	}
	return eris.Wrap(tx.Commit(), "db: commit")
}

// Close closes the database.
func (s *Snapshot) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Tables lists the table names.
func (s *Snapshot) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, eris.Wrap(err, "db: list tables")
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "db: scan table name")
		}
		tables = append(tables, name)
	}
	return tables, eris.Wrap(rows.Err(), "db: list tables")
}

// Query runs a single read-only statement.
func (s *Snapshot) Query(ctx context.Context, query string) (Result, error) {
	if !readOnly(query) {
		return Result{}, eris.Wrapf(ErrReadOnly, "query %q", firstWord(query))
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return Result{}, eris.Wrap(err, "db: query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, eris.Wrap(err, "db: columns")
	}

	res := Result{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return Result{}, eris.Wrap(err, "db: scan row")
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	return res, eris.Wrap(rows.Err(), "db: rows")
}

var readOnlyKeywords = map[string]bool{
	"SELECT":    true,
	"WITH":      true,
	"SHOW":      true,
	"DESCRIBE":  true,
	"SUMMARIZE": true,
}

// readOnly accepts one statement starting with a query keyword.
func readOnly(query string) bool {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if strings.Contains(q, ";") {
		return false
	}
	return readOnlyKeywords[firstWord(q)]
}

func firstWord(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
