// Package duckdb reads and writes Parquet files through an in-process DuckDB
// connection. Reference tables are read from Parquet; enriched results are
// staged in a table and copied out as Parquet.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the staging tables for exported references and results.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS reference_variants (
		"CHROM" VARCHAR,
		"POS" BIGINT,
		"ID" VARCHAR,
		"REF" VARCHAR,
		"ALT" VARCHAR,
		"INFO" VARCHAR
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS enriched_variants (
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		id VARCHAR,
		gene VARCHAR,
		clnsig VARCHAR,
		disease VARCHAR,
		rsid VARCHAR,
		variant_class VARCHAR,
		hgvs VARCHAR,
		review_status VARCHAR,
		clingen_validity VARCHAR,
		gnomad_link VARCHAR,
		exome_ac BIGINT,
		exome_an BIGINT,
		popmax_af DOUBLE,
		popmax_pop VARCHAR,
		pubmed_ids VARCHAR,
		pubmed_links VARCHAR,
		interpretation VARCHAR
	)`)
	return err
}

// quote escapes a file path for use inside a single-quoted SQL literal.
func quote(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
