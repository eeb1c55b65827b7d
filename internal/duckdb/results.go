package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// ResultRow is one enriched variant as written to Parquet. Nil pointers are
// written as NULL.
type ResultRow struct {
	Chrom          string
	Pos            int64
	Ref            string
	Alt            string
	ID             string
	Gene           string
	ClinSig        string
	Disease        string
	RSID           string
	VariantClass   string
	HGVS           string
	ReviewStatus   string
	Validity       string
	GnomADLink     string
	ExomeAC        *int64
	ExomeAN        *int64
	PopmaxAF       *float64
	PopmaxPop      string
	PubMedIDs      string
	PubMedLinks    string
	Interpretation string
}

// ExportParquet writes rows to a Parquet file at path, replacing any
// previous export staged in this store.
func (s *Store) ExportParquet(ctx context.Context, path string, rows []ResultRow) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM enriched_variants"); err != nil {
		return fmt.Errorf("clear staging table: %w", err)
	}
	if err := s.appendResults(ctx, rows); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"COPY enriched_variants TO '%s' (FORMAT PARQUET)", quote(path))); err != nil {
		return fmt.Errorf("copy to parquet: %w", err)
	}
	return nil
}

// appendResults batch-inserts rows using the Appender API.
func (s *Store) appendResults(ctx context.Context, rows []ResultRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.withAppender(ctx, "enriched_variants", func(a *goduckdb.Appender) error {
		for _, r := range rows {
			if err := a.AppendRow(
				r.Chrom, r.Pos, r.Ref, r.Alt, r.ID,
				r.Gene, r.ClinSig, r.Disease, r.RSID, r.VariantClass, r.HGVS, r.ReviewStatus,
				r.Validity, r.GnomADLink,
				nullable(r.ExomeAC), nullable(r.ExomeAN), nullable(r.PopmaxAF), r.PopmaxPop,
				r.PubMedIDs, r.PubMedLinks, r.Interpretation,
			); err != nil {
				return fmt.Errorf("append result: %w", err)
			}
		}
		return nil
	})
}

// withAppender runs fn with an appender on table and flushes it.
func (s *Store) withAppender(ctx context.Context, table string, fn func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}

	if err := fn(appender); err != nil {
		appender.Close()
		return err
	}

	if err := appender.Close(); err != nil {
		return fmt.Errorf("flush appender: %w", err)
	}
	return nil
}

func nullable[T any](v *T) driver.Value {
	if v == nil {
		return nil
	}
	return *v
}
