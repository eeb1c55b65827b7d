package duckdb

import (
	"context"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// ReferenceColumns are the columns a Parquet reference table must carry.
var ReferenceColumns = []string{vcf.ColChrom, vcf.ColPos, vcf.ColRef, vcf.ColAlt, "INFO", "ID"}

// ReadReference loads reference variants from a Parquet file. Columns are
// matched by name; extra columns are ignored. Null cells become empty strings.
func (s *Store) ReadReference(ctx context.Context, path string) ([]*vcf.Variant, error) {
	source := fmt.Sprintf("read_parquet('%s')", quote(path))

	if err := s.checkColumns(ctx, source, path); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT
		COALESCE(CAST("CHROM" AS VARCHAR), ''),
		COALESCE(CAST(TRY_CAST("POS" AS BIGINT) AS VARCHAR), CAST("POS" AS VARCHAR), ''),
		COALESCE(CAST(TRY_CAST("ID" AS BIGINT) AS VARCHAR), CAST("ID" AS VARCHAR), ''),
		COALESCE(CAST("REF" AS VARCHAR), ''),
		COALESCE(CAST("ALT" AS VARCHAR), ''),
		COALESCE(CAST("INFO" AS VARCHAR), '')
		FROM %s`, source))
	if err != nil {
		return nil, fmt.Errorf("query reference %s: %w", path, err)
	}
	defer rows.Close()

	var variants []*vcf.Variant
	line := 0
	for rows.Next() {
		line++
		var chrom, pos, id, ref, alt, info string
		if err := rows.Scan(&chrom, &pos, &id, &ref, &alt, &info); err != nil {
			return nil, fmt.Errorf("scan reference row %d: %w", line, err)
		}

		p, err := vcf.ParsePosition(pos)
		if err != nil {
			return nil, &vcf.ParseError{Line: line, Message: err.Error()}
		}
		if id == "." {
			id = ""
		}
		if info == "." {
			info = ""
		}

		variants = append(variants, &vcf.Variant{
			Chrom: chrom,
			Pos:   p,
			ID:    id,
			Ref:   ref,
			Alt:   alt,
			Info:  info,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reference rows: %w", err)
	}
	return variants, nil
}

func (s *Store) checkColumns(ctx context.Context, source, path string) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT 0", source))
	if err != nil {
		return fmt.Errorf("open reference %s: %w", path, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("read reference columns: %w", err)
	}
	return vcf.CheckColumns("reference", columns, ReferenceColumns...)
}

// WriteReference writes variants to a Parquet reference table at path with
// the columns ReadReference expects. A positive sample keeps a reproducible
// random subset of that many rows.
func (s *Store) WriteReference(ctx context.Context, path string, variants []*vcf.Variant, sample int) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reference_variants"); err != nil {
		return fmt.Errorf("clear staging table: %w", err)
	}

	if len(variants) > 0 {
		err := s.withAppender(ctx, "reference_variants", func(a *goduckdb.Appender) error {
			for _, v := range variants {
				if err := a.AppendRow(v.Chrom, v.Pos, v.ID, v.Ref, v.Alt, v.Info); err != nil {
					return fmt.Errorf("append reference %s: %w", v.Key(), err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	query := "SELECT * FROM reference_variants"
	if sample > 0 {
		query = fmt.Sprintf("SELECT * FROM reference_variants USING SAMPLE reservoir(%d ROWS) REPEATABLE (42)", sample)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(
		"COPY (%s) TO '%s' (FORMAT PARQUET)", query, quote(path))); err != nil {
		return fmt.Errorf("copy to parquet: %w", err)
	}
	return nil
}
