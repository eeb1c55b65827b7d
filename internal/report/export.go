package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/enesozyaramiss/Genetic-app-en/internal/duckdb"
	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
)

// Columns are the exported table columns, in order.
var Columns = []string{
	"CHROM", "POS", "ID", "REF", "ALT",
	"GENE", "CLNSIG", "DISEASE", "RS", "CLNVC", "CLNHGVS", "CLNREVSTAT",
	"ClinGen_Validity", "gnomAD_Link",
	"Exome_AC", "Exome_AN", "PopMax_AF", "PopMax_Pop",
	"PubMed_IDs", "PubMed_Links", "Interpretation",
}

// ResultRows flattens records into export rows.
func ResultRows(rows []*match.Record) []duckdb.ResultRow {
	out := make([]duckdb.ResultRow, 0, len(rows))
	for _, r := range rows {
		ann := r.Annotation()
		row := duckdb.ResultRow{
			Chrom:          r.Variant.Chrom,
			Pos:            r.Variant.Pos,
			Ref:            r.Variant.Ref,
			Alt:            r.Variant.Alt,
			Gene:           ann.Gene,
			ClinSig:        ann.ClinSig,
			Disease:        ann.Disease,
			RSID:           ann.RSID,
			VariantClass:   ann.VariantClass,
			HGVS:           ann.HGVS,
			ReviewStatus:   ann.ReviewStatus,
			Validity:       r.Validity,
			PubMedIDs:      strings.Join(r.Citations, ", "),
			PubMedLinks:    strings.Join(r.CitationLinks, ", "),
			Interpretation: r.Interpretation,
		}
		if r.Reference != nil {
			row.ID = r.Reference.ID
			row.GnomADLink = r.Reference.GnomADLink
		}
		if st := r.Frequency.Stats; st != nil {
			row.ExomeAC = st.AlleleCount
			row.ExomeAN = st.AlleleNumber
			row.PopmaxAF = st.PopmaxAF
			row.PopmaxPop = st.PopmaxPopulation
		}
		out = append(out, row)
	}
	return out
}

func csvRecord(r duckdb.ResultRow) []string {
	return []string{
		r.Chrom, strconv.FormatInt(r.Pos, 10), r.ID, r.Ref, r.Alt,
		r.Gene, r.ClinSig, r.Disease, r.RSID, r.VariantClass, r.HGVS, r.ReviewStatus,
		r.Validity, r.GnomADLink,
		formatInt(r.ExomeAC), formatInt(r.ExomeAN), formatFloat(r.PopmaxAF), r.PopmaxPop,
		r.PubMedIDs, r.PubMedLinks, r.Interpretation,
	}
}

// WriteCSV writes rows as a CSV table with a header line.
func WriteCSV(w io.Writer, rows []*match.Record) error {
	if len(rows) == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(Columns); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}

	records := [][]string{Columns}
	for _, r := range ResultRows(rows) {
		records = append(records, csvRecord(r))
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return fmt.Errorf("build export table: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ExportParquet writes rows to a Parquet file through store.
func ExportParquet(ctx context.Context, store *duckdb.Store, path string, rows []*match.Record) error {
	return store.ExportParquet(ctx, path, ResultRows(rows))
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
