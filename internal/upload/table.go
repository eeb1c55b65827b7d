package upload

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// nanValues are cells treated as missing, matching spreadsheet exports.
var nanValues = []string{"", "NA", "NaN", "nan", "<nil>"}

// readTable parses a delimited table with a header row. Column positions are
// not assumed; columns other than the required four are ignored.
func readTable(r io.Reader) ([]string, []*vcf.Variant, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read upload table: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	if err := vcf.CheckColumns("upload", header, vcf.RequiredColumns...); err != nil {
		return nil, nil, err
	}
	if len(records) == 1 {
		return header, nil, nil
	}

	records[0] = header
	df := dataframe.LoadRecords(padRecords(records),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nanValues),
	)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("load upload table: %w", df.Err)
	}

	df = df.Select(vcf.RequiredColumns)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("select upload columns: %w", df.Err)
	}

	chrom, pos, ref, alt := df.Col(vcf.ColChrom), df.Col(vcf.ColPos), df.Col(vcf.ColRef), df.Col(vcf.ColAlt)
	variants := make([]*vcf.Variant, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		v := &vcf.Variant{
			Chrom: cell(chrom, i),
			Ref:   cell(ref, i),
			Alt:   cell(alt, i),
		}
		if raw := cell(pos, i); raw != "" {
			p, err := vcf.ParsePosition(raw)
			if err != nil {
				// Header is line 1.
				return nil, nil, &vcf.ParseError{Line: i + 2, Message: err.Error()}
			}
			v.Pos = p
		}
		variants = append(variants, v)
	}

	return header, variants, nil
}

// cell returns the string value at row i, or "" for a missing value.
func cell(s series.Series, i int) string {
	e := s.Elem(i)
	if e.IsNA() {
		return ""
	}
	return e.String()
}

// padRecords extends short rows to the header width so ragged exports load.
func padRecords(records [][]string) [][]string {
	width := len(records[0])
	for i, rec := range records {
		if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			records[i] = padded
		} else if len(rec) > width {
			records[i] = rec[:width]
		}
	}
	return records
}
