// Package output provides tab-delimited output of matched variants.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
)

// TabWriter writes matched variants in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Uploaded_variation",
			"Location",
			"Allele",
			"ClinVar_ID",
			"Gene",
			"Clinical_significance",
			"Disease",
			"Review_status",
			"Variant_class",
			"HGVS",
			"Existing_variation",
			"ClinGen_validity",
			"gnomAD_link",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single matched row. Empty fields are written as "-".
func (tw *TabWriter) Write(r *match.Record) error {
	v := r.Variant
	ann := r.Annotation()

	var id, link string
	if r.Reference != nil {
		id = r.Reference.ID
		link = r.Reference.GnomADLink
	}

	existing := "-"
	if ann.RSID != "" {
		existing = "rs" + ann.RSID
	}

	values := []string{
		r.Key().String(),
		fmt.Sprintf("%s:%d", v.Chrom, v.Pos),
		v.Alt,
		dash(id),
		dash(ann.Gene),
		dash(ann.ClinSig),
		dash(ann.Disease),
		dash(ann.ReviewStatus),
		dash(ann.VariantClass),
		dash(ann.HGVS),
		existing,
		dash(r.Validity),
		dash(link),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
