package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
)

// ENRICH sub-field names, in output order.
var enrichFields = []string{
	"Gene",
	"CLNSIG",
	"CLNDN",
	"CLNREVSTAT",
	"ClinGen",
	"gnomAD_AC",
	"gnomAD_AN",
	"gnomAD_popmax_AF",
	"gnomAD_popmax",
	"PubMed",
}

// DefaultVCFHeader is used when the caller has no header of its own.
var DefaultVCFHeader = []string{
	"##fileformat=VCFv4.2",
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
}

// VCFWriter writes matched rows as VCF lines with an ENRICH INFO field.
// Each row becomes one line; rows are not merged by position.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string
}

// NewVCFWriter creates a new VCF output writer. A nil headerLines uses
// DefaultVCFHeader.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	if len(headerLines) == 0 {
		headerLines = DefaultVCFHeader
	}
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the header lines with an ENRICH INFO line inserted
// before #CHROM.
func (vw *VCFWriter) WriteHeader() error {
	enrichLine := fmt.Sprintf(
		"##INFO=<ID=ENRICH,Number=.,Type=String,Description=\"ClinVar, ClinGen and gnomAD enrichment. Format: %s\">",
		strings.Join(enrichFields, "|"),
	)

	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "#CHROM") {
			if _, err := vw.w.WriteString(enrichLine + "\n"); err != nil {
				return err
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one matched row.
func (vw *VCFWriter) Write(r *match.Record) error {
	v := r.Variant

	id := v.ID
	if r.Reference != nil && r.Reference.ID != "" {
		id = r.Reference.ID
	}
	if id == "" {
		id = "."
	}

	var lb strings.Builder
	lb.Grow(256)

	lb.WriteString(v.Chrom)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(v.Pos, 10))
	lb.WriteByte('\t')
	lb.WriteString(id)
	lb.WriteByte('\t')
	lb.WriteString(v.Ref)
	lb.WriteByte('\t')
	lb.WriteString(v.Alt)
	lb.WriteString("\t.\t.\t")

	info := formatInfo(v.Info)
	if info == "." {
		lb.WriteString("ENRICH=")
	} else {
		lb.WriteString(info)
		lb.WriteString(";ENRICH=")
	}
	writeEnrichEntry(&lb, r)
	lb.WriteByte('\n')

	_, err := vw.w.WriteString(lb.String())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (vw *VCFWriter) Flush() error {
	return vw.w.Flush()
}

// formatInfo strips any existing ENRICH field from the raw INFO string.
func formatInfo(rawInfo string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}

	if !strings.Contains(rawInfo, "ENRICH") {
		return rawInfo
	}

	var b strings.Builder
	for rest := rawInfo; rest != ""; {
		semi := strings.IndexByte(rest, ';')
		var field string
		if semi >= 0 {
			field = rest[:semi]
			rest = rest[semi+1:]
		} else {
			field = rest
			rest = ""
		}
		if strings.HasPrefix(field, "ENRICH=") || field == "ENRICH" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(';')
		}
		b.WriteString(field)
	}

	if b.Len() == 0 {
		return "."
	}
	return b.String()
}

// writeEnrichEntry writes a row as a pipe-delimited ENRICH value. Spaces,
// commas and semicolons are not allowed in INFO values and become '_'.
func writeEnrichEntry(b *strings.Builder, r *match.Record) {
	ann := r.Annotation()
	b.WriteString(infoValue(ann.Gene))
	b.WriteByte('|')
	b.WriteString(infoValue(ann.ClinSig))
	b.WriteByte('|')
	b.WriteString(infoValue(ann.Disease))
	b.WriteByte('|')
	b.WriteString(infoValue(ann.ReviewStatus))
	b.WriteByte('|')
	b.WriteString(infoValue(r.Validity))
	b.WriteByte('|')

	if s := r.Frequency.Stats; s != nil {
		if s.AlleleCount != nil {
			b.WriteString(strconv.FormatInt(*s.AlleleCount, 10))
		}
		b.WriteByte('|')
		if s.AlleleNumber != nil {
			b.WriteString(strconv.FormatInt(*s.AlleleNumber, 10))
		}
		b.WriteByte('|')
		if s.PopmaxAF != nil {
			b.WriteString(strconv.FormatFloat(*s.PopmaxAF, 'g', -1, 64))
		}
		b.WriteByte('|')
		b.WriteString(infoValue(s.PopmaxPopulation))
	} else {
		b.WriteString("|||")
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(r.Citations, "&"))
}

var infoReplacer = strings.NewReplacer(" ", "_", ",", "_", ";", "_", "|", "_", "=", "_")

func infoValue(s string) string {
	return infoReplacer.Replace(s)
}
