// Package upload normalizes uploaded variant files into coordinate-only
// variants, whatever their declared format.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// Format identifies an upload file format.
type Format string

// Supported upload formats.
const (
	FormatVCFGz Format = "vcf.gz" // gzip-compressed VCF text
	FormatVCF   Format = "vcf"    // plain VCF text
	FormatCSV   Format = "csv"    // delimited table with a header row
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatVCFGz, FormatVCF, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown upload format %q (want vcf.gz, vcf or csv)", s)
}

// DetectFormat derives the upload format from a file name.
func DetectFormat(name string) (Format, error) {
	lower := strings.ToLower(filepath.Base(name))
	switch {
	case strings.HasSuffix(lower, ".vcf.gz"):
		return FormatVCFGz, nil
	case strings.HasSuffix(lower, ".vcf"):
		return FormatVCF, nil
	case strings.HasSuffix(lower, ".csv"):
		return FormatCSV, nil
	}
	return "", fmt.Errorf("cannot detect upload format of %q (want .vcf.gz, .vcf or .csv)", name)
}

// ReadFile opens path and normalizes it. An empty format is detected from
// the file name.
func ReadFile(path string, format Format) ([]*vcf.Variant, error) {
	if format == "" {
		var err error
		if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return Read(f, format)
}

// Read normalizes an uploaded file into variants carrying only CHROM, POS,
// REF and ALT, in file order.
//
// Malformed record lines fail with *vcf.ParseError or *vcf.ShortLineError.
// A table lacking any required column fails with *vcf.SchemaError.
func Read(r io.Reader, format Format) ([]*vcf.Variant, error) {
	var (
		columns  []string
		variants []*vcf.Variant
		err      error
	)

	switch format {
	case FormatVCFGz, FormatVCF:
		columns = vcf.RequiredColumns
		variants, err = readRecords(r, format == FormatVCFGz)
	case FormatCSV:
		columns, variants, err = readTable(r)
	default:
		return nil, fmt.Errorf("unknown upload format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if err := vcf.CheckColumns("upload", columns, vcf.RequiredColumns...); err != nil {
		return nil, err
	}
	return variants, nil
}

func readRecords(r io.Reader, compressed bool) ([]*vcf.Variant, error) {
	p, err := vcf.NewParserFromReader(r)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	if compressed && !p.Compressed() {
		return nil, fmt.Errorf("upload declared as %s is not gzip-compressed", FormatVCFGz)
	}

	return p.ReadAll()
}
