package vcf

import (
	"fmt"
	"strings"
)

// Required coordinate columns of every variant table.
const (
	ColChrom = "CHROM"
	ColPos   = "POS"
	ColRef   = "REF"
	ColAlt   = "ALT"
)

// RequiredColumns lists the columns a variant table must provide.
var RequiredColumns = []string{ColChrom, ColPos, ColRef, ColAlt}

// ParseError represents an error during parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}

// ShortLineError reports a data line with fewer fields than the fixed
// field indices require.
type ShortLineError struct {
	Line   int
	Fields int
	Want   int
}

func (e *ShortLineError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: expected at least %d fields, found %d", e.Line, e.Want, e.Fields)
}

// SchemaError reports required columns missing from a table.
type SchemaError struct {
	Table   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: required columns missing: %s", e.Table, strings.Join(e.Missing, ", "))
}

// CheckColumns returns a *SchemaError if any of required is absent from columns.
func CheckColumns(table string, columns []string, required ...string) error {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[strings.TrimSpace(c)] = true
	}
	var missing []string
	for _, r := range required {
		if !have[r] {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: table, Missing: missing}
	}
	return nil
}
