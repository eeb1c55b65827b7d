package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is the canonical string form of a variant's coordinates. Two records
// refer to the same variant exactly when their keys are equal.
type Key struct {
	Chrom string
	Pos   string
	Ref   string
	Alt   string
}

// NewKey builds a canonical key: chromosome normalized, position rendered in
// base 10, alleles trimmed with case preserved.
func NewKey(chrom string, pos int64, ref, alt string) Key {
	k := Key{
		Chrom: NormalizeChrom(chrom),
		Ref:   strings.TrimSpace(ref),
		Alt:   strings.TrimSpace(alt),
	}
	if pos > 0 {
		k.Pos = strconv.FormatInt(pos, 10)
	}
	return k
}

// Valid reports whether all four key fields are present.
func (k Key) Valid() bool {
	return k.Chrom != "" && k.Pos != "" && k.Ref != "" && k.Alt != ""
}

// String formats the key as chrom-pos-ref-alt.
func (k Key) String() string {
	return fmt.Sprintf("%s-%s-%s-%s", k.Chrom, k.Pos, k.Ref, k.Alt)
}

// ParsePosition parses a 1-based genomic position.
func ParsePosition(s string) (int64, error) {
	pos, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid position: %q", s)
	}
	if pos < 1 {
		return 0, fmt.Errorf("position must be positive: %d", pos)
	}
	return pos, nil
}
