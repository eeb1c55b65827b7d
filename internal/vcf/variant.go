// Package vcf provides VCF-style variant record parsing and the canonical
// variant key used to join variant tables.
package vcf

import "strings"

// Variant represents a single genomic variant record.
//
// Uploaded variants only carry the four coordinate fields. Reference records
// read in full-record mode also carry ID and the raw INFO text.
type Variant struct {
	Chrom string // Chromosome name as written in the source (e.g., "17", "chr17")
	Pos   int64  // 1-based genomic position
	ID    string // Record identifier, empty when absent or "."
	Ref   string // Reference allele
	Alt   string // Alternate allele
	Info  string // Raw INFO text, empty when absent or "."
}

// NormalizeChrom returns the chromosome name trimmed and without a "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return NormalizeChrom(v.Chrom)
}

// Key returns the canonical join key for the variant.
func (v *Variant) Key() Key {
	return NewKey(v.Chrom, v.Pos, v.Ref, v.Alt)
}

// NormalizeChrom trims whitespace and strips a leading "chr" (any case).
func NormalizeChrom(chrom string) string {
	chrom = strings.TrimSpace(chrom)
	if len(chrom) > 3 && strings.EqualFold(chrom[:3], "chr") {
		return chrom[3:]
	}
	return chrom
}
