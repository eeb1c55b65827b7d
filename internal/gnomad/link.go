// Package gnomad looks up population allele frequencies in the gnomAD
// GraphQL API and builds gnomAD browser links.
package gnomad

import (
	"fmt"
	"net/url"
	"strings"
)

// Genome builds.
const (
	GRCh37 = "GRCh37"
	GRCh38 = "GRCh38"
)

// Dataset returns the gnomAD dataset ID for a genome build.
func Dataset(build string) string {
	if strings.EqualFold(build, GRCh37) {
		return "gnomad_r2_1"
	}
	return "gnomad_r4"
}

// BrowserLink returns the gnomAD browser URL for a variant, or "" when any
// coordinate is missing.
func BrowserLink(chrom string, pos int64, ref, alt, build string) string {
	chrom = strings.TrimSpace(strings.ReplaceAll(chrom, "chr", ""))
	ref = strings.TrimSpace(ref)
	alt = strings.TrimSpace(alt)
	if chrom == "" || ref == "" || alt == "" {
		return ""
	}
	return fmt.Sprintf("https://gnomad.broadinstitute.org/variant/%s-%d-%s-%s?dataset=%s",
		chrom, pos, url.PathEscape(ref), url.PathEscape(alt), Dataset(build))
}
