// Package clinvar loads ClinVar-style reference tables and extracts the
// annotation fields carried in their INFO column.
package clinvar

import (
	"regexp"
	"strings"
)

// Annotation holds the fields parsed from a reference INFO string.
// An empty string means the field was absent.
type Annotation struct {
	Gene         string
	ClinSig      string
	Disease      string
	RSID         string
	VariantClass string
	HGVS         string
	ReviewStatus string
}

var (
	geneRe       = regexp.MustCompile(`GENEINFO=([A-Z0-9\-]+)`)
	clnsigRe     = regexp.MustCompile(`CLNSIG=([^;]+)`)
	clndnRe      = regexp.MustCompile(`CLNDN=([^;]+)`)
	rsRe         = regexp.MustCompile(`RS=([0-9]+)`)
	clnvcRe      = regexp.MustCompile(`CLNVC=([^;]+)`)
	clnhgvsRe    = regexp.MustCompile(`CLNHGVS=([^;]+)`)
	clnrevstatRe = regexp.MustCompile(`CLNREVSTAT=([^;]+)`)
)

// Extract parses an INFO string. Each field is searched for independently;
// missing INFO ("" or ".") yields a zero Annotation.
func Extract(info string) Annotation {
	if info == "" || info == "." {
		return Annotation{}
	}

	gene := find(geneRe, info)
	if i := strings.IndexByte(gene, ':'); i >= 0 {
		gene = gene[:i]
	}

	return Annotation{
		Gene:         gene,
		ClinSig:      find(clnsigRe, info),
		Disease:      underscoresToSpaces(find(clndnRe, info)),
		RSID:         find(rsRe, info),
		VariantClass: find(clnvcRe, info),
		HGVS:         find(clnhgvsRe, info),
		ReviewStatus: underscoresToSpaces(find(clnrevstatRe, info)),
	}
}

func find(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func underscoresToSpaces(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
