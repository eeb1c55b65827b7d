// Package match joins uploaded variants against the reference table and
// carries the per-row enrichment produced downstream.
package match

import (
	"github.com/enesozyaramiss/Genetic-app-en/internal/clinvar"
	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// Classifier maps a gene symbol to a gene-disease validity label.
type Classifier interface {
	Classify(gene string) string
}

// Record is one joined row: an uploaded variant, the reference record sharing
// its key (nil when none), and the enrichment added by the pipeline.
type Record struct {
	Variant   *vcf.Variant
	Reference *clinvar.Record
	Validity  string

	Frequency      gnomad.Result
	Citations      []string
	CitationLinks  []string
	Interpretation string
}

// Matched reports whether the row has a reference record with an identifier.
func (r *Record) Matched() bool {
	return r.Reference != nil && r.Reference.ID != ""
}

// Key returns the canonical key of the uploaded variant.
func (r *Record) Key() vcf.Key {
	return r.Variant.Key()
}

// Annotation returns the reference annotation, or a zero Annotation for an
// unmatched row.
func (r *Record) Annotation() clinvar.Annotation {
	if r.Reference == nil {
		return clinvar.Annotation{}
	}
	return r.Reference.Annotation
}

// Result is the outcome of a join.
type Result struct {
	Matched   []*Record
	Unmatched int
	Total     int
}

// Empty reports whether no rows matched. This is a valid outcome, distinct
// from an input error.
func (r Result) Empty() bool {
	return len(r.Matched) == 0
}

// Match left-joins uploaded variants to ref on the canonical key and keeps
// rows whose reference side carries an identifier. Output follows upload
// order; a key shared by several reference records yields one row per
// record in table order. Inputs are not modified.
func Match(uploaded []*vcf.Variant, ref *clinvar.Table, validity Classifier) Result {
	var res Result
	for _, v := range uploaded {
		key := v.Key()

		var refs []*clinvar.Record
		if ref != nil && key.Valid() {
			refs = ref.Lookup(key)
		}
		if len(refs) == 0 {
			refs = []*clinvar.Record{nil}
		}

		for _, rr := range refs {
			rec := &Record{Variant: v, Reference: rr}
			rec.Validity = validity.Classify(rec.Annotation().Gene)

			res.Total++
			if rec.Matched() {
				res.Matched = append(res.Matched, rec)
			} else {
				res.Unmatched++
			}
		}
	}
	return res
}
