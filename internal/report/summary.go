package report

import (
	"math"
	"strings"

	linq "github.com/ahmetb/go-linq"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
)

// Chart limits.
const (
	TopChromosomes = 10
	TopGenes       = 10
	MaxAFBins      = 20
)

// Count is a value and the number of rows carrying it.
type Count struct {
	Value string
	Count int
}

// Bin is one histogram bucket; High is inclusive only for the last bin.
type Bin struct {
	Low   float64
	High  float64
	Count int
}

// Summary is the statistical overview of a result set.
type Summary struct {
	Total      int
	Pathogenic int
	Benign     int
	Uncertain  int

	Significance []Count
	Chromosomes  []Count
	Genes        []Count
	AlleleFreq   []Bin
}

// Summarize computes counts and chart data for rows. Significance buckets
// match case-insensitive substrings, so a row may fall into several.
func Summarize(rows []*match.Record) Summary {
	s := Summary{Total: len(rows)}

	for _, r := range rows {
		sig := strings.ToLower(r.Annotation().ClinSig)
		if strings.Contains(sig, "pathogenic") {
			s.Pathogenic++
		}
		if strings.Contains(sig, "benign") {
			s.Benign++
		}
		if strings.Contains(sig, "uncertain") {
			s.Uncertain++
		}
	}

	s.Significance = countBy(rows, func(r *match.Record) string { return r.Annotation().ClinSig }, 0)
	s.Chromosomes = countBy(rows, func(r *match.Record) string { return r.Variant.Chrom }, TopChromosomes)
	s.Genes = countBy(rows, func(r *match.Record) string { return r.Annotation().Gene }, TopGenes)
	s.AlleleFreq = histogram(popmaxAFs(rows))
	return s
}

// countBy groups rows by key, skipping empty keys, most frequent first.
// Ties are ordered by value. A limit of zero keeps every group.
func countBy(rows []*match.Record, key func(*match.Record) string, limit int) []Count {
	q := linq.From(rows).
		WhereT(func(r *match.Record) bool { return key(r) != "" }).
		GroupByT(
			func(r *match.Record) string { return key(r) },
			func(r *match.Record) *match.Record { return r },
		).
		OrderByDescendingT(func(g linq.Group) int { return len(g.Group) }).
		ThenByT(func(g linq.Group) string { return g.Key.(string) }).
		SelectT(func(g linq.Group) Count {
			return Count{Value: g.Key.(string), Count: len(g.Group)}
		})
	if limit > 0 {
		q = q.Take(limit)
	}

	counts := []Count{}
	q.ToSlice(&counts)
	return counts
}

func popmaxAFs(rows []*match.Record) []float64 {
	var afs []float64
	linq.From(rows).
		WhereT(func(r *match.Record) bool {
			st := r.Frequency.Stats
			return st != nil && st.PopmaxAF != nil && !math.IsNaN(*st.PopmaxAF)
		}).
		SelectT(func(r *match.Record) float64 { return *r.Frequency.Stats.PopmaxAF }).
		ToSlice(&afs)
	return afs
}

// histogram buckets values into min(MaxAFBins, len(values)) equal-width
// bins over [min, max]. Fewer than two values produce no histogram.
func histogram(values []float64) []Bin {
	if len(values) < 2 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	n := len(values)
	if n > MaxAFBins {
		n = MaxAFBins
	}
	width := (hi - lo) / float64(n)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Low = lo + float64(i)*width
		bins[i].High = lo + float64(i+1)*width
	}
	bins[n-1].High = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}
