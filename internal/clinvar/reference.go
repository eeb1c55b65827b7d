package clinvar

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/enesozyaramiss/Genetic-app-en/internal/duckdb"
	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// Record is a reference variant with its parsed annotation.
type Record struct {
	vcf.Variant
	Annotation
	GnomADLink string
}

// Table is an immutable, indexed set of reference records.
type Table struct {
	records []*Record
	index   map[vcf.Key][]*Record
}

// NewTable builds a table from reference variants, extracting annotations
// and gnomAD links for the given genome build.
func NewTable(variants []*vcf.Variant, build string) *Table {
	t := &Table{
		records: make([]*Record, 0, len(variants)),
		index:   make(map[vcf.Key][]*Record, len(variants)),
	}
	for _, v := range variants {
		r := &Record{
			Variant:    *v,
			Annotation: Extract(v.Info),
			GnomADLink: gnomad.BrowserLink(v.Chrom, v.Pos, v.Ref, v.Alt, build),
		}
		t.records = append(t.records, r)

		key := v.Key()
		if key.Valid() {
			t.index[key] = append(t.index[key], r)
		}
	}
	return t
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns all records in table order.
func (t *Table) Records() []*Record {
	return t.records
}

// Lookup returns every record sharing key, in table order.
func (t *Table) Lookup(key vcf.Key) []*Record {
	return t.index[key]
}

// LoadOptions configures Load.
type LoadOptions struct {
	GenomeBuild string
	Logger      *zap.Logger
}

// Load reads a reference table from a Parquet, VCF or gzipped VCF file.
func Load(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		variants []*vcf.Variant
		err      error
	)
	if strings.HasSuffix(strings.ToLower(path), ".parquet") {
		variants, err = readParquet(ctx, path)
	} else {
		variants, err = readVCF(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load reference %s: %w", path, err)
	}

	t := NewTable(variants, opts.GenomeBuild)
	logger.Info("loaded reference table",
		zap.String("path", path),
		zap.Int("records", t.Len()),
		zap.String("genome_build", opts.GenomeBuild))
	return t, nil
}

func readParquet(ctx context.Context, path string) ([]*vcf.Variant, error) {
	store, err := duckdb.Open("")
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return store.ReadReference(ctx, path)
}

func readVCF(path string) ([]*vcf.Variant, error) {
	p, err := vcf.NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	p.SetFullRecords(true)
	return p.ReadAll()
}
