// Package clingen loads the ClinGen gene-disease validity summary and looks
// up the validity classification for a gene.
package clingen

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// None is returned by Classify for genes without a validity curation.
const None = "None"

// Fixed layout of the ClinGen summary export (0-based row indices).
const (
	HeaderRow = 4
	DataRow   = 5
)

// Column names selected from the summary.
const (
	ColGene           = "GENE SYMBOL"
	ColDisease        = "DISEASE LABEL"
	ColClassification = "CLASSIFICATION"
)

var columns = []string{ColGene, ColDisease, ColClassification}

// Row is one gene-disease curation.
type Row struct {
	Gene           string
	Disease        string
	Classification string
}

// Table holds curations in file order, indexed by gene.
type Table struct {
	rows  []Row
	genes map[string][]int
}

// NewTable builds a table from rows, preserving their order.
func NewTable(rows []Row) *Table {
	t := &Table{rows: rows, genes: make(map[string][]int)}
	for i, r := range rows {
		t.genes[r.Gene] = append(t.genes[r.Gene], i)
	}
	return t
}

// Len returns the number of curations.
func (t *Table) Len() int {
	return len(t.rows)
}

// Lookup returns the first curation for gene in table order.
func (t *Table) Lookup(gene string) (Row, bool) {
	idx, ok := t.genes[gene]
	if !ok {
		return Row{}, false
	}
	return t.rows[idx[0]], true
}

// Classify returns the classification of the first curation for gene, or
// None. Matching is exact and case-sensitive.
func (t *Table) Classify(gene string) string {
	if r, ok := t.Lookup(gene); ok {
		return r.Classification
	}
	return None
}

// Diseases returns every curation for gene in table order.
func (t *Table) Diseases(gene string) []Row {
	idx := t.genes[gene]
	rows := make([]Row, 0, len(idx))
	for _, i := range idx {
		rows = append(rows, t.rows[i])
	}
	return rows
}

// Load reads a ClinGen gene-disease summary CSV. Rows with any of the three
// selected columns empty are dropped.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open clingen summary: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read clingen summary: %w", err)
	}
	if len(records) <= HeaderRow {
		return nil, fmt.Errorf("clingen summary: expected header at row %d, file has %d rows", HeaderRow, len(records))
	}

	header := make([]string, len(records[HeaderRow]))
	for i, name := range records[HeaderRow] {
		header[i] = strings.TrimSpace(name)
	}
	if err := vcf.CheckColumns("clingen", header, columns...); err != nil {
		return nil, err
	}
	if len(records) <= DataRow {
		return NewTable(nil), nil
	}

	table := append([][]string{header}, padRows(records[DataRow:], len(header))...)
	df := dataframe.LoadRecords(table,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
	).Select(columns)
	if df.Err != nil {
		return nil, fmt.Errorf("load clingen summary: %w", df.Err)
	}

	gene, disease, class := df.Col(ColGene), df.Col(ColDisease), df.Col(ColClassification)
	rows := make([]Row, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		r := Row{
			Gene:           value(gene, i),
			Disease:        value(disease, i),
			Classification: value(class, i),
		}
		if r.Gene == "" || r.Disease == "" || r.Classification == "" {
			continue
		}
		rows = append(rows, r)
	}
	return NewTable(rows), nil
}

// LoadOrEmpty loads the summary, logging any failure and returning an
// empty table so every lookup yields None.
func LoadOrEmpty(path string, logger *zap.Logger) *Table {
	t, err := Load(path)
	if err != nil {
		logger.Warn("ClinGen summary could not be read; validity lookups will return None",
			zap.String("path", path), zap.Error(err))
		return NewTable(nil)
	}
	logger.Info("loaded ClinGen summary", zap.String("path", path), zap.Int("curations", t.Len()))
	return t
}

func value(s series.Series, i int) string {
	e := s.Elem(i)
	if e.IsNA() {
		return ""
	}
	return strings.TrimSpace(e.String())
}

func padRows(rows [][]string, width int) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, width)
		copy(row, r)
		out[i] = row
	}
	return out
}
