package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesozyaramiss/Genetic-app-en/internal/clinvar"
	"github.com/enesozyaramiss/Genetic-app-en/internal/duckdb"
	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

var fixedNow = time.Date(2025, 7, 1, 14, 30, 5, 0, time.UTC)

func record(chrom string, pos int64, info string, af *float64) *match.Record {
	ref := clinvar.NewTable([]*vcf.Variant{
		{Chrom: chrom, Pos: pos, ID: fmt.Sprint(pos), Ref: "G", Alt: "A", Info: info},
	}, gnomad.GRCh38).Records()[0]

	r := &match.Record{
		Variant:   &vcf.Variant{Chrom: chrom, Pos: pos, Ref: "G", Alt: "A"},
		Reference: ref,
		Validity:  "Definitive",
	}
	if af != nil {
		r.Frequency = gnomad.Result{Stats: &gnomad.Stats{PopmaxAF: af}}
	}
	return r
}

func f(v float64) *float64 { return &v }

func sampleRows() []*match.Record {
	return []*match.Record{
		record("17", 43045705, "GENEINFO=BRCA1:672;CLNSIG=Pathogenic;CLNDN=Breast_cancer", f(0.001)),
		record("17", 43045712, "GENEINFO=BRCA1:672;CLNSIG=Likely_pathogenic", f(0.003)),
		record("13", 32315474, "GENEINFO=BRCA2:675;CLNSIG=Benign", f(0.2)),
		record("1", 14370, "GENEINFO=TP53:7157;CLNSIG=Uncertain_significance", nil),
		record("2", 100, "", nil),
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRows())

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Pathogenic)
	assert.Equal(t, 1, s.Benign)
	assert.Equal(t, 1, s.Uncertain)

	assert.Len(t, s.Significance, 4, "empty significance not counted")
	assert.Equal(t, []Count{{"17", 2}, {"1", 1}, {"13", 1}, {"2", 1}}, s.Chromosomes)
	assert.Equal(t, []Count{{"BRCA1", 2}, {"BRCA2", 1}, {"TP53", 1}}, s.Genes)

	require.Len(t, s.AlleleFreq, 3)
	total := 0
	for _, b := range s.AlleleFreq {
		total += b.Count
	}
	assert.Equal(t, 3, total)
	assert.InDelta(t, 0.001, s.AlleleFreq[0].Low, 1e-12)
	assert.InDelta(t, 0.2, s.AlleleFreq[2].High, 1e-12)
	assert.Equal(t, 1, s.AlleleFreq[2].Count, "max value in last bin")
}

func TestSummarize_TopTen(t *testing.T) {
	var rows []*match.Record
	for i := 0; i < 12; i++ {
		for j := 0; j <= i; j++ {
			rows = append(rows, record(fmt.Sprint(i+1), int64(j+1), fmt.Sprintf("GENEINFO=G%d:1", i), nil))
		}
	}

	s := Summarize(rows)
	require.Len(t, s.Chromosomes, TopChromosomes)
	require.Len(t, s.Genes, TopGenes)
	assert.Equal(t, Count{"12", 12}, s.Chromosomes[0])
	assert.Equal(t, Count{"G11", 12}, s.Genes[0])
	assert.Empty(t, s.AlleleFreq)
}

func TestHistogram(t *testing.T) {
	assert.Nil(t, histogram(nil))
	assert.Nil(t, histogram([]float64{0.1}), "needs more than one value")

	bins := histogram([]float64{0.5, 0.5})
	require.Len(t, bins, 2)
	assert.InDelta(t, 0.0, bins[0].Low, 1e-12)
	assert.InDelta(t, 1.0, bins[1].High, 1e-12)

	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(i)
	}
	bins = histogram(values)
	assert.Len(t, bins, MaxAFBins)
}

func TestRender(t *testing.T) {
	rows := sampleRows()
	rows[0].Interpretation = "**Likely pathogenic** variant."
	before := *rows[0]

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.GeneratedAt = fixedNow
	require.NoError(t, Render(&buf, rows, PatientInfo{Name: "Jane Doe", Age: 42}, opts))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Genetic Variant Analysis Report</h1>")
	assert.Contains(t, out, "RPT_20250701_143005")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "<td>42</td>")
	assert.Contains(t, out, "01.07.2025 14:30")
	assert.Contains(t, out, "High Risk Variants: 2 found.")
	assert.Contains(t, out, "Low Risk Variants: 1 found.")
	assert.Contains(t, out, "Variants of Uncertain Significance: 1 found.")
	assert.Contains(t, out, "Most Frequent Genes")
	assert.Contains(t, out, "Likely_patho...", "long values truncated")
	assert.Contains(t, out, "Variant 1: 17:43045705 G&gt;A (BRCA1)")
	assert.Contains(t, out, "<strong>Likely pathogenic</strong> variant.")
	assert.Contains(t, out, "Comment not found")

	assert.Equal(t, before, *rows[0], "rows not modified")
}

func TestRender_Options(t *testing.T) {
	var rows []*match.Record
	for i := 0; i < 25; i++ {
		rows = append(rows, record("1", int64(i+1), "CLNSIG=Benign", nil))
	}

	var buf bytes.Buffer
	opts := Options{Template: TemplateStandard, GeneratedAt: fixedNow}
	require.NoError(t, Render(&buf, rows, PatientInfo{ID: "P-1"}, opts))
	out := buf.String()

	assert.Contains(t, out, "P-1")
	assert.Contains(t, out, "Not specified")
	assert.Contains(t, out, "Only the first 15 variants are shown. Total of 20 variants were analyzed.")
	assert.NotContains(t, out, "Analysis Summary")
	assert.NotContains(t, out, "AI Comments")
}

func TestRender_EscapesHTML(t *testing.T) {
	rows := []*match.Record{record("1", 1, "CLNSIG=Benign", nil)}
	rows[0].Interpretation = "<script>alert(1)</script>"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rows, PatientInfo{}, DefaultOptions()))
	assert.NotContains(t, buf.String(), "<script>")
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, PatientInfo{}, DefaultOptions()))
	assert.Contains(t, buf.String(), "No variant data available for display.")
}

func TestPatientResolve(t *testing.T) {
	p := PatientInfo{}.Resolve(fixedNow)
	assert.Equal(t, Patient{ID: "RPT_20250701_143005", Name: NotSpecified, Age: NotSpecified, TestDate: "01.07.2025"}, p)

	p = PatientInfo{ID: " X1 ", Name: "A", Age: 7, TestDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}.Resolve(fixedNow)
	assert.Equal(t, Patient{ID: "X1", Name: "A", Age: "7", TestDate: "02.01.2024"}, p)
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "genetic_analysis_20250701_143005.csv", CSVFileName(fixedNow))
	assert.Equal(t, "genetic_report_P1.html", ReportFileName(Patient{ID: "P1"}))
}

func TestWriteCSV(t *testing.T) {
	rows := sampleRows()
	ac := int64(5)
	rows[0].Frequency.Stats.AlleleCount = &ac
	rows[0].Citations = []string{"1", "2"}
	rows[0].Interpretation = "Line one, with comma\nline two"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, Columns, records[0])

	first := map[string]string{}
	for i, c := range Columns {
		first[c] = records[1][i]
	}
	assert.Equal(t, "17", first["CHROM"])
	assert.Equal(t, "43045705", first["POS"])
	assert.Equal(t, "BRCA1", first["GENE"])
	assert.Equal(t, "Breast cancer", first["DISEASE"])
	assert.Equal(t, "5", first["Exome_AC"])
	assert.Equal(t, "0.001", first["PopMax_AF"])
	assert.Equal(t, "1, 2", first["PubMed_IDs"])
	assert.Equal(t, "Line one, with comma\nline two", first["Interpretation"])
	assert.Contains(t, first["gnomAD_Link"], "17-43045705-G-A")
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(Columns, ",")+"\n", buf.String())
}

func TestExportParquet(t *testing.T) {
	store, err := duckdb.Open("")
	require.NoError(t, err)
	defer store.Close()

	path := filepath.Join(t.TempDir(), "results.parquet")
	require.NoError(t, ExportParquet(context.Background(), store, path, sampleRows()))

	var n int
	require.NoError(t, store.DB().QueryRow(fmt.Sprintf(
		"SELECT count(*) FROM read_parquet('%s') WHERE clingen_validity = 'Definitive'", path)).Scan(&n))
	assert.Equal(t, 5, n)
}
