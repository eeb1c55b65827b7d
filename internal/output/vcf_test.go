package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesozyaramiss/Genetic-app-en/internal/clinvar"
	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

func TestVCFWriter_Header(t *testing.T) {
	headers := []string{
		"##fileformat=VCFv4.2",
		"##reference=GRCh38",
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO",
	}

	var buf bytes.Buffer
	w := NewVCFWriter(&buf, headers)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "##fileformat=VCFv4.2", lines[0])
	assert.Equal(t, "##reference=GRCh38", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "##INFO=<ID=ENRICH"))
	assert.True(t, strings.HasPrefix(lines[3], "#CHROM"))
}

func TestVCFWriter_DefaultHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewVCFWriter(&buf, nil)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Contains(t, buf.String(), "##INFO=<ID=ENRICH")
	assert.Contains(t, buf.String(), "#CHROM\tPOS")
}

func TestVCFWriter_Write(t *testing.T) {
	ref := clinvar.NewTable([]*vcf.Variant{{
		Chrom: "17", Pos: 43045705, ID: "17661", Ref: "G", Alt: "A",
		Info: "GENEINFO=BRCA1:672;CLNSIG=Pathogenic;CLNDN=Breast_cancer",
	}}, gnomad.GRCh38).Records()[0]

	ac, an, af := int64(3), int64(1000), 0.004
	rec := &match.Record{
		Variant:   &vcf.Variant{Chrom: "17", Pos: 43045705, Ref: "G", Alt: "A", Info: "DP=30;ENRICH=old"},
		Reference: ref,
		Validity:  "Definitive",
		Frequency: gnomad.Result{Stats: &gnomad.Stats{
			AlleleCount: &ac, AlleleNumber: &an, PopmaxAF: &af, PopmaxPopulation: "nfe",
		}},
		Citations: []string{"111", "222"},
	}

	var buf bytes.Buffer
	w := NewVCFWriter(&buf, nil)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	require.Len(t, fields, 8)
	assert.Equal(t, "17", fields[0])
	assert.Equal(t, "43045705", fields[1])
	assert.Equal(t, "17661", fields[2])
	assert.Equal(t, "DP=30;ENRICH=BRCA1|Pathogenic|Breast_cancer||Definitive|3|1000|0.004|nfe|111&222", fields[7])
}

func TestVCFWriter_Write_NoFrequency(t *testing.T) {
	rec := &match.Record{
		Variant:   &vcf.Variant{Chrom: "1", Pos: 100, Ref: "A", Alt: "T"},
		Validity:  "None",
		Frequency: gnomad.Result{Error: "HTTP error: 503"},
	}

	var buf bytes.Buffer
	w := NewVCFWriter(&buf, nil)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Flush())

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t")
	require.Len(t, fields, 8)
	assert.Equal(t, ".", fields[2])
	assert.Equal(t, "ENRICH=||||None|||||", fields[7])
}

func TestFormatInfo(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "."},
		{".", "."},
		{"DP=10", "DP=10"},
		{"ENRICH=x", "."},
		{"DP=10;ENRICH=x;AF=0.1", "DP=10;AF=0.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatInfo(tt.in), tt.in)
	}
}
