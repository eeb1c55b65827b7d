package clinvar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesozyaramiss/Genetic-app-en/internal/duckdb"
	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

const referenceVCF = `##fileformat=VCFv4.1
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
17	43045705	17661	G	A	.	.	GENEINFO=BRCA1:672;CLNSIG=Pathogenic;CLNDN=Breast_cancer;RS=80357906
17	43045705	17662	G	A	.	.	GENEINFO=BRCA1:672;CLNSIG=Benign
1	14370	.	G	A	.	.	.
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewTable(t *testing.T) {
	variants := []*vcf.Variant{
		{Chrom: "chr17", Pos: 43045705, ID: "17661", Ref: "G", Alt: "A", Info: "GENEINFO=BRCA1:672;CLNSIG=Pathogenic"},
		{Chrom: "1", Pos: 14370, Ref: "G", Alt: "A"},
	}

	tbl := NewTable(variants, gnomad.GRCh38)
	require.Equal(t, 2, tbl.Len())

	r := tbl.Records()[0]
	assert.Equal(t, "BRCA1", r.Gene)
	assert.Equal(t, "Pathogenic", r.ClinSig)
	assert.Equal(t, "chr17", r.Chrom, "source chromosome preserved")
	assert.Equal(t, "https://gnomad.broadinstitute.org/variant/17-43045705-G-A?dataset=gnomad_r4", r.GnomADLink)

	got := tbl.Lookup(vcf.NewKey("17", 43045705, "G", "A"))
	require.Len(t, got, 1)
	assert.Same(t, r, got[0])

	assert.Empty(t, tbl.Lookup(vcf.NewKey("17", 43045705, "G", "T")))
	assert.Equal(t, Annotation{}, tbl.Records()[1].Annotation)
}

func TestLoad_VCF(t *testing.T) {
	path := writeFile(t, "clinvar.vcf", referenceVCF)

	tbl, err := Load(context.Background(), path, LoadOptions{GenomeBuild: gnomad.GRCh37})
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	dups := tbl.Lookup(vcf.NewKey("17", 43045705, "G", "A"))
	require.Len(t, dups, 2)
	assert.Equal(t, "17661", dups[0].ID, "table order preserved")
	assert.Equal(t, "17662", dups[1].ID)
	assert.Equal(t, "Breast cancer", dups[0].Disease)
	assert.Contains(t, dups[0].GnomADLink, "dataset=gnomad_r2_1")

	last := tbl.Records()[2]
	assert.Empty(t, last.ID)
	assert.Empty(t, last.Info)
}

func TestLoad_Parquet(t *testing.T) {
	store, err := duckdb.Open("")
	require.NoError(t, err)
	defer store.Close()

	path := filepath.Join(t.TempDir(), "clinvar.parquet")
	_, err = store.DB().Exec(fmt.Sprintf(`COPY (
		SELECT '17' AS "CHROM", 43045705 AS "POS", 17661 AS "ID", 'G' AS "REF", 'A' AS "ALT",
		       'GENEINFO=BRCA1:672;CLNSIG=Pathogenic' AS "INFO"
	) TO '%s' (FORMAT PARQUET)`, path))
	require.NoError(t, err)

	tbl, err := Load(context.Background(), path, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "17661", tbl.Records()[0].ID)
	assert.Equal(t, "BRCA1", tbl.Records()[0].Gene)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, "bad.vcf", "1\tabc\t1\tG\tA\t.\t.\t.\n")

	_, err := Load(context.Background(), path, LoadOptions{})
	var parseErr *vcf.ParseError
	assert.True(t, errors.As(err, &parseErr), "got %v", err)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.vcf"), LoadOptions{})
	assert.Error(t, err)
}
