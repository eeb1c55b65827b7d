package vcf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVCF = `##fileformat=VCFv4.2
##source=test
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
1	14370	rs6054257	G	A	29	PASS	GENEINFO=BRCA1:672;CLNSIG=Pathogenic
17	43045712	.	C	T	.	PASS	.
chrX	2781927	rs1	A	G	50	PASS	RS=1
`

func TestParser_SingleVariant(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader("CHROM POS ID REF ALT\n1\t14370\trs6054257\tG\tA\n"))
	require.NoError(t, err)

	v, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "1", v.Chrom)
	assert.Equal(t, int64(14370), v.Pos)
	assert.Equal(t, "G", v.Ref)
	assert.Equal(t, "A", v.Alt)
	assert.Empty(t, v.ID, "coordinate mode does not read ID")

	v, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, v, "expected no more variants")
}

func TestParser_MultipleVariants(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(sampleVCF))
	require.NoError(t, err)

	variants, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, variants, 3)

	assert.Equal(t, "17", variants[1].Chrom)
	assert.Equal(t, int64(43045712), variants[1].Pos)
	assert.Equal(t, "chrX", variants[2].Chrom)
	assert.Equal(t, 6, p.LineNumber())

	assert.Empty(t, variants[0].ID)
	assert.Equal(t, "GENEINFO=BRCA1:672;CLNSIG=Pathogenic", variants[0].Info, "INFO kept when present")
	assert.Empty(t, variants[1].Info)
}

func TestParser_FullRecords(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(sampleVCF))
	require.NoError(t, err)
	p.SetFullRecords(true)

	variants, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, variants, 3)

	assert.Equal(t, "rs6054257", variants[0].ID)
	assert.Equal(t, "GENEINFO=BRCA1:672;CLNSIG=Pathogenic", variants[0].Info)
	assert.Empty(t, variants[1].ID, "'.' ID is treated as missing")
	assert.Empty(t, variants[1].Info, "'.' INFO is treated as missing")
}

func TestParser_SkipsCommentsAndBlankLines(t *testing.T) {
	input := "# comment\n\n1\t100\t.\tA\tT\n# trailing comment\n\n2\t200\t.\tC\tG"
	p, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	variants, err := p.ReadAll()
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.Equal(t, int64(200), variants[1].Pos, "last line without newline is read")
}

func TestParser_HeaderOnlyBeforeData(t *testing.T) {
	// A CHROM token after data lines is a malformed record, not a header.
	input := "1\t100\t.\tA\tT\nCHROM\tPOS\tID\tREF\tALT\n"
	p, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = p.Next()
	require.NoError(t, err)

	_, err = p.Next()
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
}

func TestParser_InvalidPosition(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader("1\tabc\t.\tA\tT\n"))
	require.NoError(t, err)

	_, err = p.Next()
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected ParseError, got %v", err)
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, perr.Error(), "invalid position")
}

func TestParser_ShortLine(t *testing.T) {
	tests := []struct {
		name string
		full bool
		line string
		want int
	}{
		{"coordinates need 5 fields", false, "1\t100\t.\tA\n", 5},
		{"full records need 8 fields", true, "1\t100\t.\tA\tT\t.\tPASS\n", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParserFromReader(strings.NewReader(tt.line))
			require.NoError(t, err)
			p.SetFullRecords(tt.full)

			_, err = p.Next()
			var serr *ShortLineError
			require.True(t, errors.As(err, &serr), "expected ShortLineError, got %v", err)
			assert.Equal(t, tt.want, serr.Want)
		})
	}
}

func TestParser_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sampleVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "sample.vcf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()

	variants, err := p.ReadAll()
	require.NoError(t, err)
	assert.Len(t, variants, 3)
}

func TestParser_EmptyInput(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(""))
	require.NoError(t, err)

	variants, err := p.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestNewParser_NotFound(t *testing.T) {
	_, err := NewParser("/nonexistent/file.vcf")
	assert.Error(t, err)
}
