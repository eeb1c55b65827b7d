package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Field indices of a tab-separated VCF data line.
const (
	fieldChrom = 0
	fieldPos   = 1
	fieldID    = 2
	fieldRef   = 3
	fieldAlt   = 4
	fieldInfo  = 7
)

// Parser reads variant records from VCF-style tab-separated text.
//
// Lines starting with "#" are skipped, as is a single leading header line
// whose first token is CHROM. Every other non-blank line is a record.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	full       bool
	seenData   bool
}

// NewParser opens a VCF file for reading.
// Supports both plain and gzipped (.vcf.gz) files; "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p, err := NewParserFromReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	p.file = file
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader. Gzip input is
// detected from its magic bytes.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)
	p := &Parser{reader: br}

	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	}

	return p, nil
}

// SetFullRecords makes Next also read the ID field and require at least 8
// fields per line. INFO is read whenever a line has it.
func (p *Parser) SetFullRecords(full bool) {
	p.full = full
}

// Next reads the next variant.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !p.seenData && isHeaderLine(line) {
			p.seenData = true
			continue
		}
		p.seenData = true

		return p.parseLine(line)
	}
}

// isHeaderLine reports whether line is an uncommented column header.
func isHeaderLine(line string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && strings.EqualFold(fields[0], ColChrom)
}

// parseLine parses a single data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(strings.TrimSpace(line), "\t")

	want := fieldAlt + 1
	if p.full {
		want = fieldInfo + 1
	}
	if len(fields) < want {
		return nil, &ShortLineError{Line: p.lineNumber, Fields: len(fields), Want: want}
	}

	pos, err := ParsePosition(fields[fieldPos])
	if err != nil {
		return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
	}

	v := &Variant{
		Chrom: fields[fieldChrom],
		Pos:   pos,
		Ref:   fields[fieldRef],
		Alt:   fields[fieldAlt],
	}
	if p.full {
		v.ID = missingToEmpty(fields[fieldID])
	}
	if len(fields) > fieldInfo {
		v.Info = missingToEmpty(fields[fieldInfo])
	}

	return v, nil
}

func missingToEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == "." {
		return ""
	}
	return s
}

// ReadAll reads every remaining variant.
func (p *Parser) ReadAll() ([]*Variant, error) {
	var variants []*Variant
	for {
		v, err := p.Next()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return variants, nil
		}
		variants = append(variants, v)
	}
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// Compressed reports whether the input was gzip-compressed.
func (p *Parser) Compressed() bool {
	return p.gzipReader != nil
}
