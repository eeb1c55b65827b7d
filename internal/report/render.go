package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
)

// Table and comment limits.
const (
	DetailRowLimit   = 15
	MaxCellWidth     = 15
	MaxCommentLength = 2000
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render writes an HTML report for rows. Rows are not modified.
func Render(w io.Writer, rows []*match.Record, patient PatientInfo, opts Options) error {
	now := opts.generatedAt()
	if opts.Template == TemplateStandard && len(rows) > StandardRowLimit {
		rows = rows[:StandardRowLimit]
	}

	md := buildMarkdown(rows, patient.Resolve(now), opts, now.Format("02.01.2006 15:04"))

	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("render report markdown: %w", err)
	}

	lang := "en"
	if opts.Language != "" && !strings.EqualFold(opts.Language, "English") {
		lang = strings.ToLower(opts.Language)
	}

	var doc bytes.Buffer
	fmt.Fprintf(&doc, "<!DOCTYPE html>\n<html lang=%q>\n<head>\n<meta charset=\"utf-8\">\n", lang)
	fmt.Fprintf(&doc, "<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n", html.EscapeString(reportTitle), stylesheet)
	doc.Write(body.Bytes())
	fmt.Fprintf(&doc, "<footer><p>Report Date: %s</p></footer>\n</body>\n</html>\n", html.EscapeString(now.Format("02.01.2006 15:04")))

	_, err := w.Write(doc.Bytes())
	return err
}

const reportTitle = "Genetic Variant Analysis Report"

const stylesheet = `body{font-family:Helvetica,Arial,sans-serif;margin:2em auto;max-width:60em;color:#2c3e50}` +
	`h1{text-align:center}h2{border-bottom:1px solid #dee2e6}` +
	`table{border-collapse:collapse;margin:1em 0}th{background:#3498db;color:#fff}` +
	`td,th{border:1px solid #dee2e6;padding:4px 8px}td{background:#f8f9fa}` +
	`footer{font-size:.8em;color:#7f8c8d;text-align:center}`

func buildMarkdown(rows []*match.Record, p Patient, opts Options, reportDate string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", reportTitle)

	b.WriteString("## Patient Information\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	for _, kv := range [][2]string{
		{"Patient ID", p.ID},
		{"Patient Name", p.Name},
		{"Age", p.Age},
		{"Test Date", p.TestDate},
		{"Report Date", reportDate},
		{"Total Variants", strconv.Itoa(len(rows))},
	} {
		fmt.Fprintf(&b, "| %s | %s |\n", kv[0], cell(kv[1]))
	}
	b.WriteString("\n")

	s := Summarize(rows)
	if opts.IncludeCharts {
		writeCharts(&b, s)
	}
	writeSignificance(&b, s)
	writeDetailTable(&b, rows)
	if opts.IncludeDetailedAnalysis {
		writeComments(&b, rows)
	}

	b.WriteString("## Conclusion and Recommendations\n\n")
	fmt.Fprintf(&b, "This report contains an analysis of %d genetic variants, prepared from current scientific literature and clinical databases.\n\n", len(rows))
	b.WriteString("**Important Notes:**\n\n")
	b.WriteString("- This report is for informational purposes and does not make definitive diagnoses\n")
	b.WriteString("- For clinical decisions, specialist physician consultation is essential\n")
	b.WriteString("- Genetic counseling is recommended\n\n")
	b.WriteString("*This report was generated automatically. For questions, consult your genetic specialist.*\n")

	return b.String()
}

func writeCharts(b *strings.Builder, s Summary) {
	b.WriteString("## Analysis Summary\n\n")

	writeCounts(b, "Clinical Significance Distribution", "Clinical significance", s.Significance)
	writeCounts(b, "Chromosome Distribution", "Chromosome", s.Chromosomes)

	b.WriteString("### Allele Frequency Distribution\n\n")
	if len(s.AlleleFreq) == 0 {
		b.WriteString("Not enough PopMax allele frequencies to plot.\n\n")
	} else {
		b.WriteString("| PopMax AF | Variants | |\n|---|---:|---|\n")
		for _, bin := range s.AlleleFreq {
			fmt.Fprintf(b, "| %.3g – %.3g | %d | %s |\n", bin.Low, bin.High, bin.Count, bar(bin.Count))
		}
		b.WriteString("\n")
	}

	writeCounts(b, "Most Frequent Genes", "Gene", s.Genes)
}

func writeCounts(b *strings.Builder, title, label string, counts []Count) {
	fmt.Fprintf(b, "### %s\n\n", title)
	if len(counts) == 0 {
		b.WriteString("No data.\n\n")
		return
	}
	fmt.Fprintf(b, "| %s | Variants | |\n|---|---:|---|\n", label)
	for _, c := range counts {
		fmt.Fprintf(b, "| %s | %d | %s |\n", cell(c.Value), c.Count, bar(c.Count))
	}
	b.WriteString("\n")
}

func writeSignificance(b *strings.Builder, s Summary) {
	b.WriteString("## Clinical Significance Analysis\n\n")
	if s.Pathogenic > 0 {
		fmt.Fprintf(b, "**High Risk Variants: %d found.** These variants are strongly associated with disease development and require clinical follow-up.\n\n", s.Pathogenic)
	}
	if s.Benign > 0 {
		fmt.Fprintf(b, "Low Risk Variants: %d found.\n\n", s.Benign)
	}
	if s.Uncertain > 0 {
		fmt.Fprintf(b, "Variants of Uncertain Significance: %d found.\n\n", s.Uncertain)
	}
	if s.Pathogenic+s.Benign+s.Uncertain == 0 {
		b.WriteString("No variants with a recognized clinical significance.\n\n")
	}
}

func writeDetailTable(b *strings.Builder, rows []*match.Record) {
	b.WriteString("## Detailed Variant List\n\n")
	if len(rows) == 0 {
		b.WriteString("No variant data available for display.\n\n")
		return
	}

	b.WriteString("| CHROM | POS | REF | ALT | GENE | CLNSIG |\n|---|---|---|---|---|---|\n")
	limit := min(DetailRowLimit, len(rows))
	for _, r := range rows[:limit] {
		ann := r.Annotation()
		values := []string{
			r.Variant.Chrom,
			strconv.FormatInt(r.Variant.Pos, 10),
			r.Variant.Ref,
			r.Variant.Alt,
			ann.Gene,
			ann.ClinSig,
		}
		for i, v := range values {
			values[i] = cell(truncate(v))
		}
		fmt.Fprintf(b, "| %s |\n", strings.Join(values, " | "))
	}
	b.WriteString("\n")

	if len(rows) > limit {
		fmt.Fprintf(b, "Note: Only the first %d variants are shown. Total of %d variants were analyzed.\n\n", limit, len(rows))
	}
}

func writeComments(b *strings.Builder, rows []*match.Record) {
	b.WriteString("## AI Comments\n\n")
	for i, r := range rows {
		v := r.Variant
		fmt.Fprintf(b, "### Variant %d: %s:%d %s>%s", i+1, v.Chrom, v.Pos, v.Ref, v.Alt)
		if gene := r.Annotation().Gene; gene != "" {
			fmt.Fprintf(b, " (%s)", gene)
		}
		b.WriteString("\n\n")

		comment := r.Interpretation
		if comment == "" {
			comment = "Comment not found"
		}
		if r := []rune(comment); len(r) > MaxCommentLength {
			comment = string(r[:MaxCommentLength]) + "... (Comment truncated)"
		}
		b.WriteString(comment)
		b.WriteString("\n\n")
	}
}

// truncate shortens values longer than MaxCellWidth to 12 characters and
// an ellipsis.
func truncate(s string) string {
	if r := []rune(s); len(r) > MaxCellWidth {
		return string(r[:MaxCellWidth-3]) + "..."
	}
	return s
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	if s == "" {
		return "N/A"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func bar(n int) string {
	return strings.Repeat("█", min(n, 50))
}
