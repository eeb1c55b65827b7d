package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/enesozyaramiss/Genetic-app-en/internal/duckdb"
	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/llm"
	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
	"github.com/enesozyaramiss/Genetic-app-en/internal/output"
	"github.com/enesozyaramiss/Genetic-app-en/internal/pipeline"
	"github.com/enesozyaramiss/Genetic-app-en/internal/pubmed"
	"github.com/enesozyaramiss/Genetic-app-en/internal/report"
	"github.com/enesozyaramiss/Genetic-app-en/internal/session"
)

type analyzeOptions struct {
	format string

	csvFile     string
	report      bool
	reportFile  string
	parquetFile string
	vcfFile     string

	patientID   string
	patientName string
	patientAge  int
	testDate    string

	template  string
	language  string
	noCharts  bool
	noDetails bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [flags] <upload>",
		Short: "Match, enrich and interpret uploaded variants",
		Long: `Match an uploaded VCF, gzipped VCF or CSV file against the ClinVar reference
table, then for every matched variant look up gnomAD exome frequencies and
PubMed citations and request an AI interpretation. Results are written as CSV
and optionally as an HTML report, a Parquet table or an annotated VCF.`,
		Example: `  genetic-app analyze sample.vcf.gz
  genetic-app analyze --api-key $GEMINI_API_KEY --report --patient-name "Jane Doe" sample.vcf
  genetic-app analyze --format csv --parquet results.parquet variants.txt`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd.Flags(), referenceKeys); err != nil {
				return err
			}
			if err := a.bindFlags(cmd.Flags(), map[string]string{
				"api-key": "llm.api_key",
				"model":   "llm.model",
				"workers": "pipeline.workers",
			}); err != nil {
				return err
			}
			return a.runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	flags := cmd.Flags()
	referenceFlags(flags, &opts.format)
	flags.String("api-key", "", "API key for the interpretation model")
	flags.String("model", "", "Interpretation model name")
	flags.Int("workers", 0, "Number of variants processed concurrently")

	flags.StringVar(&opts.csvFile, "csv", "", "CSV output file (default genetic_analysis_<timestamp>.csv)")
	flags.BoolVar(&opts.report, "report", false, "Write an HTML report")
	flags.StringVar(&opts.reportFile, "report-file", "", "HTML report file (default genetic_report_<patient id>.html)")
	flags.StringVar(&opts.parquetFile, "parquet", "", "Also write results to this Parquet file")
	flags.StringVar(&opts.vcfFile, "vcf", "", "Also write results to this VCF file")

	flags.StringVar(&opts.patientID, "patient-id", "", "Patient ID for the report (default RPT_<timestamp>)")
	flags.StringVar(&opts.patientName, "patient-name", "", "Patient name for the report")
	flags.IntVar(&opts.patientAge, "patient-age", 0, "Patient age for the report")
	flags.StringVar(&opts.testDate, "test-date", "", "Test date for the report (DD.MM.YYYY or YYYY-MM-DD, default today)")

	flags.StringVar(&opts.template, "template", "summary", "Report template: standard (first 20 variants) or summary (all variants)")
	flags.StringVar(&opts.language, "language", "English", "Report language")
	flags.BoolVar(&opts.noCharts, "no-charts", false, "Omit charts from the report")
	flags.BoolVar(&opts.noDetails, "no-details", false, "Omit per-variant AI comments from the report")

	return cmd
}

func (a *app) runAnalyze(ctx context.Context, out io.Writer, path string, opts analyzeOptions) error {
	reportOpts, patient, err := opts.reportOptions(a.now())
	if err != nil {
		return err
	}

	run := a.runs.Begin(path)
	a.logger.Debug("analysis started", zap.String("run", run.ID.String()), zap.String("upload", path))

	res, err := a.join(ctx, path, opts.format)
	if err != nil {
		return err
	}

	if res.Empty() {
		fmt.Fprintln(out, "No matching variants found.")
		fmt.Fprintf(out, "%d of %d uploaded variants unmatched.\n", res.Unmatched, res.Total)
		return a.runs.Complete(run.ID, res, nil)
	}
	fmt.Fprintf(out, "%d matches found.\n", len(res.Matched))

	credential := a.v.GetString("llm.api_key")
	if strings.TrimSpace(credential) == "" {
		fmt.Fprintln(out, "Warning: no API key configured; interpretations will record the error.")
	}

	aug := a.newAugmenter(credential, func(done, total int, rec *match.Record) {
		v := rec.Variant
		fmt.Fprintf(out, "Processing %d/%d: %s:%d %s>%s\n", done, total, v.Chrom, v.Pos, v.Ref, v.Alt)
	})

	rows, err := aug.Run(ctx, res.Matched)
	if err != nil {
		return fmt.Errorf("augmenting variants: %w", err)
	}

	if err := a.runs.Complete(run.ID, res, rows); err != nil {
		return err
	}
	current, _ := a.runs.Current()
	printStats(out, current)

	return a.writeResults(ctx, out, current, opts, reportOpts, patient)
}

// newAugmenter wires the cached lookup clients and the interpreter into a
// pipeline.
func (a *app) newAugmenter(credential string, progress func(done, total int, rec *match.Record)) *pipeline.Augmenter {
	ttl := a.v.GetDuration("lookup.cache_ttl")
	timeout := a.v.GetDuration("lookup.timeout")
	retries := a.v.GetUint64("lookup.max_retries")

	freq := gnomad.NewClient(gnomad.Config{
		Endpoint:   a.v.GetString("gnomad.endpoint"),
		Dataset:    gnomad.Dataset(a.v.GetString("reference.genome_build")),
		Timeout:    timeout,
		MaxRetries: retries,
	})
	freq.SetLogger(a.logger)

	cites := pubmed.NewClient(pubmed.Config{
		Endpoint:   a.v.GetString("pubmed.endpoint"),
		APIKey:     a.v.GetString("pubmed.api_key"),
		Timeout:    timeout,
		MaxRetries: retries,
	})
	cites.SetLogger(a.logger)

	interp := llm.NewClient(llm.Config{
		BaseURL: a.v.GetString("llm.base_url"),
		Model:   a.v.GetString("llm.model"),
		Timeout: a.v.GetDuration("llm.timeout"),
	})
	interp.SetLogger(a.logger)

	aug := pipeline.New(gnomad.NewCached(freq, ttl), pubmed.NewCached(cites, ttl), interp, pipeline.Config{
		Workers:      a.v.GetInt("pipeline.workers"),
		RateInterval: a.v.GetDuration("llm.rate_interval"),
		Credential:   credential,
		Progress:     progress,
	})
	aug.SetLogger(a.logger)
	return aug
}

// printStats writes the run statistics and the main distributions.
func printStats(w io.Writer, run session.Run) {
	s := report.Summarize(run.Records)

	fmt.Fprintf(w, "\nTotal variants: %d\n", s.Total)
	fmt.Fprintf(w, "Pathogenic:     %d\n", s.Pathogenic)
	fmt.Fprintf(w, "Benign:         %d\n", s.Benign)
	fmt.Fprintf(w, "Uncertain:      %d\n", s.Uncertain)
	fmt.Fprintf(w, "Unmatched:      %d of %d uploaded\n", run.Unmatched, run.Total)

	if len(s.Significance) > 0 {
		fmt.Fprintln(w, "\nClinical significance:")
		for _, c := range s.Significance {
			fmt.Fprintf(w, "  %-40s %d\n", c.Value, c.Count)
		}
	}
	if len(s.Genes) > 0 {
		fmt.Fprintln(w, "\nTop genes:")
		for _, c := range s.Genes {
			fmt.Fprintf(w, "  %-40s %d\n", c.Value, c.Count)
		}
	}
	fmt.Fprintln(w)
}

func (a *app) writeResults(ctx context.Context, out io.Writer, run session.Run, opts analyzeOptions,
	reportOpts report.Options, patient report.PatientInfo) error {
	csvFile := opts.csvFile
	if csvFile == "" {
		csvFile = report.CSVFileName(run.CompletedAt)
	}
	if err := writeFile(csvFile, func(w io.Writer) error { return report.WriteCSV(w, run.Records) }); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", csvFile)

	if opts.report {
		reportFile := opts.reportFile
		if reportFile == "" {
			reportFile = report.ReportFileName(patient.Resolve(reportOpts.GeneratedAt))
		}
		if err := writeFile(reportFile, func(w io.Writer) error {
			return report.Render(w, run.Records, patient, reportOpts)
		}); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", reportFile)
	}

	if opts.parquetFile != "" {
		store, err := duckdb.Open("")
		if err != nil {
			return err
		}
		defer store.Close()
		if err := report.ExportParquet(ctx, store, opts.parquetFile, run.Records); err != nil {
			return fmt.Errorf("writing Parquet: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", opts.parquetFile)
	}

	if opts.vcfFile != "" {
		if err := writeFile(opts.vcfFile, func(w io.Writer) error {
			vw := output.NewVCFWriter(w, nil)
			if err := vw.WriteHeader(); err != nil {
				return err
			}
			for _, r := range run.Records {
				if err := vw.Write(r); err != nil {
					return err
				}
			}
			return vw.Flush()
		}); err != nil {
			return fmt.Errorf("writing VCF: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", opts.vcfFile)
	}

	return nil
}

// reportOptions validates the report flags.
func (o analyzeOptions) reportOptions(now time.Time) (report.Options, report.PatientInfo, error) {
	ro := report.DefaultOptions()
	ro.GeneratedAt = now
	ro.Language = o.language
	ro.IncludeCharts = !o.noCharts
	ro.IncludeDetailedAnalysis = !o.noDetails

	switch strings.ToLower(strings.TrimSpace(o.template)) {
	case "standard", strings.ToLower(report.TemplateStandard):
		ro.Template = report.TemplateStandard
	case "summary", strings.ToLower(report.TemplateSummary), "":
		ro.Template = report.TemplateSummary
	default:
		return ro, report.PatientInfo{}, &cliError{msg: fmt.Sprintf("Error: unknown report template %q (want standard or summary)", o.template)}
	}

	patient := report.PatientInfo{ID: o.patientID, Name: o.patientName, Age: o.patientAge}
	if o.testDate != "" {
		d, err := parseDate(o.testDate)
		if err != nil {
			return ro, patient, &cliError{msg: fmt.Sprintf("Error: invalid test date %q (want DD.MM.YYYY or YYYY-MM-DD)", o.testDate), err: err}
		}
		patient.TestDate = d
	}
	return ro, patient, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("02.01.2006", s)
	if err == nil {
		return d, nil
	}
	return time.Parse("2006-01-02", s)
}

// writeFile creates path and writes to it with fn.
func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
