package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
	"github.com/enesozyaramiss/Genetic-app-en/internal/output"
)

// recordWriter is implemented by the tab and VCF writers.
type recordWriter interface {
	WriteHeader() error
	Write(*match.Record) error
	Flush() error
}

func newMatchCmd(a *app) *cobra.Command {
	var (
		format       string
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "match [flags] <upload>",
		Short: "Match uploaded variants against the reference tables",
		Long: `Match an uploaded file against the ClinVar reference table and ClinGen
summary without any external lookups. Matched rows are written as
tab-delimited text or VCF.`,
		Example: `  genetic-app match sample.vcf
  genetic-app match -f vcf -o matched.vcf sample.vcf.gz
  genetic-app match --clinvar clinvar.vcf.gz variants.csv`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd.Flags(), referenceKeys); err != nil {
				return err
			}

			var writer recordWriter
			out := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			switch outputFormat {
			case "tab":
				writer = output.NewTabWriter(out)
			case "vcf":
				writer = output.NewVCFWriter(out, nil)
			default:
				return &usageError{
					err:   fmt.Errorf("unknown output format %q", outputFormat),
					usage: cmd.UsageString(),
				}
			}

			return a.runMatch(cmd.Context(), cmd.ErrOrStderr(), args[0], format, writer)
		},
	}

	flags := cmd.Flags()
	referenceFlags(flags, &format)
	flags.StringVarP(&outputFormat, "output-format", "f", "tab", "Output format: tab, vcf")
	flags.StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func (a *app) runMatch(ctx context.Context, notices io.Writer, path, format string, writer recordWriter) error {
	res, err := a.join(ctx, path, format)
	if err != nil {
		return err
	}

	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range res.Matched {
		if err := writer.Write(r); err != nil {
			return fmt.Errorf("writing %s: %w", r.Key(), err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	if res.Empty() {
		fmt.Fprintln(notices, "No matching variants found.")
		return nil
	}
	fmt.Fprintf(notices, "%d matches found (%d of %d uploaded variants unmatched).\n",
		len(res.Matched), res.Unmatched, res.Total)
	return nil
}
