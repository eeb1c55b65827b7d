package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/enesozyaramiss/Genetic-app-en/internal/clingen"
	"github.com/enesozyaramiss/Genetic-app-en/internal/clinvar"
	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
	"github.com/enesozyaramiss/Genetic-app-en/internal/upload"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

// referenceFlags registers the flags shared by commands that join uploads
// against the reference tables.
func referenceFlags(flags *pflag.FlagSet, format *string) {
	flags.StringVar(format, "format", "", "Upload format: vcf.gz, vcf, csv (detected from the file name if not specified)")
	flags.String("clinvar", "", "ClinVar reference table (.parquet, .vcf or .vcf.gz)")
	flags.String("clingen", "", "ClinGen gene-disease summary CSV")
	flags.String("genome-build", "", "Genome build for gnomAD links and lookups: GRCh37 or GRCh38")
}

var referenceKeys = map[string]string{
	"clinvar":      "reference.clinvar",
	"clingen":      "reference.clingen",
	"genome-build": "reference.genome_build",
}

// references are the tables loaded once per run.
type references struct {
	clinvar  *clinvar.Table
	validity *clingen.Table
}

func (a *app) loadReferences(ctx context.Context) (*references, error) {
	path := a.v.GetString("reference.clinvar")
	ref, err := clinvar.Load(ctx, path, clinvar.LoadOptions{
		GenomeBuild: a.v.GetString("reference.genome_build"),
		Logger:      a.logger,
	})
	if err != nil {
		ce := &cliError{msg: fmt.Sprintf("Error loading reference table: %v", err), err: err}
		if errors.Is(err, os.ErrNotExist) {
			ce.hint = "Set reference.clinvar with 'genetic-app config set' or pass --clinvar"
		}
		return nil, ce
	}
	return &references{clinvar: ref, validity: a.validityTable()}, nil
}

// readUpload normalizes the uploaded file. Schema and parse problems are
// reported as upload errors.
func (a *app) readUpload(path, format string) ([]*vcf.Variant, error) {
	var f upload.Format
	if format != "" {
		var err error
		if f, err = upload.ParseFormat(format); err != nil {
			return nil, &cliError{msg: fmt.Sprintf("Upload error: %v", err), err: err}
		}
	}

	variants, err := upload.ReadFile(path, f)
	if err != nil {
		var se *vcf.SchemaError
		if errors.As(err, &se) {
			return nil, &cliError{
				msg: fmt.Sprintf("Upload error: required columns missing (%s)", strings.Join(se.Missing, ", ")),
				err: err,
			}
		}
		return nil, &cliError{msg: fmt.Sprintf("Upload error: %v", err), err: err}
	}
	return variants, nil
}

// join reads the upload and matches it against the references.
func (a *app) join(ctx context.Context, path, format string) (match.Result, error) {
	refs, err := a.loadReferences(ctx)
	if err != nil {
		return match.Result{}, err
	}

	variants, err := a.readUpload(path, format)
	if err != nil {
		return match.Result{}, err
	}

	res := match.Match(variants, refs.clinvar, refs.validity)
	a.logger.Info("matched upload",
		zap.String("upload", path),
		zap.Int("total", res.Total),
		zap.Int("matched", len(res.Matched)),
		zap.Int("unmatched", res.Unmatched))
	return res, nil
}
