package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
)

// Download sources.
var (
	clinvarBaseURL = "https://ftp.ncbi.nlm.nih.gov/pub/clinvar"
	clingenURL     = "https://search.clinicalgenome.org/kb/gene-validity/download"
)

// clinvarURL returns the ClinVar VCF URL for the given assembly.
func clinvarURL(assembly string) string {
	if strings.EqualFold(assembly, gnomad.GRCh37) {
		return clinvarBaseURL + "/vcf_GRCh37/clinvar.vcf.gz"
	}
	return clinvarBaseURL + "/vcf_GRCh38/clinvar.vcf.gz"
}

// clingenFileName names a ClinGen summary downloaded on day t.
func clingenFileName(t time.Time) string {
	return fmt.Sprintf("Clingen-Gene-Disease-Summary-%s.csv", t.Format("2006-01-02"))
}

func newDownloadCmd(a *app) *cobra.Command {
	var (
		assembly    string
		outputDir   string
		clingenOnly bool
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download ClinVar and ClinGen reference files",
		Long: `Download the ClinVar VCF and the ClinGen gene-disease validity summary.

Files downloaded:
  - clinvar.vcf.gz (~150MB for GRCh38)
  - Clingen-Gene-Disease-Summary-<date>.csv (~1MB)

Convert the VCF with 'genetic-app convert' for faster loading, then point
reference.clinvar and reference.clingen at the files.`,
		Example: `  genetic-app download
  genetic-app download --assembly GRCh37
  genetic-app download --output /data/references --clingen-only`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDownload(cmd.OutOrStdout(), assembly, outputDir, clingenOnly)
		},
	}

	cmd.Flags().StringVar(&assembly, "assembly", gnomad.GRCh38, "Genome assembly: GRCh37 or GRCh38")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.genetic-app/)")
	cmd.Flags().BoolVar(&clingenOnly, "clingen-only", false, "Only download the ClinGen summary")

	return cmd
}

func (a *app) runDownload(w io.Writer, assembly, outputDir string, clingenOnly bool) error {
	if outputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		outputDir = filepath.Join(home, configName)
	}

	destDir := filepath.Join(outputDir, strings.ToLower(assembly))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	fmt.Fprintf(w, "Downloading reference files for %s...\n", assembly)
	fmt.Fprintf(w, "Destination: %s\n\n", destDir)

	clingenFile := filepath.Join(destDir, clingenFileName(a.now()))
	if err := downloadFile(w, clingenURL, clingenFile); err != nil {
		return fmt.Errorf("downloading ClinGen summary: %w", err)
	}

	clinvarFile := filepath.Join(destDir, "clinvar.vcf.gz")
	if !clingenOnly {
		if err := downloadFile(w, clinvarURL(assembly), clinvarFile); err != nil {
			return fmt.Errorf("downloading ClinVar VCF: %w", err)
		}
	}

	fmt.Fprintf(w, "\nDownload complete!\n")
	fmt.Fprintf(w, "To use these files, run:\n")
	fmt.Fprintf(w, "  genetic-app config set reference.clingen %s\n", clingenFile)
	if !clingenOnly {
		fmt.Fprintf(w, "  genetic-app config set reference.clinvar %s\n", clinvarFile)
	}
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(w io.Writer, url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(w, "  Downloading %s...\n", filepath.Base(destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		out:        w,
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(w, "    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
