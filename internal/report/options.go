// Package report renders enriched variants as an HTML report and exports
// them as CSV or Parquet tables.
package report

import (
	"fmt"
	"strings"
	"time"
)

// NotSpecified fills patient fields left blank.
const NotSpecified = "Not specified"

// Report templates.
const (
	TemplateStandard = "Standard Report"
	TemplateSummary  = "Summary Report"
)

// StandardRowLimit is the number of rows a standard report includes.
const StandardRowLimit = 20

// PatientInfo identifies the subject of a report.
type PatientInfo struct {
	ID       string
	Name     string
	Age      int
	TestDate time.Time
}

// Patient is PatientInfo with defaults applied and values rendered.
type Patient struct {
	ID       string
	Name     string
	Age      string
	TestDate string
}

// Resolve applies defaults: a generated RPT_ ID, "Not specified" for name
// and non-positive age, and today for the test date.
func (p PatientInfo) Resolve(now time.Time) Patient {
	out := Patient{
		ID:   strings.TrimSpace(p.ID),
		Name: strings.TrimSpace(p.Name),
		Age:  NotSpecified,
	}
	if out.ID == "" {
		out.ID = "RPT_" + now.Format("20060102_150405")
	}
	if out.Name == "" {
		out.Name = NotSpecified
	}
	if p.Age > 0 {
		out.Age = fmt.Sprint(p.Age)
	}
	date := p.TestDate
	if date.IsZero() {
		date = now
	}
	out.TestDate = date.Format("02.01.2006")
	return out
}

// Options controls report content.
type Options struct {
	Template                string
	Language                string
	IncludeCharts           bool
	IncludeDetailedAnalysis bool
	// GeneratedAt stamps the report; zero means now.
	GeneratedAt time.Time
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Template:                TemplateSummary,
		Language:                "English",
		IncludeCharts:           true,
		IncludeDetailedAnalysis: true,
	}
}

func (o Options) generatedAt() time.Time {
	if o.GeneratedAt.IsZero() {
		return time.Now()
	}
	return o.GeneratedAt
}

// CSVFileName returns the default export file name for a run finished at t.
func CSVFileName(t time.Time) string {
	return fmt.Sprintf("genetic_analysis_%s.csv", t.Format("20060102_150405"))
}

// ReportFileName returns the default report file name for a patient.
func ReportFileName(p Patient) string {
	return fmt.Sprintf("genetic_report_%s.html", p.ID)
}
