package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
)

const na = "N/A"

// PromptInput is the data shown to the model for one variant.
type PromptInput struct {
	Chrom     string
	Pos       int64
	Ref       string
	Alt       string
	Gene      string
	ClinSig   string
	Disease   string
	Validity  string
	PubMedIDs []string
	Frequency *gnomad.Stats
}

// BuildPrompt renders the clinical interpretation prompt. Missing values are
// shown as N/A.
func BuildPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString("You are a clinical geneticist. Based on the following variant and annotation data, ")
	b.WriteString("provide a professional clinical interpretation.\n\n")

	b.WriteString("Variant:\n")
	fmt.Fprintf(&b, "- Chr: %s, Pos: %d, %s>%s\n\n", in.Chrom, in.Pos, in.Ref, in.Alt)

	b.WriteString("ClinVar:\n")
	fmt.Fprintf(&b, "- Gene: %s, Sig: %s, Dis: %s\n\n", orNA(in.Gene), orNA(in.ClinSig), orNA(in.Disease))

	fmt.Fprintf(&b, "ClinGen Validity: %s\n\n", orNA(in.Validity))

	pubmed := "None"
	if len(in.PubMedIDs) > 0 {
		pubmed = strings.Join(in.PubMedIDs, ", ")
	}
	fmt.Fprintf(&b, "PubMed: %s\n\n", pubmed)

	ac, an, af, pop := na, na, na, na
	if s := in.Frequency; s != nil {
		if s.AlleleCount != nil {
			ac = strconv.FormatInt(*s.AlleleCount, 10)
		}
		if s.AlleleNumber != nil {
			an = strconv.FormatInt(*s.AlleleNumber, 10)
		}
		if s.PopmaxAF != nil {
			af = strconv.FormatFloat(*s.PopmaxAF, 'g', -1, 64)
		}
		pop = orNA(s.PopmaxPopulation)
	}
	b.WriteString("gnomAD:\n")
	fmt.Fprintf(&b, "- Exome AC/AN: %s/%s\n", ac, an)
	fmt.Fprintf(&b, "- PopMax AF: %s (Pop: %s)\n\n", af, pop)

	b.WriteString("Answer:\n")
	b.WriteString("1. Likely pathogenicity?\n")
	b.WriteString("2. Known disease?\n")
	b.WriteString("3. Clinical relevance?\n")
	b.WriteString("4. Plain-language summary (at most 5 sentences).\n")

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}
