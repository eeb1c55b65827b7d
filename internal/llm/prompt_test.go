package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
)

func TestBuildPrompt(t *testing.T) {
	ac, an, af := int64(12), int64(251000), 0.00021
	p := BuildPrompt(PromptInput{
		Chrom: "17", Pos: 43045705, Ref: "G", Alt: "A",
		Gene: "BRCA1", ClinSig: "Pathogenic", Disease: "Breast cancer",
		Validity:  "Definitive",
		PubMedIDs: []string{"20301425", "10923033"},
		Frequency: &gnomad.Stats{AlleleCount: &ac, AlleleNumber: &an, PopmaxAF: &af, PopmaxPopulation: "nfe"},
	})

	assert.Contains(t, p, "You are a clinical geneticist.")
	assert.Contains(t, p, "- Chr: 17, Pos: 43045705, G>A")
	assert.Contains(t, p, "- Gene: BRCA1, Sig: Pathogenic, Dis: Breast cancer")
	assert.Contains(t, p, "ClinGen Validity: Definitive")
	assert.Contains(t, p, "PubMed: 20301425, 10923033")
	assert.Contains(t, p, "- Exome AC/AN: 12/251000")
	assert.Contains(t, p, "- PopMax AF: 0.00021 (Pop: nfe)")
	assert.Contains(t, p, "4. Plain-language summary")
}

func TestBuildPrompt_MissingValues(t *testing.T) {
	p := BuildPrompt(PromptInput{Chrom: "1", Pos: 14370, Ref: "G", Alt: "A"})

	assert.Contains(t, p, "- Gene: N/A, Sig: N/A, Dis: N/A")
	assert.Contains(t, p, "ClinGen Validity: N/A")
	assert.Contains(t, p, "PubMed: None")
	assert.Contains(t, p, "- Exome AC/AN: N/A/N/A")
	assert.Contains(t, p, "- PopMax AF: N/A (Pop: N/A)")
}

func TestBuildPrompt_PartialStats(t *testing.T) {
	ac := int64(3)
	p := BuildPrompt(PromptInput{Chrom: "1", Pos: 1, Ref: "A", Alt: "T", Frequency: &gnomad.Stats{AlleleCount: &ac}})
	assert.Contains(t, p, "- Exome AC/AN: 3/N/A")
}
