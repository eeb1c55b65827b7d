package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
	"github.com/enesozyaramiss/Genetic-app-en/internal/vcf"
)

func TestBeginComplete(t *testing.T) {
	s := NewStore()

	_, ok := s.Current()
	assert.False(t, ok)

	run := s.Begin("sample.vcf")
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, uint64(1), run.Version)
	assert.False(t, run.Completed())

	recs := []*match.Record{{Variant: &vcf.Variant{Chrom: "1", Pos: 1, Ref: "A", Alt: "T"}}}
	require.NoError(t, s.Complete(run.ID, match.Result{Matched: recs, Unmatched: 2, Total: 3}, recs))

	cur, ok := s.Current()
	require.True(t, ok)
	assert.True(t, cur.Completed())
	assert.Equal(t, 3, cur.Total)
	assert.Equal(t, 2, cur.Unmatched)
	assert.Len(t, cur.Records, 1)
	assert.Equal(t, "sample.vcf", cur.Upload)
}

func TestBegin_DiscardsPrevious(t *testing.T) {
	s := NewStore()

	first := s.Begin("a.vcf")
	recs := []*match.Record{{}}
	require.NoError(t, s.Complete(first.ID, match.Result{Total: 1}, recs))

	second := s.Begin("b.csv")
	assert.Equal(t, uint64(2), second.Version)
	assert.NotEqual(t, first.ID, second.ID)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, cur.ID)
	assert.Empty(t, cur.Records, "no merge with previous run")
	assert.False(t, cur.Completed())
}

func TestComplete_Stale(t *testing.T) {
	s := NewStore()

	first := s.Begin("a.vcf")
	s.Begin("b.vcf")

	err := s.Complete(first.ID, match.Result{}, nil)
	assert.True(t, errors.Is(err, ErrStale))

	s.Reset()
	_, ok := s.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Complete(first.ID, match.Result{}, nil), ErrStale)
}
