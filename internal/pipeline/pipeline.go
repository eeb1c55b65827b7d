// Package pipeline augments matched variants with population frequency,
// literature citations and a generated clinical interpretation.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/enesozyaramiss/Genetic-app-en/internal/gnomad"
	"github.com/enesozyaramiss/Genetic-app-en/internal/llm"
	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
	"github.com/enesozyaramiss/Genetic-app-en/internal/pubmed"
)

// DefaultRateInterval is the minimum spacing between interpretation calls.
const DefaultRateInterval = 300 * time.Millisecond

// Config configures an Augmenter.
type Config struct {
	// Workers is the number of rows augmented concurrently. Zero means one.
	Workers int
	// RateInterval spaces interpretation calls. Zero uses DefaultRateInterval;
	// a negative value disables limiting.
	RateInterval time.Duration
	// Credential is passed to the interpreter with every call.
	Credential string
	// Progress, if set, is called in row order after each row completes.
	Progress func(done, total int, rec *match.Record)
}

// Augmenter runs the per-row enrichment over a matched result set.
type Augmenter struct {
	freq    gnomad.Source
	cites   pubmed.Source
	interp  llm.Interpreter
	limiter *rate.Limiter
	cfg     Config
	logger  *zap.Logger
}

// New creates an Augmenter.
func New(freq gnomad.Source, cites pubmed.Source, interp llm.Interpreter, cfg Config) *Augmenter {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RateInterval == 0 {
		cfg.RateInterval = DefaultRateInterval
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), 1)
	}

	return &Augmenter{
		freq:    freq,
		cites:   cites,
		interp:  interp,
		limiter: limiter,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for per-row failures.
func (a *Augmenter) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Run augments rows and returns augmented copies in input order. Per-row
// lookup and interpretation failures are recorded on the row; only
// cancellation fails the run, in which case no rows are returned.
func (a *Augmenter) Run(ctx context.Context, rows []*match.Record) ([]*match.Record, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	items := make(chan WorkItem)
	g.Go(func() error {
		defer close(items)
		for i, r := range rows {
			select {
			case items <- WorkItem{Seq: i, Record: r}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	results := a.parallelAugment(ctx, items, a.cfg.Workers)

	out := make([]*match.Record, 0, len(rows))
	g.Go(func() error {
		return OrderedCollect(results, func(r WorkResult) error {
			if r.Err != nil {
				cancel()
				return r.Err
			}
			out = append(out, r.Record)
			if a.cfg.Progress != nil {
				a.cfg.Progress(len(out), len(rows), r.Record)
			}
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// augment enriches a copy of rec. The returned error is non-nil only when
// ctx is done.
func (a *Augmenter) augment(ctx context.Context, rec *match.Record) (*match.Record, error) {
	out := *rec
	fields := []zap.Field{zap.String("variant", rec.Key().String())}

	out.Citations = []string{}
	if rec.Reference != nil && rec.Reference.ID != "" {
		res := a.cites.CitationIDs(ctx, rec.Reference.ID)
		if res.Failed() {
			a.logger.Warn("citation lookup failed", append(fields, zap.String("error", res.Error))...)
		} else {
			out.Citations = res.IDs
		}
	}
	out.CitationLinks = pubmed.Links(out.Citations)

	out.Frequency = a.freq.Lookup(ctx, rec.Key())
	var stats *gnomad.Stats
	if out.Frequency.Failed() {
		a.logger.Warn("frequency lookup failed", append(fields, zap.String("error", out.Frequency.Error))...)
	} else {
		stats = out.Frequency.Stats
	}

	ann := rec.Annotation()
	prompt := llm.BuildPrompt(llm.PromptInput{
		Chrom:     rec.Variant.Chrom,
		Pos:       rec.Variant.Pos,
		Ref:       rec.Variant.Ref,
		Alt:       rec.Variant.Alt,
		Gene:      ann.Gene,
		ClinSig:   ann.ClinSig,
		Disease:   ann.Disease,
		Validity:  rec.Validity,
		PubMedIDs: out.Citations,
		Frequency: stats,
	})

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	text, err := a.interp.Interpret(ctx, prompt, a.cfg.Credential)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		a.logger.Warn("interpretation failed", append(fields, zap.Error(err))...)
		text = "Error: " + err.Error()
	}
	out.Interpretation = text

	return &out, nil
}
