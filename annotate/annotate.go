// Package annotate is the in-process annotation backend. It turns lyrics
// into lines of tokens carrying a hiragana reading and, for kanji words,
// the alternative readings a listener may pick from.
package annotate

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"furiganalyrics/kana"
	"furiganalyrics/lookup"
	"furiganalyrics/model"
	"furiganalyrics/observe"
	"furiganalyrics/tokenize"
)

// Tokenizer is the morphological analyser the Annotator runs on.
type Tokenizer interface {
	Tokenize(ctx context.Context, text string) ([]tokenize.Morpheme, error)
}

// Options tunes an Annotator. Zero values pick the defaults.
type Options struct {
	// MaxTextLength caps the lyrics length in characters. 0 disables it.
	MaxTextLength int
	// Workers bounds concurrently annotated lines. Default 4.
	Workers int
	// CacheSize is the number of annotated lines kept. 0 disables caching.
	CacheSize        int
	MergeAuxiliaries bool
	// Metrics defaults to observe.DefaultMetrics().
	Metrics *observe.Metrics
}

type cacheKey struct {
	line     string
	katakana bool
}

// Annotator is safe for concurrent use.
type Annotator struct {
	tk      Tokenizer
	lookup  *lookup.Service
	cache   *lru.Cache[cacheKey, model.Line]
	opts    Options
	metrics *observe.Metrics
	log     *log.Logger
}

// New builds an Annotator. svc may be nil, in which case no alternatives
// are offered.
func New(tk Tokenizer, svc *lookup.Service, opts Options) (*Annotator, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	a := &Annotator{
		tk:      tk,
		lookup:  svc,
		opts:    opts,
		metrics: opts.Metrics,
		log:     log.WithPrefix("annotate"),
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	if opts.CacheSize > 0 {
		c, err := lru.New[cacheKey, model.Line](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		a.cache = c
	}
	return a, nil
}

// Fetch annotates req. It lets an Annotator stand in for a remote backend.
func (a *Annotator) Fetch(ctx context.Context, req model.Request) ([]model.Line, error) {
	return a.Annotate(ctx, req)
}

// Annotate converts the lyrics line by line, preserving line order. A blank
// line yields an empty line.
func (a *Annotator) Annotate(ctx context.Context, req model.Request) ([]model.Line, error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "annotate", trace.WithAttributes(
		attribute.Bool("katakana", req.Katakana),
	))
	defer span.End()

	job, err := Ingest(req, a.opts.MaxTextLength)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	l := observe.Logger(ctx, a.log).With("id", job.ID)
	l.Debug("request accepted", "lines", len(job.Lines))

	out := make([]model.Line, len(job.Lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, text := range job.Lines {
		g.Go(func() error {
			line, err := a.annotateLine(gctx, text, job.Katakana)
			if err != nil {
				return err
			}
			out[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		l.Warn("annotation failed", "err", err)
		return nil, err
	}

	tokens := 0
	for _, line := range out {
		tokens += len(line)
	}
	elapsed := time.Since(start)
	a.metrics.Lines.Add(ctx, int64(len(out)))
	a.metrics.Tokens.Add(ctx, int64(tokens))
	a.metrics.AnnotateDuration.Record(ctx, elapsed.Seconds())
	span.SetAttributes(attribute.Int("lines", len(out)), attribute.Int("tokens", tokens))
	l.Info("annotated", "lines", len(out), "tokens", tokens, "duration", elapsed)
	return out, nil
}

func (a *Annotator) annotateLine(ctx context.Context, text string, katakana bool) (model.Line, error) {
	if strings.TrimSpace(text) == "" {
		return model.Line{}, nil
	}
	key := cacheKey{line: text, katakana: katakana}
	if a.cache != nil {
		if line, ok := a.cache.Get(key); ok {
			a.metrics.RecordCacheLookup(ctx, true)
			return line, nil
		}
		a.metrics.RecordCacheLookup(ctx, false)
	}

	ms, err := a.tk.Tokenize(ctx, text)
	if err != nil {
		return nil, err
	}
	if a.opts.MergeAuxiliaries {
		ms = tokenize.MergeVerbAuxiliaries(ms)
	}
	line := make(model.Line, 0, len(ms))
	for idx := range ms {
		line = append(line, a.annotateToken(ctx, ms, idx, text, katakana))
	}
	if a.cache != nil {
		a.cache.Add(key, line)
	}
	return line, nil
}

func isSymbol(pos0 string) bool {
	return pos0 == "記号" || pos0 == "補助記号" || pos0 == "空白"
}

// skipAlternatives reports words that never get a reading menu: particles,
// auxiliaries, symbols and kana-only words.
func skipAlternatives(pos0, surface string) bool {
	switch pos0 {
	case "助詞", "助動詞":
		return true
	}
	return isSymbol(pos0) || kana.IsHiraganaText(surface)
}

func (a *Annotator) annotateToken(ctx context.Context, ms []tokenize.Morpheme, idx int, text string, katakana bool) model.Token {
	m := ms[idx]
	tok := model.Token{Surface: m.Surface, Alternatives: []string{}}

	switch {
	case strings.TrimSpace(m.Surface) == "" || isSymbol(m.POS0()):
		tok.Reading = m.Surface
	case kana.IsAllKatakana(m.Surface) && len([]rune(m.Surface)) > 1:
		if katakana {
			tok.Reading = kana.ToHiragana(m.Surface)
		}
	case m.Reading != "" && m.Reading != model.NoReading:
		tok.Reading = kana.ToHiragana(m.Reading)
		if kana.IsLatinWord(m.Surface) {
			tok.Reading = ""
		}
		if a.lookup != nil && !skipAlternatives(m.POS0(), m.Surface) && kana.ContainsKanji(m.Surface) {
			reading, alts := a.lookup.Alternatives(ctx, lookup.Context{
				Line:    ms,
				Index:   idx,
				Text:    text,
				Primary: tok.Reading,
			})
			tok.Reading = reading
			tok.Alternatives = alts
		}
	}
	tok.HasAlternatives = len(tok.Alternatives) > 1
	return tok
}
