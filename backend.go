package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/charmbracelet/log"

	"furiganalyrics/annotate"
	"furiganalyrics/config"
	"furiganalyrics/dictionary"
	"furiganalyrics/kanji"
	"furiganalyrics/lookup"
	"furiganalyrics/observe"
	"furiganalyrics/tokenize"
)

// loadKanji reads the kanjidic file, falling back to an empty dictionary
// when none is configured or the file is missing.
func loadKanji(path string) (*kanji.Dict, error) {
	if path == "" {
		return kanji.Empty(), nil
	}
	d, err := kanji.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("kanjidic not found, continuing without it", "path", path)
		return kanji.Empty(), nil
	}
	return d, err
}

// newAnnotator wires the in-process backend from cfg.
func newAnnotator(cfg *config.Config, metrics *observe.Metrics) (*annotate.Annotator, *tokenize.Tokenizer, error) {
	tk, err := tokenize.New(cfg.Tokenizer.Dict)
	if err != nil {
		return nil, nil, err
	}
	dict, err := dictionary.Load(dictionary.Paths{
		JMdict:    cfg.Dictionaries.JMdict,
		Overrides: cfg.Dictionaries.Overrides,
	})
	if err != nil {
		return nil, nil, err
	}
	kj, err := loadKanji(cfg.Dictionaries.Kanjidic2)
	if err != nil {
		return nil, nil, err
	}
	a, err := annotate.New(tk, lookup.New(dict, kj, tk), annotate.Options{
		MaxTextLength:    cfg.Server.MaxTextLength,
		Workers:          cfg.Tokenizer.Workers,
		CacheSize:        cfg.Cache.Size,
		MergeAuxiliaries: cfg.Tokenizer.MergeAuxiliaries,
		Metrics:          metrics,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info("backend ready", "dict", tk.Dict(), "kanji", kj.Count())
	return a, tk, nil
}

// tokenizerCheck reports the tokenizer ready once it analyses a probe word.
func tokenizerCheck(tk *tokenize.Tokenizer) func(context.Context) error {
	return func(ctx context.Context) error {
		ms, err := tk.Tokenize(ctx, "日本")
		if err != nil {
			return err
		}
		if len(ms) == 0 {
			return errors.New("tokenizer returned no morphemes")
		}
		return nil
	}
}
