package tokenize

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome-dict/uni"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"furiganalyrics/model"
)

// Dictionary names accepted by New.
const (
	DictIPA = "ipa"
	DictUni = "uni"
)

// Segmentation modes reported by TokenizeModes.
const (
	ModeNormal   = "normal"
	ModeSearch   = "search"
	ModeExtended = "extended"
)

// Morpheme is one unit of analysed text.
type Morpheme struct {
	Surface  string
	BaseForm string
	// Reading is the dictionary's katakana reading, or model.NoReading.
	Reading string
	POS     []string
	Start   int
	End     int
}

// POS0 returns the top-level part of speech, or "".
func (m Morpheme) POS0() string {
	if len(m.POS) == 0 {
		return ""
	}
	return m.POS[0]
}

// POS1 returns the second part-of-speech level, or "".
func (m Morpheme) POS1() string {
	if len(m.POS) < 2 {
		return ""
	}
	return m.POS[1]
}

// Tokenizer wraps a kagome tokenizer. It is safe for concurrent use.
type Tokenizer struct {
	kg   *tokenizer.Tokenizer
	dict string
}

// New builds a Tokenizer on the named system dictionary with BOS/EOS omitted.
func New(dict string) (*Tokenizer, error) {
	var (
		kg  *tokenizer.Tokenizer
		err error
	)
	switch dict {
	case DictIPA, "":
		dict = DictIPA
		kg, err = tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	case DictUni:
		kg, err = tokenizer.New(uni.Dict(), tokenizer.OmitBosEos())
	default:
		return nil, fmt.Errorf("tokenize: unknown dictionary %q", dict)
	}
	if err != nil {
		return nil, fmt.Errorf("tokenize: build %s tokenizer: %w", dict, err)
	}
	return &Tokenizer{kg: kg, dict: dict}, nil
}

// Dict returns the name of the loaded dictionary.
func (t *Tokenizer) Dict() string { return t.dict }

func convertKagomeTokens(ktoks []tokenizer.Token) []Morpheme {
	out := make([]Morpheme, 0, len(ktoks))
	for _, kt := range ktoks {
		base, _ := kt.BaseForm()
		if base == "" || base == model.NoReading {
			base = kt.Surface
		}
		reading, ok := kt.Reading()
		if !ok || reading == "" {
			reading = model.NoReading
		}
		out = append(out, Morpheme{
			Surface:  kt.Surface,
			BaseForm: base,
			Reading:  reading,
			POS:      kt.POS(),
			Start:    kt.Start,
			End:      kt.End,
		})
	}
	return out
}

// Tokenize analyses text in normal mode.
func (t *Tokenizer) Tokenize(ctx context.Context, text string) ([]Morpheme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return convertKagomeTokens(t.kg.Tokenize(text)), nil
}

// TokenizeModes runs kagome.Analyze in Normal, Search and Extended modes and
// returns a map from mode name to the resulting morphemes.
func (t *Tokenizer) TokenizeModes(ctx context.Context, text string) (map[string][]Morpheme, error) {
	res := make(map[string][]Morpheme, 3)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if text == "" {
		return res, nil
	}
	res[ModeNormal] = convertKagomeTokens(t.kg.Analyze(text, tokenizer.Normal))
	res[ModeSearch] = convertKagomeTokens(t.kg.Analyze(text, tokenizer.Search))
	res[ModeExtended] = convertKagomeTokens(t.kg.Analyze(text, tokenizer.Extended))
	return res, nil
}

// isAuxiliary reports whether m continues a verb: an auxiliary verb or a
// dependent/suffix verb.
func isAuxiliary(m Morpheme) bool {
	switch m.POS0() {
	case "助動詞":
		return true
	case "動詞":
		return m.POS1() == "非自立" || m.POS1() == "接尾"
	}
	return false
}

// MergeVerbAuxiliaries scans morphemes and merges verb+auxiliary sequences
// into a single morpheme. The merged reading is NoReading when any part
// lacks one.
func MergeVerbAuxiliaries(ms []Morpheme) []Morpheme {
	out := make([]Morpheme, 0, len(ms))
	i := 0
	for i < len(ms) {
		m := ms[i]
		j := i + 1
		if m.POS0() == "動詞" {
			for j < len(ms) && isAuxiliary(ms[j]) {
				j++
			}
		}
		if j == i+1 {
			out = append(out, m)
			i++
			continue
		}
		var surface, reading strings.Builder
		known := true
		for _, part := range ms[i:j] {
			surface.WriteString(part.Surface)
			if part.Reading == model.NoReading {
				known = false
			}
			reading.WriteString(part.Reading)
		}
		merged := m
		merged.Surface = surface.String()
		merged.Reading = reading.String()
		if !known {
			merged.Reading = model.NoReading
		}
		merged.End = ms[j-1].End
		out = append(out, merged)
		i = j
	}
	return out
}
