// Package ruby decides how a word's reading is attached as a ruby annotation.
//
// Segment strips the okurigana that surface and reading share so the ruby
// only covers the stem: 食べる read たべる renders as 食(た) followed by the
// plain kana べる. NormalizeAlternatives runs every competing reading of a
// word through Segment so alternatives are compared by what the user would
// actually see above the word.
package ruby

import "furiganalyrics/kana"

// Result is the outcome of segmenting one word. BaseMain+Suffix is always the
// full surface. RT is the ruby text placed over BaseMain; an empty RT means
// no annotation is shown.
type Result struct {
	BaseMain string `json:"base_main"`
	Suffix   string `json:"suffix"`
	RT       string `json:"rt,omitempty"`
}

// Annotated reports whether a ruby annotation should be shown.
func (r Result) Annotated() bool {
	return r.RT != ""
}

// Surface returns the full word text.
func (r Result) Surface() string {
	return r.BaseMain + r.Suffix
}

// Segment splits surface into an annotated stem and a trailing okurigana run
// shared with reading.
func Segment(surface, reading string) Result {
	if surface == reading || reading == "" {
		return Result{BaseMain: surface}
	}

	// katakana words are annotated whole
	if kana.IsKatakana(surface) {
		return Result{BaseMain: surface, RT: reading}
	}

	s := []rune(surface)
	r := []rune(reading)
	n := min(len(s), len(r))

	common := 0
	for i := 1; i <= n; i++ {
		sc, rc := s[len(s)-i], r[len(r)-i]
		if sc != rc || !kana.IsHiragana(sc) {
			break
		}
		common++
	}

	if common == 0 {
		return Result{BaseMain: surface, RT: reading}
	}

	surfaceBase := string(s[:len(s)-common])
	suffix := string(s[len(s)-common:])
	readingBase := string(r[:len(r)-common])

	if surfaceBase == "" || surfaceBase == readingBase {
		return Result{BaseMain: surface}
	}
	return Result{BaseMain: surfaceBase, Suffix: suffix, RT: readingBase}
}

// Normalize returns the text a reading would display over surface: the ruby
// text when Segment annotates, the raw reading otherwise.
func Normalize(surface, reading string) string {
	if res := Segment(surface, reading); res.Annotated() {
		return res.RT
	}
	return reading
}

// Choices is the de-duplicated set of readings offered for one word.
type Choices struct {
	Options []string `json:"options"`
	Current string   `json:"current"`
}

// Selectable reports whether there is a decision to present. With zero or
// one option the selection UI is suppressed.
func (c Choices) Selectable() bool {
	return len(c.Options) > 1
}

// IsCurrent reports whether option is the currently displayed reading.
func (c Choices) IsCurrent(option string) bool {
	return option != "" && option == c.Current
}

// Contains reports whether option is one of the offered readings.
func (c Choices) Contains(option string) bool {
	for _, o := range c.Options {
		if o == option {
			return true
		}
	}
	return false
}

// NormalizeAlternatives normalises candidates against fullSurface, keeping
// the first occurrence of each displayed value in input order. Candidates
// that normalise to the empty string are dropped.
func NormalizeAlternatives(fullSurface string, candidates []string, current string) Choices {
	out := Choices{Options: make([]string, 0, len(candidates))}
	if current != "" {
		out.Current = Normalize(fullSurface, current)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		norm := Normalize(fullSurface, c)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out.Options = append(out.Options, norm)
	}
	return out
}
