// Package lookup builds the alternative readings offered for a kanji-bearing
// word. Candidates come from the tokenizer's segmentation modes, the word
// dictionaries and kanjidic, and are then trimmed using the surrounding line.
package lookup

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"furiganalyrics/dictionary"
	"furiganalyrics/kana"
	"furiganalyrics/kanji"
	"furiganalyrics/model"
	"furiganalyrics/tokenize"
)

// ModeTokenizer analyses a word in every segmentation mode.
type ModeTokenizer interface {
	TokenizeModes(ctx context.Context, text string) (map[string][]tokenize.Morpheme, error)
}

// Context locates a word inside its analysed line.
type Context struct {
	Line  []tokenize.Morpheme
	Index int
	// Text is the raw line the morphemes came from.
	Text string
	// Primary is the tokenizer's reading of the word in hiragana.
	Primary string
}

func (c Context) surface() string {
	return c.Line[c.Index].Surface
}

func (c Context) next(n int) (tokenize.Morpheme, bool) {
	i := c.Index + n
	if i < 0 || i >= len(c.Line) {
		return tokenize.Morpheme{}, false
	}
	return c.Line[i], true
}

// Service is safe for concurrent use.
type Service struct {
	dict  *dictionary.Dictionary
	kanji *kanji.Dict
	modes ModeTokenizer
	log   *log.Logger
}

// New returns a Service. kj may be nil when no kanjidic is loaded.
func New(d *dictionary.Dictionary, kj *kanji.Dict, modes ModeTokenizer) *Service {
	if d == nil {
		d = dictionary.New()
	}
	return &Service{
		dict:  d,
		kanji: kj,
		modes: modes,
		log:   log.WithPrefix("lookup"),
	}
}

// Alternatives returns the reading to show for the word at c.Index and the
// candidate readings to offer, best first. The reading differs from
// c.Primary only where the line context settles it (明, 何, 如何).
func (s *Service) Alternatives(ctx context.Context, c Context) (string, []string) {
	surface := c.surface()
	reading := c.Primary
	if surface == "如何" {
		reading = resolveIkaga(c.Text, reading)
	}

	alts := s.withPrimary(ctx, surface, reading)
	alts = s.addDictionaryCandidates(surface, alts)
	if white := s.dict.Whitelist(surface); len(white) > 0 {
		alts = mergeWithWhitelist(reading, white, alts)
	}
	if surface == "僕" {
		alts = restrictTo(alts, s.dict.Whitelist(surface), reading)
	}
	alts = s.restrictToKanjidic(surface, alts, reading)
	alts, reading = handleSpecialWords(c, reading, alts)
	alts = filterWithContext(c, reading, alts)

	s.log.Debug("alternatives", "surface", surface, "reading", reading, "candidates", alts)
	if alts == nil {
		alts = []string{}
	}
	return reading, alts
}

// withPrimary gathers phrase overrides, common multi-readings and the
// readings of every segmentation mode, ordered best first and then by length.
func (s *Service) withPrimary(ctx context.Context, surface, best string) []string {
	var readings []string
	if best != "" {
		readings = append(readings, best)
	}
	if phrase := s.dict.Override(surface); len(phrase) > 0 {
		for _, r := range phrase {
			readings = appendUnique(readings, r)
		}
		readings = moveToFront(readings, phrase[0])
	}
	for _, r := range s.dict.MultiReadings(surface) {
		readings = appendUnique(readings, r)
	}

	set := make(map[string]struct{}, len(readings))
	for _, r := range readings {
		set[r] = struct{}{}
	}
	if s.modes != nil {
		byMode, err := s.modes.TokenizeModes(ctx, surface)
		if err != nil {
			s.log.Warn("collecting mode readings failed", "surface", surface, "err", err)
			return s.filter(surface, readings)
		}
		for _, ms := range byMode {
			for _, m := range ms {
				if m.Surface == surface && m.Reading != "" && m.Reading != model.NoReading {
					set[kana.ToHiragana(m.Reading)] = struct{}{}
				}
			}
		}
	}

	rest := make([]string, 0, len(set))
	for r := range set {
		if r != best {
			rest = append(rest, r)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(rest[i]), utf8.RuneCountInString(rest[j])
		if li != lj {
			return li < lj
		}
		return rest[i] < rest[j]
	})
	return s.filter(surface, append([]string{best}, rest...))
}

// filter drops empty and duplicate candidates, and single-hiragana
// candidates of kanji words unless they are a known multi-reading.
func (s *Service) filter(surface string, readings []string) []string {
	allowShort := s.dict.MultiReadings(surface)
	hasKanji := kana.ContainsKanji(surface)
	out := make([]string, 0, len(readings))
	for _, r := range readings {
		if r == "" {
			continue
		}
		if hasKanji && kana.IsHiraganaText(r) && utf8.RuneCountInString(r) <= 1 && !contains(allowShort, r) {
			continue
		}
		out = appendUnique(out, r)
	}
	return out
}

func isSingleKanji(surface string) bool {
	return utf8.RuneCountInString(surface) == 1 && kana.ContainsKanji(surface)
}

// addDictionaryCandidates appends JMdict readings and, for a single kanji,
// its kanjidic readings.
func (s *Service) addDictionaryCandidates(surface string, alts []string) []string {
	for _, r := range s.dict.JMdict(surface) {
		if r != "" {
			alts = appendUnique(alts, r)
		}
	}
	if isSingleKanji(surface) {
		for _, r := range s.kanji.ReadingsOf(surface) {
			alts = appendUnique(alts, r)
		}
	}
	return alts
}

// restrictToKanjidic keeps only the kanjidic or whitelisted readings of a
// single kanji, plus the preferred reading. Nothing is dropped when neither
// source knows the kanji or when no candidate would survive.
func (s *Service) restrictToKanjidic(surface string, alts []string, preferred string) []string {
	if len(alts) == 0 || !isSingleKanji(surface) {
		return alts
	}
	allow := make(map[string]struct{})
	for _, r := range s.kanji.ReadingsOf(surface) {
		allow[r] = struct{}{}
	}
	for _, r := range s.dict.Whitelist(surface) {
		allow[r] = struct{}{}
	}
	if len(allow) == 0 {
		return alts
	}
	if preferred != "" {
		allow[preferred] = struct{}{}
	}
	out := make([]string, 0, len(alts))
	for _, r := range alts {
		if _, ok := allow[r]; ok {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return alts
	}
	return out
}

// mergeWithWhitelist orders the reading in context first, then the
// whitelist, then the remaining candidates.
func mergeWithWhitelist(reading string, white, alts []string) []string {
	out := make([]string, 0, len(white)+len(alts)+1)
	if reading != "" {
		out = append(out, reading)
	}
	for _, list := range [][]string{white, alts} {
		for _, r := range list {
			if r != "" {
				out = appendUnique(out, r)
			}
		}
	}
	return out
}

func restrictTo(alts, allow []string, reading string) []string {
	if len(allow) == 0 {
		return alts
	}
	out := make([]string, 0, len(alts))
	for _, r := range alts {
		if r == reading || contains(allow, r) {
			out = append(out, r)
		}
	}
	return out
}

// resolveIkaga picks どう or いかが for 如何 from what follows it in the line.
func resolveIkaga(text, primary string) string {
	pos := strings.Index(text, "如何")
	if pos < 0 {
		return primary
	}
	after := []rune(text[pos+len("如何"):])
	if len(after) > 6 {
		after = after[:6]
	}
	tail := string(after)
	switch {
	case strings.HasPrefix(tail, "か"), strings.HasPrefix(tail, "し"), strings.HasPrefix(tail, "だ"),
		strings.HasPrefix(tail, "考え"), strings.HasPrefix(tail, "思"),
		strings.Contains(text, "思う"), strings.Contains(text, "考え"):
		return "どう"
	case strings.HasPrefix(tail, "です"):
		return "いかが"
	}
	return primary
}

var naniParticles = map[string]bool{
	"も": true, "か": true, "が": true, "を": true, "に": true, "へ": true, "と": true,
}

// handleSpecialWords applies word-specific rules: voicing errors inside the
// okurigana, the 明 family and 何.
func handleSpecialWords(c Context, reading string, alts []string) ([]string, string) {
	surface := c.surface()

	if tail := kana.TrailingHiragana(surface); tail != "" && reading != "" && strings.HasSuffix(reading, tail) {
		base := strings.TrimSuffix(reading, tail)
		tr := []rune(tail)
		bad := make(map[string]bool)
		for _, v := range kana.VoicingVariants(tr[0]) {
			if v == tr[0] {
				continue
			}
			bad[base+string(v)] = true
			bad[base+string(v)+string(tr[1:])] = true
		}
		alts = without(alts, func(r string) bool { return bad[r] })
	}

	switch surface {
	case "明", "明くる", "明る":
		n1, _ := c.next(1)
		if surface == "明くる" || (surface == "明る" && (n1.Surface == "日" || n1.Surface == "朝" || n1.Surface == "年")) {
			reading = "あくる"
		} else if surface == "明" && (n1.Surface == "る" || n1.Surface == "く" || n1.Surface == "くる") {
			reading = "あく"
		}
		var cand []string
		switch {
		case surface == "明" && reading == "あく":
			cand = []string{reading, "あか"}
		case reading == "あくる":
			cand = []string{reading, "あかる"}
		default:
			cand = []string{reading, "あか", "あかる"}
		}
		alts = alts[:0:0]
		for _, r := range cand {
			if r != "" {
				alts = appendUnique(alts, r)
			}
		}
	case "何":
		if n1, ok := c.next(1); ok && n1.POS0() == "助詞" && naniParticles[n1.Surface] {
			reading = "なに"
		}
		merged := []string{reading}
		for _, r := range append(append([]string{}, alts...), "なに", "なん") {
			merged = appendUnique(merged, r)
		}
		alts = merged
	}
	return alts, reading
}

// nextHiragana collects up to limit characters of hiragana from the words
// following the current one, stopping at particles, auxiliaries and symbols.
func nextHiragana(c Context, limit int) string {
	var b strings.Builder
	n := 0
	for j := c.Index + 1; j < len(c.Line) && n < limit; j++ {
		m := c.Line[j]
		switch m.POS0() {
		case "助詞", "助動詞", "補助記号", "記号":
			return b.String()
		}
		if !kana.IsHiraganaText(m.Surface) {
			break
		}
		b.WriteString(m.Surface)
		n += utf8.RuneCountInString(m.Surface)
	}
	return b.String()
}

// filterWithContext drops candidates that would swallow the hiragana that
// follows the word, including its voiced forms. 皆 always keeps みんな.
func filterWithContext(c Context, reading string, alts []string) []string {
	next := nextHiragana(c, 2)
	if next == "" {
		return alts
	}
	keep := map[string]bool{}
	if c.surface() == "皆" {
		keep["みんな"] = true
	}

	nr := []rune(next)
	variants := kana.VoicingVariants(nr[0])
	bad := map[string]bool{next: true, string(nr[0]): true}
	for _, v := range variants {
		bad[string(v)] = true
		if len(nr) > 1 {
			bad[string(v)+string(nr[1:])] = true
		}
	}
	alts = without(alts, func(r string) bool {
		if keep[r] {
			return false
		}
		for suf := range bad {
			if strings.HasSuffix(r, suf) {
				return true
			}
		}
		return false
	})
	if reading != "" {
		alts = without(alts, func(r string) bool {
			if keep[r] {
				return false
			}
			for _, v := range variants {
				if r == reading+string(v) {
					return true
				}
			}
			return false
		})
	}
	return alts
}

func without(list []string, drop func(string) bool) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		if !drop(r) {
			out = append(out, r)
		}
	}
	return out
}

func moveToFront(list []string, v string) []string {
	out := make([]string, 0, len(list))
	out = append(out, v)
	for _, r := range list {
		if r != v {
			out = append(out, r)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	if contains(list, v) {
		return list
	}
	return append(list, v)
}
