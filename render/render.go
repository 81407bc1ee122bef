// Package render keeps the presentation state of converted lyrics: the
// ruby segmentation of every word, the reading currently shown over it and
// the user's selections and edits. A Document is not safe for concurrent use.
package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"furiganalyrics/kana"
	"furiganalyrics/model"
	"furiganalyrics/ruby"
)

var (
	ErrOutOfRange    = errors.New("word out of range")
	ErrNotSelectable = errors.New("word has no reading choices")
	ErrNotOffered    = errors.New("reading is not one of the choices")
	ErrEditDisabled  = errors.New("reading edits are disabled")
)

// Word is one rendered token. Token and the BaseMain/Suffix split are fixed
// when the word is created; the displayed ruby text and the current reading
// change with selections and edits.
type Word struct {
	Token   model.Token
	Seg     ruby.Result
	rt      string
	current string
}

func newWord(tok model.Token) *Word {
	reading := tok.SafeReading()
	seg := ruby.Segment(tok.Surface, reading)
	return &Word{Token: tok, Seg: seg, rt: seg.RT, current: reading}
}

// RT returns the ruby text shown over BaseMain, "" when none is shown.
func (w *Word) RT() string { return w.rt }

// Current returns the word's current reading.
func (w *Word) Current() string { return w.current }

// Surface returns BaseMain+Suffix.
func (w *Word) Surface() string { return w.Seg.Surface() }

// Multi reports whether the backend offered alternatives for the word.
func (w *Word) Multi() bool { return w.Token.HasAlternatives }

// Choices runs the word's alternatives through the normaliser against its
// full surface and current reading.
func (w *Word) Choices() ruby.Choices {
	return ruby.NormalizeAlternatives(w.Surface(), w.Token.Alternatives, w.current)
}

type line struct {
	key   string
	words []*Word
}

func lineKey(l model.Line) string {
	var b strings.Builder
	for _, t := range l {
		b.WriteString(t.Surface)
	}
	return strings.TrimSpace(b.String())
}

// Options holds the presentation settings.
type Options struct {
	// LongPressEdit enables free-form reading edits.
	LongPressEdit bool
}

// Document is the rendered lyrics of one session.
type Document struct {
	opts  Options
	lines []line
}

// New returns an empty Document.
func New(opts Options) *Document {
	return &Document{opts: opts}
}

// SetLongPressEdit toggles free-form reading edits.
func (d *Document) SetLongPressEdit(on bool) {
	d.opts.LongPressEdit = on
}

// Replace installs a new conversion result. A non-blank line whose text
// equals a line already shown keeps that line's words, so selections and
// edits survive a re-conversion; the line at the same index is preferred.
// It returns the number of lines reused.
func (d *Document) Replace(lines []model.Line) int {
	used := make([]bool, len(d.lines))
	match := func(i int, key string) int {
		if i < len(d.lines) && !used[i] && d.lines[i].key == key {
			return i
		}
		for j, old := range d.lines {
			if !used[j] && old.key == key {
				return j
			}
		}
		return -1
	}

	next := make([]line, len(lines))
	reused := 0
	for i, l := range lines {
		key := lineKey(l)
		next[i].key = key
		if key == "" {
			continue
		}
		if j := match(i, key); j >= 0 {
			used[j] = true
			next[i].words = d.lines[j].words
			reused++
			continue
		}
		words := make([]*Word, len(l))
		for k, tok := range l {
			words[k] = newWord(tok)
		}
		next[i].words = words
	}
	d.lines = next
	return reused
}

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns the words of line i.
func (d *Document) Line(i int) []*Word {
	if i < 0 || i >= len(d.lines) {
		return nil
	}
	return d.lines[i].words
}

// Word returns word idx of line i.
func (d *Document) Word(i, idx int) (*Word, error) {
	words := d.Line(i)
	if idx < 0 || idx >= len(words) {
		return nil, fmt.Errorf("%w: line %d word %d", ErrOutOfRange, i, idx)
	}
	return words[idx], nil
}

// Choices returns the normalised readings offered for a word.
func (d *Document) Choices(i, idx int) (ruby.Choices, error) {
	w, err := d.Word(i, idx)
	if err != nil {
		return ruby.Choices{}, err
	}
	return w.Choices(), nil
}

// Select shows option, which must be one of the word's Choices.
func (d *Document) Select(i, idx int, option string) error {
	w, err := d.Word(i, idx)
	if err != nil {
		return err
	}
	c := w.Choices()
	if !w.Multi() || !c.Selectable() {
		return fmt.Errorf("%w: %s", ErrNotSelectable, w.Surface())
	}
	if !c.Contains(option) {
		return fmt.Errorf("%w: %q for %s", ErrNotOffered, option, w.Surface())
	}
	w.rt = option
	w.current = option
	return nil
}

// Edit replaces the shown reading with free text. Blank text and text equal
// to the shown reading leave the word untouched; changed reports whether
// the word changed.
func (d *Document) Edit(i, idx int, text string) (changed bool, err error) {
	if !d.opts.LongPressEdit {
		return false, ErrEditDisabled
	}
	w, err := d.Word(i, idx)
	if err != nil {
		return false, err
	}
	text = strings.TrimSpace(text)
	if text == "" || text == w.rt {
		return false, nil
	}
	w.rt = text
	w.current = text
	return true, nil
}

// SetKatakana shows the hiragana reading over every katakana word longer
// than one character, or hides it.
func (d *Document) SetKatakana(show bool) {
	for _, l := range d.lines {
		for _, w := range l.words {
			base := w.Seg.BaseMain
			if !kana.IsKatakana(base) || utf8.RuneCountInString(base) <= 1 {
				continue
			}
			if show {
				w.rt = kana.ToHiragana(base)
			} else {
				w.rt = ""
			}
		}
	}
}

// Text renders the document in bracket form, one line per line:
// [食|た]べる.
func (d *Document) Text() string {
	var b strings.Builder
	for i, l := range d.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, w := range l.words {
			if w.rt != "" {
				b.WriteString("[" + w.Seg.BaseMain + "|" + w.rt + "]")
			} else {
				b.WriteString(w.Seg.BaseMain)
			}
			b.WriteString(w.Seg.Suffix)
		}
	}
	return b.String()
}
