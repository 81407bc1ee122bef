package kanji

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"furiganalyrics/kana"
)

// Kanjidic2Kanji is the part of a kanjidic2 <character> element we read.
type Kanjidic2Kanji struct {
	Literal        string `xml:"literal"`
	ReadingMeaning struct {
		RMGroup []struct {
			Reading []struct {
				Value string `xml:",chardata"`
				Type  string `xml:"r_type,attr"`
			} `xml:"reading"`
		} `xml:"rmgroup"`
	} `xml:"reading_meaning"`
}

// Dict maps a single kanji to its on/kun readings in hiragana. A Dict is
// read-only after loading and safe for concurrent use.
type Dict struct {
	readings map[rune][]string
}

// Empty returns a Dict with no entries.
func Empty() *Dict {
	return &Dict{readings: map[rune][]string{}}
}

// Load opens path and reads it as kanjidic2 XML, or as a JSON object of
// {"漢": ["カン", ...]} when the file name ends in .json.
func Load(path string) (*Dict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kanji: open %q: %w", path, err)
	}
	defer f.Close()

	var d *Dict
	if strings.HasSuffix(path, ".json") {
		d, err = ReadJSON(f)
	} else {
		d, err = ReadKanjidic2(f)
	}
	if err != nil {
		return nil, fmt.Errorf("kanji: parse %q: %w", path, err)
	}
	log.Info("kanjidic loaded", "path", path, "kanji", d.Count())
	return d, nil
}

// ReadKanjidic2 streams <character> elements from r, skipping any wrapper.
func ReadKanjidic2(r io.Reader) (*Dict, error) {
	d := Empty()
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "character" {
			continue
		}
		var k Kanjidic2Kanji
		if err := dec.DecodeElement(&k, &se); err != nil {
			log.Warn("skipping undecodable kanjidic character", "err", err)
			continue
		}
		if utf8.RuneCountInString(k.Literal) != 1 {
			continue
		}
		var raw []string
		for _, group := range k.ReadingMeaning.RMGroup {
			for _, rd := range group.Reading {
				if rd.Type == "ja_on" || rd.Type == "ja_kun" {
					raw = append(raw, rd.Value)
				}
			}
		}
		lit, _ := utf8.DecodeRuneInString(k.Literal)
		d.add(lit, raw)
	}
	return d, nil
}

// ReadJSON reads the converted {"漢": ["カン", "かんじ"]} form.
func ReadJSON(r io.Reader) (*Dict, error) {
	var m map[string][]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	d := Empty()
	for k, v := range m {
		if utf8.RuneCountInString(k) != 1 {
			continue
		}
		lit, _ := utf8.DecodeRuneInString(k)
		d.add(lit, v)
	}
	return d, nil
}

func (d *Dict) add(lit rune, raw []string) {
	for _, kr := range raw {
		for _, v := range Variants(kr) {
			d.readings[lit] = appendUnique(d.readings[lit], v)
		}
	}
}

// Readings returns the hiragana readings known for r, or nil.
func (d *Dict) Readings(r rune) []string {
	if d == nil {
		return nil
	}
	return d.readings[r]
}

// ReadingsOf returns the readings of a single-kanji surface, or nil when the
// surface is not exactly one kanji.
func (d *Dict) ReadingsOf(surface string) []string {
	if utf8.RuneCountInString(surface) != 1 {
		return nil
	}
	r, _ := utf8.DecodeRuneInString(surface)
	if !kana.IsKanji(r) {
		return nil
	}
	return d.Readings(r)
}

// Count returns the number of kanji entries loaded.
func (d *Dict) Count() int {
	if d == nil {
		return 0
	}
	return len(d.readings)
}

// NormalizeReading turns a kanjidic reading such as "た.べる" or "-ぶ" into
// plain hiragana: the part before a '-' marker, without '.' and '・'.
func NormalizeReading(r string) string {
	if i := strings.IndexRune(r, '-'); i >= 0 {
		r = r[:i]
	}
	r = strings.NewReplacer(".", "", "・", "").Replace(r)
	return kana.ToHiragana(strings.TrimSpace(r))
}

// Variants returns the normalized forms of a kanjidic reading: the full
// reading and, for kun readings with an okurigana dot, the stem alone.
func Variants(kr string) []string {
	var out []string
	if full := NormalizeReading(kr); full != "" {
		out = append(out, full)
	}
	trimmed := strings.TrimPrefix(kr, "-")
	if idx := strings.IndexRune(trimmed, '.'); idx >= 0 {
		if stem := NormalizeReading(trimmed[:idx]); stem != "" {
			out = appendUnique(out, stem)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
