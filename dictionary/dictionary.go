// Package dictionary holds the word-level reading sources used to build
// alternative readings: JMdict readings, phrase overrides and the built-in
// tables for common heteronyms.
package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"furiganalyrics/kana"
)

// Term is one entry of an override file.
type Term struct {
	Term string   `yaml:"term"`
	Yomi []string `yaml:"yomi"`
}

// overrideFile is the YAML layout of a phrase override file.
type overrideFile struct {
	Terms []Term `yaml:"terms"`
}

// Dictionary is read-only after construction and safe for concurrent use.
type Dictionary struct {
	jmdict    map[string][]string
	overrides map[string][]string
}

// Paths lists the optional dictionary files. Empty paths are skipped.
type Paths struct {
	JMdict    string
	Overrides string
}

// New returns a Dictionary with only the built-in tables.
func New() *Dictionary {
	d := &Dictionary{
		jmdict:    map[string][]string{},
		overrides: make(map[string][]string, len(builtinOverrides)),
	}
	for k, v := range builtinOverrides {
		d.overrides[k] = v
	}
	return d
}

// Load builds a Dictionary from the built-in tables plus the files in p.
// A missing file is logged and skipped; a malformed file is an error.
func Load(p Paths) (*Dictionary, error) {
	d := New()
	if p.JMdict != "" {
		if err := loadFile(p.JMdict, d.ReadJMdict); err != nil {
			return nil, err
		}
	}
	if p.Overrides != "" {
		if err := loadFile(p.Overrides, d.ReadOverrides); err != nil {
			return nil, err
		}
	}
	log.Info("dictionaries loaded", "jmdict", len(d.jmdict), "overrides", len(d.overrides))
	return d, nil
}

func loadFile(path string, read func(io.Reader) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("dictionary file not found, skipping", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("dictionary: open %q: %w", path, err)
	}
	defer f.Close()
	if err := read(f); err != nil {
		return fmt.Errorf("dictionary: parse %q: %w", path, err)
	}
	return nil
}

// ReadJMdict merges a JSON object {"surface": ["カタカナ", ...]} into the
// JMdict readings.
func (d *Dictionary) ReadJMdict(r io.Reader) error {
	var m map[string][]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return err
	}
	for k, v := range m {
		d.jmdict[k] = v
	}
	return nil
}

// ReadOverrides merges a YAML override file. File entries replace built-in
// ones for the same term.
func (d *Dictionary) ReadOverrides(r io.Reader) error {
	var f overrideFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	for i, t := range f.Terms {
		if t.Term == "" || len(t.Yomi) == 0 {
			return fmt.Errorf("terms[%d]: term and yomi are required", i)
		}
		d.overrides[t.Term] = t.Yomi
	}
	return nil
}

// JMdict returns the JMdict readings of surface converted to hiragana.
func (d *Dictionary) JMdict(surface string) []string {
	raw := d.jmdict[surface]
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, kana.ToHiragana(r))
	}
	return out
}

// Override returns the phrase-level preferred readings of surface, the
// first being preferred, or nil.
func (d *Dictionary) Override(surface string) []string {
	return d.overrides[surface]
}

// MultiReadings returns the known readings of a common heteronym kanji.
func (d *Dictionary) MultiReadings(surface string) []string {
	return multiReadings[surface]
}

// Whitelist returns the valid readings of a high-frequency kanji in
// priority order.
func (d *Dictionary) Whitelist(surface string) []string {
	return whitelist[surface]
}

var builtinOverrides = map[string][]string{
	"薄暮":  {"はくぼ", "うすぐれ"},
	"今日":  {"きょう", "こんにち"},
	"昨日":  {"きのう", "さくじつ"},
	"明日":  {"あした", "みょうにち"},
	"明後日": {"あさって", "みょうごにち"},
}

var multiReadings = map[string][]string{
	"生": {"せい", "なま", "き", "う"},
	"上": {"うえ", "じょう", "あ", "のぼ"},
	"下": {"した", "げ", "か", "お", "さ", "くだ"},
	"中": {"なか", "ちゅう", "じゅう"},
	"大": {"おお", "だい", "たい"},
	"小": {"ちい", "こ", "しょう"},
	"人": {"ひと", "じん", "にん"},
	"日": {"ひ", "にち", "か"},
	"月": {"つき", "げつ", "がつ"},
	"年": {"とし", "ねん"},
	"時": {"とき", "じ"},
	"分": {"ぶん", "ふん", "わ"},
	"間": {"あいだ", "かん", "ま"},
	"手": {"て", "しゅ"},
	"口": {"くち", "こう", "ぐち"},
	"目": {"め", "ま", "もく", "ぼく"},
	"心": {"こころ", "しん"},
	"気": {"き", "け"},
	"僕": {"ぼく", "しもべ", "やつがれ"},
	"皆": {"みんな", "みな"},
}

var whitelist = map[string][]string{
	"東": {"とう", "ひがし", "あずま"},
	"西": {"せい", "さい", "にし"},
	"南": {"なん", "みなみ"},
	"北": {"ほく", "きた"},
	"行": {"こう", "ぎょう", "い", "ゆ"},
	"僕": {"ぼく", "しもべ", "やつがれ"},
	"皆": {"みんな", "みな", "みんなさん"},
	"何": {"なに", "なん"},
}
