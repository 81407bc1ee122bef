package annotate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"furiganalyrics/dictionary"
	"furiganalyrics/lookup"
	"furiganalyrics/model"
	"furiganalyrics/observe"
	"furiganalyrics/tokenize"
)

// fakeTokenizer returns canned morphemes per line.
type fakeTokenizer map[string][]tokenize.Morpheme

func (f fakeTokenizer) Tokenize(_ context.Context, text string) ([]tokenize.Morpheme, error) {
	ms, ok := f[text]
	if !ok {
		return nil, fmt.Errorf("unexpected line %q", text)
	}
	return ms, nil
}

func mo(surface, pos, reading string) tokenize.Morpheme {
	return tokenize.Morpheme{Surface: surface, POS: []string{pos}, Reading: reading}
}

func newTestMetrics(t *testing.T) (*observe.Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func newFakeAnnotator(t *testing.T, tk Tokenizer, opts Options) *Annotator {
	t.Helper()
	if opts.Metrics == nil {
		opts.Metrics, _ = newTestMetrics(t)
	}
	a, err := New(tk, lookup.New(dictionary.New(), nil, nil), opts)
	require.NoError(t, err)
	return a
}

func TestAnnotateTokenRules(t *testing.T) {
	tk := fakeTokenizer{
		"今日は晴れ、 コーヒー": {
			mo("今日", "名詞", "キョウ"),
			mo("は", "助詞", "ハ"),
			mo("晴れ", "名詞", "ハレ"),
			mo("、", "記号", "、"),
			mo(" ", "空白", model.NoReading),
			mo("コーヒー", "名詞", "コーヒー"),
		},
		"Love ＸＹ": {
			mo("Love", "名詞", "ラブ"),
			mo(" ", "記号", model.NoReading),
			mo("ＸＹ", "名詞", model.NoReading),
		},
	}
	a := newFakeAnnotator(t, tk, Options{})

	lines, err := a.Annotate(context.Background(), model.Request{Lyrics: "今日は晴れ、 コーヒー\n\nLove ＸＹ", Katakana: true})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	first := lines[0]
	require.Len(t, first, 6)
	assert.Equal(t, model.Token{Surface: "今日", Reading: "きょう", Alternatives: []string{"きょう", "こんにち"}, HasAlternatives: true}, first[0])
	assert.Equal(t, model.Token{Surface: "は", Reading: "は", Alternatives: []string{}}, first[1])
	assert.Equal(t, model.Token{Surface: "晴れ", Reading: "はれ", Alternatives: []string{"はれ"}}, first[2])
	assert.Equal(t, "、", first[3].Reading)
	assert.Equal(t, " ", first[4].Reading)
	assert.Equal(t, "こーひー", first[5].Reading)

	assert.NotNil(t, lines[1])
	assert.Empty(t, lines[1])

	assert.Equal(t, "", lines[2][0].Reading)
	assert.Equal(t, "", lines[2][2].Reading)
	for _, line := range lines {
		for _, tok := range line {
			assert.NotNil(t, tok.Alternatives, tok.Surface)
		}
	}
}

func TestAnnotateKatakanaHidden(t *testing.T) {
	tk := fakeTokenizer{"コーヒー": {mo("コーヒー", "名詞", "コーヒー")}}
	a := newFakeAnnotator(t, tk, Options{})
	lines, err := a.Annotate(context.Background(), model.Request{Lyrics: "コーヒー", Katakana: false})
	require.NoError(t, err)
	assert.Equal(t, "", lines[0][0].Reading)
}

func TestAnnotateTooLong(t *testing.T) {
	a := newFakeAnnotator(t, fakeTokenizer{}, Options{MaxTextLength: 3})
	_, err := a.Annotate(context.Background(), model.Request{Lyrics: "あいうえ"})
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestAnnotateTokenizerError(t *testing.T) {
	a := newFakeAnnotator(t, fakeTokenizer{}, Options{})
	_, err := a.Annotate(context.Background(), model.Request{Lyrics: "未知"})
	assert.Error(t, err)
}

func TestAnnotatePreservesLineOrder(t *testing.T) {
	tk := fakeTokenizer{}
	var lyrics []string
	for i := 0; i < 20; i++ {
		s := fmt.Sprintf("行%d", i)
		tk[s] = []tokenize.Morpheme{mo(s, "名詞", model.NoReading)}
		lyrics = append(lyrics, s)
	}
	a := newFakeAnnotator(t, tk, Options{Workers: 3})
	lines, err := a.Annotate(context.Background(), model.Request{Lyrics: strings.Join(lyrics, "\n")})
	require.NoError(t, err)
	require.Len(t, lines, 20)
	for i, line := range lines {
		assert.Equal(t, lyrics[i], line[0].Surface)
	}
}

func TestAnnotateCacheAndMetrics(t *testing.T) {
	m, reader := newTestMetrics(t)
	tk := fakeTokenizer{"今日": {mo("今日", "名詞", "キョウ")}}
	a := newFakeAnnotator(t, tk, Options{CacheSize: 8, Metrics: m})

	for i := 0; i < 2; i++ {
		_, err := a.Annotate(context.Background(), model.Request{Lyrics: "今日", Katakana: true})
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	got := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				name := met.Name
				if v, ok := dp.Attributes.Value("result"); ok {
					name += "." + v.AsString()
				}
				got[name] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), got["furigana.cache.lookups.hit"])
	assert.Equal(t, int64(1), got["furigana.cache.lookups.miss"])
	assert.Equal(t, int64(2), got["furigana.lines"])
	assert.Equal(t, int64(2), got["furigana.tokens"])
}

func TestIngest(t *testing.T) {
	job, err := Ingest(model.Request{Lyrics: "一\r\n二", Katakana: true}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"一", "二"}, job.Lines)
	assert.Len(t, job.ID, 16)
	assert.True(t, job.Katakana)

	// か + combining dakuten composes to が.
	job, err = Ingest(model.Request{Lyrics: "\u304b\u3099"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"\u304c"}, job.Lines)

	_, err = Ingest(model.Request{Lyrics: "abcd"}, 3)
	assert.True(t, errors.Is(err, ErrTooLong))
}

func TestAnnotateWithKagome(t *testing.T) {
	tk, err := tokenize.New(tokenize.DictIPA)
	require.NoError(t, err)
	m, _ := newTestMetrics(t)
	a, err := New(tk, lookup.New(dictionary.New(), nil, tk), Options{Metrics: m, CacheSize: 4})
	require.NoError(t, err)

	lines, err := a.Annotate(context.Background(), model.Request{Lyrics: "猫が好き\n\n今日", Katakana: true})
	require.NoError(t, err)
	require.Len(t, lines, 3)
	require.Len(t, lines[0], 3)
	assert.Equal(t, "ねこ", lines[0][0].Reading)
	assert.Equal(t, "が", lines[0][1].Reading)
	assert.Empty(t, lines[0][1].Alternatives)
	assert.Empty(t, lines[1])
	require.Len(t, lines[2], 1)
	assert.Contains(t, lines[2][0].Alternatives, "こんにち")
	assert.True(t, lines[2][0].HasAlternatives)
}
