package tokenize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiganalyrics/model"
)

func newIPA(t *testing.T) *Tokenizer {
	t.Helper()
	tk, err := New(DictIPA)
	require.NoError(t, err)
	return tk
}

func surfaces(ms []Morpheme) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Surface)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tk := newIPA(t)
	ms, err := tk.Tokenize(context.Background(), "猫が好き")
	require.NoError(t, err)
	require.Equal(t, []string{"猫", "が", "好き"}, surfaces(ms))
	assert.Equal(t, "ネコ", ms[0].Reading)
	assert.Equal(t, "名詞", ms[0].POS0())
	assert.Equal(t, "助詞", ms[1].POS0())
	assert.Less(t, ms[0].Start, ms[0].End)
}

func TestTokenizeUnknownWordHasNoReading(t *testing.T) {
	tk := newIPA(t)
	ms, err := tk.Tokenize(context.Background(), "ZQXW")
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.Equal(t, model.NoReading, ms[0].Reading)
}

func TestTokenizeEmptyAndCancelled(t *testing.T) {
	tk := newIPA(t)
	ms, err := tk.Tokenize(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, ms)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tk.Tokenize(ctx, "猫")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenizeModes(t *testing.T) {
	tk := newIPA(t)
	res, err := tk.TokenizeModes(context.Background(), "日本語")
	require.NoError(t, err)
	assert.Len(t, res, 3)
	for _, mode := range []string{ModeNormal, ModeSearch, ModeExtended} {
		assert.NotEmpty(t, res[mode], mode)
	}
}

func TestNewRejectsUnknownDict(t *testing.T) {
	_, err := New("sudachi")
	assert.Error(t, err)
}

func TestMergeVerbAuxiliaries(t *testing.T) {
	in := []Morpheme{
		{Surface: "食べ", Reading: "タベ", POS: []string{"動詞", "自立"}, Start: 0, End: 2},
		{Surface: "まし", Reading: "マシ", POS: []string{"助動詞"}, Start: 2, End: 4},
		{Surface: "た", Reading: "タ", POS: []string{"助動詞"}, Start: 4, End: 5},
		{Surface: "。", Reading: "。", POS: []string{"記号", "句点"}, Start: 5, End: 6},
	}
	out := MergeVerbAuxiliaries(in)
	require.Len(t, out, 2)
	assert.Equal(t, "食べました", out[0].Surface)
	assert.Equal(t, "タベマシタ", out[0].Reading)
	assert.Equal(t, 5, out[0].End)
	assert.Equal(t, "。", out[1].Surface)
}

func TestMergeVerbAuxiliariesUnknownReading(t *testing.T) {
	in := []Morpheme{
		{Surface: "走っ", Reading: "ハシッ", POS: []string{"動詞", "自立"}},
		{Surface: "てる", Reading: model.NoReading, POS: []string{"動詞", "非自立"}},
	}
	out := MergeVerbAuxiliaries(in)
	require.Len(t, out, 1)
	assert.Equal(t, model.NoReading, out[0].Reading)
}
