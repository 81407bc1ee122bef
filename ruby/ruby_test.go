package ruby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name    string
		surface string
		reading string
		want    Result
	}{
		{"okurigana", "食べる", "たべる", Result{BaseMain: "食", Suffix: "べる", RT: "た"}},
		{"katakana", "テスト", "てすと", Result{BaseMain: "テスト", RT: "てすと"}},
		{"no shared suffix", "漢字", "かんじ", Result{BaseMain: "漢字", RT: "かんじ"}},
		{"identical", "ある", "ある", Result{BaseMain: "ある"}},
		{"empty reading", "食べる", "", Result{BaseMain: "食べる"}},
		{"kanji tail is not okurigana", "一人", "一人", Result{BaseMain: "一人"}},
		{"surface base empty", "る", "たべる", Result{BaseMain: "る"}},
		{"kana only", "あした", "あした", Result{BaseMain: "あした"}},
		{"space stops the scan", "おい しい", "おい  しい", Result{BaseMain: "おい ", Suffix: "しい", RT: "おい  "}},
		{"inner kana", "思い出す", "おもいだす", Result{BaseMain: "思い出", Suffix: "す", RT: "おもいだ"}},
		{"katakana suffix is not shared", "食ベル", "たべる", Result{BaseMain: "食ベル", RT: "たべる"}},
		{"reading all suffix", "食べる", "べる", Result{BaseMain: "食", Suffix: "べる"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.surface, tt.reading)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.surface, got.BaseMain+got.Suffix)
		})
	}
}

func TestSegmentDegenerateSuffixCollapse(t *testing.T) {
	// the whole surface is shared okurigana, nothing is left to annotate
	got := Segment("べる", "たべる")
	assert.False(t, got.Annotated())
	assert.Equal(t, "べる", got.BaseMain)
	assert.Empty(t, got.Suffix)

	// kana-only surface whose reading differs only before the shared tail
	got = Segment("ぁあ", "ああ")
	assert.Equal(t, Result{BaseMain: "ぁ", Suffix: "あ", RT: "あ"}, got)
}

func TestSegmentIdentityForEmptyReading(t *testing.T) {
	for _, s := range []string{"食べる", "テスト", "漢字", "あ"} {
		assert.Equal(t, Segment(s, s), Segment(s, ""), s)
		assert.Equal(t, Result{BaseMain: s}, Segment(s, s), s)
	}
}

func TestSegmentConcatenationInvariant(t *testing.T) {
	pairs := [][2]string{
		{"食べる", "たべる"}, {"走った", "はしった"}, {"", ""}, {"", "あ"},
		{"あ", ""}, {"美しい", "うつくしい"}, {"お茶", "おちゃ"}, {"行く", "いく"},
		{"ラーメン", "らーめん"}, {"引き返す", "ひきかえす"}, {"🎵", "おんぷ"},
	}
	for _, p := range pairs {
		got := Segment(p[0], p[1])
		assert.Equal(t, p[0], got.Surface(), "%q/%q", p[0], p[1])
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "た", Normalize("食べる", "たべる"))
	assert.Equal(t, "くう", Normalize("食べる", "くう"))
	assert.Equal(t, "ある", Normalize("ある", "ある"))
	assert.Equal(t, "", Normalize("ある", ""))
}

func TestNormalizeAlternatives(t *testing.T) {
	got := NormalizeAlternatives("食べる", []string{"たべる", "たべる", "くう"}, "たべる")
	require.Len(t, got.Options, 2)
	assert.Equal(t, []string{"た", "くう"}, got.Options)
	assert.Equal(t, "た", got.Current)
	assert.True(t, got.Selectable())
	assert.True(t, got.IsCurrent("た"))
	assert.False(t, got.IsCurrent("くう"))
}

func TestNormalizeAlternativesDedupesOnDisplay(t *testing.T) {
	// different raw candidates, same ruby once okurigana is stripped
	got := NormalizeAlternatives("生きる", []string{"いきる", "いきる", "なまきる"}, "")
	assert.Equal(t, []string{"い", "なま"}, got.Options)
	assert.Equal(t, "", got.Current)
}

func TestNormalizeAlternativesSuppression(t *testing.T) {
	got := NormalizeAlternatives("食べる", []string{"たべる", "たべる"}, "たべる")
	assert.Equal(t, []string{"た"}, got.Options)
	assert.False(t, got.Selectable())

	got = NormalizeAlternatives("食べる", nil, "")
	assert.Empty(t, got.Options)
	assert.False(t, got.Selectable())

	got = NormalizeAlternatives("食べる", []string{"", ""}, "")
	assert.Empty(t, got.Options)
}

func TestNormalizeAlternativesKeepsRawWhenUnannotated(t *testing.T) {
	got := NormalizeAlternatives("ある", []string{"ある", "あーる"}, "ある")
	assert.Equal(t, []string{"ある", "あー"}, got.Options)
	assert.Equal(t, "ある", got.Current)
	assert.True(t, got.Contains("あー"))
	assert.False(t, got.Contains("x"))
}
