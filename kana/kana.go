// Package kana classifies and converts Japanese script. Everything here is
// pure and safe for concurrent use.
package kana

import "unicode"

// IsHiragana reports whether r lies in the Hiragana block (U+3040–U+309F).
func IsHiragana(r rune) bool {
	return r >= 0x3040 && r <= 0x309F
}

// IsKatakana reports whether s is non-empty and made only of Katakana-block
// runes (U+30A0–U+30FF, prolonged sound mark U+30FC included).
func IsKatakana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 0x30A0 && r <= 0x30FF) && r != 0x30FC {
			return false
		}
	}
	return true
}

// IsKanji reports whether r is a CJK ideograph (unified, extension A or
// compatibility block).
func IsKanji(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0xF900 && r <= 0xFAFF)
}

// ContainsKanji reports whether any rune of s is a kanji.
func ContainsKanji(s string) bool {
	for _, r := range s {
		if IsKanji(r) {
			return true
		}
	}
	return false
}

// IsHiraganaText reports whether s is non-empty and entirely hiragana.
func IsHiraganaText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsHiragana(r) {
			return false
		}
	}
	return true
}

// IsAllKatakana is the stricter word-level check used by the backend: only
// ァ–ヶ and ー are accepted, so the middle dot and iteration marks are not.
func IsAllKatakana(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'ァ' && r <= 'ヶ') && r != 'ー' {
			return false
		}
	}
	return true
}

// ToHiragana converts katakana ァ–ヶ to hiragana, leaving other runes alone.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'ァ' && r <= 'ヶ' {
			runes[i] = r - 0x60
		}
	}
	return string(runes)
}

// ToKatakana converts hiragana ぁ–ゖ to katakana, leaving other runes alone.
func ToKatakana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'ぁ' && r <= 'ゖ' {
			runes[i] = r + 0x60
		}
	}
	return string(runes)
}

// TrailingHiragana returns the run of hiragana at the end of s.
func TrailingHiragana(s string) string {
	runes := []rune(s)
	i := len(runes)
	for i > 0 && IsHiragana(runes[i-1]) {
		i--
	}
	return string(runes[i:])
}

var voicingGroups = [][]rune{
	{'か', 'が'}, {'き', 'ぎ'}, {'く', 'ぐ'}, {'け', 'げ'}, {'こ', 'ご'},
	{'さ', 'ざ'}, {'し', 'じ'}, {'す', 'ず'}, {'せ', 'ぜ'}, {'そ', 'ぞ'},
	{'た', 'だ'}, {'ち', 'ぢ'}, {'つ', 'づ'}, {'て', 'で'}, {'と', 'ど'},
	{'は', 'ば', 'ぱ'}, {'ひ', 'び', 'ぴ'}, {'ふ', 'ぶ', 'ぷ'},
	{'へ', 'べ', 'ぺ'}, {'ほ', 'ぼ', 'ぽ'}, {'う', 'ゔ'},
}

// VoicingVariants returns the unvoiced/voiced/semi-voiced family of a
// hiragana rune, including r itself. Runes outside any family map to {r}.
func VoicingVariants(r rune) []rune {
	for _, grp := range voicingGroups {
		for _, g := range grp {
			if g == r {
				out := make([]rune, len(grp))
				copy(out, grp)
				return out
			}
		}
	}
	return []rune{r}
}

// IsLatinWord reports whether s is non-empty and consists only of ASCII
// letters and whitespace.
func IsLatinWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'A' && r <= 'Z') && !(r >= 'a' && r <= 'z') && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
