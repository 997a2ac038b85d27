package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"url removed", "check https://example.com/page for info", "check for info"},
		{"www removed", "see www.example.com now", "see now"},
		{"bbcode stripped", "[b]great[/b] game [i]really[/i]", "great game really"},
		{"repeated punctuation collapsed", "amazing!!! truly...", "amazing! truly."},
		{"whitespace collapsed", "too   many \n spaces", "too many spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestTokenizeEnglish(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("This game is absolutely GREAT, don't you think?", "english")
	assert.Equal(t, []string{"game", "absolutely", "great", "think"}, tokens)
}

func TestTokenizeEnglishDropsDigitsAndShortTokens(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("played 100 hours b c", "english")
	assert.Equal(t, []string{"played", "hours"}, tokens)
}

func TestTokenizeEnglishKeepsAAndI(t *testing.T) {
	tok := NewTokenizer()

	// "a" and "i" survive the length filter but are stopwords, so they
	// still drop; a short non-stopword like "x" drops on length.
	tokens := tok.Tokenize("i bought a game x", "english")
	assert.Equal(t, []string{"bought", "game"}, tokens)
}

func TestTokenizeChineseBigrams(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("好玩的游戏", "schinese")
	assert.Contains(t, tokens, "好玩")
	assert.Contains(t, tokens, "游戏")
}

func TestTokenizeChineseSkipsNonHanRuns(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("游戏 very good 画面", "schinese")
	assert.Contains(t, tokens, "游戏")
	assert.Contains(t, tokens, "画面")
	assert.NotContains(t, tokens, "very")
}

func TestAddStopwords(t *testing.T) {
	tok := NewTokenizer()
	tok.AddStopwords("Elden", "ring")

	tokens := tok.Tokenize("elden ring is amazing", "english")
	assert.Equal(t, []string{"amazing"}, tokens)
}

func TestGenerateNGrams(t *testing.T) {
	grams := GenerateNGrams([]string{"good", "game", "good", "game"}, 2)
	assert.Len(t, grams, 3)
	assert.Equal(t, []string{"good", "game"}, grams[0])
}

func TestGenerateNGramsSkipsRepetitive(t *testing.T) {
	grams := GenerateNGrams([]string{"peak", "peak", "peak"}, 2)
	assert.Empty(t, grams)

	// Unigrams are never filtered for repetition.
	unigrams := GenerateNGrams([]string{"peak", "peak"}, 1)
	assert.Len(t, unigrams, 2)
}

func TestGenerateNGramsShortInput(t *testing.T) {
	assert.Nil(t, GenerateNGrams([]string{"one"}, 2))
	assert.Nil(t, GenerateNGrams(nil, 1))
}

func TestCountNGrams(t *testing.T) {
	grams := [][]string{
		{"good", "game"},
		{"good", "game"},
		{"bad", "game"},
	}
	counted := CountNGrams(grams, 2)
	assert.Len(t, counted, 1)
	assert.Equal(t, 2, counted[0].Count)
	assert.Equal(t, []string{"good", "game"}, counted[0].Tokens)
}

func TestFormatNGram(t *testing.T) {
	assert.Equal(t, "good game", FormatNGram([]string{"good", "game"}))
	assert.Equal(t, "好玩游戏", FormatNGram([]string{"好玩", "游戏"}))
}
