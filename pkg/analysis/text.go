package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	urlPattern        = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	bbcodePattern     = regexp.MustCompile(`\[/?[a-zA-Z]+\]`)
	repeatPunctuation = regexp.MustCompile(`([!?.,:;])[!?.,:;]+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

var englishStopwords = makeSet(
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do",
	"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or", "because",
	"as", "until", "while", "of", "at", "by", "for", "with", "about", "against",
	"between", "into", "through", "during", "before", "after", "above", "below",
	"to", "from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
	"further", "then", "once", "here", "there", "when", "where", "why", "how", "all",
	"both", "each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can",
	"will", "just", "don", "don't", "should", "should've", "now", "d", "ll", "m",
	"o", "re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't", "didn",
	"didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven",
	"haven't", "isn", "isn't", "ma", "mightn", "mightn't", "mustn", "mustn't",
	"needn", "needn't", "shan", "shan't", "shouldn", "shouldn't", "wasn", "wasn't",
	"weren", "weren't", "won", "won't", "wouldn", "wouldn't",
)

var chineseStopwords = makeSet(
	"的", "了", "和", "是", "在", "我", "有", "个", "不", "这", "你", "他", "她",
	"们", "也", "就", "都", "而", "及", "与", "着", "或", "一", "上", "下", "来",
	"去", "得", "到", "过", "能", "会", "可", "要", "说", "看", "让", "还", "用",
	"把", "被", "给", "没", "很", "比", "对", "于", "为", "从", "向", "以", "因",
	"由", "跟", "随", "等", "之", "但", "却", "又", "只", "当", "如", "若", "则",
	"将", "且", "并", "即", "便", "吧", "呢", "吗", "啊", "哦", "嗯", "哈", "呀",
	"哎", "哪", "什么", "怎么", "为什么", "多少", "几个", "这个", "那个", "这些",
	"那些", "这样", "那样", "怎样", "如何", "可以", "应该", "必须", "需要", "想要",
)

func makeSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenizer splits review text into analysis tokens with language-specific
// rules and stopword filtering.
type Tokenizer struct {
	extraStopwords map[string]struct{}
}

// NewTokenizer creates a tokenizer with the built-in stopword lists.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{extraStopwords: make(map[string]struct{})}
}

// AddStopwords extends the stopword lists, e.g. with a game's own title
// terms that would otherwise dominate every ranking.
func (t *Tokenizer) AddStopwords(words ...string) {
	for _, w := range words {
		t.extraStopwords[strings.ToLower(w)] = struct{}{}
	}
}

func (t *Tokenizer) isStopword(token string) bool {
	if _, ok := englishStopwords[token]; ok {
		return true
	}
	if _, ok := chineseStopwords[token]; ok {
		return true
	}
	_, ok := t.extraStopwords[token]
	return ok
}

// CleanText strips URLs, Steam BBCode tags, and repeated punctuation, and
// collapses whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = urlPattern.ReplaceAllString(text, "")
	text = bbcodePattern.ReplaceAllString(text, "")
	text = repeatPunctuation.ReplaceAllString(text, "$1")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize cleans and tokenizes text for the given Steam language code.
func (t *Tokenizer) Tokenize(text, language string) []string {
	cleaned := CleanText(text)
	switch language {
	case "schinese", "tchinese":
		return t.tokenizeChinese(cleaned)
	case "english":
		return t.tokenizeEnglish(cleaned)
	default:
		return strings.Fields(strings.ToLower(cleaned))
	}
}

// tokenizeEnglish lowercases and splits on non-word runes, keeping
// apostrophes so contractions survive as single tokens.
func (t *Tokenizer) tokenizeEnglish(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := strings.Trim(current.String(), "'")
		current.Reset()
		if word == "" || isDigits(word) {
			return
		}
		if len(word) == 1 && word != "a" && word != "i" {
			return
		}
		if t.isStopword(word) {
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '_' {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// tokenizeChinese segments contiguous Han runs into overlapping character
// bigrams. A dictionary segmenter would be better, but character bigrams
// capture most two-character words, which dominate review vocabulary.
func (t *Tokenizer) tokenizeChinese(text string) []string {
	var tokens []string
	var run []rune

	flushRun := func() {
		if len(run) == 0 {
			return
		}
		if len(run) == 1 {
			run = run[:0]
			return
		}
		for i := 0; i+1 < len(run); i++ {
			bigram := string(run[i : i+2])
			if t.isStopword(bigram) {
				continue
			}
			if t.isStopword(string(run[i])) && t.isStopword(string(run[i+1])) {
				continue
			}
			tokens = append(tokens, bigram)
		}
		run = run[:0]
	}

	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			run = append(run, r)
		} else {
			flushRun()
		}
	}
	flushRun()
	return tokens
}

func isDigits(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(word) > 0
}

// NGram is a fixed-length token sequence with its occurrence count.
type NGram struct {
	Tokens []string
	Count  int
}

// GenerateNGrams produces the n-grams of a token list. For n >= 2, n-grams
// whose tokens are all identical are dropped (they are almost always
// copy-paste spam like "peak peak peak").
func GenerateNGrams(tokens []string, n int) [][]string {
	if n < 1 || len(tokens) < n {
		return nil
	}
	grams := make([][]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		gram := tokens[i : i+n]
		if n >= 2 && allIdentical(gram) {
			continue
		}
		grams = append(grams, gram)
	}
	return grams
}

func allIdentical(gram []string) bool {
	for _, tok := range gram[1:] {
		if tok != gram[0] {
			return false
		}
	}
	return true
}

// CountNGrams counts occurrences and returns them sorted by count
// descending, dropping those below minFrequency. Ties break
// lexicographically so output ordering is deterministic.
func CountNGrams(grams [][]string, minFrequency int) []NGram {
	counts := make(map[string]int)
	tokensByKey := make(map[string][]string)
	for _, gram := range grams {
		key := strings.Join(gram, "\x00")
		counts[key]++
		if _, ok := tokensByKey[key]; !ok {
			tokensByKey[key] = gram
		}
	}

	result := make([]NGram, 0, len(counts))
	for key, count := range counts {
		if count < minFrequency {
			continue
		}
		result = append(result, NGram{Tokens: tokensByKey[key], Count: count})
	}
	sortNGrams(result)
	return result
}

func sortNGrams(grams []NGram) {
	sort.Slice(grams, func(i, j int) bool {
		if grams[i].Count != grams[j].Count {
			return grams[i].Count > grams[j].Count
		}
		return FormatNGram(grams[i].Tokens) < FormatNGram(grams[j].Tokens)
	})
}

// FormatNGram renders an n-gram for display: space-separated for alphabetic
// scripts, joined directly for Han text.
func FormatNGram(tokens []string) string {
	if len(tokens) > 0 {
		for _, r := range tokens[0] {
			if unicode.Is(unicode.Han, r) {
				return strings.Join(tokens, "")
			}
			break
		}
	}
	return strings.Join(tokens, " ")
}
