package textanalysis

import (
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/tiktoken-go/tokenizer"
	"go.uber.org/zap"
)

// tokenBag turns text into BPE token counts. When the encoding cannot be
// loaded it falls back to lowercase word tokens.
type tokenBag struct {
	logger *zap.Logger

	once  sync.Once
	codec tokenizer.Codec
}

func newTokenBag(logger *zap.Logger) *tokenBag {
	return &tokenBag{logger: logger}
}

func (b *tokenBag) load() tokenizer.Codec {
	b.once.Do(func() {
		codec, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			b.logger.Warn("tokenizer unavailable, falling back to word tokens", zap.Error(err))
			return
		}
		b.codec = codec
	})
	return b.codec
}

func (b *tokenBag) bag(text string) map[string]int {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	counts := make(map[string]int)
	codec := b.load()
	for _, word := range words {
		if len(word) < 2 || stopWords[word] {
			continue
		}
		if codec == nil {
			counts[word]++
			continue
		}
		_, tokens, err := codec.Encode(word)
		if err != nil || len(tokens) == 0 {
			counts[word]++
			continue
		}
		for _, token := range tokens {
			counts[strings.TrimSpace(token)]++
		}
	}
	return counts
}

func (b *tokenBag) cosine(x, y string) float64 {
	left, right := b.bag(x), b.bag(y)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	var dot, normL, normR float64
	for token, l := range left {
		normL += float64(l * l)
		if r, ok := right[token]; ok {
			dot += float64(l * r)
		}
	}
	for _, r := range right {
		normR += float64(r * r)
	}

	if normL == 0 || normR == 0 {
		return 0
	}
	return math.Min(1, dot/(math.Sqrt(normL)*math.Sqrt(normR)))
}

// CountTokens reports the cl100k token count of text, or its word count when
// the encoding is unavailable.
func CountTokens(text string) int {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return len(strings.Fields(text))
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return len(strings.Fields(text))
	}
	return len(ids)
}

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "of": true, "to": true, "in": true, "a": true, "an": true,
	"is": true, "are": true, "be": true, "it": true, "that": true, "this": true, "for": true,
	"with": true, "as": true, "on": true, "by": true, "should": true, "can": true, "its": true,
}
