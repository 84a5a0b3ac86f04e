package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/candidate-assessor/internal/textanalysis"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed similarity_prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	// defaultCacheSize bounds the number of remembered similarity scores.
	defaultCacheSize = 4096
)

// Analyzer delegates semantic similarity to Gemini and everything else to the
// local heuristic analyzer. Similarity falls back to the heuristic when the
// model call or its response fails.
type Analyzer struct {
	*textanalysis.Heuristic

	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int

	mu        sync.RWMutex
	cache     map[string]float64
	order     []string
	cacheSize int
}

var _ textanalysis.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(generator contentGenerator, fallback *textanalysis.Heuristic, maxLogLength int, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallback == nil {
		fallback = textanalysis.NewHeuristic(logger)
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Analyzer{
		Heuristic: fallback,
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
		cache:     make(map[string]float64),
		cacheSize: defaultCacheSize,
	}
}

func (a *Analyzer) SemanticSimilarity(ctx context.Context, answer, reference string) (float64, error) {
	if strings.TrimSpace(answer) == "" || strings.TrimSpace(reference) == "" {
		return 0, nil
	}

	key := cacheKey(answer, reference)
	a.mu.RLock()
	cached, ok := a.cache[key]
	a.mu.RUnlock()
	if ok {
		return cached, nil
	}

	score, err := a.remoteSimilarity(ctx, answer, reference)
	if err != nil {
		a.logger.Warn("gemini similarity failed, using heuristic", zap.Error(err))
		return a.Heuristic.SemanticSimilarity(ctx, answer, reference)
	}

	a.remember(key, score)
	return score, nil
}

// remember stores score under key and evicts the oldest entries once the
// cache is full.
func (a *Analyzer) remember(key string, score float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.cache[key]; ok {
		a.cache[key] = score
		return
	}
	for len(a.order) >= a.cacheSize && len(a.order) > 0 {
		delete(a.cache, a.order[0])
		a.order = a.order[1:]
	}
	a.cache[key] = score
	a.order = append(a.order, key)
}

func (a *Analyzer) remoteSimilarity(ctx context.Context, answer, reference string) (float64, error) {
	prompt := buildPrompt(answer, reference)

	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.Int("prompt_tokens", textanalysis.CountTokens(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return 0, err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(answer, reference string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Reference:\n{{REFERENCE}}\n\nAnswer:\n{{ANSWER}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{REFERENCE}}", strings.TrimSpace(reference))
	return strings.ReplaceAll(prompt, "{{ANSWER}}", strings.TrimSpace(answer))
}

func parseResponse(raw string) (float64, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return 0, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["similarity"])
	if math.IsNaN(score) {
		return 0, fmt.Errorf("gemini response has no numeric similarity")
	}
	// Some responses use a 0-100 scale.
	if score > 1 && score <= 100 {
		score /= 100
	}

	return utils.Clamp(score, 0, 1), nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func cacheKey(answer, reference string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(reference) + "\x00" + strings.TrimSpace(answer)))
	return fmt.Sprintf("%x", sum[:])
}
