package interview

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/utils"
	"go.uber.org/zap"
)

// EvaluationResult is the outcome of scoring one answer. Failure is set when
// the rubric could not run; the score is then 0.
type EvaluationResult struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
	Failure  string  `json:"failure,omitempty"`
}

const evaluationErrorFeedback = "Error evaluating answer. Please contact support."

// Similarity compares two texts and returns a value in [0,1].
type Similarity interface {
	SemanticSimilarity(ctx context.Context, a, b string) (float64, error)
}

type rubrics struct {
	similarity Similarity
	logger     *zap.Logger
}

// evaluate dispatches by question type. It never panics.
func (r rubrics) evaluate(ctx context.Context, q domain.Question, text, code string) (result EvaluationResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("answer evaluation failed",
				zap.String("question_id", q.ID),
				zap.Any("panic", rec),
			)
			result = EvaluationResult{Score: 0, Feedback: evaluationErrorFeedback, Failure: fmt.Sprint(rec)}
		}
	}()

	switch q.Type {
	case domain.MultipleChoice:
		result = scoreMultipleChoice(q, text)
	case domain.Coding:
		result = scoreCoding(q, text, code)
	case domain.Conceptual:
		result = r.scoreConceptual(ctx, q, text)
	case domain.Practical:
		result = scorePractical(text)
	default:
		return EvaluationResult{Feedback: evaluationErrorFeedback, Failure: fmt.Sprintf("unsupported question type %q", q.Type)}
	}

	result.Score = utils.Round2(utils.Clamp(result.Score, 0, 100))
	return result
}

func tier(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	default:
		return "Needs improvement"
	}
}

func signalFeedback(prefix string, score float64, signals []string) string {
	detail := "basic response"
	if len(signals) > 0 {
		detail = strings.Join(signals, "; ")
	}
	return fmt.Sprintf("%s. %s: %s (Score: %.1f%%)", tier(score), prefix, detail, score)
}

func scoreMultipleChoice(q domain.Question, text string) EvaluationResult {
	keywords := make([]string, 0)
	for _, k := range strings.Split(strings.ToLower(q.ExpectedAnswer), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		return EvaluationResult{Feedback: "No reference answer available for this question."}
	}

	answer := strings.ToLower(text)
	matched := 0
	for _, k := range keywords {
		if strings.Contains(answer, k) {
			matched++
		}
	}

	score := float64(matched) / float64(len(keywords)) * 100
	var feedback string
	switch tier(score) {
	case "Excellent":
		feedback = "Excellent answer!"
	case "Good":
		feedback = "Good answer with room for improvement."
	default:
		feedback = "Answer needs improvement. Review the key concepts."
	}
	return EvaluationResult{Score: score, Feedback: fmt.Sprintf("Score: %.1f%%. %s", score, feedback)}
}

var (
	codeStructure = regexp.MustCompile(`\b(def|class|func|function)\s+\w+`)
	errorHandling = regexp.MustCompile(`\b(try|except|catch|raise|throw|if|else)\b`)
	docMarkers    = regexp.MustCompile(`#|"""|'''|//`)

	categoryCodeKeywords = map[string]struct {
		points   float64
		keywords []string
	}{
		"python_programming":        {20, []string{"import", "return", "def", "yield", "with"}},
		"machine_learning":          {25, []string{"fit", "predict", "transform", "model"}},
		"deep_learning":             {25, []string{"forward", "backward", "layer", "gradient", "weights", "np."}},
		"data_science_fundamentals": {20, []string{"mean", "median", "sum(", "len(", "sorted", "pandas"}},
		"agentic_ai_systems":        {20, []string{"tool", "agent", "query", "action", "self.tools"}},
	}
)

func scoreCoding(q domain.Question, text, code string) EvaluationResult {
	src := code
	if strings.TrimSpace(src) == "" {
		src = text
	}
	if strings.TrimSpace(src) == "" {
		return EvaluationResult{Score: 0, Feedback: "No code provided."}
	}

	var (
		score   float64
		signals []string
	)

	if codeStructure.MatchString(src) {
		score += 30
		signals = append(signals, "function/class structure present")
	}

	if rule, ok := categoryCodeKeywords[q.Category]; ok {
		lower := strings.ToLower(src)
		for _, k := range rule.keywords {
			if strings.Contains(lower, k) {
				score += rule.points
				signals = append(signals, "domain-appropriate constructs used")
				break
			}
		}
	}

	if errorHandling.MatchString(src) {
		score += 15
		signals = append(signals, "error handling implemented")
	}

	if docMarkers.MatchString(src) {
		score += 10
		signals = append(signals, "code documentation present")
	}

	if len(strings.Split(strings.TrimRight(src, "\n"), "\n")) >= 5 {
		score += 10
		signals = append(signals, "adequate implementation length")
	}

	score = min(100, score)
	return EvaluationResult{Score: score, Feedback: signalFeedback("Code evaluation", score, signals)}
}

func (r rubrics) scoreConceptual(ctx context.Context, q domain.Question, text string) EvaluationResult {
	words := len(strings.Fields(text))

	if strings.TrimSpace(q.ExpectedAnswer) != "" && r.similarity != nil {
		similarity, err := r.similarity.SemanticSimilarity(ctx, text, q.ExpectedAnswer)
		if err == nil {
			score := utils.Clamp(similarity, 0, 1) * 100
			switch {
			case words < 10:
				score = min(score, 30)
			case words > 200:
				score = min(score+10, 100)
			}

			var feedback string
			switch {
			case score >= 80:
				feedback = "Excellent understanding demonstrated"
			case score >= 60:
				feedback = "Good understanding with some gaps"
			case score >= 40:
				feedback = "Partial understanding - needs improvement"
			default:
				feedback = "Limited understanding of the concept"
			}
			return EvaluationResult{Score: score, Feedback: feedback}
		}

		r.logger.Warn("semantic similarity unavailable, scoring by length",
			zap.String("question_id", q.ID),
			zap.Error(err),
		)
	}

	switch {
	case words < 10:
		return EvaluationResult{Score: 20, Feedback: "Needs improvement. Answer too brief"}
	case words < 30:
		return EvaluationResult{Score: 50, Feedback: "Needs improvement. Answer could be more detailed"}
	case words < 100:
		return EvaluationResult{Score: 80, Feedback: "Excellent. Good detailed answer"}
	default:
		return EvaluationResult{Score: 90, Feedback: "Excellent. Comprehensive answer"}
	}
}

var (
	structureWords  = regexp.MustCompile(`\b(first|then|next|finally|step)\b`)
	analysisWords   = regexp.MustCompile(`\b(analy[sz]e|evaluate|compare|consider)\b`)
	exampleWords    = regexp.MustCompile(`\b(example|instance|such as|like)\b`)
	conclusionWords = regexp.MustCompile(`\b(conclusion|therefore|thus|in summary)\b`)

	practicalDomainKeywords = []string{
		"data", "model", "algorithm", "feature", "training", "validation",
		"pipeline", "metric", "test", "prompt", "agent", "deploy",
	}
)

func scorePractical(text string) EvaluationResult {
	lower := strings.ToLower(text)

	var (
		score   float64
		signals []string
	)

	if structureWords.MatchString(lower) {
		score += 25
		signals = append(signals, "structured approach")
	}
	if analysisWords.MatchString(lower) {
		score += 20
		signals = append(signals, "analytical thinking demonstrated")
	}

	hits := 0
	for _, k := range practicalDomainKeywords {
		if strings.Contains(lower, k) {
			hits++
		}
	}
	if hits >= 2 {
		score += 20
		signals = append(signals, "technical terminology used")
	}

	switch words := len(strings.Fields(text)); {
	case words >= 50:
		score += 15
		signals = append(signals, "comprehensive answer")
	case words >= 20:
		score += 10
		signals = append(signals, "adequate detail")
	}

	if exampleWords.MatchString(lower) {
		score += 10
		signals = append(signals, "examples provided")
	}
	if conclusionWords.MatchString(lower) {
		score += 10
		signals = append(signals, "clear conclusion")
	}

	score = min(100, score)
	return EvaluationResult{Score: score, Feedback: signalFeedback("Practical answer evaluation", score, signals)}
}
