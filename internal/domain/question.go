package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Difficulty is an ordered question tier.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
	Expert       Difficulty = "expert"
)

// Difficulties lists every tier from the easiest to the hardest.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced, Expert}

// Rank returns the position of the tier in Difficulties or -1 for unknown values.
func (d Difficulty) Rank() int {
	return slices.Index(Difficulties, d)
}

func (d Difficulty) Valid() bool {
	return d.Rank() >= 0
}

// Harder returns the next tier, or d itself when it is already the top one.
func (d Difficulty) Harder() Difficulty {
	rank := d.Rank()
	if rank < 0 || rank == len(Difficulties)-1 {
		return d
	}
	return Difficulties[rank+1]
}

// Easier returns the previous tier, or d itself when it is already the bottom one.
func (d Difficulty) Easier() Difficulty {
	rank := d.Rank()
	if rank <= 0 {
		return d
	}
	return Difficulties[rank-1]
}

func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidArgument, raw)
	}
	return d, nil
}

// QuestionType selects the rubric used to score an answer.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	Coding         QuestionType = "coding"
	Conceptual     QuestionType = "conceptual"
	Practical      QuestionType = "practical"
)

var QuestionTypes = []QuestionType{MultipleChoice, Coding, Conceptual, Practical}

func (t QuestionType) Valid() bool {
	return slices.Contains(QuestionTypes, t)
}

func ParseQuestionType(raw string) (QuestionType, error) {
	t := QuestionType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown question type %q", ErrInvalidArgument, raw)
	}
	return t, nil
}

// Question is an immutable catalog entry. TimeLimit is expressed in minutes.
type Question struct {
	ID             string       `json:"id" yaml:"id" mapstructure:"id"`
	Text           string       `json:"text" yaml:"text" mapstructure:"text"`
	Type           QuestionType `json:"type" yaml:"type" mapstructure:"type"`
	Difficulty     Difficulty   `json:"difficulty" yaml:"difficulty" mapstructure:"difficulty"`
	Category       string       `json:"category" yaml:"category" mapstructure:"category"`
	Topics         []string     `json:"topics" yaml:"topics" mapstructure:"topics"`
	ExpectedAnswer string       `json:"expected_answer,omitempty" yaml:"expected_answer,omitempty" mapstructure:"expected_answer"`
	CodeTemplate   string       `json:"code_template,omitempty" yaml:"code_template,omitempty" mapstructure:"code_template"`
	TimeLimit      int          `json:"time_limit" yaml:"time_limit" mapstructure:"time_limit"`
	Points         int          `json:"points" yaml:"points" mapstructure:"points"`
}

// Clone returns a copy that shares no slices with q.
func (q Question) Clone() Question {
	q.Topics = slices.Clone(q.Topics)
	return q
}
