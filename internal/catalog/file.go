package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spigell/candidate-assessor/internal/domain"
	"gopkg.in/yaml.v3"
)

type document struct {
	Questions []domain.Question `json:"questions" yaml:"questions"`
}

// LoadFile reads questions from a YAML or JSON file. The document is either
// a list of questions or a mapping with a "questions" key. Records may use
// "question_id" instead of "id".
func LoadFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question file %q: %w", path, err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing question file %q: %w", path, err)
	}

	records, err := questionRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("question file %q: %w", path, err)
	}

	questions := make([]domain.Question, 0, len(records))
	for i, record := range records {
		q, err := decodeQuestion(record)
		if err != nil {
			return nil, fmt.Errorf("question file %q, record %d: %w", path, i, err)
		}
		questions = append(questions, normalize(q))
	}

	return questions, nil
}

// SaveFile writes questions as JSON when path ends in .json and as YAML otherwise.
func SaveFile(path string, questions []domain.Question) error {
	doc := document{Questions: questions}

	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = yaml.Marshal(doc)
	}
	if err != nil {
		return fmt.Errorf("encoding questions: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %q: %w", path, err)
		}
	}

	return os.WriteFile(path, data, 0o644)
}

// Load builds a catalog from path, or from the built-in set when path is empty.
func Load(path string, opts Options) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return NewDefault(opts), nil
	}

	questions, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	return New(questions, opts)
}

func questionRecords(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []any:
		return v, nil
	case map[string]any:
		list, ok := v["questions"].([]any)
		if !ok {
			return nil, errors.New(`expected a "questions" list`)
		}
		return list, nil
	case nil:
		return []any{}, nil
	default:
		return nil, fmt.Errorf("unexpected document type %T", raw)
	}
}

func decodeQuestion(record any) (domain.Question, error) {
	fields, ok := record.(map[string]any)
	if !ok {
		return domain.Question{}, fmt.Errorf("expected a mapping, got %T", record)
	}

	if _, hasID := fields["id"]; !hasID {
		if legacy, ok := fields["question_id"]; ok {
			fields["id"] = legacy
		}
	}
	delete(fields, "question_id")

	var q domain.Question
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &q,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return domain.Question{}, err
	}

	if err := decoder.Decode(fields); err != nil {
		return domain.Question{}, err
	}

	return q, nil
}
