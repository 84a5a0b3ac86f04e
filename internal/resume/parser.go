// Package resume parses résumés and job descriptions from plain text, scores
// résumés against a job and checks the scoring for compliance issues.
package resume

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/textanalysis"
	"go.uber.org/zap"
)

// Extractor is the part of the text analysis contract used for parsing.
type Extractor interface {
	ExtractSkills(text string) map[string][]string
	ExtractExperienceYears(text string) float64
}

const maxResponsibilities = 10

// Parser builds structured résumé and job data from plain text.
type Parser struct {
	extractor Extractor
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewParser(extractor Extractor, log *zap.Logger) *Parser {
	return &Parser{
		extractor: extractor,
		logger:    logger.WithFields(log, zap.String("component", "resume-parser")),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// ParseResume extracts skills, experience, education and certifications.
// Contact details are redacted from the stored text. An empty candidateID
// is replaced by a generated one.
func (p *Parser) ParseResume(text, candidateID string) (domain.ResumeData, error) {
	cleaned := textanalysis.Clean(text)
	if cleaned == "" {
		return domain.ResumeData{}, fmt.Errorf("%w: résumé text is empty", domain.ErrInvalidArgument)
	}
	if candidateID = strings.TrimSpace(candidateID); candidateID == "" {
		candidateID = p.newID()
	}

	data := domain.ResumeData{
		CandidateID:     candidateID,
		Skills:          p.skills(cleaned),
		ExperienceYears: p.extractor.ExtractExperienceYears(cleaned),
		Education:       textanalysis.ExtractEducation(cleaned),
		Certifications:  textanalysis.ExtractCertifications(cleaned),
		RawText:         cleaned,
		ProcessedAt:     p.now(),
	}

	p.logger.Info("résumé parsed",
		zap.String(logger.FieldCandidate, candidateID),
		zap.Int("skills", len(data.Skills)),
		zap.Float64("experience_years", data.ExperienceYears),
	)
	return data, nil
}

// ParseJob extracts the requirements of a job description.
func (p *Parser) ParseJob(text, title string) (domain.JobDescription, error) {
	cleaned := textanalysis.Clean(text)
	if cleaned == "" {
		return domain.JobDescription{}, fmt.Errorf("%w: job description text is empty", domain.ErrInvalidArgument)
	}
	if title = strings.TrimSpace(title); title == "" {
		title = "Unknown Position"
	}

	// Bullets only survive in the uncleaned text.
	responsibilities := textanalysis.ExtractResponsibilities(textanalysis.RedactPII(text))
	if len(responsibilities) > maxResponsibilities {
		responsibilities = responsibilities[:maxResponsibilities]
	}

	job := domain.JobDescription{
		JobID:                 p.newID(),
		Title:                 title,
		RequiredSkills:        p.skills(cleaned),
		ExperienceRequired:    p.extractor.ExtractExperienceYears(cleaned),
		EducationRequirements: textanalysis.ExtractEducationRequirements(cleaned),
		Responsibilities:      responsibilities,
		RawText:               cleaned,
	}

	p.logger.Info("job description parsed",
		zap.String("job_id", job.JobID),
		zap.String("title", title),
		zap.Int("required_skills", len(job.RequiredSkills)),
	)
	return job, nil
}

func (p *Parser) skills(text string) []domain.Skill {
	found := p.extractor.ExtractSkills(text)
	out := make([]domain.Skill, 0)
	for _, category := range slices.Sorted(maps.Keys(found)) {
		for _, name := range found[category] {
			out = append(out, domain.Skill{
				Name:             name,
				Category:         category,
				ProficiencyLevel: textanalysis.AssessProficiency(text, name),
				YearsExperience:  textanalysis.EstimateSkillYears(text, name),
			})
		}
	}
	return out
}

// SupportedExtensions lists the plain text formats ReadFile accepts.
var SupportedExtensions = []string{".txt", ".md", ".text"}

// ReadFile loads a plain text document. Binary formats need an external
// converter.
func ReadFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SupportedExtensions, ext) {
		return "", fmt.Errorf("%w: unsupported file format %q", domain.ErrInvalidArgument, ext)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}
