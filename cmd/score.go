package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/bias"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
	"github.com/spigell/candidate-assessor/internal/resume"
	"github.com/spigell/candidate-assessor/internal/screening"
)

// scoreOutput is printed as JSON after a batch run.
type scoreOutput struct {
	Job        domain.JobDescription  `json:"job"`
	Results    []domain.ScoringResult `json:"results"`
	Statistics resume.Statistics      `json:"statistics"`
	Screening  []screening.Record     `json:"screening"`
	Filters    []screening.Status     `json:"filters"`
	Shortlist  []string               `json:"shortlist"`
	Compliance resume.BatchCompliance `json:"compliance"`
	Bias       *bias.Result           `json:"job_bias,omitempty"`
	Skipped    map[string]string      `json:"skipped_files,omitempty"`
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a directory of résumés against a job description",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScore(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("resumes", "", "directory with résumé files (.txt, .md)")
	scoreCmd.Flags().String("job", "", "job description file")
	scoreCmd.Flags().String("title", "", "job title")
	scoreCmd.Flags().Bool("bias", false, "check the job description for biased language")
	scoreCmd.Flags().Bool("report", false, "print the compliance report instead of JSON")
	scoreCmd.Flags().StringSlice("disable-filter", nil, "screening filters to skip")
	scoreCmd.MarkFlagRequired("resumes")
	scoreCmd.MarkFlagRequired("job")
}

func runScore(cmd *cobra.Command) error {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	analyzer, err := newAnalyzer(ctx, config.AI, logger)
	if err != nil {
		return fmt.Errorf("creating text analyzer: %w", err)
	}
	recorder, _ := newRecorder(ctx, config.Audit, logger)
	defer recorder.Close()

	dir, _ := cmd.Flags().GetString("resumes")
	jobFile, _ := cmd.Flags().GetString("job")
	title, _ := cmd.Flags().GetString("title")

	parser := resume.NewParser(analyzer, logger)

	jobText, err := resume.ReadFile(jobFile)
	if err != nil {
		return err
	}
	job, err := parser.ParseJob(jobText, title)
	if err != nil {
		return fmt.Errorf("parsing job description: %w", err)
	}

	resumes, skipped, err := loadResumes(parser, dir, logger)
	if err != nil {
		return err
	}
	logger.Info("résumés loaded", zap.Int("count", len(resumes)), zap.Int("skipped", len(skipped)))

	results := resume.NewScorer(analyzer, config.Resume.Weights, logger).BatchScore(ctx, resumes, job)

	steps := screening.Default()
	disabled, _ := cmd.Flags().GetStringSlice("disable-filter")
	for _, name := range disabled {
		screening.DisableByName(steps, name, "disabled by a flag")
	}
	shortlist, records, err := screening.Run(ctx, &config.Screening, screening.Deps{Logger: logger}, steps, screening.NewCandidates(results))
	if err != nil {
		return fmt.Errorf("screening candidates: %w", err)
	}

	checker := resume.NewChecker(analyzer, recorder, logger)
	compliance := checker.CheckBatch(ctx, resumes, job)

	if ok, _ := cmd.Flags().GetBool("report"); ok {
		fmt.Println(resume.BatchReport(compliance))
		return nil
	}

	out := scoreOutput{
		Job:        job,
		Results:    results,
		Statistics: resume.ComputeStatistics(results),
		Screening:  records,
		Filters:    screening.Describe(steps),
		Shortlist:  shortlist.IDs(),
		Compliance: compliance,
		Skipped:    skipped,
	}

	if ok, _ := cmd.Flags().GetBool("bias"); ok {
		detector := bias.NewDetector(config.Bias.Threshold, analyzer, recorder, logger)
		result := detector.Detect(ctx, jobText, "job_description")
		out.Bias = &result
	}

	return printJSON(out)
}

// loadResumes parses every supported file of dir. The file name without
// extension becomes the candidate id.
func loadResumes(parser *resume.Parser, dir string, log *zap.Logger) ([]domain.ResumeData, map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading résumé directory: %w", err)
	}

	var resumes []domain.ResumeData
	skipped := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		text, err := resume.ReadFile(path)
		if err != nil {
			skipped[entry.Name()] = err.Error()
			log.Debug("skipping file", zap.String("file", path), zap.Error(err))
			continue
		}

		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		data, err := parser.ParseResume(text, id)
		if err != nil {
			skipped[entry.Name()] = err.Error()
			continue
		}
		resumes = append(resumes, data)
	}

	if len(resumes) == 0 {
		return nil, skipped, fmt.Errorf("no résumés found in %s", dir)
	}
	return resumes, skipped, nil
}
