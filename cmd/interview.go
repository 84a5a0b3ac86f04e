package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/evaluation"
	"github.com/spigell/candidate-assessor/internal/integrity"
	"github.com/spigell/candidate-assessor/internal/interview"
	"github.com/spigell/candidate-assessor/internal/logger"
)

const (
	PromptAnswer   = "Answer the question"
	PromptSkip     = "Skip (submit an empty answer)"
	PromptStop     = "Stop the interview"
	PromptFinished = "END"
)

var errStopped = errors.New("interview stopped")

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an adaptive interview in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().String("candidate", "", "candidate id (required)")
	interviewCmd.Flags().String("job", "", "job id the interview is held for")
	interviewCmd.Flags().StringSlice("categories", nil, "question categories (default is interview.default-categories)")
	interviewCmd.MarkFlagRequired("candidate")
}

func runInterview(cmd *cobra.Command) error {
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
	questions, err := newCatalog(config.Catalog, logger)
	if err != nil {
		return err
	}
	recorder, _ := newRecorder(ctx, config.Audit, logger)
	defer recorder.Close()

	engine, err := interview.NewEngine(config.Interview, interview.Dependencies{
		Catalog:    questions,
		Monitor:    integrity.NewMonitor(config.Integrity, recorder, logger),
		Similarity: analyzer,
		Audit:      recorder,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating interview engine: %w", err)
	}

	candidate, _ := cmd.Flags().GetString("candidate")
	job, _ := cmd.Flags().GetString("job")
	categories, _ := cmd.Flags().GetStringSlice("categories")

	session, err := engine.StartSession(ctx, candidate, job, categories)
	if err != nil {
		return fmt.Errorf("starting interview: %w", err)
	}
	logger.Info("interview started", zap.String("session_id", session.ID))

	report, err := askQuestions(ctx, engine, session)
	if errors.Is(err, errStopped) {
		logger.Info("exiting", zap.String("reason", "interview stopped by the operator"))
		return nil
	}
	if err != nil {
		return err
	}

	printReport(report)
	fmt.Println(evaluation.Summary(evaluation.New(logger).Evaluate(report)))

	audit, err := recorder.ComplianceReport(session.ID)
	if err != nil {
		logger.Warn("building audit report", zap.Error(err))
		return nil
	}
	logger.Info("audit summary",
		zap.Int("events", audit.TotalEvents),
		zap.Float64("compliance_score", audit.ComplianceScore),
		zap.String("risk_level", audit.RiskLevel),
	)
	recorder.ClearSession(session.ID)
	return nil
}

// askQuestions prompts for every pending question until the engine
// terminates the session.
func askQuestions(ctx context.Context, engine *interview.Engine, session domain.InterviewSession) (domain.InterviewReport, error) {
	question := session.CurrentQuestion
	for asked := 1; question != nil; asked++ {
		fmt.Printf("\nQuestion %d [%s / %s / %s, %d min]\n%s\n", asked, question.Category, question.Difficulty, question.Type, question.TimeLimit, question.Text)
		if question.CodeTemplate != "" {
			fmt.Printf("\n%s\n", question.CodeTemplate)
		}

		started := time.Now()
		sub, err := promptAnswer(question)
		if err != nil {
			return domain.InterviewReport{}, err
		}
		sub.TimeTakenSeconds = int(time.Since(started).Seconds())

		outcome, err := engine.SubmitAnswer(ctx, session.ID, sub)
		if err != nil {
			return domain.InterviewReport{}, fmt.Errorf("submitting answer: %w", err)
		}
		fmt.Printf("Score: %.1f - %s\n", outcome.Score, outcome.Feedback)

		if outcome.Complete {
			return *outcome.Report, nil
		}
		question = outcome.NextQuestion
	}
	return domain.InterviewReport{}, errors.New("session has no pending question")
}

func promptAnswer(q *domain.Question) (interview.Submission, error) {
	action := promptui.Select{
		Label: "Next step",
		Items: []string{PromptAnswer, PromptSkip, PromptStop},
	}
	_, choice, err := action.Run()
	if err != nil {
		return interview.Submission{}, err
	}

	switch choice {
	case PromptStop:
		return interview.Submission{}, errStopped
	case PromptSkip:
		return interview.Submission{}, nil
	}

	text, err := readLines("Answer")
	if err != nil {
		return interview.Submission{}, err
	}
	sub := interview.Submission{Text: text}

	if q.Type == domain.Coding {
		code, err := readLines("Code")
		if err != nil {
			return interview.Submission{}, err
		}
		sub.Code = code
	}
	return sub, nil
}

// readLines collects lines until a line equal to PromptFinished.
func readLines(label string) (string, error) {
	fmt.Printf("%s: type %s on a separate line to finish\n", label, PromptFinished)

	var lines []string
	for {
		p := promptui.Prompt{Label: label}
		line, err := p.Run()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == PromptFinished {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

func printReport(r domain.InterviewReport) {
	fmt.Println()
	fmt.Println("INTERVIEW REPORT")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Session: %s\nCandidate: %s\n", r.SessionID, r.CandidateID)
	fmt.Printf("Overall score: %.2f\nTermination: %s\n", r.OverallScore, r.TerminationReason)
	fmt.Printf("Integrity: %.2f (%s)\n", r.Integrity.AverageScore, r.Compliance.OverallStatus)
	for _, d := range slices.Sorted(maps.Keys(r.DomainScores)) {
		fmt.Printf("  - %s: %.2f\n", d, r.DomainScores[d])
	}
	for _, rec := range r.Recommendations {
		fmt.Printf("  * %s\n", rec)
	}
	fmt.Println()
}
