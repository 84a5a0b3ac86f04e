package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/candidate-assessor/internal/catalog"
	"github.com/spigell/candidate-assessor/internal/domain"
	"github.com/spigell/candidate-assessor/internal/logger"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Inspect and maintain the question catalog",
}

var questionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print catalog statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		return printJSON(c.Statistics())
	},
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions, optionally filtered by category and difficulty",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}

		category, _ := cmd.Flags().GetString("category")
		rawDifficulty, _ := cmd.Flags().GetString("difficulty")

		questions := c.All()
		if rawDifficulty != "" {
			difficulty, err := domain.ParseDifficulty(rawDifficulty)
			if err != nil {
				return err
			}
			if category != "" {
				questions = c.ByCategory(category, difficulty)
			} else {
				questions = c.ByDifficulty(difficulty)
			}
		} else if category != "" {
			filtered := questions[:0]
			for _, q := range questions {
				if q.Category == category {
					filtered = append(filtered, q)
				}
			}
			questions = filtered
		}

		for _, q := range questions {
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", q.ID, q.Category, q.Difficulty, q.Type, q.Text)
		}
		return nil
	},
}

var questionsExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the catalog to a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog()
		if err != nil {
			return err
		}
		if err := catalog.SaveFile(args[0], c.All()); err != nil {
			return err
		}
		fmt.Printf("exported %d questions to %s\n", c.Len(), args[0])
		return nil
	},
}

var questionsValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check every question of a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questions, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}

		problems := make(map[string][]string)
		for i, q := range questions {
			if found := catalog.Validate(q); len(found) > 0 {
				key := q.ID
				if key == "" {
					key = fmt.Sprintf("#%d", i+1)
				}
				problems[key] = found
			}
		}

		if len(problems) == 0 {
			fmt.Printf("%d questions are valid\n", len(questions))
			return nil
		}

		out, err := yaml.Marshal(problems)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return fmt.Errorf("%d of %d questions are invalid", len(problems), len(questions))
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.AddCommand(questionsStatsCmd, questionsListCmd, questionsExportCmd, questionsValidateCmd)

	questionsListCmd.Flags().String("category", "", "category to list")
	questionsListCmd.Flags().String("difficulty", "", "difficulty to list ("+strings.Join(difficultyNames(), ", ")+")")
}

func loadCatalog() (*catalog.Catalog, error) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}

	c, err := newCatalog(config.Catalog, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog ready", zap.Int("questions", c.Len()))
	return c, nil
}

func difficultyNames() []string {
	names := make([]string, 0, len(domain.Difficulties))
	for _, d := range domain.Difficulties {
		names = append(names, string(d))
	}
	return names
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
