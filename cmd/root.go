package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/candidate-assessor/internal/api"
	"github.com/spigell/candidate-assessor/internal/bias"
	"github.com/spigell/candidate-assessor/internal/integrity"
	"github.com/spigell/candidate-assessor/internal/interview"
	"github.com/spigell/candidate-assessor/internal/resume"
	"github.com/spigell/candidate-assessor/internal/screening"
)

const (
	app       = "assessor"
	envPrefix = "ASSESSOR"
)

type Config struct {
	Interview interview.Config     `mapstructure:"interview"`
	Integrity integrity.Thresholds `mapstructure:"integrity"`
	Bias      BiasConfig           `mapstructure:"bias"`
	Resume    ResumeConfig         `mapstructure:"resume"`
	Screening screening.Config     `mapstructure:"screening"`
	Audit     AuditConfig          `mapstructure:"audit"`
	Catalog   CatalogConfig        `mapstructure:"catalog"`
	Server    ServerConfig         `mapstructure:"server"`
	AI        *AIConfig            `mapstructure:"ai"`
}

type BiasConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

type ResumeConfig struct {
	Weights resume.Weights `mapstructure:"weights"`
}

type AuditConfig struct {
	File            string        `mapstructure:"file"`
	SQLite          string        `mapstructure:"sqlite"`
	Redis           RedisConfig   `mapstructure:"redis"`
	Retention       time.Duration `mapstructure:"retention"`
	CleanupSchedule string        `mapstructure:"cleanup-schedule"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	PasswordFile string        `mapstructure:"password-file"`
	DB           int           `mapstructure:"db"`
	TTL          time.Duration `mapstructure:"ttl"`
}

type CatalogConfig struct {
	File string `mapstructure:"file"`
	Seed uint64 `mapstructure:"seed"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	api.Config      `mapstructure:",squash"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "assessor runs adaptive technical interviews and screens résumés",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is assessor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	ic := interview.DefaultConfig()
	viper.SetDefault("interview.max-questions", ic.MaxQuestions)
	viper.SetDefault("interview.min-questions", ic.MinQuestions)
	viper.SetDefault("interview.max-duration", ic.MaxDuration)
	viper.SetDefault("interview.default-difficulty", string(ic.DefaultDifficulty))
	viper.SetDefault("interview.default-categories", ic.DefaultCategories)
	viper.SetDefault("interview.recent-window", ic.RecentWindow)
	viper.SetDefault("interview.fail-below", ic.FailBelow)
	viper.SetDefault("interview.mastery-above", ic.MasteryAbove)
	viper.SetDefault("interview.advance-above", ic.AdvanceAbove)
	viper.SetDefault("interview.drop-below", ic.DropBelow)
	viper.SetDefault("interview.weak-category-below", ic.WeakCategoryBelow)

	it := integrity.DefaultThresholds()
	viper.SetDefault("integrity.threshold", it.Threshold)
	viper.SetDefault("integrity.suspiciously-fast", it.SuspiciouslyFast)
	viper.SetDefault("integrity.min-answer-time", it.MinAnswerTime)
	viper.SetDefault("integrity.suspiciously-slow", it.SuspiciouslySlow)
	viper.SetDefault("integrity.max-answer-time", it.MaxAnswerTime)
	viper.SetDefault("integrity.timing-tolerance", it.TimingTolerance)
	viper.SetDefault("integrity.min-length", it.MinLength)
	viper.SetDefault("integrity.max-length", it.MaxLength)
	viper.SetDefault("integrity.style-window", it.StyleWindow)
	viper.SetDefault("integrity.style-deviation", it.StyleDeviation)
	viper.SetDefault("integrity.quality-window", it.QualityWindow)
	viper.SetDefault("integrity.quality-divergence", it.QualityDivergence)

	viper.SetDefault("bias.threshold", bias.DefaultThreshold)

	w := resume.DefaultWeights()
	viper.SetDefault("resume.weights.skills", w.Skills)
	viper.SetDefault("resume.weights.experience", w.Experience)
	viper.SetDefault("resume.weights.education", w.Education)
	viper.SetDefault("resume.weights.certifications", w.Certifications)

	sc := screening.DefaultConfig()
	viper.SetDefault("screening.min-score", sc.MinScore)
	viper.SetDefault("screening.max-compliance-flags", sc.MaxComplianceFlags)
	viper.SetDefault("screening.min-skill-coverage", sc.MinSkillCoverage)
	viper.SetDefault("screening.top", sc.Top)

	viper.SetDefault("audit.file", "logs/compliance_audit.jsonl")
	viper.SetDefault("audit.sqlite", "")
	viper.SetDefault("audit.redis.addr", "")
	viper.SetDefault("audit.redis.password", "")
	viper.SetDefault("audit.redis.password-file", "")
	viper.SetDefault("audit.redis.db", 0)
	viper.SetDefault("audit.redis.ttl", 30*24*time.Hour)
	viper.SetDefault("audit.retention", 30*24*time.Hour)
	viper.SetDefault("audit.cleanup-schedule", "@daily")

	viper.SetDefault("catalog.file", "")
	viper.SetDefault("catalog.seed", 0)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.cors-origins", []string{"*"})
	viper.SetDefault("server.request-timeout", 60*time.Second)
	viper.SetDefault("server.shutdown-timeout", 15*time.Second)

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Defaults and environment are enough without a config file, unless one was requested explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	config.Interview.IntegrityThreshold = config.Integrity.Threshold
	return config, nil
}
