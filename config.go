package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	StoreDriver  string `yaml:"store_driver"` // "sqlite" or "postgres"
	DBPath       string `yaml:"db_path"`
	WarehouseDSN string `yaml:"warehouse_dsn"`

	IngestAPIURL string `yaml:"ingest_api_url"`

	PositiveThreshold    float64 `yaml:"positive_threshold"`
	NegativeThreshold    float64 `yaml:"negative_threshold"`
	LowFeedbackThreshold float64 `yaml:"low_feedback_threshold"`
	RankingSize          int     `yaml:"ranking_size"`
	TrainingFullBelow    float64 `yaml:"training_full_below"`
	TrainingPartialBelow float64 `yaml:"training_partial_below"`
	TrainingBasicBelow   float64 `yaml:"training_basic_below"`

	WorkerCount    int    `yaml:"worker_count"`
	ScoringTimeout string `yaml:"scoring_timeout"`

	DigestChunkSize int    `yaml:"digest_chunk_size"`
	WebhookURL      string `yaml:"webhook_url"`

	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`
	EmailUser     string `yaml:"email_user"`
	EmailPassword string `yaml:"email_password"`
	OwnerEmail    string `yaml:"owner_email"`

	ReportOutputDir  string `yaml:"report_output_dir"`
	PipelineSchedule string `yaml:"pipeline_schedule"`

	AnthropicAPIKey    string `yaml:"anthropic_api_key"`
	ClassifyCategories bool   `yaml:"classify_categories"`
	ClassifyModel      string `yaml:"classify_model"`
	ClassifyBatchSize  int    `yaml:"classify_batch_size"`

	scoringTimeout time.Duration
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.StoreDriver, "STORE_DRIVER")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.WarehouseDSN, "WAREHOUSE_DSN")
	envOverride(&cfg.IngestAPIURL, "INGEST_API_URL")
	envOverrideFloat(&cfg.PositiveThreshold, "POSITIVE_THRESHOLD")
	envOverrideFloat(&cfg.NegativeThreshold, "NEGATIVE_THRESHOLD")
	envOverrideFloat(&cfg.LowFeedbackThreshold, "LOW_FEEDBACK_THRESHOLD")
	envOverrideInt(&cfg.RankingSize, "RANKING_SIZE")
	envOverrideFloat(&cfg.TrainingFullBelow, "TRAINING_FULL_BELOW")
	envOverrideFloat(&cfg.TrainingPartialBelow, "TRAINING_PARTIAL_BELOW")
	envOverrideFloat(&cfg.TrainingBasicBelow, "TRAINING_BASIC_BELOW")
	envOverrideInt(&cfg.WorkerCount, "WORKER_COUNT")
	envOverride(&cfg.ScoringTimeout, "SCORING_TIMEOUT")
	envOverrideInt(&cfg.DigestChunkSize, "DIGEST_CHUNK_SIZE")
	envOverride(&cfg.WebhookURL, "WEBHOOK_URL")
	envOverride(&cfg.SMTPHost, "SMTP_HOST")
	envOverrideInt(&cfg.SMTPPort, "SMTP_PORT")
	envOverride(&cfg.EmailUser, "EMAIL_USER")
	envOverride(&cfg.EmailPassword, "EMAIL_PASSWORD")
	envOverride(&cfg.OwnerEmail, "SHOP_OWNER_EMAIL")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.PipelineSchedule, "PIPELINE_SCHEDULE")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverrideBool(&cfg.ClassifyCategories, "CLASSIFY_CATEGORIES")
	envOverride(&cfg.ClassifyModel, "CLASSIFY_MODEL")
	envOverrideInt(&cfg.ClassifyBatchSize, "CLASSIFY_BATCH_SIZE")

	// Defaults
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./feedbackbot.db"
	}
	if cfg.PositiveThreshold == 0 {
		cfg.PositiveThreshold = 0.5
	}
	if cfg.NegativeThreshold == 0 {
		cfg.NegativeThreshold = -0.5
	}
	if cfg.LowFeedbackThreshold == 0 {
		cfg.LowFeedbackThreshold = 2.5
	}
	if cfg.RankingSize == 0 {
		cfg.RankingSize = 5
	}
	if cfg.TrainingFullBelow == 0 {
		cfg.TrainingFullBelow = 2.0
	}
	if cfg.TrainingPartialBelow == 0 {
		cfg.TrainingPartialBelow = 2.5
	}
	if cfg.TrainingBasicBelow == 0 {
		cfg.TrainingBasicBelow = 3.0
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 4
	}
	if cfg.ScoringTimeout == "" {
		cfg.ScoringTimeout = "5s"
	}
	if cfg.DigestChunkSize == 0 {
		cfg.DigestChunkSize = 3000
	}
	if cfg.SMTPHost == "" {
		cfg.SMTPHost = "smtp.gmail.com"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}
	if cfg.ClassifyModel == "" {
		cfg.ClassifyModel = defaultClassifyModel
	}
	if cfg.ClassifyBatchSize == 0 {
		cfg.ClassifyBatchSize = 50
	}

	// Validate
	switch cfg.StoreDriver {
	case "sqlite":
	case "postgres":
		if cfg.WarehouseDSN == "" {
			log.Fatalf("warehouse_dsn is required when store_driver=postgres")
		}
	default:
		log.Fatalf("store_driver must be 'sqlite' or 'postgres', got '%s'", cfg.StoreDriver)
	}
	if cfg.NegativeThreshold >= 0 {
		log.Fatalf("invalid negative_threshold '%f': must be < 0", cfg.NegativeThreshold)
	}
	if cfg.PositiveThreshold <= 0 || cfg.PositiveThreshold > 1 {
		log.Fatalf("invalid positive_threshold '%f': must be in (0, 1]", cfg.PositiveThreshold)
	}
	if cfg.NegativeThreshold < -1 {
		log.Fatalf("invalid negative_threshold '%f': must be in [-1, 0)", cfg.NegativeThreshold)
	}
	if cfg.LowFeedbackThreshold < 0 || cfg.LowFeedbackThreshold > 5 {
		log.Fatalf("invalid low_feedback_threshold '%f': must be in [0, 5]", cfg.LowFeedbackThreshold)
	}
	if cfg.RankingSize < 1 {
		log.Fatalf("invalid ranking_size '%d': must be >= 1", cfg.RankingSize)
	}
	if !(cfg.TrainingFullBelow <= cfg.TrainingPartialBelow && cfg.TrainingPartialBelow <= cfg.TrainingBasicBelow) {
		log.Fatalf("training thresholds must be ordered: full (%f) <= partial (%f) <= basic (%f)",
			cfg.TrainingFullBelow, cfg.TrainingPartialBelow, cfg.TrainingBasicBelow)
	}
	if cfg.WorkerCount < 1 {
		log.Fatalf("invalid worker_count '%d': must be >= 1", cfg.WorkerCount)
	}
	timeout, err := time.ParseDuration(cfg.ScoringTimeout)
	if err != nil || timeout <= 0 {
		log.Fatalf("invalid scoring_timeout '%s': want a positive duration like '5s'", cfg.ScoringTimeout)
	}
	cfg.scoringTimeout = timeout
	if cfg.DigestChunkSize < 200 {
		log.Fatalf("invalid digest_chunk_size '%d': must be >= 200", cfg.DigestChunkSize)
	}
	if cfg.ClassifyCategories && cfg.AnthropicAPIKey == "" {
		log.Fatalf("anthropic_api_key is required when classify_categories is enabled")
	}
	if cfg.ClassifyBatchSize < 1 {
		log.Fatalf("invalid classify_batch_size '%d': must be >= 1", cfg.ClassifyBatchSize)
	}

	return cfg
}

// EmailConfigured reports whether SMTP delivery is possible. Without it,
// email alerts fall back to .eml drafts in the report output dir.
func (c Config) EmailConfigured() bool {
	return c.EmailUser != "" && c.EmailPassword != ""
}

func (c Config) WebhookConfigured() bool {
	return strings.TrimSpace(c.WebhookURL) != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
