package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendAnthropic = "anthropic"
	BackendOllama    = "ollama"
	BackendGemini    = "gemini"
)

// Config is loaded once at startup and passed to constructors by value.
type Config struct {
	LogLevel string `yaml:"log_level"`

	SyllabiDir   string `yaml:"syllabi_dir"`
	ResultsDir   string `yaml:"results_dir"`
	MissingDir   string `yaml:"missing_dir"`
	ProgramsFile string `yaml:"programs_file"`
	PromptPath   string `yaml:"prompt_path"`

	JudgeBackend           string `yaml:"judge_backend"`
	JudgeTimeoutSeconds    int    `yaml:"judge_timeout_seconds"`
	JudgeRequestsPerMinute int    `yaml:"judge_requests_per_minute"`

	AnthropicAPIKey    string `yaml:"anthropic_api_key"`
	AnthropicBaseURL   string `yaml:"anthropic_base_url"`
	AnthropicModel     string `yaml:"anthropic_model"`
	AnthropicMaxTokens int    `yaml:"anthropic_max_tokens"`

	OllamaURL   string `yaml:"ollama_url"`
	OllamaModel string `yaml:"ollama_model"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`

	BreakerEnabled            bool    `yaml:"breaker_enabled"`
	BreakerMinRequests        int     `yaml:"breaker_min_requests"`
	BreakerFailureRatio       float64 `yaml:"breaker_failure_ratio"`
	BreakerOpenTimeoutSeconds int     `yaml:"breaker_open_timeout_seconds"`

	MetricsTextfile string `yaml:"metrics_textfile"`

	ResultsPostgresDSN string `yaml:"results_postgres_dsn"`
	NATSURL            string `yaml:"nats_url"`
	NATSSubject        string `yaml:"nats_subject"`

	APIPort string `yaml:"api_port"`
}

func Default() Config {
	return Config{
		LogLevel: "info",

		SyllabiDir:   "./syllabi",
		ResultsDir:   "./data/results",
		MissingDir:   "./data/missing",
		ProgramsFile: "./data/programs.json",

		JudgeBackend:        BackendAnthropic,
		JudgeTimeoutSeconds: 600,

		AnthropicBaseURL:   "https://api.anthropic.com/v1",
		AnthropicModel:     "claude-sonnet-4-5-20250929",
		AnthropicMaxTokens: 4096,

		OllamaURL:   "http://localhost:11434",
		OllamaModel: "llama3.1:8b",

		GeminiModel: "gemini-2.5-flash",

		BreakerEnabled:            true,
		BreakerMinRequests:        5,
		BreakerFailureRatio:       1.0,
		BreakerOpenTimeoutSeconds: 60,

		NATSSubject: "syllabi.records",

		APIPort: "8080",
	}
}

// Load applies defaults, then the YAML file named by REVIEWER_CONFIG, then
// environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("REVIEWER_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.LogLevel = mustEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.SyllabiDir = mustEnv("SYLLABI_DIR", cfg.SyllabiDir)
	cfg.ResultsDir = mustEnv("RESULTS_DIR", cfg.ResultsDir)
	cfg.MissingDir = mustEnv("MISSING_DIR", cfg.MissingDir)
	cfg.ProgramsFile = mustEnv("PROGRAMS_FILE", cfg.ProgramsFile)
	cfg.PromptPath = mustEnv("PROMPT_PATH", cfg.PromptPath)

	cfg.JudgeBackend = strings.ToLower(mustEnv("JUDGE_BACKEND", cfg.JudgeBackend))
	cfg.JudgeTimeoutSeconds = mustEnvInt("JUDGE_TIMEOUT_SECONDS", cfg.JudgeTimeoutSeconds)
	cfg.JudgeRequestsPerMinute = mustEnvInt("JUDGE_REQUESTS_PER_MINUTE", cfg.JudgeRequestsPerMinute)

	cfg.AnthropicAPIKey = mustEnv("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.AnthropicBaseURL = mustEnv("ANTHROPIC_BASE_URL", cfg.AnthropicBaseURL)
	cfg.AnthropicModel = mustEnv("ANTHROPIC_MODEL", cfg.AnthropicModel)
	cfg.AnthropicMaxTokens = mustEnvInt("ANTHROPIC_MAX_TOKENS", cfg.AnthropicMaxTokens)

	cfg.OllamaURL = mustEnv("OLLAMA_URL", cfg.OllamaURL)
	cfg.OllamaModel = mustEnv("OLLAMA_MODEL", cfg.OllamaModel)

	cfg.GeminiAPIKey = mustEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = mustEnv("GEMINI_MODEL", cfg.GeminiModel)

	cfg.BreakerEnabled = mustEnvBool("BREAKER_ENABLED", cfg.BreakerEnabled)
	cfg.BreakerMinRequests = mustEnvInt("BREAKER_MIN_REQUESTS", cfg.BreakerMinRequests)
	cfg.BreakerFailureRatio = mustEnvFloat("BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio)
	cfg.BreakerOpenTimeoutSeconds = mustEnvInt("BREAKER_OPEN_TIMEOUT_SECONDS", cfg.BreakerOpenTimeoutSeconds)

	cfg.MetricsTextfile = mustEnv("METRICS_TEXTFILE", cfg.MetricsTextfile)

	cfg.ResultsPostgresDSN = mustEnv("RESULTS_POSTGRES_DSN", cfg.ResultsPostgresDSN)
	cfg.NATSURL = mustEnv("NATS_URL", cfg.NATSURL)
	cfg.NATSSubject = mustEnv("NATS_SUBJECT", cfg.NATSSubject)

	cfg.APIPort = mustEnv("API_PORT", cfg.APIPort)

	return cfg, nil
}

// Validate checks the settings needed to run an analysis.
func (c Config) Validate() error {
	var errs []error

	switch c.JudgeBackend {
	case BackendAnthropic:
		if strings.TrimSpace(c.AnthropicAPIKey) == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic backend"))
		}
	case BackendGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini backend"))
		}
	case BackendOllama:
		if strings.TrimSpace(c.OllamaURL) == "" {
			errs = append(errs, errors.New("OLLAMA_URL is required for the ollama backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown JUDGE_BACKEND %q (want anthropic, ollama or gemini)", c.JudgeBackend))
	}

	if c.JudgeTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("JUDGE_TIMEOUT_SECONDS must be positive, got %d", c.JudgeTimeoutSeconds))
	}
	if c.JudgeRequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("JUDGE_REQUESTS_PER_MINUTE must not be negative, got %d", c.JudgeRequestsPerMinute))
	}
	if c.AnthropicMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("ANTHROPIC_MAX_TOKENS must be positive, got %d", c.AnthropicMaxTokens))
	}
	if c.BreakerMinRequests <= 0 {
		errs = append(errs, fmt.Errorf("BREAKER_MIN_REQUESTS must be positive, got %d", c.BreakerMinRequests))
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		errs = append(errs, fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0,1], got %v", c.BreakerFailureRatio))
	}
	if c.BreakerOpenTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("BREAKER_OPEN_TIMEOUT_SECONDS must be positive, got %d", c.BreakerOpenTimeoutSeconds))
	}
	if strings.TrimSpace(c.SyllabiDir) == "" || strings.TrimSpace(c.ResultsDir) == "" {
		errs = append(errs, errors.New("SYLLABI_DIR and RESULTS_DIR are required"))
	}

	return errors.Join(errs...)
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
