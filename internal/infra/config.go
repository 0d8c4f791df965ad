package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	CozeAPIToken       string
	CozeWorkflowID     string
	CozeBaseURL        string
	CozePollInterval   time.Duration
	CozePollAttempts   int
	CozeRequestTimeout time.Duration
	MaxUploadBytes     int64
	PromptTimeout      time.Duration
	CORSAllowedOrigins []string
	DefaultLocale      string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	// TrustProxyHeaders lets X-Forwarded-For / X-Real-IP replace the peer
	// address. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		CozeAPIToken:       strings.TrimSpace(os.Getenv("COZE_API_TOKEN")),
		CozeWorkflowID:     strings.TrimSpace(os.Getenv("COZE_WORKFLOW_ID")),
		CozeBaseURL:        strings.TrimRight(getEnv("COZE_BASE_URL", "https://api.coze.cn"), "/"),
		CozePollInterval:   time.Millisecond * time.Duration(getEnvInt("COZE_POLL_INTERVAL_MS", 2000)),
		CozePollAttempts:   getEnvInt("COZE_POLL_MAX_ATTEMPTS", 30),
		CozeRequestTimeout: time.Second * time.Duration(getEnvInt("COZE_REQUEST_TIMEOUT_SECONDS", 30)),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		PromptTimeout:      time.Second * time.Duration(getEnvInt("PROMPT_TIMEOUT_SECONDS", 80)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		DefaultLocale:      strings.ToLower(getEnv("DEFAULT_LOCALE", "en")),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustProxyHeaders:  getEnvBool("TRUST_PROXY_HEADERS", false),
	}

	if cfg.CozeAPIToken == "" {
		return nil, fmt.Errorf("COZE_API_TOKEN is required")
	}

	if cfg.CozeWorkflowID == "" {
		return nil, fmt.Errorf("COZE_WORKFLOW_ID is required")
	}

	if cfg.CozePollAttempts <= 0 {
		return nil, fmt.Errorf("COZE_POLL_MAX_ATTEMPTS must be positive, got %d", cfg.CozePollAttempts)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}

	return cfg, nil
}

// PollBudget is the longest a single execution can be polled for.
func (c *Config) PollBudget() time.Duration {
	return c.CozePollInterval * time.Duration(c.CozePollAttempts)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
