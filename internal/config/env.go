package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// TelegramConfig holds Bot API access.
type TelegramConfig struct {
	Token           string
	APIBase         string
	WebhookURL      string // registered with setWebhook at startup when set
	WebhookSecret   string
	Timeout         time.Duration
	DownloadTimeout time.Duration
}

// AdminConfig identifies the privileged chat and the default broadcast target.
type AdminConfig struct {
	ID            int64
	DefaultTarget int64
}

// TemplateConfig controls where templates come from and how they are filled.
type TemplateConfig struct {
	DefaultPath  string
	ReplaceAll   bool
	S3Password   string
	UploadDir    string
	UploadBucket string
	FetchTimeout time.Duration
}

// PipelineConfig tunes text processing.
type PipelineConfig struct {
	MaxChars          int
	HeadlineSentences int
	LongTextThreshold int
}

// WebConfig tunes search and page fetching.
type WebConfig struct {
	SearchURL     string
	UserAgent     string
	FetchTimeout  time.Duration
	SearchTimeout time.Duration
	SearchResults int
	MaxSources    int
	Concurrency   int
}

// PDFConfig selects the text extraction backend.
type PDFConfig struct {
	Backend  string // "fitz"|"native"
	Validate bool
}

// SessionConfig selects the session store.
type SessionConfig struct {
	Backend  string // "memory"|"redis"
	RedisURL string
	TTL      time.Duration
}

// StorageConfig holds S3 access for templates.
type StorageConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
}

// Config is the top-level configuration.
type Config struct {
	Logging  LoggingConfig
	Axiom    AxiomConfig
	Telegram TelegramConfig
	Admin    AdminConfig
	Template TemplateConfig
	Pipeline PipelineConfig
	Web      WebConfig
	PDF      PDFConfig
	Session  SessionConfig
	Storage  StorageConfig
	HTTP     HTTPConfig
}

var ErrMissingToken = errors.New("TELEGRAM_TOKEN is required")

// FromEnv loads configuration from the environment with sensible defaults. A .env file in
// the working directory is read first; variables already set win.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", "logs/lessonplanner.log"),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_lessonplanner",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Telegram = TelegramConfig{
		Token:           getEnv("TELEGRAM_TOKEN", getEnv("TELEGRAM_BOT_TOKEN", "")),
		APIBase:         getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		WebhookURL:      getEnv("TELEGRAM_WEBHOOK_URL", ""),
		WebhookSecret:   getEnv("TELEGRAM_WEBHOOK_SECRET", ""),
		Timeout:         parseDuration(getEnv("TELEGRAM_TIMEOUT", "30s"), 30*time.Second),
		DownloadTimeout: parseDuration(getEnv("TELEGRAM_DOWNLOAD_TIMEOUT", "60s"), 60*time.Second),
	}

	cfg.Admin = AdminConfig{
		ID:            parseInt64(getEnv("ADMIN_ID", ""), 0),
		DefaultTarget: parseInt64(getEnv("TARGET_USER_ID", ""), 0),
	}

	cfg.Template = TemplateConfig{
		DefaultPath:  getEnv("DEFAULT_TEMPLATE_PATH", "./Sample Lesson Plan.docx"),
		ReplaceAll:   parseBool(getEnv("REPLACE_ALL_OCCURRENCES", "false")),
		S3Password:   getEnv("TEMPLATE_S3_PASSWORD", ""),
		UploadDir:    getEnv("TEMPLATE_UPLOAD_DIR", ""),
		UploadBucket: getEnv("TEMPLATE_UPLOAD_BUCKET", ""),
		FetchTimeout: parseDuration(getEnv("TEMPLATE_FETCH_TIMEOUT", "60s"), 60*time.Second),
	}

	cfg.Pipeline = PipelineConfig{
		MaxChars:          parseInt(getEnv("MAX_CHARS", "20000"), 20000),
		HeadlineSentences: parseInt(getEnv("HEADLINE_SENTENCES", "6"), 6),
		LongTextThreshold: parseInt(getEnv("LONG_TEXT_THRESHOLD", "120"), 120),
	}

	cfg.Web = WebConfig{
		SearchURL:     getEnv("SEARCH_URL", "https://html.duckduckgo.com/html/"),
		UserAgent:     getEnv("WEB_USER_AGENT", "Mozilla/5.0"),
		FetchTimeout:  parseDuration(getEnv("WEB_FETCH_TIMEOUT", "15s"), 15*time.Second),
		SearchTimeout: parseDuration(getEnv("WEB_SEARCH_TIMEOUT", "30s"), 30*time.Second),
		SearchResults: parseInt(getEnv("WEB_SEARCH_RESULTS", "5"), 5),
		MaxSources:    parseInt(getEnv("WEB_MAX_SOURCES", "3"), 3),
		Concurrency:   parseInt(getEnv("WEB_FETCH_CONCURRENCY", "3"), 3),
	}

	cfg.PDF = PDFConfig{
		Backend:  strings.ToLower(getEnv("PDF_BACKEND", "fitz")),
		Validate: parseBool(getEnv("PDF_VALIDATE", "false")),
	}

	cfg.Session = SessionConfig{
		Backend:  strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),
		TTL:      parseDuration(getEnv("SESSION_TTL", "24h"), 24*time.Hour),
	}

	cfg.Storage = StorageConfig{
		Region:          getEnv("AWS_REGION", ""),
		Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Bucket:          getEnv("AWS_S3_BUCKET", ""),
	}

	cfg.HTTP = HTTPConfig{
		Port:            getEnv("PORT", "5000"),
		ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
		MaxUploadBytes:  parseInt64(getEnv("MAX_UPLOAD_BYTES", "33554432"), 32<<20),
	}

	return cfg
}

// Validate checks what the bot server cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

// UsesS3 reports whether any template path needs an S3 client.
func (c Config) UsesS3() bool {
	return c.Template.UploadBucket != "" || c.Storage.Bucket != "" || strings.HasPrefix(c.Template.DefaultPath, "s3://")
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseInt64(s string, def int64) int64 {
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
