package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	AppPassword   string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	AssistantID   string

	SessionSecret string
	SessionTTL    time.Duration

	PollInterval    time.Duration
	PollMaxInterval time.Duration
	RunTimeout      time.Duration
	MaxPolls        int
	DeleteThreads   bool

	PromptsFile string

	GuidelinePath      string
	GuidelineFilename  string
	GuidelineObjectKey string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	LogDir string
}

// LoadConfig reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8000"),

		AppPassword:   getEnv("APP_PASSWORD", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		AssistantID:   getEnv("ASSISTANT_ID", ""),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvDuration("SESSION_TTL", 12*time.Hour),

		PollInterval:    getEnvDuration("POLL_INTERVAL", 500*time.Millisecond),
		PollMaxInterval: getEnvDuration("POLL_MAX_INTERVAL", 3*time.Second),
		RunTimeout:      getEnvDuration("RUN_TIMEOUT", 2*time.Minute),
		MaxPolls:        getEnvInt("MAX_POLLS", 0),
		DeleteThreads:   getEnvBool("ASSISTANT_DELETE_THREADS", false),

		PromptsFile: getEnv("PROMPTS_FILE", ""),

		GuidelinePath:      getEnv("GUIDELINE_PATH", ""),
		GuidelineFilename:  getEnv("GUIDELINE_FILENAME", "writing_guideline.pdf"),
		GuidelineObjectKey: getEnv("GUIDELINE_OBJECT_KEY", "guidelines/writing_guideline.pdf"),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "ganadabeot"),
		MinIOUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", ""),

		LogDir: getEnv("LOG_DIR", "./logs"),
	}
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.AppPassword == "" {
		errs = append(errs, errors.New("APP_PASSWORD is not set"))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
	}
	if c.AssistantID == "" {
		errs = append(errs, errors.New("ASSISTANT_ID is not set"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL must be positive"))
	}
	if c.RunTimeout <= 0 {
		errs = append(errs, errors.New("RUN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// ExchangeLogEnabled is true when a database is configured for the exchange log.
func (c Config) ExchangeLogEnabled() bool {
	return c.DBHost != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
