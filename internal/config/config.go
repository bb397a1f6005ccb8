package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/intervu-ai/intervu-server/internal/domain"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	Oracle    OracleConfig
	Interview InterviewConfig
	ImageKit  ImageKitConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// AuthConfig is the interviewer credential gate. PasswordHash, when set,
// takes precedence over the plaintext Password.
type AuthConfig struct {
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
}

type OracleConfig struct {
	APIKey      string
	Model       string
	MaxAttempts int
	RetryDelay  time.Duration
}

type InterviewConfig struct {
	QuestionPlan []domain.Difficulty
	AutoStartSec int
	StaleAfter   time.Duration
}

type ImageKitConfig struct {
	PublicKey   string
	PrivateKey  string
	URLEndpoint string
}

func Load() *Config {
	return &Config{
		App: AppConfig{
			Port: getEnv("APP_PORT", "3000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "intervu"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "secret"),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		},
		Auth: AuthConfig{
			AdminEmail:        getEnv("ADMIN_EMAIL", "interviewe@admin.com"),
			AdminPassword:     getEnv("ADMIN_PASSWORD", "pass@123"),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Oracle: OracleConfig{
			APIKey:      getEnv("ORACLE_API_KEY", ""),
			Model:       getEnv("ORACLE_MODEL", "gemini-2.5-flash-lite"),
			MaxAttempts: getEnvAsInt("ORACLE_MAX_ATTEMPTS", 3),
			RetryDelay:  getEnvAsDuration("ORACLE_RETRY_DELAY", time.Second),
		},
		Interview: InterviewConfig{
			QuestionPlan: parseQuestionPlan(getEnv("INTERVIEW_QUESTION_PLAN", "easy,easy,medium,medium,hard,hard")),
			AutoStartSec: getEnvAsInt("INTERVIEW_AUTO_START_SEC", 5),
			StaleAfter:   getEnvAsDuration("INTERVIEW_STALE_AFTER", 30*time.Minute),
		},
		ImageKit: ImageKitConfig{
			PublicKey:   getEnv("IMAGEKIT_PUBLIC_KEY", ""),
			PrivateKey:  getEnv("IMAGEKIT_PRIVATE_KEY", ""),
			URLEndpoint: getEnv("IMAGEKIT_URL_ENDPOINT", ""),
		},
	}
}

// parseQuestionPlan reads a comma-separated difficulty list, skipping tokens
// that are not a known tier. An empty result falls back to the default plan.
func parseQuestionPlan(raw string) []domain.Difficulty {
	plan := make([]domain.Difficulty, 0, 6)
	for _, token := range strings.Split(raw, ",") {
		d := domain.Difficulty(strings.TrimSpace(strings.ToLower(token)))
		if d.Valid() {
			plan = append(plan, d)
		}
	}
	if len(plan) == 0 {
		return []domain.Difficulty{
			domain.DifficultyEasy, domain.DifficultyEasy,
			domain.DifficultyMedium, domain.DifficultyMedium,
			domain.DifficultyHard, domain.DifficultyHard,
		}
	}
	return plan
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
