package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string `validate:"required"`
	DBPort        string `validate:"required,numeric"`
	DBUser        string `validate:"required"`
	DBPassword    string
	DBName        string `validate:"required"`
	DBSSLMode     string `validate:"oneof=disable require verify-ca verify-full"`
	JWTSecret     string `validate:"required"`
	ServerPort    string `validate:"required,numeric"`
	LogFormat     string `validate:"oneof=text json"`
	CORSOrigins   string
	AuthRateLimit int `validate:"min=1"`

	Quiz QuizDefaults
}

// QuizDefaults are used when the settings row has not been created yet.
type QuizDefaults struct {
	QuestionsPerTest int `validate:"min=5,max=100"`
	TimePerQuestion  int `validate:"min=10,max=300"`
	AnonDailyLimit   int `validate:"min=1"`
	FreeDailyLimit   int `validate:"min=1"`
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "csshub"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		AuthRateLimit: getEnvInt("AUTH_RATE_LIMIT", 20),
		Quiz: QuizDefaults{
			QuestionsPerTest: getEnvInt("QUIZ_DEFAULT_QUESTIONS_PER_TEST", 10),
			TimePerQuestion:  getEnvInt("QUIZ_DEFAULT_TIME_PER_QUESTION", 30),
			AnonDailyLimit:   getEnvInt("QUIZ_ANON_DAILY_LIMIT", 3),
			FreeDailyLimit:   getEnvInt("QUIZ_FREE_DAILY_LIMIT", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges; LoadConfig calls it, tests building a Config by hand may too.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
