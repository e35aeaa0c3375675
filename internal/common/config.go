package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Parser   ParserConfig
}

// DatabaseConfig holds database-related configuration.
// DSN is optional; when empty, batch runs are not persisted.
type DatabaseConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// OCRConfig holds recognition-related configuration
type OCRConfig struct {
	Pdftoppm    string
	Tesseract   string
	TessdataDir string
	DPI         int
	MaxPages    int
	Concurrency int
	Timeout     time.Duration
}

// LLMConfig holds generative-model configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// ParserConfig holds deterministic-parser tunables
type ParserConfig struct {
	FallbackThreshold int
	LookaheadLines    int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", ""),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			DPI:         getEnvAsInt("OCR_DPI", 200),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 0),
			Concurrency: getEnvAsInt("OCR_CONCURRENCY", 10),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 5*time.Minute),
		},
		LLM: LLMConfig{
			Model:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			BaseURL:     getEnv("GEMINI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 45*time.Second),
		},
		Parser: ParserConfig{
			FallbackThreshold: getEnvAsInt("PARSER_FALLBACK_THRESHOLD", 5),
			LookaheadLines:    getEnvAsInt("PARSER_LOOKAHEAD_LINES", 3),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.OCR.Concurrency <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_CONCURRENCY must be positive", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	if c.Parser.FallbackThreshold < 0 {
		return NewAppError("CONFIG_ERROR", "PARSER_FALLBACK_THRESHOLD must be >= 0", ErrInvalidInput)
	}
	if c.Parser.LookaheadLines < 0 {
		return NewAppError("CONFIG_ERROR", "PARSER_LOOKAHEAD_LINES must be >= 0", ErrInvalidInput)
	}
	return nil
}
