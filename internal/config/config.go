package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"menuscan/internal/logger"
	"menuscan/internal/menu"
)

// Known OCR backend names.
const (
	BackendVision     = "vision"
	BackendDocumentAI = "documentai"
	BackendTesseract  = "tesseract"
)

type Config struct {
	// OCR backend selection: "vision" (default), "documentai" or "tesseract"
	OCRBackend string

	// Google Cloud Configuration
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// Menu reconstruction engine settings
	LanguageHints    []string
	MaxColumns       int
	MaxColumnGap     float64
	MaxMatchDistance float64

	// HTTP server
	ListenAddr string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OCRBackend:                 getEnv("OCR_BACKEND", BackendVision),
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		LanguageHints:              getEnvList("MENU_LANGUAGE_HINTS", []string{"ja"}),
		MaxColumns:                 getEnvInt("MENU_MAX_COLUMNS", 8),
		MaxColumnGap:               getEnvFloat("MENU_MAX_COLUMN_GAP", 60),
		MaxMatchDistance:           getEnvFloat("MENU_MAX_MATCH_DISTANCE", menu.DefaultMaxMatchDistance),
		ListenAddr:                 getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCRBackend {
	case BackendVision, BackendDocumentAI, BackendTesseract:
	default:
		return fmt.Errorf("unknown OCR backend %q", c.OCRBackend)
	}
	if c.OCRBackend == BackendDocumentAI && c.DocumentAIProcessorID == "" {
		return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai backend")
	}
	// Engine settings fail fast here, before any image reaches the parser.
	return c.EngineConfig().Validate()
}

// EngineConfig returns the menu reconstruction settings as engine input.
func (c *Config) EngineConfig() menu.Config {
	return menu.Config{
		LanguageHints:    c.LanguageHints,
		MaxColumns:       c.MaxColumns,
		MaxColumnGap:     c.MaxColumnGap,
		MaxMatchDistance: c.MaxMatchDistance,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
