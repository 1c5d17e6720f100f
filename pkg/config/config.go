package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds properties of the enclosing HTTP surface.
type ServerConfig struct {
	Port            string
	CorsOrigins     []string
	LogLevel        string
	WSPath          string
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// LLMConfig holds the chat-completion backend settings.
type LLMConfig struct {
	OllamaBaseURL   string
	ThinkingModel   string
	GeneratingModel string
}

// TavilyConfig holds the web search backend settings.
type TavilyConfig struct {
	APIKey         string
	InitialResults int
	MaxRetries     int
}

// ResearchConfig bounds the gap-filling feedback loop.
type ResearchConfig struct {
	MaxGapLoops int
}

type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Tavily   TavilyConfig
	Research ResearchConfig
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "3000"),
			CorsOrigins:     splitCommas(getEnv("CORS_ORIGINS", "http://localhost:3000")),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			WSPath:          getEnv("WS_PATH", "/api/v1/ws/research"),
			RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
			RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 100),
		},
		LLM: LLMConfig{
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			ThinkingModel:   getEnv("THINKING_MODEL", "deepseek-r1:8b"),
			GeneratingModel: getEnv("GENERATING_MODEL", "qwen2.5:7b"),
		},
		Tavily: TavilyConfig{
			APIKey:         getEnv("TAVILY_API_KEY", ""),
			InitialResults: getEnvAsInt("TAVILY_INITIAL_RESULTS", 3),
			MaxRetries:     getEnvAsInt("TAVILY_MAX_RETRIES", 3),
		},
		Research: ResearchConfig{
			MaxGapLoops: getEnvAsInt("MAX_GAP_LOOPS", 2),
		},
	}
}

func splitCommas(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
