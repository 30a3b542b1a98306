package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Speech  SpeechConfig
	Log     LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// StorageConfig holds record store and blob store configuration
type StorageConfig struct {
	// SnapshotPath is the JSON file holding the full entry store snapshot.
	SnapshotPath string
	// UploadDir is the directory audio blobs are written to.
	UploadDir string
}

// SpeechConfig holds transcription/summarization provider configuration
type SpeechConfig struct {
	// Provider selects the speech provider implementation: "groq" or "mock".
	Provider        string
	APIKey          string
	BaseURL         string
	TranscribeModel string
	ChatModel       string
	// Language is the transcription language hint and the summary target language.
	Language string
	// RequestTimeoutSec bounds a single provider call.
	RequestTimeoutSec int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8787),
		},
		Storage: StorageConfig{
			SnapshotPath: getEnv("STORE_SNAPSHOT_PATH", "data/entries.json"),
			UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		},
		Speech: SpeechConfig{
			Provider:          getEnv("SPEECH_PROVIDER", "groq"),
			APIKey:            getEnv("GROQ_API_KEY", ""),
			BaseURL:           getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			TranscribeModel:   getEnv("GROQ_TRANSCRIBE_MODEL", "whisper-large-v3"),
			ChatModel:         getEnv("GROQ_CHAT_MODEL", "llama-3.3-70b-versatile"),
			Language:          getEnv("SPEECH_LANGUAGE", "zh"),
			RequestTimeoutSec: getEnvAsInt("SPEECH_REQUEST_TIMEOUT_SEC", 60),
		},
		Log: LogConfig{
			Environment: getEnv("APP_ENV", "development"),
		},
	}, nil
}

// ListenAddr returns the address the HTTP server binds to
func (c *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

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
