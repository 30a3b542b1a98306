package speech

import (
	"github.com/rs/zerolog/log"

	"github.com/sweethome-care/voice-entry-service/internal/domain/providers"
	"github.com/sweethome-care/voice-entry-service/pkg/config"
)

// NewSpeechProvider selects the configured speech provider. Without an API
// key the mock provider is used so the service stays usable in development.
func NewSpeechProvider(cfg config.SpeechConfig) providers.SpeechProvider {
	if cfg.Provider == "mock" {
		return NewMockProvider()
	}

	provider, err := NewGroqProvider(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("groq provider unavailable, falling back to mock speech provider")
		return NewMockProvider()
	}
	return provider
}
