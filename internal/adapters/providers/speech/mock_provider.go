package speech

import (
	"context"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
	"github.com/sweethome-care/voice-entry-service/internal/domain/providers"
)

// MockProvider implements a deterministic speech provider for demo mode and
// offline development.
type MockProvider struct{}

// NewMockProvider creates a new mock speech provider
func NewMockProvider() providers.SpeechProvider {
	return &MockProvider{}
}

// Transcribe returns a fixed transcript without touching the audio file.
func (m *MockProvider) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	return "今天天氣很好，我去公園散步，還遇到了老朋友，聊了很久。", nil
}

// Summarize returns a fixed insight matching the fixed transcript.
func (m *MockProvider) Summarize(ctx context.Context, transcript string) (*entities.Insight, error) {
	emotion := "開心"
	return &entities.Insight{
		Emotion: &emotion,
		Summary: []string{
			"今天天氣很好",
			"去公園散步",
			"遇到老朋友聊天",
		},
		QuickReplies: []string{
			"聽起來很開心！",
			"下次我陪您一起去",
			"要記得多喝水喔",
		},
	}, nil
}
