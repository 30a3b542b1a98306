package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
	"github.com/sweethome-care/voice-entry-service/internal/domain/providers"
	"github.com/sweethome-care/voice-entry-service/pkg/config"
	"github.com/sweethome-care/voice-entry-service/pkg/retry"
)

// GroqProvider implements the speech provider against Groq's
// OpenAI-compatible API: Whisper for transcription, Llama for summarization.
type GroqProvider struct {
	client          *openai.Client
	transcribeModel string
	chatModel       string
	timeout         time.Duration
	retryCfg        retry.Config
}

// NewGroqProvider creates a Groq-backed speech provider.
func NewGroqProvider(cfg config.SpeechConfig) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("groq api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GroqProvider{
		client:          openai.NewClientWithConfig(clientCfg),
		transcribeModel: cfg.TranscribeModel,
		chatModel:       cfg.ChatModel,
		timeout:         timeout,
		retryCfg:        retry.ProviderDefaults(),
	}, nil
}

// Transcribe converts the audio file into text.
func (p *GroqProvider) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var text string
	err := retry.Do(ctx, p.retryCfg, func() error {
		resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    p.transcribeModel,
			FilePath: audioPath,
			Language: language,
		})
		if err != nil {
			return err
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return text, nil
}

// insightPayload mirrors the JSON object the model is instructed to return.
type insightPayload struct {
	Emotion      string   `json:"emotion"`
	Summary3     []string `json:"summary3"`
	QuickReplies []string `json:"quickReplies"`
}

// Summarize turns a transcript into a structured insight.
func (p *GroqProvider) Summarize(ctx context.Context, transcript string) (*entities.Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var content string
	err := retry.Do(ctx, p.retryCfg, func() error {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: buildSummaryUserPrompt(transcript)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("summarization response has no choices")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("summarization request failed: %w", err)
	}

	return parseInsight(content)
}

// parseInsight decodes the model output into an insight, tolerating markdown
// code fences around the JSON object.
func parseInsight(content string) (*entities.Insight, error) {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	var payload insightPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", providers.ErrMalformedInsight, err)
	}

	insight := &entities.Insight{
		Summary:      payload.Summary3,
		QuickReplies: payload.QuickReplies,
	}
	if payload.Emotion != "" {
		insight.Emotion = &payload.Emotion
	}
	if insight.Summary == nil {
		insight.Summary = []string{}
	}
	if insight.QuickReplies == nil {
		insight.QuickReplies = []string{}
	}
	insight.Clamp()
	return insight, nil
}
