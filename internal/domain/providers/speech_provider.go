package providers

import (
	"context"
	"errors"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
)

// ErrMalformedInsight marks a provider summarization response that could not
// be parsed into the expected structure.
var ErrMalformedInsight = errors.New("provider returned a malformed insight payload")

// SpeechProvider defines the transcription/summarization boundary. Calls may
// take seconds; implementations must honor the context deadline.
type SpeechProvider interface {
	// Transcribe converts the audio file at audioPath into text.
	Transcribe(ctx context.Context, audioPath string, language string) (string, error)

	// Summarize turns a transcript into a structured insight with at most
	// entities.MaxInsightItems summary lines and quick replies.
	Summarize(ctx context.Context, transcript string) (*entities.Insight, error)
}
