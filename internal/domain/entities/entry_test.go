package entities_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
)

func TestNewEntry_InitialState(t *testing.T) {
	now := time.Now()
	audio := entities.AudioRef{
		Filename:     "123_voice1.wav",
		OriginalName: "voice1.wav",
		ContentType:  "audio/wav",
		LocalPath:    "uploads/123_voice1.wav",
	}

	entry := entities.NewEntry(audio, true, now)

	assert.Equal(t, entities.EntryStatusUploaded, entry.Status)
	assert.Equal(t, now, entry.CreatedAt)
	assert.Equal(t, audio, entry.Audio)
	assert.Nil(t, entry.Transcript)
	assert.Nil(t, entry.AI.Emotion)
	assert.Empty(t, entry.AI.Summary)
	assert.Empty(t, entry.AI.QuickReplies)
	assert.Nil(t, entry.Reply.Text)
	assert.Nil(t, entry.Notification.Text)
	assert.True(t, entry.Meta.DemoMode)
	assert.Nil(t, entry.Meta.ProcessingMs)
	assert.Nil(t, entry.Meta.Error)
}

func TestNewEntryID(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	id := entities.NewEntryID(now)
	assert.True(t, strings.HasPrefix(id, "e_20240102030405_"))

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		generated := entities.NewEntryID(now)
		_, dup := seen[generated]
		assert.False(t, dup, "duplicate id %s", generated)
		seen[generated] = struct{}{}
	}
}

func TestInsight_Clamp(t *testing.T) {
	insight := entities.Insight{
		Summary:      []string{"a", "b", "c", "d", "e"},
		QuickReplies: []string{"1", "2", "3", "4"},
	}

	insight.Clamp()

	assert.Equal(t, []string{"a", "b", "c"}, insight.Summary)
	assert.Equal(t, []string{"1", "2", "3"}, insight.QuickReplies)
}

func TestEntry_Clone_Independent(t *testing.T) {
	transcript := "hello"
	emotion := "calm"
	entry := entities.NewEntry(entities.AudioRef{Filename: "a.wav"}, false, time.Now())
	entry.Transcript = &transcript
	entry.AI = entities.Insight{Emotion: &emotion, Summary: []string{"a"}, QuickReplies: []string{"ok"}}

	clone := entry.Clone()
	*clone.Transcript = "changed"
	clone.AI.Summary[0] = "changed"
	*clone.AI.Emotion = "changed"

	assert.Equal(t, "hello", *entry.Transcript)
	assert.Equal(t, "a", entry.AI.Summary[0])
	assert.Equal(t, "calm", *entry.AI.Emotion)
}
