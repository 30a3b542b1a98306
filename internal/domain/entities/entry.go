package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntryStatus represents the lifecycle state of an entry
type EntryStatus string

const (
	EntryStatusUploaded   EntryStatus = "UPLOADED"
	EntryStatusProcessing EntryStatus = "PROCESSING"
	EntryStatusReady      EntryStatus = "READY"
	EntryStatusFailed     EntryStatus = "FAILED"
	EntryStatusReplied    EntryStatus = "REPLIED"
)

// MaxInsightItems caps the summary lines and quick replies of an insight.
const MaxInsightItems = 3

// AudioRef points at the stored audio blob of an entry. Immutable after creation.
type AudioRef struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalName"`
	ContentType  string `json:"contentType"`
	LocalPath    string `json:"localPath"`
}

// Insight is the structured result of summarizing a transcript.
type Insight struct {
	Emotion      *string  `json:"emotion"`
	Summary      []string `json:"summary3"`
	QuickReplies []string `json:"quickReplies"`
}

// Clamp truncates summary lines and quick replies to MaxInsightItems.
func (i *Insight) Clamp() {
	if len(i.Summary) > MaxInsightItems {
		i.Summary = i.Summary[:MaxInsightItems]
	}
	if len(i.QuickReplies) > MaxInsightItems {
		i.QuickReplies = i.QuickReplies[:MaxInsightItems]
	}
}

// Reply is a family member's response to an entry.
type Reply struct {
	Text   *string    `json:"text"`
	SentAt *time.Time `json:"sentAt"`
}

// Notification informs the caregiver side that a reply occurred.
type Notification struct {
	Text   *string    `json:"text"`
	SentAt *time.Time `json:"sentAt"`
}

// Meta carries processing bookkeeping for an entry.
type Meta struct {
	DemoMode     bool    `json:"demoMode"`
	ProcessingMs *int64  `json:"processingMs"`
	Error        *string `json:"error"`
}

// Entry represents one submitted recording and its derived artifacts.
type Entry struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"createdAt"`
	Status       EntryStatus  `json:"status"`
	Audio        AudioRef     `json:"audio"`
	Transcript   *string      `json:"transcript"`
	AI           Insight      `json:"ai"`
	Reply        Reply        `json:"reply"`
	Notification Notification `json:"notification"`
	Meta         Meta         `json:"meta"`
}

// NewEntry creates an entry in its initial state: status UPLOADED, no
// transcript, empty insight.
func NewEntry(audio AudioRef, demoMode bool, now time.Time) *Entry {
	return &Entry{
		ID:        NewEntryID(now),
		CreatedAt: now,
		Status:    EntryStatusUploaded,
		Audio:     audio,
		AI: Insight{
			Summary:      []string{},
			QuickReplies: []string{},
		},
		Meta: Meta{DemoMode: demoMode},
	}
}

// NewEntryID generates an entry id from a timestamp plus a collision-resistant
// random component. Ids are unique, not sortable.
func NewEntryID(now time.Time) string {
	return fmt.Sprintf("e_%s_%s", now.UTC().Format("20060102150405"), uuid.NewString()[:8])
}

// Clone returns a deep copy of the entry so callers never share mutable state
// with the record store.
func (e *Entry) Clone() *Entry {
	clone := *e
	clone.Transcript = clonePtr(e.Transcript)
	clone.AI.Emotion = clonePtr(e.AI.Emotion)
	clone.AI.Summary = append([]string(nil), e.AI.Summary...)
	clone.AI.QuickReplies = append([]string(nil), e.AI.QuickReplies...)
	clone.Reply.Text = clonePtr(e.Reply.Text)
	clone.Reply.SentAt = clonePtr(e.Reply.SentAt)
	clone.Notification.Text = clonePtr(e.Notification.Text)
	clone.Notification.SentAt = clonePtr(e.Notification.SentAt)
	clone.Meta.ProcessingMs = clonePtr(e.Meta.ProcessingMs)
	clone.Meta.Error = clonePtr(e.Meta.Error)
	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
