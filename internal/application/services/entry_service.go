package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
	"github.com/sweethome-care/voice-entry-service/internal/domain/providers"
	"github.com/sweethome-care/voice-entry-service/internal/domain/repositories"
	apperrors "github.com/sweethome-care/voice-entry-service/pkg/errors"
)

// notificationText is the fixed caregiver notice written when a family
// member replies.
const notificationText = "孩子已回應 ❤️"

// EntryService owns the entry lifecycle state machine: it enforces transition
// legality, runs the processing pipeline and applies results or failures
// atomically through the entry repository.
type EntryService struct {
	repo         repositories.EntryRepository
	blobs        repositories.BlobStore
	provider     providers.SpeechProvider
	demoProvider providers.SpeechProvider
	language     string

	// mu guards inflight, the per-id conflict gate for the
	// UPLOADED/READY/FAILED -> PROCESSING transition.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewEntryService creates a new entry lifecycle service. demoProvider handles
// entries created in demo mode; it may equal provider.
func NewEntryService(
	repo repositories.EntryRepository,
	blobs repositories.BlobStore,
	provider providers.SpeechProvider,
	demoProvider providers.SpeechProvider,
	language string,
) *EntryService {
	if demoProvider == nil {
		demoProvider = provider
	}
	return &EntryService{
		repo:         repo,
		blobs:        blobs,
		provider:     provider,
		demoProvider: demoProvider,
		language:     language,
		inflight:     make(map[string]struct{}),
	}
}

// Create stores the uploaded audio and creates an entry in status UPLOADED.
func (s *EntryService) Create(ctx context.Context, audio io.Reader, originalName, contentType string, demoMode bool) (*entities.Entry, error) {
	ref, err := s.blobs.Store(audio, originalName, contentType)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store audio", err)
	}

	entry := entities.NewEntry(ref, demoMode, time.Now())
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	log.Info().Str("entry_id", entry.ID).Str("audio", ref.Filename).Msg("entry created")
	return entry, nil
}

// Get returns the entry by id.
func (s *EntryService) Get(ctx context.Context, id string) (*entities.Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all entries, newest first.
func (s *EntryService) List(ctx context.Context) ([]*entities.Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Process runs the transcription/summarization pipeline for an entry. Exactly
// one pipeline run per id is admitted at a time; a concurrent request on the
// same id gets a conflict error. Reprocessing a READY or FAILED entry is
// allowed.
func (s *EntryService) Process(ctx context.Context, id string) (*entities.Entry, error) {
	entry, err := s.admit(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(id)

	// Persist PROCESSING before the slow provider calls so concurrent
	// observers see the transition.
	entry.Status = entities.EntryStatusProcessing
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	start := time.Now()
	provider := s.provider
	if entry.Meta.DemoMode {
		provider = s.demoProvider
	}

	log.Info().Str("entry_id", id).Bool("demo_mode", entry.Meta.DemoMode).Msg("starting ai pipeline")

	transcript, err := provider.Transcribe(ctx, entry.Audio.LocalPath, s.language)
	if err != nil {
		return s.fail(ctx, entry, apperrors.NewExternalError("transcription failed", err))
	}

	insight, err := provider.Summarize(ctx, transcript)
	if err != nil {
		return s.fail(ctx, entry, apperrors.NewExternalError("summarization failed", err))
	}
	insight.Clamp()

	// Terminal success state: transcript, insight, READY and the elapsed time
	// land in one persisted mutation.
	elapsed := time.Since(start).Milliseconds()
	entry.Transcript = &transcript
	entry.AI = *insight
	entry.Status = entities.EntryStatusReady
	entry.Meta.ProcessingMs = &elapsed
	entry.Meta.Error = nil
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	log.Info().Str("entry_id", id).Int64("processing_ms", elapsed).Msg("ai pipeline completed")
	return entry, nil
}

// Reply records a family member's reply and derives the caregiver
// notification. A reply is accepted from any state except an in-flight
// PROCESSING pipeline; a second reply overwrites the first.
func (s *EntryService) Reply(ctx context.Context, id, text string) (*entities.Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text is required")
	}

	// Replies take the same per-id slot as pipeline runs so mutations on one
	// entry never interleave.
	s.mu.Lock()
	if _, busy := s.inflight[id]; busy {
		s.mu.Unlock()
		return nil, apperrors.NewConflictError("entry is currently processing")
	}
	s.inflight[id] = struct{}{}
	s.mu.Unlock()
	defer s.release(id)

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == entities.EntryStatusProcessing {
		return nil, apperrors.NewConflictError("entry is currently processing")
	}

	now := time.Now()
	notice := notificationText
	entry.Reply = entities.Reply{Text: &text, SentAt: &now}
	entry.Notification = entities.Notification{Text: &notice, SentAt: &now}
	entry.Status = entities.EntryStatusReplied

	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	log.Info().Str("entry_id", id).Msg("reply recorded")
	return entry, nil
}

// admit loads the entry and claims the per-id processing slot.
func (s *EntryService) admit(ctx context.Context, id string) (*entities.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[id]; busy {
		return nil, apperrors.NewConflictError("entry is already processing")
	}

	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status == entities.EntryStatusProcessing {
		return nil, apperrors.NewConflictError("entry is already processing")
	}

	s.inflight[id] = struct{}{}
	return entry, nil
}

func (s *EntryService) release(id string) {
	s.mu.Lock()
	delete(s.inflight, id)
	s.mu.Unlock()
}

// fail moves the entry to FAILED with the cause recorded, leaving transcript
// and insight at their prior values. The pipeline error is returned so the
// transport can surface it, together with the terminal entry state.
func (s *EntryService) fail(ctx context.Context, entry *entities.Entry, cause *apperrors.AppError) (*entities.Entry, error) {
	msg := cause.Error()
	entry.Status = entities.EntryStatusFailed
	entry.Meta.Error = &msg

	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}

	log.Error().Str("entry_id", entry.ID).Err(cause).Msg("ai pipeline failed")
	return entry, cause
}
