package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
	apperrors "github.com/sweethome-care/voice-entry-service/pkg/errors"
)

// maxUploadBytes bounds the multipart form kept in memory per create request.
const maxUploadBytes = 32 << 20

// EntryService defines the lifecycle operations used by the handler.
type EntryService interface {
	Create(ctx context.Context, audio io.Reader, originalName, contentType string, demoMode bool) (*entities.Entry, error)
	Process(ctx context.Context, id string) (*entities.Entry, error)
	Get(ctx context.Context, id string) (*entities.Entry, error)
	Reply(ctx context.Context, id, text string) (*entities.Entry, error)
	List(ctx context.Context) ([]*entities.Entry, error)
}

// EntryHandler handles entry-related HTTP requests
type EntryHandler struct {
	service EntryService
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(service EntryService) *EntryHandler {
	return &EntryHandler{service: service}
}

// CreateEntry handles POST /v1/entries
func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "audio file is required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	// Demo mode defaults to on unless the client opts out.
	demoMode := r.FormValue("demoMode") != "false"

	entry, err := h.service.Create(r.Context(), file, header.Filename, header.Header.Get("Content-Type"), demoMode)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"id":     entry.ID,
		"status": entry.Status,
	})
}

// ProcessEntry handles POST /v1/entries/{id}/process
func (h *EntryHandler) ProcessEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	entry, err := h.service.Process(r.Context(), id)
	if err != nil {
		switch apperrors.TypeOf(err) {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, "entry not found")
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, "entry is already processing")
		case apperrors.ErrorTypeExternal:
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{
				"error":  "AI 處理失敗",
				"detail": errorDetail(err),
			})
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":     entry.ID,
		"status": entry.Status,
		"ai":     entry.AI,
	})
}

// GetEntry handles GET /v1/entries/{id}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeNotFound {
			respondWithError(w, http.StatusNotFound, "entry not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

type replyRequest struct {
	Text string `json:"text"`
}

// ReplyEntry handles POST /v1/entries/{id}/reply
func (h *EntryHandler) ReplyEntry(w http.ResponseWriter, r *http.Request) {
	var payload replyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	entry, err := h.service.Reply(r.Context(), r.PathValue("id"), payload.Text)
	if err != nil {
		switch apperrors.TypeOf(err) {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, "text is required")
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, "entry not found")
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, "entry is currently processing")
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":           entry.ID,
		"status":       entry.Status,
		"notification": entry.Notification,
	})
}

// ListEntries handles GET /v1/entries
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list entries")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// errorDetail extracts the underlying cause from an AppError for the error
// envelope of a failed pipeline run.
func errorDetail(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			return appErr.Err.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
