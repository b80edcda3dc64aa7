package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/glossa/glossa/internal/ai"
	"github.com/glossa/glossa/internal/core"
	"github.com/glossa/glossa/internal/db"
	"github.com/glossa/glossa/internal/parser"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// Handler contains all HTTP handlers.
type Handler struct {
	Processor *core.Processor
	validate  *validator.Validate
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

type detectRequest struct {
	Text string `json:"text" validate:"notblank"`
}

type detectResponse struct {
	DetectedLanguage string `json:"detectedLanguage"`
}

type translateRequest struct {
	Text           string `json:"text" validate:"notblank"`
	SourceLanguage string `json:"sourceLanguage" validate:"notblank"`
	TargetLanguage string `json:"targetLanguage" validate:"notblank"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	ID             int    `json:"id"`
	RequestID      string `json:"requestId"`
}

type documentResponse struct {
	translateResponse
	Filename string `json:"filename"`
}

type statsResponse struct {
	TotalEntries int `json:"totalEntries"`
}

// NewHandler creates a Handler for the processor.
func NewHandler(processor *core.Processor) *Handler {
	validate := validator.New()
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validation: %v", err))
	}
	return &Handler{Processor: processor, validate: validate}
}

// Register adds every route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /detect-language", h.DetectLanguage)
	mux.HandleFunc("POST /translate", h.Translate)
	mux.HandleFunc("POST /translate/document", h.TranslateDocument)
	mux.HandleFunc("GET /dictionary", h.LookupWord)
	mux.HandleFunc("GET /dictionary/history", h.History)
	mux.HandleFunc("GET /dictionary/entries/{id}", h.GetEntry)
	mux.HandleFunc("GET /dictionary/export", h.ExportEntries)
	mux.HandleFunc("GET /dictionary/stats", h.GetStats)
	mux.HandleFunc("GET /languages", h.ListLanguages)
	mux.HandleFunc("GET /health", Health)
}

// Routes returns the full handler chain: recover, request id, access log, CORS.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)

	var handler http.Handler = mux
	handler = CorsMiddleware(allowedOrigins)(handler)
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoverMiddleware(handler)
	return handler
}

// decodeJSON reads a bounded JSON body into dst and validates it.
// Returns false after writing a 400 response.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, invalidMessage string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, invalidMessage)
		return false
	}
	return true
}

// DetectLanguage handles POST /detect-language.
func (h *Handler) DetectLanguage(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if !h.decodeJSON(w, r, &req, "Text is required") {
		return
	}

	code, err := h.Processor.DetectLanguage(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err, "Language detection service unavailable", "Failed to detect language")
		return
	}

	respondJSON(w, http.StatusOK, detectResponse{DetectedLanguage: code})
}

// Translate handles POST /translate.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !h.decodeJSON(w, r, &req, "Missing required parameters") {
		return
	}

	result, err := h.Processor.Translate(r.Context(), core.TranslationRequest{
		Text:           req.Text,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
	})
	if err != nil {
		writeServiceError(w, r, err, "Translation service unavailable", "Failed to translate text")
		return
	}

	respondJSON(w, http.StatusOK, translateResponse{
		TranslatedText: result.TranslatedText,
		ID:             result.ID,
		RequestID:      RequestIDFromContext(r.Context()),
	})
}

// TranslateDocument handles POST /translate/document.
func (h *Handler) TranslateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, parser.MaxFileSize+maxJSONBody)
	if err := r.ParseMultipartForm(parser.MaxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > parser.MaxFileSize {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("File too large (max %d bytes)", parser.MaxFileSize))
		return
	}

	source := r.FormValue("sourceLanguage")
	target := r.FormValue("targetLanguage")
	if source == "" || target == "" {
		respondError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	result, err := h.Processor.TranslateDocument(r.Context(), header.Filename, file, source, target)
	if err != nil {
		writeServiceError(w, r, err, "Translation service unavailable", "Failed to translate document")
		return
	}

	respondJSON(w, http.StatusOK, documentResponse{
		translateResponse: translateResponse{
			TranslatedText: result.TranslatedText,
			ID:             result.ID,
			RequestID:      RequestIDFromContext(r.Context()),
		},
		Filename: result.Filename,
	})
}

// LookupWord handles GET /dictionary?word=&language=.
func (h *Handler) LookupWord(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	language := r.URL.Query().Get("language")
	if word == "" || language == "" {
		respondError(w, http.StatusBadRequest, "Word and language are required")
		return
	}

	entry, err := h.Processor.LookupWord(r.Context(), word, language)
	if err != nil {
		writeServiceError(w, r, err, "Dictionary service unavailable", "Failed to lookup word")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// History handles GET /dictionary/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Processor.History(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to fetch dictionary history")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetEntry handles GET /dictionary/entries/{id}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	entry, err := h.Processor.GetEntry(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to get dictionary entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// ExportEntries handles GET /dictionary/export?format=json|yaml.
func (h *Handler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	var buf bytes.Buffer
	if err := h.Processor.ExportEntries(r.Context(), &buf, format); err != nil {
		writeServiceError(w, r, err, "", "Failed to export dictionary")
		return
	}

	contentType := "application/json"
	if format == core.ExportYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=dictionary_export.%s", format))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Default().Error("failed to write export", "error", err)
	}
}

// GetStats handles GET /dictionary/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.Processor.CountEntries(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "", "Failed to get stats")
		return
	}

	respondJSON(w, http.StatusOK, statsResponse{TotalEntries: count})
}

// ListLanguages handles GET /languages.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, core.Languages)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeServiceError maps a processor error to a status code and message.
// Details stay in the server log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, unavailable, fallback string) {
	logger := slog.Default().With("requestId", RequestIDFromContext(r.Context()), "path", r.URL.Path)

	switch {
	case errors.Is(err, core.ErrMissingInput):
		respondError(w, http.StatusBadRequest, "Missing required parameters")
	case errors.Is(err, parser.ErrInvalidFilename),
		errors.Is(err, parser.ErrUnsupportedType),
		errors.Is(err, parser.ErrNoText),
		errors.Is(err, parser.ErrTooLarge):
		respondError(w, http.StatusBadRequest, documentErrorMessage(err))
	case errors.Is(err, core.ErrWordTooLong):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Word is too long (max %d characters)", db.MaxWordLength))
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, "Dictionary entry not found")
	case errors.Is(err, ai.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, "API key not configured")
	case errors.Is(err, ai.ErrEmptyText):
		respondError(w, http.StatusBadRequest, "Text is required")
	case unavailable != "" && ai.IsUpstreamError(err):
		logger.Error("model API error", "error", err)
		respondError(w, http.StatusServiceUnavailable, unavailable)
	case errors.Is(err, core.ErrMalformedDefinition):
		respondError(w, http.StatusInternalServerError, "Failed to parse dictionary response")
	default:
		logger.Error(fallback, "error", err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func documentErrorMessage(err error) string {
	switch {
	case errors.Is(err, parser.ErrInvalidFilename):
		return "Invalid filename"
	case errors.Is(err, parser.ErrUnsupportedType):
		return "Unsupported file type (only .pdf and .docx are supported)"
	case errors.Is(err, parser.ErrTooLarge):
		return fmt.Sprintf("File too large (max %d bytes)", parser.MaxFileSize)
	default:
		return "No text content found in document"
	}
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// respondError sends an error JSON response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
