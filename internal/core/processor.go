package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/glossa/glossa/internal/ai"
	"github.com/glossa/glossa/internal/db"
	"github.com/glossa/glossa/internal/parser"
)

// HistoryLimit is the number of entries returned by History.
const HistoryLimit = 10

var (
	ErrMissingInput        = errors.New("missing required input")
	ErrMalformedDefinition = errors.New("malformed dictionary response")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
	ErrWordTooLong         = fmt.Errorf("word longer than %d characters", db.MaxWordLength)
)

// Store is the persistence the processor needs; *db.Database implements it.
type Store interface {
	FindEntry(ctx context.Context, word, language string) (*db.DictionaryEntry, error)
	SaveEntry(ctx context.Context, entry *db.DictionaryEntry) (*db.DictionaryEntry, bool, error)
	ListRecent(ctx context.Context, limit uint64) ([]db.DictionaryEntry, error)
	List(ctx context.Context) ([]db.DictionaryEntry, error)
	Get(ctx context.Context, id int64) (*db.DictionaryEntry, error)
	Count(ctx context.Context) (int, error)
}

// Processor orchestrates translation, detection and dictionary lookups
type Processor struct {
	DB          Store
	AI          ai.Gateway
	Model       string
	Temperature float64

	lookups singleflight.Group
	now     func() time.Time
	newID   func() int
}

// TranslationRequest is the input of Translate. SourceLanguage may be AutoDetect.
type TranslationRequest struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
}

// TranslationResult carries the translated text and a non-durable list key.
type TranslationResult struct {
	TranslatedText string `json:"translatedText"`
	ID             int    `json:"id"`
}

// DocumentTranslation is the result of translating an uploaded document.
type DocumentTranslation struct {
	TranslationResult
	Filename string `json:"filename"`
}

// NewProcessor creates a new Processor instance
func NewProcessor(store Store, gateway ai.Gateway, model string, temperature float64) *Processor {
	return &Processor{
		DB:          store,
		AI:          gateway,
		Model:       model,
		Temperature: temperature,
	}
}

func (p *Processor) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (p *Processor) translationID() int {
	if p.newID != nil {
		return p.newID()
	}
	return rand.IntN(1000)
}

func (p *Processor) request(system, user string) ai.Request {
	return ai.Request{
		System:      system,
		User:        user,
		Model:       p.Model,
		Temperature: p.Temperature,
	}
}

// DetectLanguage asks the model for the ISO code of text's language.
// The code is lower-case letters only and may be empty.
func (p *Processor) DetectLanguage(ctx context.Context, text string) (string, error) {
	reply, err := p.AI.Complete(ctx, p.request(detectLanguagePrompt, text))
	if err != nil {
		return "", fmt.Errorf("failed to detect language: %w", err)
	}
	return normalizeLanguageCode(reply), nil
}

// Translate translates req.Text into req.TargetLanguage.
func (p *Processor) Translate(ctx context.Context, req TranslationRequest) (*TranslationResult, error) {
	if req.SourceLanguage == "" || req.TargetLanguage == "" {
		return nil, fmt.Errorf("%w: source and target language", ErrMissingInput)
	}

	reply, err := p.AI.Complete(ctx, p.request(translatePrompt(req.SourceLanguage, req.TargetLanguage), req.Text))
	if err != nil {
		return nil, fmt.Errorf("failed to translate text: %w", err)
	}

	return &TranslationResult{
		TranslatedText: reply,
		ID:             p.translationID(),
	}, nil
}

// TranslateDocument extracts the text of an uploaded PDF or DOCX and translates it.
func (p *Processor) TranslateDocument(ctx context.Context, filename string, r io.Reader, source, target string) (*DocumentTranslation, error) {
	if source == "" || target == "" {
		return nil, fmt.Errorf("%w: source and target language", ErrMissingInput)
	}

	text, err := parser.ExtractText(filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	result, err := p.Translate(ctx, TranslationRequest{
		Text:           text,
		SourceLanguage: source,
		TargetLanguage: target,
	})
	if err != nil {
		return nil, err
	}

	return &DocumentTranslation{TranslationResult: *result, Filename: filename}, nil
}

// LookupWord returns the dictionary entry for word in language, asking the
// model and storing its answer only when no entry exists yet.
func (p *Processor) LookupWord(ctx context.Context, word, language string) (*db.DictionaryEntry, error) {
	if strings.TrimSpace(word) == "" || strings.TrimSpace(language) == "" {
		return nil, fmt.Errorf("%w: word and language", ErrMissingInput)
	}
	if utf8.RuneCountInString(word) > db.MaxWordLength {
		return nil, ErrWordTooLong
	}

	entry, err := p.DB.FindEntry(ctx, word, language)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to read dictionary cache: %w", err)
	}

	// Concurrent misses for one key share a single model call. The call
	// outlives any one caller's context since others may be waiting on it.
	flightCtx := context.WithoutCancel(ctx)
	ch := p.lookups.DoChan(word+"\x00"+language, func() (any, error) {
		return p.defineAndStore(flightCtx, word, language)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		stored := *res.Val.(*db.DictionaryEntry)
		return &stored, nil
	}
}

func (p *Processor) defineAndStore(ctx context.Context, word, language string) (*db.DictionaryEntry, error) {
	// Another flight may have stored it since the caller's first check
	if entry, err := p.DB.FindEntry(ctx, word, language); err == nil {
		return entry, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to read dictionary cache: %w", err)
	}

	req := p.request(dictionaryPrompt(word, language), word)
	req.JSON = true
	reply, err := p.AI.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to define %q: %w", word, err)
	}

	def, err := parseDefinition(reply)
	if err != nil {
		slog.Default().Error("Failed to parse dictionary response",
			"word", word,
			"language", language,
			"error", err)
		return nil, err
	}

	saved, inserted, err := p.DB.SaveEntry(ctx, &db.DictionaryEntry{
		Word:         word,
		Language:     language,
		Definition:   def.Definition,
		PartOfSpeech: def.PartOfSpeech,
		Examples:     def.Examples,
		CreatedAt:    p.clock(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store dictionary entry: %w", err)
	}

	slog.Default().Debug("dictionary entry stored",
		"word", word,
		"language", language,
		"id", saved.ID,
		"inserted", inserted)
	return saved, nil
}

// History returns the most recent dictionary lookups, newest first
func (p *Processor) History(ctx context.Context) ([]db.DictionaryEntry, error) {
	entries, err := p.DB.ListRecent(ctx, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dictionary history: %w", err)
	}
	return entries, nil
}

// GetEntry returns one stored entry or db.ErrNotFound.
func (p *Processor) GetEntry(ctx context.Context, id int64) (*db.DictionaryEntry, error) {
	return p.DB.Get(ctx, id)
}

// CountEntries returns the total number of stored entries
func (p *Processor) CountEntries(ctx context.Context) (int, error) {
	return p.DB.Count(ctx)
}

// ExportFormat selects the encoding used by ExportEntries.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// ParseExportFormat accepts "json", "yaml" or "yml"; empty means JSON.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return ExportJSON, nil
	case "yaml", "yml":
		return ExportYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ExportEntries writes every stored entry, newest first, to w.
func (p *Processor) ExportEntries(ctx context.Context, w io.Writer, format ExportFormat) error {
	entries, err := p.DB.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list dictionary entries for export: %w", err)
	}

	switch format {
	case ExportJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case ExportYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}
