package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dscruggs/lyre-studio/dsp/effectchain"
	"github.com/dscruggs/lyre-studio/internal/audio"
	"github.com/dscruggs/lyre-studio/internal/config"
	"github.com/dscruggs/lyre-studio/internal/metrics"
	"github.com/dscruggs/lyre-studio/internal/voiceref"
)

const (
	headerEffectsApplied = "X-Effects-Applied"
	headerEffectsSkipped = "X-Effects-Skipped"

	// multipartMemory is the in-memory share of a multipart body; the rest
	// spills to temp files.
	multipartMemory = 8 << 20

	defaultMaxUpload = 50 << 20
)

// Handler carries the dependencies of every route.
type Handler struct {
	applicator *effectchain.Applicator
	languages  *config.Languages
	voice      *voiceref.Store
	metrics    *metrics.Collector
	log        *zap.Logger
	maxUpload  int64
}

// HandlerConfig collects Handler dependencies. Metrics and Log may be nil.
type HandlerConfig struct {
	Applicator     *effectchain.Applicator
	Languages      *config.Languages
	VoiceRef       *voiceref.Store
	Metrics        *metrics.Collector
	Log            *zap.Logger
	MaxUploadBytes int64
}

// NewHandler builds a Handler from cfg.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		applicator: cfg.Applicator,
		languages:  cfg.Languages,
		voice:      cfg.VoiceRef,
		metrics:    cfg.Metrics,
		log:        cfg.Log,
		maxUpload:  cfg.MaxUploadBytes,
	}

	if h.log == nil {
		h.log = zap.NewNop()
	}

	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUpload
	}

	if h.languages == nil {
		h.languages = &config.Languages{}
	}

	return h
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListEffects handles GET /api/effects.
func (h *Handler) ListEffects(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, catalogue(h.applicator.Builder().Definitions().Ordered()))
}

// ListLanguages handles GET /api/languages. English is the source
// language and is not listed.
func (h *Handler) ListLanguages(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.languages.Names(false))
}

// ApplyEffects handles POST /api/apply-effects: a multipart form with an
// "audio" file and an "effects" JSON object. The response is a WAV file.
func (h *Handler) ApplyEffects(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(zap.String("request_id", middleware.GetReqID(r.Context())))

	if !h.parseForm(w, r) {
		return
	}

	raw := r.FormValue("effects")
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}

	cfg, err := effectchain.ParseConfig([]byte(raw))
	if err != nil {
		log.Info("rejecting effects payload", zap.Error(err))
		respondError(w, http.StatusBadRequest, "Invalid effects payload")

		return
	}

	data, ok := h.readFile(w, r, "audio")
	if !ok {
		return
	}

	in, err := audio.DecodeBytes(data)
	if err != nil {
		log.Info("undecodable audio upload", zap.Int("bytes", len(data)), zap.Error(err))
		respondError(w, http.StatusBadRequest, "Unsupported or corrupt audio file")

		return
	}

	start := time.Now()
	out, report, err := h.applicator.Apply(in, cfg)
	h.recordApply(time.Since(start), in.Len(), report, err)

	if err != nil {
		log.Error("apply effects", zap.Strings("effects", cfg.Names()), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Effect processing failed")

		return
	}

	// The timeout middleware owns the response once the deadline passes.
	if err := r.Context().Err(); err != nil {
		log.Warn("request ended before response", zap.Strings("effects", cfg.Names()), zap.Error(err))
		return
	}

	body, err := audio.EncodeWAVBytes(out, audio.DefaultBitDepth)
	if err != nil {
		log.Error("encode result", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Effect processing failed")

		return
	}

	if len(report.Applied) > 0 {
		w.Header().Set(headerEffectsApplied, strings.Join(report.Applied, ","))
	}

	if len(report.Skipped) > 0 {
		w.Header().Set(headerEffectsSkipped, skippedHeader(report.Skipped))
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

type statusResponse struct {
	Status string  `json:"status"`
	Path   *string `json:"path"`
}

// UploadVoiceReference handles POST /api/voice-reference with a multipart
// "file" field.
func (h *Handler) UploadVoiceReference(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	data, ok := h.readFile(w, r, "file")
	if !ok {
		return
	}

	in, err := audio.DecodeBytes(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unsupported or corrupt audio file")
		return
	}

	path, err := h.voice.Set(in)
	if err != nil {
		h.log.Error("store voice reference", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to store voice reference")

		return
	}

	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", Path: &path})
}

// ClearVoiceReference handles DELETE /api/voice-reference.
func (h *Handler) ClearVoiceReference(w http.ResponseWriter, _ *http.Request) {
	h.voice.Clear()
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return false
		}

		respondError(w, http.StatusBadRequest, "Expected multipart form data")

		return false
	}

	return true
}

func (h *Handler) readFile(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	f, _, err := r.FormFile(field)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing "+field+" file")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unreadable "+field+" file")
		return nil, false
	}

	return data, true
}

func (h *Handler) recordApply(d time.Duration, frames int, report effectchain.Report, err error) {
	if h.metrics == nil {
		return
	}

	h.metrics.ObserveApply(d, frames, err)

	for _, s := range report.Skipped {
		h.metrics.RecordEffectSkipped(string(s.Reason))
	}

	if err != nil {
		return
	}

	for _, name := range report.Applied {
		h.metrics.RecordEffectApplied(name)
	}
}

// skippedHeader renders "name=reason" pairs joined by commas.
func skippedHeader(skipped []effectchain.Skipped) string {
	parts := make([]string, len(skipped))
	for i, s := range skipped {
		parts[i] = s.Name + "=" + string(s.Reason)
	}

	return strings.Join(parts, ",")
}
