package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/lessonplanner/internal/conversation"
	"github.com/local/lessonplanner/internal/filetype"
	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/logger"
	"github.com/local/lessonplanner/internal/metrics"
	"github.com/local/lessonplanner/internal/outcome"
	"github.com/local/lessonplanner/internal/pipeline"
	"github.com/local/lessonplanner/internal/source"
	"github.com/local/lessonplanner/internal/statuscheck"
	"github.com/local/lessonplanner/internal/telegram"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// EventHandler consumes chat events (the conversation controller).
type EventHandler interface {
	Handle(ctx context.Context, ev conversation.Event) error
}

type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

type Dependencies struct {
	Events         EventHandler
	Generator      Generator
	Status         *statuscheck.Checker
	Detector       *filetype.Detector
	WebhookSecret  string
	MaxUploadBytes int64
	EventTimeout   time.Duration
}

type Orchestrator struct {
	deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
	if deps.Detector == nil {
		deps.Detector = filetype.New()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 32 << 20
	}
	if deps.EventTimeout <= 0 {
		deps.EventTimeout = 5 * time.Minute
	}
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	mux.HandleFunc("/status", o.handleStatus)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/webhook", o.handleWebhook)
	mux.HandleFunc("/generate", o.handleGenerate)
}

func (o *Orchestrator) handleStatus(w http.ResponseWriter, r *http.Request) {
	if o.deps.Status == nil {
		writeJSON(w, http.StatusOK, statuscheck.Summary{})
		return
	}
	sum := o.deps.Status.Summary(r.Context())
	code := http.StatusOK
	if !sum.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, sum)
}

// handleWebhook always answers 200 once the update is decoded so Telegram does not
// redeliver; handling errors are logged.
func (o *Orchestrator) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !telegram.VerifySecret(r, o.deps.WebhookSecret) {
		log.Warn().Str("remote", r.RemoteAddr).Msg("webhook secret mismatch")
		http.Error(w, "forbidden", http.StatusUnauthorized)
		return
	}
	defer r.Body.Close()
	upd, err := telegram.DecodeUpdate(r.Body)
	if err != nil && !errors.Is(err, telegram.ErrEmptyUpdate) {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	metrics.IncUpdate(upd.Kind())

	ev, ok := EventFromUpdate(upd)
	if !ok || o.deps.Events == nil {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		return
	}

	reqID := uuid.NewString()
	l := logger.ForChat(ev.ChatID, reqID)
	l.Info().Int64("update_id", upd.UpdateID).Str("kind", upd.Kind()).Msg("update received")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), o.deps.EventTimeout)
	defer cancel()
	ctx = l.WithContext(ctx)
	start := time.Now()
	if err := o.deps.Events.Handle(ctx, ev); err != nil {
		l.Error().Err(err).Msg("update handling failed")
	}
	metrics.ObserveStage("update", time.Since(start))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// EventFromUpdate maps a Bot API update to a conversation event. Updates without a
// message are ignored.
func EventFromUpdate(u telegram.Update) (conversation.Event, bool) {
	m := u.Message
	if m == nil {
		return conversation.Event{}, false
	}
	ev := conversation.Event{ChatID: m.Chat.ID, Text: m.Text, Photo: len(m.Photo) > 0}
	if m.Document != nil {
		name := m.Document.FileName
		if name == "" {
			name = "file"
		}
		ev.Document = &conversation.Document{FileName: name, FileID: m.Document.FileID}
	}
	return ev, true
}

type errorResp struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

// handleGenerate runs the pipeline on a multipart upload and returns the DOCX.
// Form fields: file (PDF or text), text, template (DOCX), title, grade, subject, teacher, date.
func (o *Orchestrator) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if o.deps.Generator == nil {
		http.Error(w, "generator unavailable", http.StatusServiceUnavailable)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, o.deps.MaxUploadBytes)
	if err := r.ParseMultipartForm(o.deps.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid multipart form"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	reqID := uuid.NewString()
	req := pipeline.Request{
		Meta: lesson.Meta{
			Title:   r.FormValue("title"),
			Grade:   r.FormValue("grade"),
			Subject: r.FormValue("subject"),
			Teacher: r.FormValue("teacher"),
			Date:    r.FormValue("date"),
		},
	}

	data, name, err := formFile(r, "file")
	switch {
	case err == nil:
		info := o.deps.Detector.Detect(data, name)
		switch info.Kind {
		case filetype.PDF:
			req.Bundle = source.FromPDF(data)
		case filetype.Text:
			req.Bundle = source.FromText(string(data))
		default:
			writeJSON(w, http.StatusUnsupportedMediaType, errorResp{Error: "unsupported file type " + info.MIMEType})
			return
		}
	case errors.Is(err, http.ErrMissingFile):
		text := r.FormValue("text")
		if strings.TrimSpace(text) == "" {
			writeJSON(w, http.StatusBadRequest, errorResp{Error: "missing file or text"})
			return
		}
		req.Bundle = source.FromText(text)
	default:
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	tpl, tplName, err := formFile(r, "template")
	switch {
	case err == nil:
		if o.deps.Detector.Detect(tpl, tplName).Kind != filetype.Template {
			writeJSON(w, http.StatusUnsupportedMediaType, errorResp{Error: "template must be a .docx file"})
			return
		}
		req.Template = tpl
	case !errors.Is(err, http.ErrMissingFile):
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	res, err := o.deps.Generator.Generate(r.Context(), req)
	if err != nil {
		var ie *outcome.IngestionError
		if errors.As(err, &ie) {
			log.Warn().Err(err).Str("request_id", reqID).Msg("generate rejected")
			writeJSON(w, http.StatusUnprocessableEntity, errorResp{Error: ie.Err.Error(), Stage: ie.Stage})
			return
		}
		log.Error().Err(err).Str("request_id", reqID).Msg("generate failed")
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "generation failed"})
		return
	}

	unfilled := make([]string, 0, len(res.Report.Unfilled))
	for _, f := range res.Report.Unfilled {
		unfilled = append(unfilled, string(f))
	}
	h := w.Header()
	h.Set("Content-Type", docxContentType)
	h.Set("Content-Disposition", `attachment; filename="`+res.FileName+`"`)
	h.Set("Content-Length", strconv.Itoa(len(res.Document)))
	h.Set("X-Request-ID", reqID)
	h.Set("X-Lesson-Branch", res.Branch.String())
	if len(res.Reasons) > 0 {
		h.Set("X-Lesson-Reasons", strings.Join(res.Reasons, ","))
	}
	if len(unfilled) > 0 {
		h.Set("X-Lesson-Unfilled", strings.Join(unfilled, ","))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Document)
}

func formFile(r *http.Request, field string) ([]byte, string, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, hdr.Filename, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
