package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/lessonplanner/internal/binder"
	"github.com/local/lessonplanner/internal/conversation"
	"github.com/local/lessonplanner/internal/docx/docxtest"
	"github.com/local/lessonplanner/internal/lesson"
	"github.com/local/lessonplanner/internal/limiter"
	"github.com/local/lessonplanner/internal/outcome"
	"github.com/local/lessonplanner/internal/pipeline"
	"github.com/local/lessonplanner/internal/source"
	"github.com/local/lessonplanner/internal/statuscheck"
	"github.com/local/lessonplanner/internal/telegram"
)

type recordingEvents struct {
	mu     sync.Mutex
	events []conversation.Event
}

func (r *recordingEvents) Handle(_ context.Context, ev conversation.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

type stubGenerator struct {
	req pipeline.Request
	err error
}

func (g *stubGenerator) Generate(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	g.req = req
	if g.err != nil {
		return pipeline.Result{}, g.err
	}
	return pipeline.Result{
		Extraction: pipeline.Extraction{Branch: outcome.Degraded, Reasons: []string{outcome.NoExtractableText}},
		Document:   []byte("PKdocx"),
		FileName:   "lesson_plan_12345678.docx",
		Report:     binder.Report{Unfilled: []lesson.Field{lesson.Note}},
	}, nil
}

func newServer(t *testing.T, deps Dependencies) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	New(deps).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newServer(t, Dependencies{})
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["ok"])
}

func TestStatus(t *testing.T) {
	locks := limiter.NewKeyed()
	release, err := locks.Lock(context.Background(), "42")
	require.NoError(t, err)
	defer release()

	checker := statuscheck.New(statuscheck.Options{
		Redis:    statuscheck.PingFunc(func(context.Context) error { return errors.New("refused") }),
		InFlight: locks.Len,
	})
	srv := newServer(t, Dependencies{Status: checker})
	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	var sum statuscheck.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sum))
	assert.Equal(t, "refused", sum.Redis.Message)
	assert.Equal(t, 1, sum.ActiveChats)
}

func TestWebhookDispatchesEvents(t *testing.T) {
	events := &recordingEvents{}
	srv := newServer(t, Dependencies{Events: events, WebhookSecret: "s3cret"})

	post := func(body, secret string) int {
		req, _ := http.NewRequest(http.MethodPost, srv.URL+"/webhook", strings.NewReader(body))
		if secret != "" {
			req.Header.Set(telegram.SecretHeader, secret)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, post(`{"update_id":1}`, ""))
	assert.Equal(t, http.StatusBadRequest, post(`{`, "s3cret"))
	assert.Equal(t, http.StatusOK, post(`{"update_id":2,"edited_message":{"chat":{"id":1}}}`, "s3cret"))
	assert.Equal(t, http.StatusOK, post(`{"update_id":3,"message":{"chat":{"id":9},"text":"/hi_rise"}}`, "s3cret"))
	assert.Equal(t, http.StatusOK, post(`{"update_id":4,"message":{"chat":{"id":9},"document":{"file_id":"F"}}}`, "s3cret"))

	require.Len(t, events.events, 2)
	assert.Equal(t, conversation.Event{ChatID: 9, Text: "/hi_rise"}, events.events[0])
	assert.Equal(t, &conversation.Document{FileName: "file", FileID: "F"}, events.events[1].Document)
}

func TestWebhookRejectsGet(t *testing.T) {
	srv := newServer(t, Dependencies{})
	resp, err := http.Get(srv.URL + "/webhook")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestEventFromUpdatePhoto(t *testing.T) {
	ev, ok := EventFromUpdate(telegram.Update{Message: &telegram.Message{Chat: telegram.Chat{ID: 3}, Photo: []telegram.PhotoSize{{FileID: "p"}}}})
	require.True(t, ok)
	assert.True(t, ev.Photo)
	assert.Equal(t, int64(3), ev.ChatID)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, f := range files {
		part, err := w.CreateFormFile(field, f[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestGenerateFromText(t *testing.T) {
	gen := &stubGenerator{}
	srv := newServer(t, Dependencies{Generator: gen})
	tpl := string(docxtest.Build(docxtest.Para("Grade:"), nil))
	body, ct := multipartBody(t,
		map[string]string{"text": "Homework: read ch.2", "grade": "5", "title": "Plants"},
		map[string][2]string{"template": {"t.docx", tpl}},
	)

	resp, err := http.Post(srv.URL+"/generate", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, docxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "lesson_plan_12345678.docx")
	assert.Equal(t, "degraded", resp.Header.Get("X-Lesson-Branch"))
	assert.Equal(t, "note", resp.Header.Get("X-Lesson-Unfilled"))

	assert.Equal(t, source.KindText, gen.req.Bundle.Kind())
	assert.Equal(t, "Homework: read ch.2", gen.req.Bundle.Text())
	assert.Equal(t, lesson.Meta{Title: "Plants", Grade: "5"}, gen.req.Meta)
	assert.Equal(t, []byte(tpl), gen.req.Template)
}

func TestGenerateFromPDFUpload(t *testing.T) {
	gen := &stubGenerator{}
	srv := newServer(t, Dependencies{Generator: gen})
	body, ct := multipartBody(t, nil, map[string][2]string{"file": {"c.pdf", "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"}})
	resp, err := http.Post(srv.URL+"/generate", ct, body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, source.KindPDF, gen.req.Bundle.Kind())
}

func TestGenerateErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		srv := newServer(t, Dependencies{Generator: &stubGenerator{}})
		body, ct := multipartBody(t, map[string]string{"grade": "5"}, nil)
		resp, err := http.Post(srv.URL+"/generate", ct, body)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("bad template", func(t *testing.T) {
		srv := newServer(t, Dependencies{Generator: &stubGenerator{}})
		body, ct := multipartBody(t, map[string]string{"text": "x"}, map[string][2]string{"template": {"t.docx", "plain text"}})
		resp, err := http.Post(srv.URL+"/generate", ct, body)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("ingestion", func(t *testing.T) {
		gen := &stubGenerator{err: outcome.Ingestion("pdf", errors.New("failed to open PDF"))}
		srv := newServer(t, Dependencies{Generator: gen})
		body, ct := multipartBody(t, map[string]string{"text": "x"}, nil)
		resp, err := http.Post(srv.URL+"/generate", ct, body)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var e errorResp
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
		assert.Equal(t, errorResp{Error: "failed to open PDF", Stage: "pdf"}, e)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, Dependencies{})
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
