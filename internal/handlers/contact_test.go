package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davidbraun/portfolio-api/internal/handlers"
	"github.com/davidbraun/portfolio-api/internal/mail"
	"github.com/davidbraun/portfolio-api/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	result ratelimit.Result
}

func (f *fakeLimiter) Check(ctx context.Context, identifier string) ratelimit.Result {
	return f.result
}

type fakeSender struct {
	err   error
	calls int
	last  mail.Message
}

func (f *fakeSender) Send(ctx context.Context, msg mail.Message) error {
	f.calls++
	f.last = msg
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newContactHandler(limiter handlers.RateLimiter, sender mail.Sender) *handlers.ContactHandler {
	return handlers.NewContactHandler(limiter, sender, "noreply@example.com", "owner@example.com", discardLogger())
}

func postContact(t *testing.T, handler *handlers.ContactHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/contact", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Real-IP", "127.0.0.1")
	recorder := httptest.NewRecorder()

	handler.Submit(recorder, req)
	return recorder
}

func validSubmission() map[string]any {
	return map[string]any{
		"name":    "Test User",
		"email":   "test@example.com",
		"subject": "Test Subject",
		"message": "Hello, this is a test message.",
	}
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestContactSubmitHappyPath(t *testing.T) {
	sender := &fakeSender{}
	handler := newContactHandler(&fakeLimiter{}, sender)

	recorder := postContact(t, handler, validSubmission())

	assert.Equal(t, http.StatusOK, recorder.Code)
	body := decodeResponse(t, recorder)
	assert.Equal(t, true, body["success"])

	require.Equal(t, 1, sender.calls)
	assert.Contains(t, sender.last.HTML, "Test User")
	assert.Equal(t, "noreply@example.com", sender.last.From)
	assert.Equal(t, "owner@example.com", sender.last.To)
	assert.Equal(t, "test@example.com", sender.last.ReplyTo)
	assert.Equal(t, "Portfolio Contact: Test Subject", sender.last.Subject)
}

func TestContactSubmitEscapesHTMLInPayload(t *testing.T) {
	sender := &fakeSender{}
	handler := newContactHandler(&fakeLimiter{}, sender)

	submission := validSubmission()
	submission["name"] = "<script>alert(1)</script>"
	submission["message"] = "<img src=x onerror=alert(1)>"

	recorder := postContact(t, handler, submission)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, 1, sender.calls)
	assert.Contains(t, sender.last.HTML, "&lt;script&gt;")
	assert.NotContains(t, sender.last.HTML, "<script>")
	assert.Contains(t, sender.last.HTML, "&lt;img")
	assert.NotContains(t, sender.last.HTML, "<img")
}

func TestContactSubmitRateLimited(t *testing.T) {
	sender := &fakeSender{}
	limiter := &fakeLimiter{result: ratelimit.Result{Limited: true, RetryAfter: 42}}
	handler := newContactHandler(limiter, sender)

	recorder := postContact(t, handler, validSubmission())

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "42", recorder.Header().Get("Retry-After"))
	body := decodeResponse(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, 0, sender.calls)
}

func TestContactSubmitInvalidJSON(t *testing.T) {
	sender := &fakeSender{}
	handler := newContactHandler(&fakeLimiter{}, sender)

	req := httptest.NewRequest("POST", "/api/contact", bytes.NewReader([]byte("{not json")))
	recorder := httptest.NewRecorder()
	handler.Submit(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeResponse(t, recorder)
	assert.Equal(t, "Invalid request body", body["error"])
	assert.Equal(t, 0, sender.calls)
}

func TestContactSubmitValidationFailure(t *testing.T) {
	sender := &fakeSender{}
	handler := newContactHandler(&fakeLimiter{}, sender)

	submission := validSubmission()
	submission["projectType"] = "hacking"

	recorder := postContact(t, handler, submission)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeResponse(t, recorder)
	assert.Equal(t, "Invalid project type", body["error"])
	assert.Equal(t, 0, sender.calls)
}

func TestContactSubmitMisconfiguredMail(t *testing.T) {
	handler := newContactHandler(&fakeLimiter{}, nil)

	recorder := postContact(t, handler, validSubmission())

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeResponse(t, recorder)
	assert.Contains(t, body["error"], "misconfigured")
}

func TestContactSubmitSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("ses: throttled")}
	handler := newContactHandler(&fakeLimiter{}, sender)

	recorder := postContact(t, handler, validSubmission())

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeResponse(t, recorder)
	// Provider detail never reaches the client
	assert.Equal(t, "Failed to send message", body["error"])
	assert.NotContains(t, recorder.Body.String(), "ses")
}

func TestContactSubmitEndToEndRateLimitWindow(t *testing.T) {
	// Real local limiter wired through the real adapter, no remote configured
	local := ratelimit.NewMemoryLimiter(5, time.Minute, 100)
	limiter := ratelimit.NewLimiter(func() (ratelimit.RemoteLimiter, error) { return nil, nil }, local, discardLogger())
	sender := &fakeSender{}
	handler := newContactHandler(limiter, sender)

	for i := 0; i < 5; i++ {
		recorder := postContact(t, handler, validSubmission())
		assert.Equal(t, http.StatusOK, recorder.Code, "request %d", i+1)
	}

	recorder := postContact(t, handler, validSubmission())
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("Retry-After"))
	assert.Equal(t, 5, sender.calls)
}
