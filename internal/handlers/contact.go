package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/davidbraun/portfolio-api/internal/contact"
	"github.com/davidbraun/portfolio-api/internal/mail"
	"github.com/davidbraun/portfolio-api/internal/ratelimit"
	pkghttp "github.com/davidbraun/portfolio-api/pkg/http"
	pkglogger "github.com/davidbraun/portfolio-api/pkg/logger"
	"github.com/google/uuid"
)

// RateLimiter is the rate-limit collaborator consumed by the contact handler.
type RateLimiter interface {
	Check(ctx context.Context, identifier string) ratelimit.Result
}

// Outcome categories for terminal-state logging.
const (
	outcomeDelivered     = "delivered"
	outcomeRateLimited   = "rate_limited"
	outcomeInvalidBody   = "invalid_body"
	outcomeRejected      = "validation_rejected"
	outcomeMisconfigured = "misconfigured"
	outcomeSendFailed    = "send_failed"
	outcomePanic         = "panic"
)

const sendTimeout = 10 * time.Second

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	limiter RateLimiter
	sender  mail.Sender // nil when the mail service is not configured
	from    string
	to      string
	logger  *slog.Logger
}

// NewContactHandler creates a ContactHandler. Passing a nil sender marks the
// mail service as unconfigured: submissions validate but never deliver.
func NewContactHandler(limiter RateLimiter, sender mail.Sender, from, to string, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		limiter: limiter,
		sender:  sender,
		from:    from,
		to:      to,
		logger:  logger,
	}
}

// Submit processes one contact form submission:
// identify client, rate limit, parse, validate, compose, send.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	submissionID := uuid.NewString()

	// The client never observes a difference between an internal bug and a
	// provider failure.
	defer func() {
		if rec := recover(); rec != nil {
			h.logOutcome(submissionID, outcomePanic, http.StatusInternalServerError, start,
				slog.Any("panic", rec))
			pkghttp.WriteError(w, http.StatusInternalServerError, "Failed to send message")
		}
	}()

	clientIP := pkghttp.ClientIP(r)

	verdict := h.limiter.Check(r.Context(), clientIP)
	if verdict.Limited {
		h.logOutcome(submissionID, outcomeRateLimited, http.StatusTooManyRequests, start,
			slog.Int("retry_after", verdict.RetryAfter))
		pkghttp.WriteRateLimited(w, verdict.RetryAfter, "Too many requests. Please try again later.")
		return
	}

	var body any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logOutcome(submissionID, outcomeInvalidBody, http.StatusBadRequest, start)
		pkghttp.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	data, err := contact.Validate(body)
	if err != nil {
		h.logOutcome(submissionID, outcomeRejected, http.StatusBadRequest, start,
			slog.String("reason", err.Error()))
		pkghttp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	notification := contact.ComposeNotification(data)

	if h.sender == nil {
		h.logOutcome(submissionID, outcomeMisconfigured, http.StatusInternalServerError, start)
		pkghttp.WriteError(w, http.StatusInternalServerError, "Email service is misconfigured")
		return
	}

	// The send must run to completion even if the client disconnects; only
	// the timeout bounds it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), sendTimeout)
	defer cancel()

	msg := mail.Message{
		From:    h.from,
		To:      h.to,
		Subject: notification.Subject,
		HTML:    notification.HTML,
		ReplyTo: notification.ReplyTo,
	}
	if err := h.sender.Send(ctx, msg); err != nil {
		// Provider detail stays in the logs, not the response.
		h.logOutcome(submissionID, outcomeSendFailed, http.StatusInternalServerError, start,
			slog.Any("error", err))
		pkghttp.WriteError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	h.logOutcome(submissionID, outcomeDelivered, http.StatusOK, start,
		slog.String("reply_to", pkglogger.SanitizedEmail(data.Email)))
	pkghttp.WriteSuccess(w)
}

func (h *ContactHandler) logOutcome(submissionID, outcome string, status int, start time.Time, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("submission_id", submissionID),
		slog.String("outcome", outcome),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	}
	attrs = append(attrs, extra...)
	h.logger.LogAttrs(context.Background(), slog.LevelInfo, "contact_submission", attrs...)
}
