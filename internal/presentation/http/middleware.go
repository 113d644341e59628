package http

import (
	"context"
	"fmt"
	"net"
	stdhttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

const (
	rateLimitMessage  = "Too many requests from your address. Please wait a moment and try again."
	requestIDHeader   = "X-Request-ID"
	panicFlushTimeout = 2 * time.Second
)

// sentryMiddleware gives every request its own hub clone. Events are delivered by the
// client transport in the background, so requests never wait on a flush.
func (s *Server) sentryMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if s.sentry == nil {
			next(ctx)
			return
		}

		hub := s.sentry.Clone()
		hub.Scope().SetTag("http.method", ctx.Method())
		if op := ctx.Operation(); op != nil {
			hub.Scope().SetTag("http.route", op.Path)
		}

		next(huma.WithContext(ctx, sentry.SetHubOnContext(ctx.Context(), hub)))
	}
}

func (s *Server) recoveryMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}
			s.recordError(ctx.Context(), err, "panic recovered", nil)

			if hub := sentry.GetHubFromContext(ctx.Context()); hub != nil {
				hub.RecoverWithContext(ctx.Context(), rec)
				hub.Flush(panicFlushTimeout)
			}

			ctx.SetHeader("Content-Type", "text/plain; charset=utf-8")
			ctx.SetStatus(stdhttp.StatusInternalServerError)
			_, _ = ctx.BodyWriter().Write([]byte("internal server error"))
		}()

		next(ctx)
	}
}

func (s *Server) requestIDMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		reqID := incomingRequestID(ctx.Header(requestIDHeader))
		goCtx := context.WithValue(ctx.Context(), requestIDContextKey, reqID)
		ctx.SetHeader(requestIDHeader, reqID)

		if hub := sentry.GetHubFromContext(goCtx); hub != nil {
			hub.Scope().SetTag("request_id", reqID)
		}

		next(huma.WithContext(ctx, goCtx))
	}
}

func (s *Server) rateLimitMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		req, _ := humago.Unwrap(ctx)
		if s.rateLimiter == nil || req == nil {
			next(ctx)
			return
		}

		ip := clientIPFromRequest(req)
		allowed, wait := s.rateLimiter.Allow(ip)
		if allowed {
			next(ctx)
			return
		}

		fields := requestFields(ctx, req)
		fields["ip"] = ip
		if s.logger != nil {
			s.logger.WithError(eris.New("rate limit exceeded")).WithFields(fields).Warn("request rate limited")
		}

		s.writeRateLimited(ctx, wait, fields)
	}
}

func (s *Server) writeRateLimited(ctx huma.Context, wait time.Duration, fields logrus.Fields) {
	resp, err := s.renderErrorResponse(ctx.Context(), stdhttp.StatusTooManyRequests, rateLimitMessage)
	if err != nil && s.logger != nil {
		s.logger.WithError(err).WithFields(fields).Error("rendering rate limit response failed")
	}

	// Headers must be set before SetStatus writes them.
	ctx.SetHeader("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
	if resp != nil && resp.ContentType != "" {
		ctx.SetHeader("Content-Type", resp.ContentType)
	}
	ctx.SetStatus(stdhttp.StatusTooManyRequests)

	if resp != nil && len(resp.Body) > 0 {
		_, _ = ctx.BodyWriter().Write(resp.Body)
	}
}

func (s *Server) loggingMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if s.logger == nil {
			next(ctx)
			return
		}

		start := time.Now()
		next(ctx)

		status := ctx.Status()
		if status == 0 {
			status = stdhttp.StatusOK
		}

		req, _ := humago.Unwrap(ctx)
		fields := requestFields(ctx, req)
		fields["method"] = ctx.Method()
		fields["status"] = status
		fields["duration_ms"] = float64(time.Since(start).Microseconds()) / 1000
		if op := ctx.Operation(); op != nil {
			fields["route"] = op.Path
		}
		if req != nil {
			fields["remote_addr"] = req.RemoteAddr
		}

		entry := s.logger.WithFields(fields)
		if status >= stdhttp.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request completed")
	}
}

// requestFields collects the log fields shared by every middleware line.
func requestFields(ctx huma.Context, req *stdhttp.Request) logrus.Fields {
	fields := logrus.Fields{}
	if req != nil {
		fields["path"] = req.URL.Path
	}
	if requestID := RequestIDFromContext(ctx.Context()); requestID != "" {
		fields["request_id"] = requestID
	}
	return fields
}

// incomingRequestID reuses a well-formed upstream request id and mints a new one otherwise.
func incomingRequestID(header string) string {
	if parsed, err := uuid.Parse(strings.TrimSpace(header)); err == nil {
		return parsed.String()
	}
	return uuid.NewString()
}

// clientIPFromRequest prefers the first X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientIPFromRequest(req *stdhttp.Request) string {
	if req == nil {
		return ""
	}

	if first, _, _ := strings.Cut(req.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(req.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}
