package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/harrylevesque/clientdir/internal/auth"
	"github.com/harrylevesque/clientdir/internal/metrics"
	"github.com/harrylevesque/clientdir/internal/models"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	sessionKey
)

const requestIDHeader = "X-Request-ID"

// requestContext tags every request with an id and a logger carrying it.
func (h *Handlers) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		entry := h.log.WithField("request_id", id)
		ctx := context.WithValue(r.Context(), loggerKey, entry)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records the access log line and request metrics.
func (h *Handlers) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(r.Method, route, rec.status, elapsed)
		logger(r).WithFields(logrus.Fields{
			"method":   r.Method,
			"route":    route,
			"status":   rec.status,
			"duration": elapsed,
		}).Debug("request handled")
	})
}

// requireSession rejects requests without a live bearer session.
func (h *Handlers) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractTokenFromHeader(r)
		if token == "" {
			h.ErrorResponse(w, r, auth.ErrSessionNotFound)
			return
		}
		sess, err := h.sessions.Resolve(token)
		if err != nil {
			h.ErrorResponse(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) models.Session {
	sess, _ := ctx.Value(sessionKey).(models.Session)
	return sess
}

func logger(r *http.Request) logrus.FieldLogger {
	if l, ok := r.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
