package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
	"github.com/Rion4/FedGrid-AIINNOVATION/internal/shell"
)

type ctxKey int

const sessionKey ctxKey = iota

// sessionFrom returns the verified session, or nil.
func sessionFrom(ctx context.Context) *identity.Session {
	s, _ := ctx.Value(sessionKey).(*identity.Session)
	return s
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) verify(r *http.Request) (*identity.Session, error) {
	tok := bearer(r)
	if tok == "" {
		return nil, identity.ErrInvalidToken
	}
	return s.Shell.Provider.Verify(r.Context(), tok)
}

// optionalSession attaches a session when a valid bearer token is present.
func (s *Server) optionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess, err := s.verify(r); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionKey, sess))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.verify(r)
		if err != nil {
			zap.L().Debug("api: unauthenticated request", zap.String("path", r.URL.Path), zap.Error(err))
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// requireOperator must run after requireSession.
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Shell.Resolve(r.Context(), sessionFrom(r.Context())) != shell.ViewOperator {
			writeError(w, http.StatusForbidden, shell.ErrAccessDenied.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
