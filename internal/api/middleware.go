package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/listenupapp/catalog-server/internal/http/response"
	"github.com/listenupapp/catalog-server/internal/id"
	"github.com/listenupapp/catalog-server/internal/logger"
)

const headerRequestID = "X-Request-ID"

// requestID accepts a well-formed incoming X-Request-ID or generates one,
// echoes it on the response and stores a logger tagged with it in the context.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(headerRequestID)
		if !id.Valid(rid, id.PrefixRequest) {
			var err error
			if rid, err = id.Generate(id.PrefixRequest); err != nil {
				s.logger.Error("failed to generate request id", "error", err)
				rid = ""
			}
		}

		if rid != "" {
			w.Header().Set(headerRequestID, rid)
		}

		reqLog := (&logger.Logger{Logger: s.logger}).WithRequestID(rid)
		ctx := logger.NewContext(r.Context(), reqLog.Logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request. Server errors log at Error.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		log := logger.FromContext(r.Context(), s.logger)
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", attrs...)
		default:
			log.Info("request", attrs...)
		}
	})
}

// recoverer turns a panic into a 500 envelope and logs the stack.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context(), s.logger).Error("panic serving request",
				"panic", rec,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			response.InternalError(w, s.logger)
		}()

		next.ServeHTTP(w, r)
	})
}
