// Package server 提供推荐查询的 HTTP 接口。
//
//	GET /recommend?q=Get Out, The Ring, 3
//	GET /healthz
//	GET /metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rushteam/topicrec/core"
	"github.com/rushteam/topicrec/service"
)

// Server 把 service.Recommender 暴露为 HTTP 接口。
type Server struct {
	rec    *service.Recommender
	logger zerolog.Logger
}

func New(rec *service.Recommender, logger zerolog.Logger) *Server {
	return &Server{rec: rec, logger: logger}
}

// errorResponse 是错误响应体。
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
	Items  int    `json:"items"`
	Dim    int    `json:"dim"`
}

// Router 返回挂载了全部路由的 chi.Router。
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/recommend", s.handleRecommend)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// Run 监听 addr 直到 ctx 结束，然后优雅关闭。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.respondError(w, http.StatusBadRequest, core.ErrorCodeMalformedQuery, "query parameter q is required")
		return
	}

	res, err := s.rec.Recommend(r.Context(), q)
	if err != nil {
		status, code := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error().Err(err).Str("query", q).Msg("recommend failed")
		}
		s.respondError(w, status, code, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	m := s.rec.Model()
	s.respondJSON(w, http.StatusOK, &healthResponse{Status: "ok", Items: m.ItemCount(), Dim: m.Dim()})
}

func statusFor(err error) (int, string) {
	switch {
	case core.IsMalformedQuery(err):
		return http.StatusBadRequest, core.ErrorCodeMalformedQuery
	case core.IsNoMatch(err):
		return http.StatusBadRequest, core.ErrorCodeNoMatch
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, core.ErrorCodeInternalError
	default:
		return http.StatusInternalServerError, core.ErrorCodeInternalError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug().Err(err).Msg("write response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, &errorResponse{Code: code, Message: message})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}
