// Package handler is a local stand-in for the Query Service. It accepts the
// same POST /query body as the real agent backend and answers in one of the
// reply shapes the client understands, echoing the query back.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"agentic-surfer/internal/domain"
)

// Shape selects which reply form the stand-in answers with.
type Shape string

const (
	ShapeAnswer Shape = "answer"
	ShapeResult Shape = "result"
	ShapeError  Shape = "error"
	ShapeRaw    Shape = "raw"
)

// ParseShape validates a shape name. An empty name selects ShapeAnswer.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShapeAnswer:
		return ShapeAnswer, nil
	case ShapeResult:
		return ShapeResult, nil
	case ShapeError:
		return ShapeError, nil
	case ShapeRaw:
		return ShapeRaw, nil
	}
	return "", fmt.Errorf("handler: unknown reply shape %q", s)
}

type queryRequest struct {
	Query *string `json:"query"`
	Mode  *int    `json:"mode"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

var invalidBody = errorResponse{Status: "error", Message: "invalid request body"}

type Handler struct {
	logger *zap.Logger
	shape  Shape
}

func NewHandler(logger *zap.Logger, shape Shape) (*Handler, error) {
	if logger == nil {
		return nil, errors.New("handler: logger must not be nil")
	}
	parsed, err := ParseShape(string(shape))
	if err != nil {
		return nil, err
	}
	return &Handler{logger: logger, shape: parsed}, nil
}

// Routes returns the router serving POST /query and GET /health.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(cors)

	r.Post("/query", h.handleQuery)
	return r
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	status, body := h.answer(chiMiddleware.GetReqID(r.Context()), r.Body)
	writeJSON(w, status, body)
}

// answer runs one exchange for a raw request body and returns the status and
// JSON body to send. It is shared by the HTTP and Lambda entry points.
func (h *Handler) answer(requestID string, body io.Reader) (int, any) {
	var req queryRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil || req.Query == nil {
		h.logger.Debug("rejecting query body", zap.String("request_id", requestID), zap.Error(err))
		return http.StatusUnprocessableEntity, invalidBody
	}

	mode := domain.DefaultMode
	if req.Mode != nil {
		mode = *req.Mode
	}

	h.logger.Info("query received",
		zap.String("request_id", requestID),
		zap.Int("mode", mode),
		zap.Int("query_len", len(*req.Query)),
		zap.String("shape", string(h.shape)),
	)
	return http.StatusOK, h.reply(*req.Query, mode)
}

func (h *Handler) reply(query string, mode int) any {
	text := "You asked: " + query
	switch h.shape {
	case ShapeResult:
		return map[string]string{"result": text}
	case ShapeError:
		return errorResponse{Status: "error", Message: "could not complete: " + query}
	case ShapeRaw:
		return map[string]any{"echo": query, "mode": mode}
	default:
		return map[string]string{"answer": text}
	}
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			h.logger.Info("http request",
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// cors allows any origin, matching the permissive policy of the real backend.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsHeaders(r.Header.Get("Origin")) {
			w.Header().Set(k, v)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsHeaders(origin string) map[string]string {
	if origin == "" {
		origin = "*"
	}
	return map[string]string{
		"Access-Control-Allow-Origin":  origin,
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
