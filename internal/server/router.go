// Package server exposes the upload handler over plain HTTP for local runs.
package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/gostones/s3relay/internal/types"
)

// EventHandler handles API Gateway proxy events.
type EventHandler interface {
	Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

// NewRouter routes /upload to h and / to a health check.
func NewRouter(h EventHandler, log zerolog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		req, err := toEvent(r)
		if err != nil {
			http.Error(w, fmt.Sprintf("can't read request: %v", err), http.StatusBadRequest)
			return
		}
		resp, err := h.Handle(r.Context(), req)
		if err != nil {
			log.Error().Err(err).Msg("upload failed")
			// an invocation failure in Lambda, surfaced as 500 here
			http.Error(w, types.BodyInternalFailed, http.StatusInternalServerError)
			return
		}
		writeResponse(w, resp)
	})

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok")
	})

	r.Use(logging(log))
	return r
}

func toEvent(r *http.Request) (events.APIGatewayProxyRequest, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}

	query := make(map[string]string)
	multi := make(map[string][]string)
	for k, v := range r.URL.Query() {
		multi[k] = v
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	headers := make(map[string]string)
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	req := events.APIGatewayProxyRequest{
		HTTPMethod:                      r.Method,
		Path:                            r.URL.Path,
		Headers:                         headers,
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           query,
		MultiValueQueryStringParameters: multi,
		Body:                            string(b),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID: r.Header.Get("X-Request-Id"),
		},
	}
	if !utf8.Valid(b) {
		req.Body = base64.StdEncoding.EncodeToString(b)
		req.IsBase64Encoded = true
	}
	return req, nil
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		if b, err := base64.StdEncoding.DecodeString(resp.Body); err == nil {
			body = b
			w.Header().Set("Content-Type", types.DefaultContentType)
		}
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(body)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func logging(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("key", r.URL.Query().Get(types.QueryUploadKey)).
				Int("status", sw.status).
				Dur("duration", time.Since(start)).
				Str("user_agent", r.UserAgent()).
				Msg("http_request")
		})
	}
}
