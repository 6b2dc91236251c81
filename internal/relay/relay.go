// Package relay forwards an upload payload to a pre-signed URL.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/gostones/s3relay/internal"
	"github.com/gostones/s3relay/internal/types"
)

// Target is the signed destination of one relay call.
type Target struct {
	URL         string
	Method      string
	ContentType string
	MD5         string // base64 coded MD5 checksum, optional
}

// Relay sends payloads to storage. It never retries.
type Relay struct {
	c   *resty.Client
	log zerolog.Logger
}

// New returns a Relay. A zero timeout leaves the call bounded only by ctx.
func New(log zerolog.Logger, timeout time.Duration) *Relay {
	c := resty.New().
		SetLogger(restyLogger{log}).
		SetRetryCount(0).
		SetPreRequestHook(countBody)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Relay{c: c, log: log}
}

// Send issues exactly one request carrying body to t. A non-2xx status is
// not an error; callers inspect the result.
func (r *Relay) Send(ctx context.Context, t Target, body []byte) (types.RelayResult, error) {
	method := t.Method
	if method == "" {
		method = http.MethodPost
	}
	contentType := t.ContentType
	if contentType == "" {
		contentType = types.DefaultContentType
	}

	var count internal.Counter
	req := r.c.R().
		SetContext(context.WithValue(ctx, counterKey{}, &count)).
		SetHeader("Content-Type", contentType).
		SetBody(bytes.NewReader(body))
	if t.MD5 != "" {
		req.SetHeader("Content-MD5", t.MD5)
	}

	resp, err := req.Execute(method, t.URL)
	if err != nil {
		return types.RelayResult{Bytes: count.Get()}, fmt.Errorf("relay %s: %w", method, err)
	}

	result := types.RelayResult{
		StatusCode: resp.StatusCode(),
		Bytes:      count.Get(),
	}
	r.log.Debug().
		Str("method", method).
		Int("status", result.StatusCode).
		Int64("bytes", result.Bytes).
		Dur("duration", resp.Time()).
		Msg("relay response")
	return result, nil
}

type counterKey struct{}

// countBody counts the body bytes the transport actually reads. The length
// was fixed from the *bytes.Reader when the request was built, so wrapping
// the body does not switch to chunked encoding.
func countBody(_ *resty.Client, req *http.Request) error {
	count, ok := req.Context().Value(counterKey{}).(*internal.Counter)
	if !ok || req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	req.Body = countingBody{
		Reader: internal.NewCountingReader(req.Body, count),
		Closer: req.Body,
	}
	return nil
}

type countingBody struct {
	io.Reader
	io.Closer
}

type restyLogger struct {
	log zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}
