// Package handler relays an API Gateway upload request into object storage
// through a pre-signed URL.
package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog"

	"github.com/gostones/s3relay/internal"
	"github.com/gostones/s3relay/internal/config"
	"github.com/gostones/s3relay/internal/relay"
	"github.com/gostones/s3relay/internal/storage"
	"github.com/gostones/s3relay/internal/types"
)

// Sender performs the outbound call to the signed URL.
type Sender interface {
	Send(ctx context.Context, t relay.Target, body []byte) (types.RelayResult, error)
}

// Handler is safe for concurrent use; it keeps no state between invocations.
type Handler struct {
	cfg       config.Config
	newSigner storage.SignerFactory
	sender    Sender
	log       zerolog.Logger
}

type Option func(*Handler)

// WithSignerFactory replaces the S3 signer constructor.
func WithSignerFactory(f storage.SignerFactory) Option {
	return func(h *Handler) {
		h.newSigner = f
	}
}

// WithSender replaces the HTTP relay.
func WithSender(s Sender) Option {
	return func(h *Handler) {
		h.sender = s
	}
}

func New(cfg config.Config, log zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		cfg:       cfg,
		newSigner: storage.NewS3Signer,
		log:       log,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.cfg.Upload.Expiry <= 0 {
		h.cfg.Upload.Expiry = config.MaxExpiry
	}
	if h.sender == nil {
		h.sender = relay.New(log, cfg.Upload.RelayTimeout)
	}
	return h
}

// Handle validates the request, presigns a PUT for the upload key and relays
// the body to it. Signing failures are returned as errors and fail the
// invocation. Relay failures are logged and, unless strict mode is on,
// still answered with 200.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := h.log.With().Str("request_id", req.RequestContext.RequestID).Logger()

	params, err := Validate(req.QueryStringParameters)
	if err != nil {
		log.Info().Err(err).Msg("rejected upload")
		return respond(http.StatusBadRequest, err.Error(), false), nil
	}
	log = log.With().Str("key", params.UploadKey).Str("content_type", params.ContentType).Logger()

	body, err := payload(req)
	if err != nil {
		log.Info().Err(err).Msg("rejected upload")
		return respond(http.StatusBadRequest, types.BodyInvalidBase64, false), nil
	}

	input := &storage.PutObjectInput{
		Bucket:      h.cfg.Storage.BucketName,
		Key:         params.UploadKey,
		ContentType: params.ContentType,
	}
	if h.cfg.Upload.ContentMD5 {
		if input.MD5, _, err = internal.MD5Sum(bytes.NewReader(body)); err != nil {
			log.Error().Err(err).Msg("checksum failed")
			return events.APIGatewayProxyResponse{}, err
		}
	}

	signed, err := h.presign(ctx, log, input)
	if err != nil {
		log.Error().Err(err).Msg("presign failed")
		return events.APIGatewayProxyResponse{}, err
	}

	start := time.Now()
	result, err := h.sender.Send(ctx, relay.Target{
		URL:         signed,
		Method:      h.cfg.Upload.RelayMethod,
		ContentType: params.ContentType,
		MD5:         input.MD5,
	}, body)
	level := zerolog.InfoLevel
	if err != nil || !result.OK() {
		level = zerolog.WarnLevel
	}
	log.WithLevel(level).Err(err).
		Str("target", redact(signed)).
		Int("status", result.StatusCode).
		Int64("bytes", result.Bytes).
		Dur("duration", time.Since(start)).
		Msg("relayed upload")

	if h.cfg.Upload.Strict && (err != nil || !result.OK()) {
		return respond(http.StatusBadGateway, types.BodyRelayFailed, false), nil
	}

	if req.Body == "" {
		return respond(http.StatusOK, types.BodyOK, false), nil
	}
	return respond(http.StatusOK, req.Body, req.IsBase64Encoded), nil
}

func (h *Handler) presign(ctx context.Context, log zerolog.Logger, input *storage.PutObjectInput) (string, error) {
	defer internal.TimeTrack(log, "presign")(time.Now())

	signer, err := h.newSigner(h.cfg.Storage)
	if err != nil {
		return "", err
	}
	return signer.PresignPut(ctx, input, h.cfg.Upload.Expiry)
}

func payload(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	b, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return b, nil
}

func respond(status int, body string, b64 bool) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode:      status,
		Body:            body,
		IsBase64Encoded: b64,
	}
}

// redact drops the signature query from a presigned URL.
func redact(signed string) string {
	u, err := url.Parse(signed)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	return u.String()
}
