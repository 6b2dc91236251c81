package types

// Query parameters accepted by the relay.
const (
	QueryUploadKey   = "uploadKey"
	QueryContentType = "contentType"
)

// DefaultContentType is sent when the caller does not name one.
const DefaultContentType = "application/octet-stream"

// Fixed response bodies.
const (
	BodyOK             = "Ok."
	BodyMissingKey     = "Error - uploadKey is required."
	BodyInvalidBase64  = "Error - body is not valid base64."
	BodyRelayFailed    = "Error - upload relay failed."
	BodyInternalFailed = "Error - upload could not be signed."
)

// UploadParams is a validated relay request.
type UploadParams struct {
	UploadKey   string `json:"uploadKey"`
	ContentType string `json:"contentType"`
}

// RelayResult describes the outcome of the outbound call to the signed URL.
type RelayResult struct {
	StatusCode int   `json:"statusCode"`
	Bytes      int64 `json:"bytes"`
}

// OK reports whether storage accepted the payload.
func (r RelayResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
