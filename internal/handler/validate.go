package handler

import (
	"errors"

	"github.com/gostones/s3relay/internal/types"
)

// ErrMissingUploadKey is returned by Validate when uploadKey is absent or empty.
var ErrMissingUploadKey = errors.New(types.BodyMissingKey)

// Validate extracts the upload parameters from the query string. The
// returned params are only meaningful when err is nil.
func Validate(query map[string]string) (types.UploadParams, error) {
	key := query[types.QueryUploadKey]
	if key == "" {
		return types.UploadParams{}, ErrMissingUploadKey
	}

	ct := query[types.QueryContentType]
	if ct == "" {
		ct = types.DefaultContentType
	}
	return types.UploadParams{UploadKey: key, ContentType: ct}, nil
}
