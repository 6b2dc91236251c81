// Package client uploads local files through the relay endpoint.
package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	"github.com/gostones/s3relay/internal"
	"github.com/gostones/s3relay/internal/types"
)

type Uploader struct {
	c *resty.Client
}

// NewUploader returns an uploader posting to the relay at baseURL.
func NewUploader(baseURL string) *Uploader {
	return &Uploader{
		c: resty.New().SetBaseURL(baseURL),
	}
}

// Result is what the relay answered for one upload.
type Result struct {
	Key         string
	ContentType string
	MD5         string // hex
	StatusCode  int
	Body        string
}

// Upload sends the file at path under key. An empty key uses the file name
// and an empty contentType is sniffed from the file.
func (u *Uploader) Upload(ctx context.Context, path, key, contentType string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = filepath.Base(path)
	}
	if contentType == "" && len(data) > 0 {
		if contentType, err = internal.ContentType(bytes.NewReader(data)); err != nil {
			return nil, err
		}
	}
	_, hex, err := internal.MD5SumFile(path)
	if err != nil {
		return nil, err
	}

	q := map[string]string{types.QueryUploadKey: key}
	if contentType != "" {
		q[types.QueryContentType] = contentType
	}

	resp, err := u.c.R().
		SetContext(ctx).
		SetQueryParams(q).
		SetHeader("Content-Type", contentTypeOrDefault(contentType)).
		SetBody(data).
		Post("/upload")
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	res := &Result{
		Key:         key,
		ContentType: contentType,
		MD5:         hex,
		StatusCode:  resp.StatusCode(),
		Body:        resp.String(),
	}
	if resp.IsError() {
		return res, fmt.Errorf("upload %s: %v %s", key, resp.StatusCode(), resp.String())
	}
	return res, nil
}

func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return types.DefaultContentType
	}
	return ct
}
