// Package imagehost uploads menu images to an ImageKit compatible CDN.
package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

var ErrNotConfigured = errors.New("image host private key is not configured")

// Uploader is what the upload handler depends on.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, folder string) (*UploadResult, error)
}

type Config struct {
	UploadURL  string
	PrivateKey string
	Timeout    time.Duration
}

type Client struct {
	uploadURL  string
	privateKey string
	http       *resty.Client
}

type UploadResult struct {
	URL    string `json:"url"`
	FileID string `json:"file_id"`
	Path   string `json:"path"`
}

type uploadResponse struct {
	FileID   string `json:"fileId"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	FilePath string `json:"filePath"`
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		uploadURL:  cfg.UploadURL,
		privateKey: cfg.PrivateKey,
		http: resty.New().
			SetTimeout(timeout).
			SetBasicAuth(cfg.PrivateKey, ""),
	}
}

// Upload sends one file as multipart/form-data. The private key is the basic
// auth username with an empty password.
func (c *Client) Upload(ctx context.Context, data []byte, filename, folder string) (*UploadResult, error) {
	if c.privateKey == "" {
		return nil, ErrNotConfigured
	}

	fields := map[string]string{
		"fileName":          filename,
		"useUniqueFileName": "true",
	}
	if folder != "" {
		fields["folder"] = folder
	}

	var result uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(fields).
		SetResult(&result).
		Post(c.uploadURL)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("upload failed: %s - %s", resp.Status(), resp.String())
	}
	if result.URL == "" {
		return nil, errors.New("upload response has no url")
	}

	return &UploadResult{URL: result.URL, FileID: result.FileID, Path: result.FilePath}, nil
}
