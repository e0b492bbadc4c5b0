// Package bgremove proxies images to a remove.bg style background removal
// API and returns the processed image bytes.
package bgremove

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
)

// MaxImageSize bounds both the uploaded image and the upstream response.
const MaxImageSize = 12 << 20

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	cfg    Config
	client *http.Client
	log    logging.Logger
}

func NewClient(cfg Config, log logging.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With("module", "bgremove"),
	}
}

// Result is the processed image and its sniffed content type.
type Result struct {
	Image       []byte
	ContentType string
}

type upstreamResponse struct {
	Status int `json:"status"`
	Data   struct {
		Image string `json:"image"`
	} `json:"data"`
}

// DetectImage returns the content type of b when it looks like an image.
func DetectImage(b []byte) (string, bool) {
	if len(b) == 0 {
		return "", false
	}
	ct := http.DetectContentType(b)
	return ct, strings.HasPrefix(ct, "image/")
}

// Remove sends image to the upstream API in a single attempt.
func (c *Client) Remove(ctx context.Context, image []byte, filename string) (*Result, error) {
	if _, ok := DetectImage(image); !ok {
		return nil, common.ErrMissingImage
	}
	if filename == "" {
		filename = "image"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image_file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error(ctx, "background removal request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*MaxImageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", common.ErrUpstream, err)
	}
	if resp.StatusCode/100 != 2 {
		c.log.Warn(ctx, "background removal non-2xx", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", common.ErrUpstream, resp.StatusCode)
	}

	var ur upstreamResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidResponse, err)
	}
	if ur.Status != http.StatusOK || ur.Data.Image == "" {
		return nil, fmt.Errorf("%w: status %d", common.ErrInvalidResponse, ur.Status)
	}

	out, err := base64.StdEncoding.DecodeString(ur.Data.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidResponse, err)
	}
	ct, ok := DetectImage(out)
	if !ok {
		return nil, fmt.Errorf("%w: result is not an image", common.ErrInvalidResponse)
	}

	return &Result{Image: out, ContentType: ct}, nil
}
