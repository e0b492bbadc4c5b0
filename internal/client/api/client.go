// Package api is the CLI's HTTP client for the Instant Branding API.
//
// Every response is unwrapped from the {success, data} envelope. Failure
// envelopes become *APIError, which matches the common sentinels with
// errors.Is (401 as ErrAuthenticationRequired, 404 as ErrNotFound and so on).
// Transport failures match ErrUnavailable.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/instantbranding/brandkit/internal/client/models"
	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/netx"
)

var ErrUnavailable = errors.New("server unavailable")

// Record is an entity as rendered by the API (snake_case keys).
type Record map[string]any

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Message string
	Kind    string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return common.ErrAuthenticationRequired
	case e.Status == http.StatusNotFound:
		return common.ErrNotFound
	case e.Status == http.StatusRequestEntityTooLarge:
		return common.ErrFileTooLarge
	case e.Status == http.StatusBadGateway:
		return common.ErrUpstream
	case e.Status >= http.StatusInternalServerError:
		return common.ErrInternal
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithToken returns a copy of c that sends token as its bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Kind    string            `json:"kind"`
	Details map[string]string `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode/100 != 2 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode/100 != 2 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Kind: env.Kind, Details: env.Details}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) Me(ctx context.Context) (Record, error) {
	var r Record
	if err := c.do(ctx, http.MethodGet, "/me", nil, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) CompleteOnboarding(ctx context.Context) (Record, error) {
	var r Record
	if err := c.do(ctx, http.MethodPost, "/users/onboarding/complete", nil, &r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Client) ListBrands(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := c.do(ctx, http.MethodGet, "/brands", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertResult is the response of an upsert endpoint.
type UpsertResult struct {
	Record Record
	Action string
}

func (c *Client) upsert(ctx context.Context, path, name string, payload map[string]any) (*UpsertResult, error) {
	var out map[string]json.RawMessage
	if err := c.do(ctx, http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}

	res := &UpsertResult{}
	if err := json.Unmarshal(out[name], &res.Record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if err := json.Unmarshal(out["action"], &res.Action); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return res, nil
}

// UpsertBrand creates a brand, or updates it when payload carries an id.
func (c *Client) UpsertBrand(ctx context.Context, payload map[string]any) (*UpsertResult, error) {
	return c.upsert(ctx, "/brands/upsert", "brand", payload)
}

// UpsertDesign creates a design, or updates it when payload carries an id.
func (c *Client) UpsertDesign(ctx context.Context, payload map[string]any) (*UpsertResult, error) {
	return c.upsert(ctx, "/designs/upsert", "design", payload)
}

func (c *Client) DeleteDesign(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/designs/delete", map[string]string{"id": id}, nil)
}

func (c *Client) ListDesigns(ctx context.Context, brandID string) ([]Record, error) {
	path := "/designs"
	if brandID != "" {
		path += "?brand_id=" + url.QueryEscape(brandID)
	}
	var out []Record
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GeneratePost asks the server to write a post for hook and stores it
// under brandID.
func (c *Client) GeneratePost(ctx context.Context, brandID, hook string) (Record, error) {
	var r Record
	in := map[string]string{"brand_id": brandID, "hook": hook}
	if err := c.do(ctx, http.MethodPost, "/posts/generate", in, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// ImportResult is what the server wrote while importing a draft.
type ImportResult struct {
	Brand   Record   `json:"brand"`
	Action  string   `json:"action"`
	Designs []Record `json:"designs"`
}

// ImportDraft replays a local draft into the signed-in account.
func (c *Client) ImportDraft(ctx context.Context, d *models.Draft) (*ImportResult, error) {
	var res ImportResult
	if err := c.do(ctx, http.MethodPost, "/drafts/import", d, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type UploadCredential struct {
	UploadURL   string `json:"upload_url"`
	ObjectKey   string `json:"object_key"`
	PublicURL   string `json:"public_url"`
	ContentType string `json:"content_type"`
	ExpiresIn   int    `json:"expires_in"`
	Provider    string `json:"provider"`
}

type signedURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

// SignedUpload requests a presigned PUT URL. provider is "s3" or "r2".
func (c *Client) SignedUpload(ctx context.Context, provider, filename, contentType string, size int64) (*UploadCredential, error) {
	path := "/upload/signed-url"
	if provider == "r2" {
		path = "/upload/r2-signed-url"
	}

	var cred UploadCredential
	in := signedURLRequest{Filename: filename, ContentType: contentType, FileSize: size}
	if err := c.do(ctx, http.MethodPost, path, in, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Upload obtains a credential for the file and PUTs data to it.
func (c *Client) Upload(ctx context.Context, provider, filename, contentType string, data []byte) (*UploadCredential, error) {
	cred, err := c.SignedUpload(ctx, provider, filename, contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := netx.PutToSignedURL(ctx, c.http, cred.UploadURL, cred.ContentType, data); err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return cred, nil
}
