// Package assets proxies SVG assets from the static asset host, caching
// them in Redis.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
)

const maxAssetSize = 1 << 20

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*\.svg$`)

type Config struct {
	BaseURL  string
	CacheTTL time.Duration
	Timeout  time.Duration
}

type Proxy struct {
	cfg    Config
	cache  Cache
	client *http.Client
	log    logging.Logger
}

// NewProxy builds a proxy. cache may be nil.
func NewProxy(cfg Config, cache Cache, log logging.Logger) *Proxy {
	return &Proxy{
		cfg:    cfg,
		cache:  cache,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With("module", "assets"),
	}
}

// ValidName reports whether filename is a plain .svg name without path
// components.
func ValidName(filename string) bool {
	return validName.MatchString(filename) && !strings.Contains(filename, "..")
}

// SVG returns the asset bytes for filename. Cache failures are logged and
// fall through to the upstream host.
func (p *Proxy) SVG(ctx context.Context, filename string) ([]byte, error) {
	if !ValidName(filename) {
		return nil, common.NewValidationError("filename", "must be a plain .svg file name")
	}

	if p.cache != nil {
		data, ok, err := p.cache.Get(ctx, filename)
		if err != nil {
			p.log.Warn(ctx, "asset cache get failed", "filename", filename, "error", err)
		} else if ok {
			return data, nil
		}
	}

	data, err := p.fetch(ctx, filename)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, filename, data, p.cfg.CacheTTL); err != nil {
			p.log.Warn(ctx, "asset cache set failed", "filename", filename, "error", err)
		}
	}
	return data, nil
}

func (p *Proxy) fetch(ctx context.Context, filename string) ([]byte, error) {
	u := strings.TrimRight(p.cfg.BaseURL, "/") + "/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNotFound
	case resp.StatusCode/100 != 2:
		return nil, fmt.Errorf("%w: asset host status %d", common.ErrUpstream, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("%w: asset exceeds %d bytes", common.ErrUpstream, maxAssetSize)
	}
	return data, nil
}
