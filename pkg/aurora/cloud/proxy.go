package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/qbvs/aurora-pro/pkg/aurora/logbuf"
)

// proxyKV talks to the same-origin storage proxy in front of an edge KV:
// GET /api/storage?key=<key> and POST /api/storage {key, value}.
type proxyKV struct {
	base   string
	client *http.Client
	diag   *logbuf.Buffer
}

func (p *proxyKV) endpoint(key string) string {
	u := p.base + "/api/storage"
	if key != "" {
		u += "?key=" + url.QueryEscape(key)
	}
	return u
}

func (p *proxyKV) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(key), nil)
	if err != nil {
		p.diag.Warnf("cloud: proxy request failed: %v", err)
		return nil, false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.diag.Warnf("cloud: proxy get %q failed: %v", key, err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.diag.Warnf("cloud: proxy get %q: status %d", key, resp.StatusCode)
		return nil, false
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		p.diag.Warnf("cloud: proxy read failed: %v", err)
		return nil, false
	}
	if len(raw) == 0 || string(raw) == "null" || !json.Valid(raw) {
		return nil, false
	}
	return json.RawMessage(raw), true
}

func (p *proxyKV) Set(ctx context.Context, key string, value any) bool {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(map[string]any{"key": key, "value": value})
	if err != nil {
		p.diag.Warnf("cloud: encode %q failed: %v", key, err)
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(""), bytes.NewReader(body))
	if err != nil {
		p.diag.Warnf("cloud: proxy request failed: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.diag.Warnf("cloud: proxy set %q failed: %v", key, err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.diag.Warnf("cloud: proxy set %q: status %d", key, resp.StatusCode)
		return false
	}
	return true
}

func (p *proxyKV) Verify(ctx context.Context) bool {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint(ProbeKey), nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.diag.Warnf("cloud: proxy probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
