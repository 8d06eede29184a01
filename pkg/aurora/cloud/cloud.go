// Package cloud bridges the dashboard to its remote KV backend. Two
// backends are supported: a REST KV service driven by JSON command tuples
// (Upstash-style), and the same-origin /api/storage proxy in front of an
// edge KV. Both are normalized to the KV contract, and both fail soft:
// cloud sync is a best-effort overlay over local data, never a hard error.
package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/qbvs/aurora-pro/pkg/aurora/logbuf"
)

// ProbeKey is fetched by Verify to decide whether the backend is reachable.
const ProbeKey = "test-key"

// RequestTimeout bounds every cloud call so a hung backend cannot pin the
// sync status at "checking" forever.
const RequestTimeout = 8 * time.Second

// KV is the normalized backend contract. Get reports ok=false for both
// "key absent" and any transport/decode failure; Set reports whether the
// write was accepted. Neither returns a Go error: failures are logged to
// the diagnostic buffer and treated as soft misses by callers.
type KV interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool)
	Set(ctx context.Context, key string, value any) bool
	Verify(ctx context.Context) bool
}

// Config selects and parameterizes the backend. RESTURL plus RESTToken
// selects the REST backend; otherwise the proxy at ProxyBase is used
// unconditionally (there is no disabled state).
type Config struct {
	RESTURL   string
	RESTToken string
	ProxyBase string
}

// New builds the backend implied by cfg. The choice is made once; callers
// that want to re-evaluate config construct a new adapter.
func New(cfg Config, client *http.Client, diag *logbuf.Buffer) KV {
	if client == nil {
		client = &http.Client{Timeout: RequestTimeout}
	}
	if diag == nil {
		diag = logbuf.New(0)
	}
	if cfg.RESTURL != "" && cfg.RESTToken != "" {
		return &restKV{url: cfg.RESTURL, token: cfg.RESTToken, client: client, diag: diag}
	}
	return &proxyKV{base: cfg.ProxyBase, client: client, diag: diag}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, RequestTimeout)
}
