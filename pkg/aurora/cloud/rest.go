package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/qbvs/aurora-pro/pkg/aurora/logbuf"
)

// restKV talks to a REST KV service: a single POST endpoint at the KV root
// accepting ["GET", key] / ["SET", key, jsonString] command tuples with
// bearer auth, answering {result?, error?}.
type restKV struct {
	url    string
	token  string
	client *http.Client
	diag   *logbuf.Buffer
}

type restResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func (r *restKV) do(ctx context.Context, command []any) (*http.Response, error) {
	body, err := json.Marshal(command)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/json")
	return r.client.Do(req)
}

func (r *restKV) exec(ctx context.Context, command []any) (json.RawMessage, bool) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := r.do(ctx, command)
	if err != nil {
		r.diag.Warnf("cloud: rest request failed: %v", err)
		return nil, false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		r.diag.Warnf("cloud: rest read failed: %v", err)
		return nil, false
	}

	var parsed restResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		r.diag.Warnf("cloud: rest response not JSON (status %d)", resp.StatusCode)
		return nil, false
	}
	if parsed.Error != "" {
		r.diag.Warnf("cloud: rest error: %s", parsed.Error)
		return nil, false
	}
	if parsed.Result == nil || string(parsed.Result) == "null" {
		return nil, false
	}

	// The service stores values as strings. If the string itself is JSON,
	// hand back the decoded form; otherwise hand back the raw result.
	var asString string
	if err := json.Unmarshal(parsed.Result, &asString); err == nil {
		if json.Valid([]byte(asString)) {
			return json.RawMessage(asString), true
		}
	}
	return parsed.Result, true
}

func (r *restKV) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	return r.exec(ctx, []any{"GET", key})
}

func (r *restKV) Set(ctx context.Context, key string, value any) bool {
	encoded, err := json.Marshal(value)
	if err != nil {
		r.diag.Warnf("cloud: encode %q failed: %v", key, err)
		return false
	}
	_, ok := r.exec(ctx, []any{"SET", key, string(encoded)})
	return ok
}

// Verify probes ProbeKey. Reachability is weaker than existence: any
// response below 500 counts, including 404s for a key that was never set.
func (r *restKV) Verify(ctx context.Context) bool {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	resp, err := r.do(ctx, []any{"GET", ProbeKey})
	if err != nil {
		r.diag.Warnf("cloud: rest probe failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < 500
}
