package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oarkflow/json"

	"github.com/oarkflow/lumen/pkg/config"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}
	s, err := New(cfg, WithoutRequestLog())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, body := do(t, s, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "healthy" {
		t.Fatalf("unexpected health response %d %v", resp.StatusCode, body)
	}
}

func TestOneShotEval(t *testing.T) {
	s := newTestServer(t)
	resp, body := do(t, s, http.MethodPost, "/api/eval", SourceRequest{
		Source: "a * 2 + 1;",
		Data:   map[string]any{"a": 20},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	if body["result"] != float64(41) {
		t.Fatalf("result = %v", body["result"])
	}
}

func TestSessionKeepsState(t *testing.T) {
	s := newTestServer(t)
	resp, created := do(t, s, http.MethodPost, "/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("missing session id in %v", created)
	}

	if resp, body := do(t, s, http.MethodPost, "/api/sessions/"+id+"/eval", SourceRequest{Source: "int x = 4;"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("declare status %d: %v", resp.StatusCode, body)
	}
	resp, body := do(t, s, http.MethodPost, "/api/sessions/"+id+"/eval", SourceRequest{Source: "x + 1;"})
	if resp.StatusCode != http.StatusOK || body["result"] != float64(5) {
		t.Fatalf("eval %d: %v", resp.StatusCode, body)
	}

	resp, symbols := do(t, s, http.MethodGet, "/api/sessions/"+id+"/symbols", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("symbols status %d", resp.StatusCode)
	}
	x, ok := symbols["x"].(map[string]any)
	if !ok || x["value"] != float64(4) {
		t.Fatalf("unexpected symbols %v", symbols)
	}

	// a second session does not see the first one's table
	_, other := do(t, s, http.MethodPost, "/api/sessions", nil)
	resp, body = do(t, s, http.MethodPost, "/api/sessions/"+other["id"].(string)+"/eval", SourceRequest{Source: "x + 1;"})
	if resp.StatusCode != http.StatusBadRequest || body["code"] != "EVAL_UNDEFINED_VARIABLE" {
		t.Fatalf("isolation broken: %d %v", resp.StatusCode, body)
	}

	if resp, _ := do(t, s, http.MethodDelete, "/api/sessions/"+id, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	if resp, _ := do(t, s, http.MethodPost, "/api/sessions/"+id+"/eval", SourceRequest{Source: "1;"}); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted session still answers: %d", resp.StatusCode)
	}
}

func TestDiagnosticsResponse(t *testing.T) {
	s := newTestServer(t)
	resp, body := do(t, s, http.MethodPost, "/api/eval", SourceRequest{Source: "boolean x = 5;"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %v", resp.StatusCode, body)
	}
	details, _ := body["details"].([]any)
	if len(details) != 1 || !strings.Contains(details[0].(string), "cannot assign") {
		t.Fatalf("unexpected details %v", body["details"])
	}
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.MaxFileBytes = 8 })
	if resp, _ := do(t, s, http.MethodPost, "/api/eval", SourceRequest{Source: "   "}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty source: %d", resp.StatusCode)
	}
	if resp, _ := do(t, s, http.MethodPost, "/api/eval", SourceRequest{Source: "1 + 2 + 3 + 4;"}); resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized source: %d", resp.StatusCode)
	}
	if resp, _ := do(t, s, http.MethodGet, "/api/sessions/nope/symbols", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown session: %d", resp.StatusCode)
	}
}

func TestTokenize(t *testing.T) {
	s := newTestServer(t)
	resp, body := do(t, s, http.MethodPost, "/api/tokenize", SourceRequest{Source: "int x;"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	// int, space, x, ;, EOF
	if body["count"] != float64(5) {
		t.Fatalf("unexpected token count %v", body["count"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/api/eval", SourceRequest{Source: "1;"})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `lumen_evaluations_total{endpoint="eval",outcome="ok"} 1`) {
		t.Fatalf("metrics missing evaluation counter:\n%s", raw)
	}
}
