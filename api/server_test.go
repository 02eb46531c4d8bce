package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/norvik-labs/promptctl/internal/config"
	"github.com/norvik-labs/promptctl/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	srv, err := NewServer(&config.Config{}, st)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, st
}

func seedRun(t *testing.T, st store.Store, id, promptName string, passed bool, startedAt time.Time) {
	t.Helper()
	err := st.SaveRun(context.Background(), &store.RunRecord{
		ID:              id,
		PromptName:      promptName,
		DatasetName:     "bugs-eval",
		Tone:            0.95,
		Acceptance:      0.92,
		Format:          1.0,
		Completeness:    0.91,
		Passed:          passed,
		TotalExamples:   10,
		ScoredExamples:  10,
		StartedAt:       startedAt,
		FinishedAt:      startedAt.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
}

func doRequest(srv *Server, method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	t.Setenv("PROMPTCTL_DISABLE_AUTH", "true")
	t.Setenv("PROMPTCTL_API_KEY", "")

	srv, _ := newTestServer(t)
	w := doRequest(srv, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestMissingAuthConfiguration(t *testing.T) {
	t.Setenv("PROMPTCTL_API_KEY", "")
	t.Setenv("PROMPTCTL_DISABLE_AUTH", "")

	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	if _, err := NewServer(&config.Config{}, st); err == nil {
		t.Fatal("expected error without auth configuration")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	t.Setenv("PROMPTCTL_API_KEY", "secret")
	t.Setenv("PROMPTCTL_DISABLE_AUTH", "")

	srv, _ := newTestServer(t)

	if w := doRequest(srv, http.MethodGet, "/api/runs", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no key: status = %d, want 401", w.Code)
	}
	if w := doRequest(srv, http.MethodGet, "/api/runs", "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key: status = %d, want 401", w.Code)
	}
	if w := doRequest(srv, http.MethodGet, "/api/runs", "secret"); w.Code != http.StatusOK {
		t.Fatalf("right key: status = %d, want 200", w.Code)
	}
	// Health stays public.
	if w := doRequest(srv, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: status = %d", w.Code)
	}
}

func TestListRuns(t *testing.T) {
	t.Setenv("PROMPTCTL_DISABLE_AUTH", "true")
	t.Setenv("PROMPTCTL_API_KEY", "")

	srv, st := newTestServer(t)
	base := time.Now().UTC().Truncate(time.Millisecond)
	seedRun(t, st, "run_1", "norvik/bug-to-user-story", true, base)
	seedRun(t, st, "run_2", "norvik/other", false, base.Add(time.Minute))

	w := doRequest(srv, http.MethodGet, "/api/runs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var runs []store.RunRecord
	if err := json.Unmarshal(w.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].ID != "run_2" {
		t.Fatalf("runs[0].ID = %q, want newest first", runs[0].ID)
	}

	w = doRequest(srv, http.MethodGet, "/api/runs?prompt=norvik%2Fother", "")
	if w.Code != http.StatusOK {
		t.Fatalf("filtered status = %d", w.Code)
	}
	runs = nil
	if err := json.Unmarshal(w.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].PromptName != "norvik/other" {
		t.Fatalf("filtered runs = %+v", runs)
	}

	if w := doRequest(srv, http.MethodGet, "/api/runs?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: status = %d, want 400", w.Code)
	}
}

func TestGetRun(t *testing.T) {
	t.Setenv("PROMPTCTL_DISABLE_AUTH", "true")
	t.Setenv("PROMPTCTL_API_KEY", "")

	srv, st := newTestServer(t)
	seedRun(t, st, "run_1", "norvik/bug-to-user-story", true, time.Now())

	w := doRequest(srv, http.MethodGet, "/api/runs/run_1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var run store.RunRecord
	if err := json.Unmarshal(w.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.ID != "run_1" || !run.Passed {
		t.Fatalf("run = %+v", run)
	}

	if w := doRequest(srv, http.MethodGet, "/api/runs/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing run: status = %d, want 404", w.Code)
	}
}

func TestPromptHistory(t *testing.T) {
	t.Setenv("PROMPTCTL_DISABLE_AUTH", "true")
	t.Setenv("PROMPTCTL_API_KEY", "")

	srv, st := newTestServer(t)
	base := time.Now().UTC().Truncate(time.Millisecond)
	seedRun(t, st, "run_1", "norvik/bug-to-user-story", true, base)
	seedRun(t, st, "run_2", "norvik/bug-to-user-story", false, base.Add(time.Minute))
	seedRun(t, st, "run_3", "norvik/other", true, base.Add(2*time.Minute))

	w := doRequest(srv, http.MethodGet, "/api/prompts/norvik/bug-to-user-story/history", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var runs []store.RunRecord
	if err := json.Unmarshal(w.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	for _, r := range runs {
		if r.PromptName != "norvik/bug-to-user-story" {
			t.Fatalf("PromptName = %q", r.PromptName)
		}
	}
}
