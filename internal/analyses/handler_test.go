package analyses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobfit-backend/internal/shared/auth"
	"jobfit-backend/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokenService("test-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	tok, err := tokens.Sign("u1", "u1@example.com", "CANDIDATE")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.Auth(tokens))
	NewHandler(newTestService()).RegisterRoutes(api)
	return r, tok
}

func send(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAnalyzeWithQueryParams(t *testing.T) {
	r, tok := newTestRouter(t)

	resp := send(r, http.MethodPost, "/api/analysis/analyze?resumeId=r-parsed&jobId=j1", "", tok)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var a Analysis
	if err := json.Unmarshal(resp.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.MatchPercentage != 66.67 {
		t.Fatalf("unexpected match: %v", a.MatchPercentage)
	}

	resp = send(r, http.MethodGet, "/api/analysis/"+a.ID, "", tok)
	if resp.Code != http.StatusOK {
		t.Fatalf("get expected 200, got %d", resp.Code)
	}

	resp = send(r, http.MethodGet, "/api/analysis", "", tok)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), a.ID) {
		t.Fatalf("list expected analysis, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAnalyzeWithJSONBody(t *testing.T) {
	r, tok := newTestRouter(t)
	resp := send(r, http.MethodPost, "/api/analysis/analyze", `{"resumeId":"r-parsed","jobId":"j1"}`, tok)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAnalyzeStatusCodes(t *testing.T) {
	r, tok := newTestRouter(t)
	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: http.StatusBadRequest},
		{query: "?resumeId=nope&jobId=j1", want: http.StatusNotFound},
		{query: "?resumeId=r-parsed&jobId=nope", want: http.StatusNotFound},
		{query: "?resumeId=r-busy&jobId=j1", want: http.StatusConflict},
		{query: "?resumeId=r-failed&jobId=j1", want: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		resp := send(r, http.MethodPost, "/api/analysis/analyze"+tt.query, "", tok)
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.query, tt.want, resp.Code)
		}
	}
}

func TestAnalysisRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := send(r, http.MethodGet, "/api/analysis", "", "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
