package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/wellspring-backend/internal/data/repos"
	"github.com/yungbote/wellspring-backend/internal/data/repos/testutil"
	"github.com/yungbote/wellspring-backend/internal/guidance/engine"
	"github.com/yungbote/wellspring-backend/internal/guidance/history"
	"github.com/yungbote/wellspring-backend/internal/guidance/provider"
	"github.com/yungbote/wellspring-backend/internal/guidance/service"
	httpH "github.com/yungbote/wellspring-backend/internal/http/handlers"
	httpMW "github.com/yungbote/wellspring-backend/internal/http/middleware"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(v)
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
}

func newUserRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := testutil.DB(t)
	r := repos.New(db, nil)
	auth := services.NewAuthService(db, nil, nil, r.User, r.UserToken, services.AuthConfig{
		JWTSecretKey: "router-secret",
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   time.Hour,
		BcryptCost:   bcrypt.MinCost,
	})
	users := services.NewUserService(db, nil, r.User, r.UserToken, bcrypt.MinCost)
	return NewUserRouter(UserRouterConfig{
		CommonConfig: CommonConfig{
			Metrics:         observability.NewMetrics("user-service-test"),
			Development:     true,
			MaxRequestBytes: 1 << 16,
		},
		AuthHandler:    httpH.NewAuthHandler(nil, auth),
		AuthMiddleware: httpMW.NewAuthMiddleware(nil, auth),
		UserHandler:    httpH.NewUserHandler(nil, users),
		SessionHandler: httpH.NewSessionHandler(nil, auth),
	})
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
	ExpiresIn    int64  `json:"expires_in"`
}

type errBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Issues  []struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	} `json:"issues"`
}

func TestUserServiceFlow(t *testing.T) {
	h := newUserRouter(t)

	rec := call(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"email": "flow@example.com", "password": "password-1", "first_name": "Flo", "last_name": "W",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("register response leaks password hash: %s", rec.Body.String())
	}

	rec = call(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"email": "flow@example.com", "password": "password-1", "first_name": "Flo", "last_name": "W",
	})
	var eb errBody
	decodeInto(t, rec, &eb)
	if rec.Code != http.StatusConflict || eb.Code != "email_taken" {
		t.Fatalf("duplicate register: %d %+v", rec.Code, eb)
	}

	rec = call(t, h, http.MethodPost, "/api/login", "", map[string]string{"email": "flow@example.com", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", rec.Code)
	}

	rec = call(t, h, http.MethodPost, "/api/login", "", map[string]string{"email": "flow@example.com", "password": "password-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var tk tokens
	decodeInto(t, rec, &tk)
	if tk.AccessToken == "" || tk.RefreshToken == "" || tk.ExpiresIn != 900 {
		t.Fatalf("unexpected tokens: %+v", tk)
	}

	if rec := call(t, h, http.MethodGet, "/api/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: %d", rec.Code)
	}
	rec = call(t, h, http.MethodGet, "/api/me", tk.AccessToken, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "flow@example.com") {
		t.Fatalf("me: %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, h, http.MethodPatch, "/api/me", tk.AccessToken, map[string]string{"first_name": "Flora", "last_name": "West"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Flora") {
		t.Fatalf("patch me: %d %s", rec.Code, rec.Body.String())
	}

	rec = call(t, h, http.MethodGet, "/api/sessions", tk.AccessToken, nil)
	var sessions struct {
		Sessions []struct {
			ID      string `json:"id"`
			Current bool   `json:"current"`
		} `json:"sessions"`
	}
	decodeInto(t, rec, &sessions)
	if len(sessions.Sessions) != 1 || !sessions.Sessions[0].Current || sessions.Sessions[0].ID != tk.SessionID {
		t.Fatalf("sessions: %+v", sessions)
	}

	rec = call(t, h, http.MethodPost, "/api/refresh", "", map[string]string{"refresh_token": tk.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body.String())
	}
	var next tokens
	decodeInto(t, rec, &next)
	if rec := call(t, h, http.MethodGet, "/api/me", tk.AccessToken, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("old access token after refresh: %d", rec.Code)
	}

	if rec := call(t, h, http.MethodDelete, "/api/sessions/not-a-uuid", next.AccessToken, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("revoke bad id: %d", rec.Code)
	}

	if rec := call(t, h, http.MethodPost, "/api/logout", next.AccessToken, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d %s", rec.Code, rec.Body.String())
	}
	if rec := call(t, h, http.MethodGet, "/api/me", next.AccessToken, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", rec.Code)
	}
}

func TestUserServiceValidationEnvelope(t *testing.T) {
	h := newUserRouter(t)
	rec := call(t, h, http.MethodPost, "/api/register", "", map[string]string{"email": "bad"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
	var eb errBody
	decodeInto(t, rec, &eb)
	if eb.Code != "invalid_request" || eb.Message != "invalid request" || len(eb.Issues) == 0 {
		t.Fatalf("unexpected body: %+v", eb)
	}

	rec = call(t, h, http.MethodGet, "/api/nope", "", nil)
	decodeInto(t, rec, &eb)
	if rec.Code != http.StatusNotFound || eb.Code != "not_found" {
		t.Fatalf("unknown route: %d %+v", rec.Code, eb)
	}

	if rec := call(t, h, http.MethodGet, "/healthcheck", "", nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: %d %q", rec.Code, rec.Body.String())
	}
	if rec := call(t, h, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func newGuidanceRouter(t *testing.T, strategy service.Strategy, limiter *httpMW.RateLimiter) *gin.Engine {
	t.Helper()
	composer := engine.New(engine.Options{History: history.NewRing(history.DefaultCapacity)})
	svc := service.NewGuidanceService(nil, composer, strategy, nil)
	return NewGuidanceRouter(GuidanceRouterConfig{
		CommonConfig: CommonConfig{
			Development:     true,
			MaxRequestBytes: 1024,
			RateLimiter:     limiter,
		},
		GuidanceHandler: httpH.NewGuidanceHandler(nil, svc),
	})
}

type guidanceResponse struct {
	Result engine.Result `json:"result"`
}

func TestGuidanceEndpoint(t *testing.T) {
	h := newGuidanceRouter(t, service.RulesOnly{}, nil)

	rec := call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": "I have 3 exams this week and can't sleep"})
	if rec.Code != http.StatusOK {
		t.Fatalf("guidance: %d %s", rec.Code, rec.Body.String())
	}
	var out guidanceResponse
	decodeInto(t, rec, &out)
	if out.Result.Signals.Mood != engine.MoodTired || out.Result.Source != engine.SourceRules || out.Result.Guidance == "" {
		t.Fatalf("unexpected result: %+v", out.Result)
	}
	if len(out.Result.Questions) != 0 {
		t.Fatalf("journal mode should not carry questions: %v", out.Result.Questions)
	}

	rec = call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": "what now", "context": map[string]string{"mode": "prompt"}})
	decodeInto(t, rec, &out)
	if rec.Code != http.StatusOK || len(out.Result.Questions) == 0 {
		t.Fatalf("prompt mode: %d %+v", rec.Code, out.Result)
	}
}

func TestGuidanceRejectsBadInput(t *testing.T) {
	h := newGuidanceRouter(t, service.RulesOnly{}, nil)
	cases := []struct {
		name   string
		body   any
		status int
		path   string
	}{
		{"missing text", map[string]any{}, http.StatusBadRequest, "text"},
		{"wrong type", `{"text": 42}`, http.StatusBadRequest, "text"},
		{"bad mode", map[string]any{"text": "hi", "context": map[string]string{"mode": "chat"}}, http.StatusBadRequest, "context.mode"},
		{"too long", map[string]any{"text": strings.Repeat("a", 4001)}, http.StatusRequestEntityTooLarge, ""},
	}
	for _, tc := range cases {
		rec := call(t, h, http.MethodPost, "/api/guidance", "", tc.body)
		if rec.Code != tc.status {
			t.Fatalf("%s: status %d %s", tc.name, rec.Code, rec.Body.String())
		}
		if tc.path == "" {
			continue
		}
		var eb errBody
		decodeInto(t, rec, &eb)
		if len(eb.Issues) == 0 || eb.Issues[0].Path != tc.path {
			t.Fatalf("%s: issues %+v", tc.name, eb.Issues)
		}
	}
}

func TestGuidanceTextLimitCountsRunes(t *testing.T) {
	composer := engine.New(engine.Options{})
	h := NewGuidanceRouter(GuidanceRouterConfig{
		CommonConfig:    CommonConfig{Development: true, MaxRequestBytes: 1 << 16},
		GuidanceHandler: httpH.NewGuidanceHandler(nil, service.NewGuidanceService(nil, composer, nil, nil)),
	})
	if rec := call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": strings.Repeat("é", 4000)}); rec.Code != http.StatusOK {
		t.Fatalf("4000 runes: %d", rec.Code)
	}
	if rec := call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": strings.Repeat("é", 4001)}); rec.Code != http.StatusBadRequest {
		t.Fatalf("4001 runes: %d", rec.Code)
	}
}

func TestGuidanceProviderMisconfigured(t *testing.T) {
	client := provider.ClientFunc(func(context.Context, []provider.Message, provider.SendOptions) (string, error) {
		return "", &provider.Error{Kind: provider.KindAuth, Status: http.StatusUnauthorized}
	})
	h := newGuidanceRouter(t, service.ExternalProvider{Client: client, FallbackOnConfigError: false}, nil)
	rec := call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": "hello"})
	var eb errBody
	decodeInto(t, rec, &eb)
	if rec.Code != http.StatusServiceUnavailable || eb.Code != "provider_misconfigured" {
		t.Fatalf("misconfigured: %d %+v", rec.Code, eb)
	}

	h = newGuidanceRouter(t, service.ExternalProvider{Client: client, FallbackOnConfigError: true}, nil)
	rec = call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": "hello"})
	var out guidanceResponse
	decodeInto(t, rec, &out)
	if rec.Code != http.StatusOK || out.Result.Source != engine.SourceRules {
		t.Fatalf("fallback: %d %+v", rec.Code, out.Result)
	}
}

func TestGuidanceRateLimited(t *testing.T) {
	h := newGuidanceRouter(t, service.RulesOnly{}, httpMW.NewRateLimiter(0.001, 1))
	if rec := call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": "one"}); rec.Code != http.StatusOK {
		t.Fatalf("first: %d", rec.Code)
	}
	rec := call(t, h, http.MethodPost, "/api/guidance", "", map[string]any{"text": "two"})
	var eb errBody
	decodeInto(t, rec, &eb)
	if rec.Code != http.StatusTooManyRequests || eb.Code != "rate_limited" {
		t.Fatalf("second: %d %+v", rec.Code, eb)
	}
}
