package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/middleware"
	"shareit/internal/models"
	"shareit/internal/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   string
	UserID string
}

type fakeCore struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (f *fakeCore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   string(body),
		UserID: r.Header.Get(models.HeaderUserID),
	})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Core", "yes")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"id":7}`))
}

func (f *fakeCore) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

type reply struct {
	Code   int
	Header http.Header
	Body   []byte
}

// serve runs the gateway handler behind a real listener; the reverse proxy
// needs a connection-backed response writer.
func serve(t *testing.T, h http.Handler) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func setupGateway(t *testing.T, limiter ratelimit.Limiter) (string, *fakeCore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core := &fakeCore{}
	coreSrv := httptest.NewServer(core)
	t.Cleanup(coreSrv.Close)

	logger := zerolog.Nop()
	g, err := New(config.GatewayConfig{ServerURL: coreSrv.URL, ForwardTimeout: time.Second}, limiter, &logger)
	require.NoError(t, err)
	return serve(t, g.Handler(nil)), core
}

func do(t *testing.T, req *http.Request) reply {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return reply{Code: resp.StatusCode, Header: resp.Header, Body: body}
}

func send(t *testing.T, base, method, path, body string, userID string) reply {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, base+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(models.HeaderUserID, userID)
	}
	return do(t, req)
}

func errorOf(t *testing.T, r reply) middleware.ErrorBody {
	t.Helper()
	var body middleware.ErrorBody
	require.NoError(t, json.Unmarshal(r.Body, &body), string(r.Body))
	return body
}

func TestGatewayForwardsVerbatim(t *testing.T) {
	base, core := setupGateway(t, nil)

	body := `{"name":"Drill","description":"cordless","available":true}`
	w := send(t, base, http.MethodPost, "/items", body, "3")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "yes", w.Header.Get("X-Core"))
	assert.JSONEq(t, `{"id":7}`, string(w.Body))

	calls := core.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "/items", calls[0].Path)
	assert.Equal(t, body, calls[0].Body)
	assert.Equal(t, "3", calls[0].UserID)
}

func TestGatewayRejectsBeforeForwarding(t *testing.T) {
	base, core := setupGateway(t, nil)
	future := time.Now().Add(time.Hour).UTC()

	cases := []struct {
		name, method, path, body, user string
		wantError                       string
	}{
		{name: "missing user header", method: http.MethodGet, path: "/items", wantError: "BadRequest"},
		{name: "bad user header", method: http.MethodGet, path: "/items", user: "x", wantError: "BadRequest"},
		{name: "negative from", method: http.MethodGet, path: "/items?from=-1", user: "1", wantError: "ValidationFailure"},
		{name: "zero size", method: http.MethodGet, path: "/requests/all?size=0", user: "1", wantError: "ValidationFailure"},
		{name: "unknown state", method: http.MethodGet, path: "/bookings?state=SOMEDAY", user: "1", wantError: "Unknown state: SOMEDAY"},
		{name: "approved not bool", method: http.MethodPatch, path: "/bookings/1?approved=yes-please", user: "1", wantError: "ValidationFailure"},
		{name: "bad path id", method: http.MethodGet, path: "/bookings/abc", user: "1", wantError: "ValidationFailure"},
		{name: "item blank name", method: http.MethodPost, path: "/items", user: "1",
			body: `{"name":"  ","description":"d","available":true}`, wantError: "ValidationFailure"},
		{name: "item missing available", method: http.MethodPost, path: "/items", user: "1",
			body: `{"name":"n","description":"d"}`, wantError: "ValidationFailure"},
		{name: "item update blank description", method: http.MethodPatch, path: "/items/1", user: "1",
			body: `{"description":""}`, wantError: "ValidationFailure"},
		{name: "comment blank", method: http.MethodPost, path: "/items/1/comment", user: "1",
			body: `{"text":" "}`, wantError: "ValidationFailure"},
		{name: "request blank", method: http.MethodPost, path: "/requests", user: "1",
			body: `{"description":""}`, wantError: "ValidationFailure"},
		{name: "user bad email", method: http.MethodPost, path: "/users",
			body: `{"name":"n","email":"nope"}`, wantError: "ValidationFailure"},
		{name: "user update bad email", method: http.MethodPatch, path: "/users/1",
			body: `{"email":"nope"}`, wantError: "ValidationFailure"},
		{name: "malformed json", method: http.MethodPost, path: "/users",
			body: `{"name":`, wantError: "ValidationFailure"},
		{name: "booking in the past", method: http.MethodPost, path: "/bookings", user: "1",
			body: `{"itemId":1,"start":"2001-01-01T10:00:00","end":"` + future.Format(time.RFC3339) + `"}`, wantError: "ValidationFailure"},
		{name: "booking without item", method: http.MethodPost, path: "/bookings", user: "1",
			body: `{"start":"` + future.Format(time.RFC3339) + `","end":"` + future.Add(time.Hour).Format(time.RFC3339) + `"}`, wantError: "ValidationFailure"},
		{name: "booking without end", method: http.MethodPost, path: "/bookings", user: "1",
			body: `{"itemId":1,"start":"` + future.Format(time.RFC3339) + `"}`, wantError: "ValidationFailure"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(t, base, tc.method, tc.path, tc.body, tc.user)
			assert.Equal(t, http.StatusBadRequest, w.Code, string(w.Body))
			assert.Equal(t, tc.wantError, errorOf(t, w).Error)
		})
	}
	assert.Empty(t, core.recorded())
}

func TestGatewayAcceptsValidCalls(t *testing.T) {
	base, core := setupGateway(t, nil)
	start := time.Now().Add(time.Hour).UTC()

	booking := `{"itemId":4,"start":"` + start.Format(models.LocalTimestampLayout) + `","end":"` + start.Add(time.Hour).Format(time.RFC3339) + `"}`
	calls := []struct{ method, path, body, user string }{
		{http.MethodPost, "/bookings", booking, "2"},
		{http.MethodPatch, "/bookings/9?approved=true", "", "2"},
		{http.MethodGet, "/bookings/owner?state=current&from=0&size=5", "", "2"},
		{http.MethodGet, "/bookings/owner/export?state=ALL", "", "2"},
		{http.MethodPatch, "/items/3", `{"available":false}`, "2"},
		{http.MethodPatch, "/users/3", `{"name":"New name"}`, ""},
		{http.MethodGet, "/items/search?text=saw", "", "2"},
		{http.MethodDelete, "/users/3", "", ""},
	}
	for _, call := range calls {
		w := send(t, base, call.method, call.path, call.body, call.user)
		assert.Equal(t, http.StatusCreated, w.Code, "%s %s: %s", call.method, call.path, string(w.Body))
	}

	recorded := core.recorded()
	require.Len(t, recorded, len(calls))
	assert.Equal(t, "approved=true", recorded[1].Query)
	assert.Equal(t, booking, recorded[0].Body)
}

func TestGatewayCoreDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	logger := zerolog.Nop()
	g, err := New(config.GatewayConfig{ServerURL: url, ForwardTimeout: time.Second}, nil, &logger)
	require.NoError(t, err)

	w := send(t, serve(t, g.Handler(nil)), http.MethodGet, "/users", "", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "InternalError", errorOf(t, w).Error)
}

func TestGatewayRateLimit(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := ratelimit.NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer ratelimit.Close(client)

	logger := zerolog.Nop()
	limiter := ratelimit.NewFailoverLimiter(
		ratelimit.NewRedisLimiter(client, 2, time.Minute),
		ratelimit.NewMemoryLimiter(2, time.Minute),
		&logger,
	)
	base, core := setupGateway(t, limiter)

	for i := 0; i < 2; i++ {
		w := send(t, base, http.MethodGet, "/requests", "", "5")
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	w := send(t, base, http.MethodGet, "/requests", "", "5")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "TooManyRequests", errorOf(t, w).Error)

	w = send(t, base, http.MethodGet, "/requests", "", "6")
	assert.Equal(t, http.StatusCreated, w.Code, "other users keep their budget")
	assert.Len(t, core.recorded(), 3)
}

func TestGatewayCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()
	g, err := New(config.GatewayConfig{ServerURL: "http://127.0.0.1:1", ForwardTimeout: time.Second}, nil, &logger)
	require.NoError(t, err)
	base := serve(t, g.Handler([]string{"http://localhost:3000"}))

	preflight := func(origin string) reply {
		req, err := http.NewRequest(http.MethodOptions, base+"/items", bytes.NewReader(nil))
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		// Browsers send the requested header names lowercased.
		req.Header.Set("Access-Control-Request-Headers", strings.ToLower(models.HeaderUserID))
		return do(t, req)
	}

	allowed := preflight("http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", allowed.Header.Get("Access-Control-Allow-Origin"))

	denied := preflight("http://evil.example")
	assert.Empty(t, denied.Header.Get("Access-Control-Allow-Origin"))
}
