package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/profiles"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "0", Environment: "test", ProviderTimeout: 2 * time.Second},
		MongoDB: config.MongoDBConfig{Database: "src_test"},
		JWT: config.JWTConfig{
			Secret:          "0123456789abcdef0123456789abcdef",
			Issuer:          "src-portal",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		Session: config.SessionConfig{AccessCookie: "src_access_token", RefreshCookie: "src_refresh_token", CookiePath: "/"},
		Avatar:  config.AvatarConfig{UploadURLTTL: 5 * time.Minute},
	}
}

func call(h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBuild_InMemoryPortal(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, testConfig())
	require.NoError(t, err)
	defer app.Close(ctx)
	require.NoError(t, app.EnsureIndexes(ctx))
	h := app.Handler()

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/health", "").Code)
	ready := call(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"store":"memory"`)

	require.Equal(t, http.StatusOK, call(h, http.MethodPost, "/auth/signup", `{"email":"pres@dwu.ac.pg","password":"longenough"}`).Code)
	login := call(h, http.MethodPost, "/auth/login", `{"email":"pres@dwu.ac.pg","password":"longenough"}`)
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())
	var cookies []*http.Cookie
	for _, c := range login.Result().Cookies() {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}

	deps := call(h, http.MethodGet, "/departments", "", cookies...)
	require.Equal(t, http.StatusOK, deps.Code)
	var body struct {
		Departments []models.Department `json:"departments"`
	}
	require.NoError(t, json.Unmarshal(deps.Body.Bytes(), &body))
	assert.Len(t, body.Departments, 8)

	// a student cannot delete; promoting to src President can
	var user struct {
		User models.Identity `json:"user"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &user))
	require.NoError(t, app.Reports.Put(ctx, &models.Report{ID: "42", Title: "t", Content: "c"}))
	assert.Equal(t, http.StatusForbidden, call(h, http.MethodDelete, "/reports/42", "", cookies...).Code)
	require.NoError(t, app.Profiles.Assign(ctx, user.User.ID, profiles.Assignment{Role: models.RoleSRC, SRCDepartment: "President", IsActive: true}))
	assert.Equal(t, http.StatusOK, call(h, http.MethodDelete, "/reports/42", "", cookies...).Code)

	// avatar uploads need an object store
	assert.Equal(t, http.StatusInternalServerError, call(h, http.MethodPost, "/avatar/upload-url", `{"fileType":"image/png"}`, cookies...).Code)

	m := call(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "src_portal_access_decisions_total")
}

func TestBuild_RedisSessions(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	host, port, _ := strings.Cut(mr.Addr(), ":")

	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Host: host, Port: port}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, UseRedis: true, RPS: 100, Burst: 100, WindowSeconds: 1}

	ctx := context.Background()
	app, err := Build(ctx, cfg)
	require.NoError(t, err)
	defer app.Close(ctx)
	h := app.Handler()

	require.Equal(t, http.StatusOK, call(h, http.MethodPost, "/auth/signup", `{"email":"a@dwu.ac.pg","password":"longenough"}`).Code)
	login := call(h, http.MethodPost, "/auth/login", `{"email":"a@dwu.ac.pg","password":"longenough"}`)
	require.Equal(t, http.StatusOK, login.Code)

	var refresh string
	for _, c := range login.Result().Cookies() {
		if c.Name == "src_refresh_token" {
			refresh = c.Value
		}
	}
	require.NotEmpty(t, refresh)
	assert.True(t, mr.Exists("session:"+refresh))

	ready := call(h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, ready.Code)
	assert.Contains(t, ready.Body.String(), `"redis":true`)
}

func TestBuild_ProductionRequiresReachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Environment = "production"
	cfg.Server.ProviderTimeout = 200 * time.Millisecond
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "1"}

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)

	cfg.Redis = config.RedisConfig{}
	_, err = Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_HOST")
}

func TestBuild_RateLimitKeysGatedRoutesBySubject(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.0001, Burst: 2}

	ctx := context.Background()
	app, err := Build(ctx, cfg)
	require.NoError(t, err)
	defer app.Close(ctx)
	h := app.Handler()

	login := func(email string) []*http.Cookie {
		id, err := app.Identity.SignUp(ctx, email, "longenough")
		require.NoError(t, err)
		_, err = app.Profiles.CreateStudent(ctx, id.ID, "")
		require.NoError(t, err)
		w := call(h, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"longenough"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []*http.Cookie
		for _, c := range w.Result().Cookies() {
			out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
		}
		return out
	}
	// two logins spend the shared address bucket
	alice := login("alice@dwu.ac.pg")
	bob := login("bob@dwu.ac.pg")
	assert.Equal(t, http.StatusTooManyRequests, call(h, http.MethodGet, "/news", "").Code)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/departments", "", alice...).Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/departments", "", bob...).Code)
	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/me", "", alice...).Code)
	assert.Equal(t, http.StatusTooManyRequests, call(h, http.MethodGet, "/departments", "", alice...).Code)

	assert.Equal(t, http.StatusOK, call(h, http.MethodGet, "/health", "").Code)
}
