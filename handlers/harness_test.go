package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/access"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/avatar"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/config"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/departments"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/gate"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/identity"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/news"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/profiles"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/reports"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/sessions"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/storage"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/tokens"
)

var cheapHash = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

var testCookies = config.SessionConfig{AccessCookie: "src_access_token", RefreshCookie: "src_refresh_token", CookiePath: "/"}

// fakeObjectStore hands out deterministic signed URLs.
type fakeObjectStore struct {
	err  error
	keys []string
}

func (f *fakeObjectStore) CreateSignedUploadURL(_ context.Context, key string, expires time.Duration) (*storage.SignedUpload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, key)
	return &storage.SignedUpload{
		URL:       "https://objects.test/avatars/" + key + "?X-Amz-Signature=sig",
		Token:     "sig",
		ExpiresAt: time.Now().Add(expires),
	}, nil
}

// brokenProfiles fails every insert.
type brokenProfiles struct{ *profiles.MemoryRepository }

func (brokenProfiles) Insert(context.Context, *models.Profile) error {
	return errors.New("profiles: write concern timeout")
}

type app struct {
	mr          *miniredis.Miniredis
	identities  *identity.MemoryRepository
	provider    *identity.Provider
	profiles    *profiles.Service
	sessions    *sessions.Service
	issuer      *tokens.Issuer
	reports     *reports.Service
	departments *departments.Service
	news        *news.Service
	objects     *fakeObjectStore
	router      *gin.Engine
}

type appOption func(*appDeps)

type appDeps struct {
	profileRepo profiles.Repository
}

func withProfileRepo(r profiles.Repository) appOption {
	return func(d *appDeps) { d.profileRepo = r }
}

func newApp(t *testing.T, opts ...appOption) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	deps := &appDeps{profileRepo: profiles.NewMemoryRepository()}
	for _, o := range opts {
		o(deps)
	}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := &app{
		mr:          mr,
		identities:  identity.NewMemoryRepository(),
		profiles:    profiles.NewService(deps.profileRepo),
		sessions:    sessions.NewService(sessions.NewRedisRepository(rdb, "session:"), time.Hour),
		issuer:      tokens.NewIssuer(config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Issuer: "src-portal", AccessTokenTTL: 15 * time.Minute}),
		reports:     reports.NewService(reports.NewMemoryRepository()),
		departments: departments.NewService(departments.NewMemoryRepository()),
		news:        news.NewService(news.NewMemoryRepository()),
		objects:     &fakeObjectStore{},
	}
	a.provider = identity.NewProvider(a.identities).WithParams(cheapHash)
	blacklist := sessions.NewBlacklist(rdb)

	ev, err := access.NewEvaluator("", access.Catalogue()...)
	require.NoError(t, err)
	f := gate.NewFactory(gate.NewResolver(a.sessions, blacklist, a.issuer, testCookies), a.profiles, ev, 2*time.Second)

	r := gin.New()
	NewAuthHandler(testCookies, a.provider, a.profiles, a.sessions, blacklist, a.issuer, f).Register(r.Group("/"))
	NewPortalHandler(f, a.provider, a.departments, a.news, a.reports, avatar.NewService(a.objects, 5*time.Minute)).Register(r.Group("/"))
	a.router = r
	return a
}

// member creates an identity with a profile and returns its access cookie.
func (a *app) member(t *testing.T, id string, role models.Role, dept string) *http.Cookie {
	t.Helper()
	ident := &models.Identity{ID: id, Email: id + "@dwu.ac.pg"}
	require.NoError(t, a.profiles.Put(context.Background(), &models.Profile{ID: id, Role: role, SRCDepartment: dept, IsActive: true}))
	tok, err := a.issuer.GenerateAccessToken(ident)
	require.NoError(t, err)
	return &http.Cookie{Name: testCookies.AccessCookie, Value: tok}
}

func (a *app) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
