package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/profiles"
)

func TestSignup_CreatesStudentProfile(t *testing.T) {
	a := newApp(t)

	w := a.do(t, http.MethodPost, "/auth/signup", `{"email":"Mere@DWU.ac.pg","password":"longenough","full_name":"Mere K"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	ident, err := a.identities.GetByEmail(context.Background(), "mere@dwu.ac.pg")
	require.NoError(t, err)
	require.NotNil(t, ident)

	p, err := a.profiles.Load(context.Background(), ident.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.RoleStudent, p.Role)
	assert.True(t, p.IsActive)
	assert.Equal(t, "Mere K", p.FullName)
}

func TestSignup_Validation(t *testing.T) {
	a := newApp(t)
	cases := []struct {
		body string
		msg  string
	}{
		{`{}`, "Email and password are required"},
		{`{"email":"a@dwu.ac.pg"}`, "Email and password are required"},
		{`{"email":"not-an-email","password":"longenough"}`, "Invalid email address"},
		{`{"email":"a@dwu.ac.pg","password":"short"}`, "Password must be at least 8 characters"},
		{`not json`, "Invalid request body"},
	}
	for _, tc := range cases {
		w := a.do(t, http.MethodPost, "/auth/signup", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.body)
		assert.JSONEq(t, `{"error":"`+tc.msg+`"}`, w.Body.String(), tc.body)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	a := newApp(t)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/auth/signup", `{"email":"dup@dwu.ac.pg","password":"longenough"}`).Code)

	w := a.do(t, http.MethodPost, "/auth/signup", `{"email":"DUP@dwu.ac.pg","password":"otherpassword"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Unable to create account"}`, w.Body.String())
}

func TestSignup_ProfileFailureRemovesIdentity(t *testing.T) {
	a := newApp(t, withProfileRepo(brokenProfiles{profiles.NewMemoryRepository()}))

	w := a.do(t, http.MethodPost, "/auth/signup", `{"email":"orphan@dwu.ac.pg","password":"longenough"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "write concern")

	ident, err := a.identities.GetByEmail(context.Background(), "orphan@dwu.ac.pg")
	require.NoError(t, err)
	assert.Nil(t, ident, "identity must not outlive a failed profile insert")

	// the address is free again: a retry fails on the profile, not as a duplicate
	w = a.do(t, http.MethodPost, "/auth/signup", `{"email":"orphan@dwu.ac.pg","password":"longenough"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogin_SetsCookiesAndDashboard(t *testing.T) {
	a := newApp(t)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/auth/signup", `{"email":"kila@dwu.ac.pg","password":"longenough"}`).Code)

	w := a.do(t, http.MethodPost, "/auth/login", `{"email":"kila@dwu.ac.pg","password":"longenough"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success   bool   `json:"success"`
		Role      string `json:"role"`
		Dashboard string `json:"dashboard"`
		User      struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "student", body.Role)
	assert.Equal(t, "/dashboard/student", body.Dashboard)
	assert.Equal(t, "kila@dwu.ac.pg", body.User.Email)
	assert.NotContains(t, w.Body.String(), "argon2id")

	access := responseCookie(w, "src_access_token")
	refresh := responseCookie(w, "src_refresh_token")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)

	me := a.do(t, http.MethodGet, "/me", "", access)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"dashboard":"/dashboard/student"`)
}

func TestLogin_BadCredentials(t *testing.T) {
	a := newApp(t)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/auth/signup", `{"email":"kila@dwu.ac.pg","password":"longenough"}`).Code)

	w := a.do(t, http.MethodPost, "/auth/login", `{"email":"kila@dwu.ac.pg","password":"wrong-password"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, w.Body.String())
	assert.Nil(t, responseCookie(w, "src_access_token"))

	w = a.do(t, http.MethodPost, "/auth/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	a := newApp(t)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/auth/signup", `{"email":"kila@dwu.ac.pg","password":"longenough"}`).Code)
	login := a.do(t, http.MethodPost, "/auth/login", `{"email":"kila@dwu.ac.pg","password":"longenough"}`)
	access := responseCookie(login, "src_access_token")
	refresh := responseCookie(login, "src_refresh_token")

	w := a.do(t, http.MethodPost, "/auth/logout", "", access, refresh)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Signed out successfully"}`, w.Body.String())
	for _, name := range []string{"src_access_token", "src_refresh_token"} {
		c := responseCookie(w, name)
		require.NotNil(t, c, name)
		assert.True(t, c.MaxAge < 0, name)
	}

	// neither the revoked access token nor the deleted refresh session gets back in
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/me", "", access).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/me", "", refresh).Code)
	assert.False(t, a.mr.Exists("session:"+refresh.Value))
}

func TestLogout_WithoutSession(t *testing.T) {
	a := newApp(t)
	w := a.do(t, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout_BlacklistsOnlyOwnTokens(t *testing.T) {
	a := newApp(t)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "stu-1",
		Issuer:    "src-portal",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(100 * 365 * 24 * time.Hour)),
	}).SignedString([]byte("not-the-portal-secret-xxxxxxxxxxxxx"))
	require.NoError(t, err)

	w := a.do(t, http.MethodPost, "/auth/logout", "", &http.Cookie{Name: "src_access_token", Value: forged})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, a.mr.Exists("blacklist:access:"+forged))

	access := a.member(t, "stu-1", models.RoleStudent, "")
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/auth/logout", "", access).Code)
	require.True(t, a.mr.Exists("blacklist:access:"+access.Value))
	assert.LessOrEqual(t, a.mr.TTL("blacklist:access:"+access.Value), 15*time.Minute)
}

func TestLogout_StoreDown(t *testing.T) {
	a := newApp(t)
	access := a.member(t, "stu-1", models.RoleStudent, "")
	a.mr.Close()

	w := a.do(t, http.MethodPost, "/auth/logout", "", access)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}
