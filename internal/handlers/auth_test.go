package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/logger"
	"github.com/nkiryanov/blogapi/internal/repository/memory"
	"github.com/nkiryanov/blogapi/internal/service/auth"
	"github.com/nkiryanov/blogapi/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/blogapi/internal/service/blog"
	"github.com/nkiryanov/blogapi/internal/service/comment"
	"github.com/nkiryanov/blogapi/internal/service/like"
	"github.com/nkiryanov/blogapi/internal/service/user"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	storage := memory.NewStorage()

	authService, err := auth.NewService(auth.Config{
		Token: tokenmanager.Config{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
		},
		AdminEmails: []string{"admin@example.com"},
	}, storage)
	require.NoError(t, err)

	router := NewRouter(
		RouterConfig{SecureCookie: false},
		authService,
		blog.NewService(storage),
		comment.NewService(storage),
		like.NewService(storage),
		user.NewService(nil, storage),
		logger.NewNoOpLogger(),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends the request and decodes the response body into a map.
// Cookies are NOT handled automatically, tests manage them by hand to
// see exactly what the server sets.
func doJSON(t *testing.T, method string, url string, body string, mod func(*http.Request)) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}

	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", string(raw))
	}

	return resp, decoded
}

func refreshCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

type session struct {
	access  string
	refresh *http.Cookie
	userID  string
}

func registerUser(t *testing.T, srv *httptest.Server, username string, email string) session {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register",
		`{"username":"`+username+`","email":"`+email+`","password":"strong-password"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	cookie := refreshCookieFrom(t, resp)
	require.NotNil(t, cookie, "register must set the refresh cookie")

	return session{
		access:  body["accessToken"].(string),
		refresh: cookie,
		userID:  body["user"].(map[string]any)["id"].(string),
	}
}

func login(t *testing.T, srv *httptest.Server, email string) session {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login",
		`{"email":"`+email+`","password":"strong-password"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)

	cookie := refreshCookieFrom(t, resp)
	require.NotNil(t, cookie, "login must set the refresh cookie")

	return session{
		access:  body["accessToken"].(string),
		refresh: cookie,
		userID:  body["user"].(map[string]any)["id"].(string),
	}
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("register", func(t *testing.T) {
		t.Run("creates session with cookie flags", func(t *testing.T) {
			srv := newTestServer(t)

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register",
				`{"username":"reader","email":"reader@example.com","password":"strong-password"}`, nil)

			require.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.NotEmpty(t, body["accessToken"])
			assert.Equal(t, "user", body["user"].(map[string]any)["role"])

			cookie := refreshCookieFrom(t, resp)
			require.NotNil(t, cookie)
			assert.True(t, cookie.HttpOnly, "cookie must be HttpOnly")
			assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
			assert.Equal(t, "/", cookie.Path)
			assert.Positive(t, cookie.MaxAge, "cookie lives as long as the token")
		})

		t.Run("whitelisted email registers as admin", func(t *testing.T) {
			srv := newTestServer(t)

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register",
				`{"username":"boss","email":"admin@example.com","password":"strong-password"}`, nil)

			require.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.Equal(t, "admin", body["user"].(map[string]any)["role"])
		})

		t.Run("duplicate email conflicts", func(t *testing.T) {
			srv := newTestServer(t)
			registerUser(t, srv, "first", "dup@example.com")

			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register",
				`{"username":"second","email":"dup@example.com","password":"strong-password"}`, nil)
			require.Equal(t, http.StatusConflict, resp.StatusCode)
		})

		t.Run("short password rejected", func(t *testing.T) {
			srv := newTestServer(t)

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register",
				`{"username":"weak","email":"weak@example.com","password":"short"}`, nil)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "validation_failed", body["error"])
		})
	})

	t.Run("login", func(t *testing.T) {
		t.Run("unknown account is 404", func(t *testing.T) {
			srv := newTestServer(t)

			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login",
				`{"email":"nobody@example.com","password":"whatever-long"}`, nil)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
		})

		t.Run("wrong password is 404 too", func(t *testing.T) {
			srv := newTestServer(t)
			registerUser(t, srv, "victim", "victim@example.com")

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login",
				`{"email":"victim@example.com","password":"wrong-password"}`, nil)

			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "User not found", body["message"], "same shape as unknown account")
		})

		t.Run("each login starts an independent session", func(t *testing.T) {
			srv := newTestServer(t)
			registerUser(t, srv, "multi", "multi@example.com")

			first := login(t, srv, "multi@example.com")
			second := login(t, srv, "multi@example.com")
			require.NotEqual(t, first.refresh.Value, second.refresh.Value)

			// Logout of the first session
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", "",
				func(r *http.Request) { withBearer(first.access)(r); withCookie(first.refresh)(r) })
			require.Equal(t, http.StatusOK, resp.StatusCode)

			// First session can't refresh anymore, second still can
			resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh-token", "", withCookie(first.refresh))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh-token", "", withCookie(second.refresh))
			require.Equal(t, http.StatusOK, resp.StatusCode)
		})
	})

	t.Run("refresh-token", func(t *testing.T) {
		t.Run("returns new access token and leaves cookie alone", func(t *testing.T) {
			srv := newTestServer(t)
			s := registerUser(t, srv, "fresh", "fresh@example.com")

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh-token", "", withCookie(s.refresh))

			require.Equal(t, http.StatusOK, resp.StatusCode)
			newAccess := body["accessToken"].(string)
			assert.NotEmpty(t, newAccess)
			assert.NotEqual(t, s.access, newAccess)

			assert.Nil(t, refreshCookieFrom(t, resp), "refresh must not rotate or re-set the cookie")

			// New access token works against a protected endpoint
			resp, me := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/me", "", withBearer(newAccess))
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, s.userID, me["id"], "refreshed token keeps the login's subject")
		})

		t.Run("missing cookie", func(t *testing.T) {
			srv := newTestServer(t)

			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh-token", "", nil)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		t.Run("garbage cookie", func(t *testing.T) {
			srv := newTestServer(t)

			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh-token", "",
				withCookie(&http.Cookie{Name: refreshCookieName, Value: "not-a-jwt"}))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		t.Run("works repeatedly with the same cookie", func(t *testing.T) {
			srv := newTestServer(t)
			s := registerUser(t, srv, "again", "again@example.com")

			for range 3 {
				resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh-token", "", withCookie(s.refresh))
				require.Equal(t, http.StatusOK, resp.StatusCode)
			}
		})
	})

	t.Run("logout", func(t *testing.T) {
		t.Run("requires authentication", func(t *testing.T) {
			srv := newTestServer(t)

			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", "", nil)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		t.Run("revokes session and clears cookie", func(t *testing.T) {
			srv := newTestServer(t)
			s := registerUser(t, srv, "leaver", "leaver@example.com")

			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", "",
				func(r *http.Request) { withBearer(s.access)(r); withCookie(s.refresh)(r) })

			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "Logged out successfully", body["message"])

			cleared := refreshCookieFrom(t, resp)
			require.NotNil(t, cleared, "logout must clear the cookie")
			assert.Negative(t, cleared.MaxAge)

			resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/refresh-token", "", withCookie(s.refresh))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "revoked token must not refresh")
		})

		t.Run("idempotent", func(t *testing.T) {
			srv := newTestServer(t)
			s := registerUser(t, srv, "twice", "twice@example.com")

			for range 2 {
				resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", "",
					func(r *http.Request) { withBearer(s.access)(r); withCookie(s.refresh)(r) })
				require.Equal(t, http.StatusOK, resp.StatusCode, "logout is always success shaped")
			}
		})

		t.Run("access token keeps working after logout", func(t *testing.T) {
			srv := newTestServer(t)
			s := registerUser(t, srv, "linger", "linger@example.com")

			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", "",
				func(r *http.Request) { withBearer(s.access)(r); withCookie(s.refresh)(r) })
			require.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/me", "", withBearer(s.access))
			require.Equal(t, http.StatusOK, resp.StatusCode, "access tokens are stateless until expiry")
		})
	})

	t.Run("protected endpoints", func(t *testing.T) {
		t.Run("bearer required", func(t *testing.T) {
			srv := newTestServer(t)

			resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/me", "", nil)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		t.Run("refresh token is not a bearer credential", func(t *testing.T) {
			srv := newTestServer(t)
			s := registerUser(t, srv, "sneaky", "sneaky@example.com")

			resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/users/me", "", withBearer(s.refresh.Value))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})

		t.Run("admin gate", func(t *testing.T) {
			srv := newTestServer(t)
			regular := registerUser(t, srv, "pleb", "pleb@example.com")
			admin := registerUser(t, srv, "boss", "admin@example.com")

			blogBody := `{"title":"Hello","content":"World","status":"published"}`

			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/blogs", blogBody, withBearer(regular.access))
			require.Equal(t, http.StatusForbidden, resp.StatusCode)

			resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/blogs", blogBody, withBearer(admin.access))
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			assert.NotEmpty(t, created["slug"])
		})

		t.Run("draft slug converges to not found", func(t *testing.T) {
			srv := newTestServer(t)
			admin := registerUser(t, srv, "boss", "admin@example.com")
			stranger := registerUser(t, srv, "other", "other@example.com")

			resp, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/blogs",
				`{"title":"Secret draft","content":"wip"}`, withBearer(admin.access))
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			slug := created["slug"].(string)

			// Anonymous and unrelated users get 404, the author sees it
			resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/blogs/"+slug, "", nil)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)

			resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/blogs/"+slug, "", withBearer(stranger.access))
			require.Equal(t, http.StatusNotFound, resp.StatusCode)

			resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/blogs/"+slug, "", withBearer(admin.access))
			require.Equal(t, http.StatusOK, resp.StatusCode)
		})
	})
}
