package middleware

import (
	"context"
	"errors"
	"testing"

	"io"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blogapi/internal/handlers/userctx"
	"github.com/nkiryanov/blogapi/internal/models"
)

// Allow to use a function as auth service
type authFunc func(ctx context.Context, access string) (models.User, error)

func (f authFunc) Authenticate(ctx context.Context, access string) (models.User, error) {
	return f(ctx, access)
}

func TestAuthMiddleware(t *testing.T) {
	// Simple handler that try to get user from context
	// If ok write it username to response
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must always be true cause middleware has to set user or write error
		user, ok := userctx.FromContext(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(user.Username))
		require.NoError(t, err, "should write username to response")
	})

	get := func(t *testing.T, url string, bearer string) (*http.Response, string) {
		t.Helper()

		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp, string(body)
	}

	t.Run("auth ok", func(t *testing.T) {
		var gotAccess string
		middleware := Auth(authFunc(func(ctx context.Context, access string) (models.User, error) {
			gotAccess = access
			return models.User{Username: "test-user"}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL+"/test", "the-access-token")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", body)
		require.Equal(t, "test-user", body, "should return username in response")
		require.Equal(t, "the-access-token", gotAccess, "middleware should pass the bearer token through")
	})

	t.Run("auth fail", func(t *testing.T) {
		middleware := Auth(authFunc(func(ctx context.Context, access string) (models.User, error) {
			return models.User{}, errors.New("nope")
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, body := get(t, srv.URL+"/test", "bad-token")

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "should return status Unauthorized. Resp: %s", body)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			body,
		)
	})

	t.Run("missing header", func(t *testing.T) {
		middleware := Auth(authFunc(func(ctx context.Context, access string) (models.User, error) {
			t.Fatal("auth service must not be called without a token")
			return models.User{}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp, _ := get(t, srv.URL+"/test", "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMaybeAuthMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := userctx.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(user.Username))
	})

	middleware := MaybeAuth(authFunc(func(ctx context.Context, access string) (models.User, error) {
		if access == "valid" {
			return models.User{Username: "test-user"}, nil
		}
		return models.User{}, errors.New("nope")
	}))

	srv := httptest.NewServer(middleware(handler))
	defer srv.Close()

	t.Run("anonymous passes through", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Empty(t, string(body), "no user in context for anonymous request")
	})

	t.Run("valid token resolves user", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer valid")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "test-user", string(body))
	})

	t.Run("broken token still rejected", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer garbage")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthorizeMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(t *testing.T, user *models.User, roles ...string) *http.Response {
		t.Helper()

		h := Authorize(roles...)(handler)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user != nil {
				r = r.WithContext(userctx.New(r.Context(), *user))
			}
			h.ServeHTTP(w, r)
		}))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck
		return resp
	}

	t.Run("role allowed", func(t *testing.T) {
		resp := serve(t, &models.User{Role: models.RoleAdmin}, models.RoleAdmin)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("role denied", func(t *testing.T) {
		resp := serve(t, &models.User{Role: models.RoleUser}, models.RoleAdmin)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("no user in context", func(t *testing.T) {
		resp := serve(t, nil, models.RoleAdmin)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
