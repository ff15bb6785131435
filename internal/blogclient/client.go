// Package blogclient is a Go client for the blog API that hides the
// session lifecycle from callers: it holds the short lived access
// token in memory, keeps the refresh cookie in a jar, and silently
// refreshes + retries once when a request bounces with 401.
package blogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	// BaseURL of the API server, e.g. "https://blog.example.com"
	BaseURL string

	// MarkerPath is where the session marker JSON lives. Empty keeps
	// the marker in memory only (no silent login across restarts).
	MarkerPath string

	// HTTPClient override, mostly for tests. A cookie jar is installed
	// if the client doesn't have one.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	markers MarkerStore

	mu          sync.Mutex
	accessToken string
	refreshing  *refreshCall
}

// refreshCall is a single in-flight refresh shared by every request
// that hit 401 while it runs
type refreshCall struct {
	done chan struct{}
	err  error
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL must not be empty")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("can't create cookie jar. Err: %w", err)
		}
		httpClient.Jar = jar
	}

	var markers MarkerStore = &memMarkerStore{}
	if cfg.MarkerPath != "" {
		markers = NewFileMarkerStore(cfg.MarkerPath)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		markers: markers,
	}, nil
}

// APIError is a non-2xx response decoded into something inspectable
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d kind=%s message=%q", e.Status, e.Kind, e.Message)
}

// Bootstrap tries to resume a previous session: if a marker is stored
// and no access token is held, it performs one silent refresh. Failure
// is not an error, the client just stays anonymous with the marker
// cleared.
func (c *Client) Bootstrap(ctx context.Context) error {
	_, ok, err := c.markers.Load()
	if err != nil {
		return err
	}
	if !ok || c.token() != "" {
		return nil
	}

	if err := c.refreshAccess(ctx); err != nil {
		return c.clearSession()
	}
	return nil
}

// User as the API renders it
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

type Blog struct {
	ID            uuid.UUID `json:"id"`
	AuthorID      uuid.UUID `json:"authorId"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	BannerURL     string    `json:"bannerUrl"`
	Status        string    `json:"status"`
	ViewsCount    int64     `json:"viewsCount"`
	LikesCount    int64     `json:"likesCount"`
	CommentsCount int64     `json:"commentsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	BlogID    uuid.UUID `json:"blogId"`
	UserID    uuid.UUID `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type session struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

func (c *Client) Register(ctx context.Context, username string, email string, password string) (User, error) {
	var s session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"username": username, "email": email, "password": password}, &s)
	if err != nil {
		return User{}, err
	}

	c.startSession(s)
	return s.User, nil
}

func (c *Client) Login(ctx context.Context, email string, password string) (User, error) {
	var s session
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password}, &s)
	if err != nil {
		return User{}, err
	}

	c.startSession(s)
	return s.User, nil
}

// Logout revokes the session server side and forgets it locally.
// Local state is cleared even when the server call fails: a client
// that wants out should not stay logged in because of a flaky network.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
	if clearErr := c.clearSession(); clearErr != nil {
		return clearErr
	}
	return err
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	err := c.do(ctx, http.MethodGet, "/api/v1/users/me", nil, &u)
	return u, err
}

type BlogList struct {
	Blogs []Blog `json:"blogs"`
	Total int64  `json:"total"`
}

func (c *Client) ListBlogs(ctx context.Context, limit int, offset int) (BlogList, error) {
	var list BlogList
	path := fmt.Sprintf("/api/v1/blogs?limit=%d&offset=%d", limit, offset)
	err := c.do(ctx, http.MethodGet, path, nil, &list)
	return list, err
}

func (c *Client) ListBlogsByAuthor(ctx context.Context, username string, limit int, offset int) (BlogList, error) {
	var list BlogList
	path := fmt.Sprintf("/api/v1/blogs/author/%s?limit=%d&offset=%d", username, limit, offset)
	err := c.do(ctx, http.MethodGet, path, nil, &list)
	return list, err
}

func (c *Client) GetBlog(ctx context.Context, slug string) (Blog, error) {
	var b Blog
	err := c.do(ctx, http.MethodGet, "/api/v1/blogs/"+slug, nil, &b)
	return b, err
}

type CreateBlogParams struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	BannerURL string `json:"bannerUrl,omitempty"`
	Status    string `json:"status,omitempty"`
}

func (c *Client) CreateBlog(ctx context.Context, params CreateBlogParams) (Blog, error) {
	var b Blog
	err := c.do(ctx, http.MethodPost, "/api/v1/blogs", params, &b)
	return b, err
}

type UpdateBlogParams struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	BannerURL *string `json:"bannerUrl,omitempty"`
	Status    *string `json:"status,omitempty"`
}

func (c *Client) UpdateBlog(ctx context.Context, blogID uuid.UUID, params UpdateBlogParams) (Blog, error) {
	var b Blog
	err := c.do(ctx, http.MethodPatch, "/api/v1/blogs/"+blogID.String(), params, &b)
	return b, err
}

func (c *Client) DeleteBlog(ctx context.Context, blogID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/blogs/"+blogID.String(), nil, nil)
}

func (c *Client) CreateComment(ctx context.Context, blogID uuid.UUID, content string) (Comment, error) {
	var comment Comment
	err := c.do(ctx, http.MethodPost, "/api/v1/blogs/"+blogID.String()+"/comments",
		map[string]string{"content": content}, &comment)
	return comment, err
}

func (c *Client) ListComments(ctx context.Context, blogID uuid.UUID) ([]Comment, error) {
	var out struct {
		Comments []Comment `json:"comments"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/blogs/"+blogID.String()+"/comments", nil, &out)
	return out.Comments, err
}

func (c *Client) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/comments/"+commentID.String(), nil, nil)
}

func (c *Client) LikeBlog(ctx context.Context, blogID uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/api/v1/blogs/"+blogID.String()+"/like", nil, nil)
}

func (c *Client) UnlikeBlog(ctx context.Context, blogID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/blogs/"+blogID.String()+"/like", nil, nil)
}

func (c *Client) BlogLiked(ctx context.Context, blogID uuid.UUID) (bool, error) {
	var out struct {
		IsLiked bool `json:"isLiked"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/blogs/"+blogID.String()+"/like", nil, &out)
	return out.IsLiked, err
}

// do runs one API call. On 401 it performs a coalesced refresh and
// retries the original request exactly once; if the refresh fails the
// local session is cleared and the ORIGINAL 401 is returned.
func (c *Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("can't encode request body. Err: %w", err)
		}
	}

	resp, raw, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		originalErr := decodeError(resp.StatusCode, raw)

		if refreshErr := c.refreshAccess(ctx); refreshErr != nil {
			if clearErr := c.clearSession(); clearErr != nil {
				return clearErr
			}
			return originalErr
		}

		resp, raw, err = c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("can't decode response. Err: %w", err)
		}
	}
	return nil
}

// send performs one HTTP round trip with the bearer token attached
func (c *Client) send(ctx context.Context, method string, path string, payload []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("can't create request. Err: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed. Err: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("can't read response body. Err: %w", err)
	}

	return resp, raw, nil
}

// refreshAccess obtains a new access token via the refresh cookie.
// Concurrent callers share a single in-flight refresh: whoever comes
// second waits for the first call's result instead of firing another.
func (c *Client) refreshAccess(ctx context.Context) error {
	c.mu.Lock()
	if call := c.refreshing; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.refreshing = call
	c.mu.Unlock()

	err := c.callRefreshEndpoint(ctx)

	c.mu.Lock()
	call.err = err
	c.refreshing = nil
	c.mu.Unlock()
	close(call.done)

	return err
}

func (c *Client) callRefreshEndpoint(ctx context.Context) error {
	resp, raw, err := c.send(ctx, http.MethodPost, "/api/v1/auth/refresh-token", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, raw)
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("can't decode refresh response. Err: %w", err)
	}

	c.setToken(out.AccessToken)
	return nil
}

func (c *Client) startSession(s session) {
	c.setToken(s.AccessToken)
	// Best effort: the session works even when the marker can't be saved
	_ = c.markers.Save(Marker{
		Username: s.User.Username,
		Email:    s.User.Email,
		Role:     s.User.Role,
	})
}

func (c *Client) clearSession() error {
	c.setToken("")
	return c.markers.Clear()
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = token
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Kind = body.Error
		apiErr.Message = body.Message
	}

	return apiErr
}
