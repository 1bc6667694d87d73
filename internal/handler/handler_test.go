package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mobiblog/internal/access"
	"mobiblog/internal/api"
	"mobiblog/internal/config"
	"mobiblog/internal/middleware"
	"mobiblog/internal/models"
	"mobiblog/internal/session"
	"mobiblog/internal/storage"
	"mobiblog/internal/view"
)

var accounts = map[string]models.Session{
	"reader@example.com": {ID: 1, Name: "Rita Reader", Email: "reader@example.com", Role: models.RoleReader},
	"admin@example.com":  {ID: 3, Name: "Ada Admin", Email: "admin@example.com", Role: models.RoleAdmin},
}

// fakeBackend answers the endpoints the pages under test call. Routes can be
// overridden per test.
func fakeBackend(t *testing.T, overrides map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	routes := map[string]http.HandlerFunc{
		"POST /api/login": func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Email     string `json:"email"`
				Password  string `json:"password"`
				LoginType string `json:"loginType"`
			}
			json.NewDecoder(r.Body).Decode(&req)

			user, ok := accounts[req.Email]
			if !ok || req.Password != "secret" || user.Role.LoginType() != req.LoginType {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"message": "Login successful", "user": user})
		},
		"GET /api/blogs": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"blogs": []models.PostSummary{
				{ID: 7, Title: "Go Concurrency", ContentSnippet: "Channels and goroutines", Category: models.CategoryTech, AuthorName: "Ada Admin"},
			}})
		},
		"GET /api/admin/pending-blogs": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"pending_blogs": []models.PendingPost{
				{ID: 11, Title: "Waiting Room", Status: models.StatusPending, AuthorName: "Gus Guest"},
			}})
		},
	}
	for pattern, fn := range overrides {
		routes[pattern] = fn
	}

	mux := http.NewServeMux()
	for pattern, fn := range routes {
		mux.HandleFunc(pattern, fn)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type fakeHealth struct {
	err   error
	count int
}

func (f fakeHealth) Ping(context.Context) error { return f.err }

func (f fakeHealth) CountItems(context.Context) (int, error) { return f.count, nil }

func newTestHandlers(t *testing.T, backendURL string, health HealthChecker) *Handlers {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout: 5 * time.Second,
		SearchDebounce: 10 * time.Millisecond,
		MaxUploadSize:  1 << 20,
	}
	views := view.New(api.NewClient(backendURL, cfg.RequestTimeout), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	manager := session.NewManager(storage.NewMemoryStorage(), session.NewTokenCodec("test-secret", time.Hour))
	cookies := middleware.NewCookieStore("0123456789abcdef0123456789abcdef", false, 3600)

	h, err := NewHandlers(views, NewHomeRegistry(ctx, views), manager, cookies, health, "memory", cfg.MaxUploadSize)
	require.NoError(t, err)
	return h
}

// newBrowser serves the pages and returns a client that keeps cookies and
// does not follow redirects.
func newBrowser(t *testing.T, h *Handlers) (*httptest.Server, *http.Client) {
	t.Helper()

	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return html.UnescapeString(string(data))
}

func login(t *testing.T, srv *httptest.Server, client *http.Client, path, email string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(srv.URL+path, url.Values{"email": {email}, "password": {"secret"}})
	require.NoError(t, err)
	return resp
}

func TestParseTemplates(t *testing.T) {
	pages, err := parseTemplates()
	require.NoError(t, err)

	for _, name := range pageNames {
		assert.NotNil(t, pages[name].Lookup("layout"), name)
		assert.NotNil(t, pages[name].Lookup("content"), name)
	}
	assert.NotNil(t, pages["home"].Lookup("results"))
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		health     HealthChecker
		wantStatus int
		wantBody   string
	}{
		{"counts items", fakeHealth{count: 4}, http.StatusOK, `"items":4`},
		{"storage down", fakeHealth{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "storage unavailable"},
		{"no checker", nil, http.StatusOK, `"status":"ok"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandlers(t, "http://127.0.0.1:1", tt.health)

			rr := httptest.NewRecorder()
			h.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Contains(t, rr.Body.String(), tt.wantBody)
		})
	}
}

func TestGuardRedirectsAnonymousVisitor(t *testing.T) {
	backend := fakeBackend(t, nil)
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))

	for _, path := range []string{"/home", "/my-posts", "/admin-dashboard", "/profile"} {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, access.LoginPath, resp.Header.Get("Location"), path)
	}
}

func TestLoginShowsHomeWithNavbar(t *testing.T) {
	backend := fakeBackend(t, nil)
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))

	resp := login(t, srv, client, "/", "reader@example.com")
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, access.HomePath, resp.Header.Get("Location"))

	resp, err := client.Get(srv.URL + "/home")
	require.NoError(t, err)
	page := body(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Go Concurrency")
	assert.Contains(t, page, "Rita Reader")
	assert.Contains(t, page, "RR")
	assert.NotContains(t, page, "/admin-dashboard")
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	backend := fakeBackend(t, nil)
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))

	// an admin account cannot use the reader variant
	resp := login(t, srv, client, "/", "admin@example.com")
	page := body(t, resp)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, page, "Invalid email or password")

	resp, err := client.Get(srv.URL + "/home")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginStatusFollowsFailureKind(t *testing.T) {
	backend := fakeBackend(t, nil)
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))

	resp, err := client.PostForm(srv.URL+"/", url.Values{"email": {"  "}, "password": {"secret"}})
	require.NoError(t, err)
	body(t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	down, downClient := newBrowser(t, newTestHandlers(t, "http://127.0.0.1:1", nil))
	resp = login(t, down, downClient, "/", "reader@example.com")
	page := body(t, resp)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, page, "Could not connect to the server.")
}

func TestReaderIsSentHomeWithWarning(t *testing.T) {
	backend := fakeBackend(t, nil)
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))
	login(t, srv, client, "/", "reader@example.com").Body.Close()

	resp, err := client.Get(srv.URL + "/admin-dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, access.HomePath, resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/home")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), access.PermissionWarning)

	// the warning is shown once
	resp, err = client.Get(srv.URL + "/home")
	require.NoError(t, err)
	assert.NotContains(t, body(t, resp), access.PermissionWarning)
}

func TestDashboardShowsEachCollectionIndependently(t *testing.T) {
	backend := fakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/admin/pending-blogs": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Pending queue unavailable"})
		},
	})
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))
	login(t, srv, client, "/admin", "admin@example.com").Body.Close()

	resp, err := client.Get(srv.URL + "/admin-dashboard")
	require.NoError(t, err)
	page := body(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, page, "Pending queue unavailable")
	assert.Contains(t, page, "Go Concurrency")
}

func TestRejectRequiresReason(t *testing.T) {
	rejected := make(chan struct{}, 1)
	backend := fakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/admin/blogs/reject/{id}": func(w http.ResponseWriter, r *http.Request) {
			rejected <- struct{}{}
			writeJSON(w, http.StatusOK, map[string]string{"message": "Blog rejected"})
		},
	})
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))
	login(t, srv, client, "/admin", "admin@example.com").Body.Close()

	resp, err := client.PostForm(srv.URL+"/admin-dashboard/reject/11", url.Values{"reason": {"   "}})
	require.NoError(t, err)
	page := body(t, resp)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, page, "Please give a reason for rejecting this blog.")
	assert.Contains(t, page, "Waiting Room")
	assert.Empty(t, rejected)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	backend := fakeBackend(t, nil)
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))
	login(t, srv, client, "/", "reader@example.com").Body.Close()

	resp, err := client.PostForm(srv.URL+"/logout", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, access.LoginPath, resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/home")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestHomeResultsAppliesFilters(t *testing.T) {
	queries := make(chan url.Values, 4)
	backend := fakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/blogs": func(w http.ResponseWriter, r *http.Request) {
			queries <- r.URL.Query()
			writeJSON(w, http.StatusOK, map[string]any{"blogs": []models.PostSummary{}})
		},
	})
	srv, client := newBrowser(t, newTestHandlers(t, backend.URL, nil))
	login(t, srv, client, "/", "reader@example.com").Body.Close()

	resp, err := client.Get(srv.URL + "/home/results?q=+go+&category=Tech")
	require.NoError(t, err)
	page := body(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(page, "No blogs found."))
	assert.NotContains(t, page, "<html")

	select {
	case q := <-queries:
		assert.Equal(t, "go", q.Get("q"))
		assert.Equal(t, "Tech", q.Get("category"))
	case <-time.After(5 * time.Second):
		t.Fatal("listing was never requested from the backend")
	}
}
