package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"mobiblog/internal/access"
	"mobiblog/internal/middleware"
	"mobiblog/internal/models"
	"mobiblog/internal/session"
	"mobiblog/internal/shell"
	"mobiblog/internal/view"
)

// HealthChecker reports whether the local storage backend is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ItemCounter is implemented by storage backends that can count records.
type ItemCounter interface {
	CountItems(ctx context.Context) (int, error)
}

type Handlers struct {
	Views     *view.Views
	Homes     *HomeRegistry
	Manager   *session.Manager
	Cookies   sessions.Store
	Health    HealthChecker
	Driver    string
	MaxUpload int64

	pages map[string]*template.Template
}

func NewHandlers(views *view.Views, homes *HomeRegistry, manager *session.Manager, cookies sessions.Store, health HealthChecker, driver string, maxUpload int64) (*Handlers, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		Views:     views,
		Homes:     homes,
		Manager:   manager,
		Cookies:   cookies,
		Health:    health,
		Driver:    driver,
		MaxUpload: maxUpload,
		pages:     pages,
	}, nil
}

// Routes mounts every page behind the browser-context and guard middleware.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.HealthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BrowserContext(h.Cookies, h.Manager))
		r.Use(h.withShell)

		r.Get("/", h.LoginPage(models.RoleReader))
		r.Post("/", h.Login(models.RoleReader))
		r.Get("/guest-login", h.LoginPage(models.RoleGuestAuthor))
		r.Post("/guest-login", h.Login(models.RoleGuestAuthor))
		r.Get("/admin", h.LoginPage(models.RoleAdmin))
		r.Post("/admin", h.Login(models.RoleAdmin))
		r.Get("/signup", h.SignupPage)
		r.Post("/signup", h.Signup)
		r.Get("/logout", h.Logout)
		r.Post("/logout", h.Logout)

		r.With(h.require(access.Browse)).Get("/home", h.HomePage)
		r.With(h.require(access.Browse)).Get("/home/results", h.HomeResults)
		r.With(h.require(access.Browse)).Get("/blog/{id}", h.BlogPage)
		r.With(h.require(access.Comment)).Post("/blog/{id}/comments", h.AddComment)
		r.With(h.require(access.Comment)).Post("/blog/{id}/comments/{commentID}/delete", h.DeleteComment)

		r.With(h.require(access.SubmitPost)).Get("/add-blog", h.EditorPage(view.ModeSubmit))
		r.With(h.require(access.SubmitPost)).Post("/add-blog", h.SaveEditor(view.ModeSubmit))
		r.With(h.require(access.CreatePost)).Get("/admin/create-blog", h.EditorPage(view.ModeCreate))
		r.With(h.require(access.CreatePost)).Post("/admin/create-blog", h.SaveEditor(view.ModeCreate))
		r.With(h.require(access.EditPost)).Get("/update-blog/{id}", h.EditorPage(view.ModeUpdate))
		r.With(h.require(access.EditPost)).Post("/update-blog/{id}", h.SaveEditor(view.ModeUpdate))

		r.With(h.require(access.ViewOwnPosts)).Get("/my-posts", h.MyPostsPage)
		r.With(h.require(access.ViewOwnPosts)).Post("/my-posts/{id}/delete", h.DeleteMyPost)

		r.With(h.require(access.None)).Get("/profile", h.ProfilePage)
		r.With(h.require(access.EditProfile)).Post("/profile/image", h.UploadProfileImage)

		r.Route("/admin-dashboard", func(r chi.Router) {
			r.Use(h.require(access.ReviewPending))
			r.Get("/", h.DashboardPage)
			r.Post("/approve/{id}", h.ApprovePending)
			r.Post("/reject/{id}", h.RejectPending)
			r.With(h.require(access.DeletePost)).Post("/delete/{id}", h.DeletePublished)
		})
		r.With(h.require(access.ReviewPending)).Get("/admin/view-pending/{id}", h.PendingPage)
	})
}

func (h *Handlers) require(need access.Capability) func(http.Handler) http.Handler {
	return middleware.RequireCapability(h.Cookies, need)
}

type shellKey struct{}

// withShell keeps a navbar in step with the visitor's session for the
// lifetime of the request.
func (h *Handlers) withShell(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sh := shell.Attach(middleware.SessionStore(r.Context()))
		defer sh.Close()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), shellKey{}, sh)))
	})
}

func shellFrom(r *http.Request) *shell.Shell {
	sh, _ := r.Context().Value(shellKey{}).(*shell.Shell)
	return sh
}

func storeFrom(r *http.Request) *session.Store {
	return middleware.SessionStore(r.Context())
}

// Page is the data every template receives.
type Page struct {
	Title    string
	Nav      shell.Navbar
	Footer   shell.Footer
	Warnings []string
	Notices  []string
	Error    string
	Data     any
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	t, ok := h.pages[name]
	if !ok {
		log.Printf("render: unknown page %q", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if sh := shellFrom(r); sh != nil {
		p.Nav = sh.Navbar()
	}
	p.Footer = shell.NewFooter(time.Now())
	warnings, notices := middleware.Flashes(w, r, h.Cookies)
	p.Warnings = append(warnings, p.Warnings...)
	p.Notices = append(notices, p.Notices...)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// fail renders a page-level failure. Session problems send the visitor to
// the page the guards would have picked.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, view.ErrNotAuthenticated):
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return
	case errors.Is(err, view.ErrForbidden):
		middleware.AddWarning(w, r, h.Cookies, access.PermissionWarning)
		http.Redirect(w, r, access.HomePath, http.StatusSeeOther)
		return
	case errors.Is(err, context.Canceled):
		// the visitor navigated away
		return
	}

	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	h.render(w, r, statusOf(err), "error", Page{Title: "Something went wrong", Error: view.Message(err)})
}

func statusOf(err error) int {
	var validation *view.ValidationError
	switch {
	case errors.As(err, &validation), errors.Is(err, view.ErrNotConfirmed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, view.ErrNotCommentAuthor):
		return http.StatusForbidden
	}
	return http.StatusBadGateway
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", Page{Title: "Not found", Error: "The page you are looking for does not exist."})
}
