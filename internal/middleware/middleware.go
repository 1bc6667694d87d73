package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"mobiblog/internal/access"
	"mobiblog/internal/models"
	"mobiblog/internal/session"
)

type Middleware func(http.Handler) http.Handler

const (
	cookieName   = "mobiblog"
	contextIDKey = "context_id"

	flashWarning = "warning"
	flashNotice  = "notice"
)

type ctxKey int

const (
	storeKey ctxKey = iota
	contextIDCtxKey
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs every request with its status and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("[%s] Method: %s, URL: %s, Status: %d, Duration: %s",
			chimw.GetReqID(r.Context()), r.Method, r.RequestURI, rec.status, time.Since(start))
	})
}

// NewCookieStore returns the store for the browser-context cookie. secure
// should be off only when the site is served over plain http.
func NewCookieStore(secret string, secure bool, maxAge int) *sessions.CookieStore {
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	cookies.MaxAge(maxAge)
	return cookies
}

// BrowserContext identifies the visitor by a signed cookie, issuing a new
// context id on the first visit, and puts the visitor's session store into
// the request context.
func BrowserContext(cookies sessions.Store, manager *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cs, err := cookies.Get(r, cookieName)
			if err != nil {
				// a cookie signed with another secret; start over
				log.Printf("browser context: %v", err)
			}

			id, _ := cs.Values[contextIDKey].(string)
			if id == "" {
				id = uuid.NewString()
				cs.Values[contextIDKey] = id
				if err := cs.Save(r, w); err != nil {
					log.Printf("browser context: saving cookie: %v", err)
					http.Error(w, "Could not start a session", http.StatusInternalServerError)
					return
				}
			}

			store, err := manager.Open(r.Context(), id)
			if err != nil {
				log.Printf("browser context %s: %v", id, err)
				http.Error(w, "Session storage is unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := context.WithValue(r.Context(), storeKey, store)
			ctx = context.WithValue(ctx, contextIDCtxKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionStore returns the store BrowserContext attached, or nil.
func SessionStore(ctx context.Context) *session.Store {
	store, _ := ctx.Value(storeKey).(*session.Store)
	return store
}

func ContextID(ctx context.Context) string {
	id, _ := ctx.Value(contextIDCtxKey).(string)
	return id
}

// RequireCapability lets the request through only when the visitor's
// session grants need. Visitors without a session go to login; the rest go
// home with a warning.
func RequireCapability(cookies sessions.Store, need access.Capability) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				s  models.Session
				ok bool
			)
			if store := SessionStore(r.Context()); store != nil {
				s, ok = store.Get()
			}
			d := access.Check(s, ok, need)

			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			if d.Warning != "" {
				AddWarning(w, r, cookies, d.Warning)
			}
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		})
	}
}

func AddWarning(w http.ResponseWriter, r *http.Request, cookies sessions.Store, msg string) {
	addFlash(w, r, cookies, msg, flashWarning)
}

func AddNotice(w http.ResponseWriter, r *http.Request, cookies sessions.Store, msg string) {
	addFlash(w, r, cookies, msg, flashNotice)
}

func addFlash(w http.ResponseWriter, r *http.Request, cookies sessions.Store, msg, kind string) {
	cs, err := cookies.Get(r, cookieName)
	if err != nil {
		log.Printf("flash: %v", err)
	}
	// the cookie issued earlier in this request is not readable yet
	if _, ok := cs.Values[contextIDKey].(string); !ok {
		if id := ContextID(r.Context()); id != "" {
			cs.Values[contextIDKey] = id
		}
	}
	cs.AddFlash(msg, kind)
	if err := cs.Save(r, w); err != nil {
		log.Printf("flash: saving cookie: %v", err)
	}
}

// Flashes pops the pending warnings and notices. It writes the cookie, so
// call it before the response body.
func Flashes(w http.ResponseWriter, r *http.Request, cookies sessions.Store) (warnings, notices []string) {
	cs, err := cookies.Get(r, cookieName)
	if err != nil {
		return nil, nil
	}

	warnings = flashStrings(cs.Flashes(flashWarning))
	notices = flashStrings(cs.Flashes(flashNotice))
	if len(warnings)+len(notices) == 0 {
		return nil, nil
	}
	if err := cs.Save(r, w); err != nil {
		log.Printf("flash: saving cookie: %v", err)
	}
	return warnings, notices
}

func flashStrings(values []interface{}) []string {
	var out []string
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Chain wraps h so that the first middleware listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
