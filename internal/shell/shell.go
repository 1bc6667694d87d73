package shell

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"mobiblog/internal/access"
	"mobiblog/internal/models"
	"mobiblog/internal/session"
)

const defaultAvatar = "default.png"

type Link struct {
	Label string
	Path  string
}

var capabilityLinks = []struct {
	need access.Capability
	link Link
}{
	{access.SubmitPost, Link{Label: "Add Blog", Path: "/add-blog"}},
	{access.ViewOwnPosts, Link{Label: "My Posts", Path: "/my-posts"}},
	{access.CreatePost, Link{Label: "Create Blog", Path: "/admin/create-blog"}},
	{access.ReviewPending, Link{Label: "Dashboard", Path: "/admin-dashboard"}},
}

// Navbar is what the top bar shows for one session.
type Navbar struct {
	SignedIn  bool
	Links     []Link
	Name      string
	Email     string
	AvatarURL string
	Initials  string
}

// ShowAvatar is false when the user kept the backend's placeholder image.
func (n Navbar) ShowAvatar() bool {
	return n.AvatarURL != "" && !strings.Contains(n.AvatarURL, defaultAvatar)
}

func BuildNavbar(s models.Session, ok bool) Navbar {
	if !ok {
		return Navbar{}
	}

	nav := Navbar{
		SignedIn:  true,
		Name:      s.Name,
		Email:     s.Email,
		AvatarURL: s.AvatarURL,
		Initials:  Initials(s.Name),
	}
	for _, cl := range capabilityLinks {
		if access.Can(s.Role, cl.need) {
			nav.Links = append(nav.Links, cl.link)
		}
	}
	return nav
}

// Initials returns the upper-cased first letters of the first and last
// name, or of the only name.
func Initials(name string) string {
	names := strings.Fields(name)
	if len(names) == 0 {
		return ""
	}

	first := []rune(names[0])[0]
	if len(names) == 1 {
		return string(unicode.ToUpper(first))
	}
	last := []rune(names[len(names)-1])[0]
	return string(unicode.ToUpper(first)) + string(unicode.ToUpper(last))
}

type Footer struct {
	Brand   string
	Tagline string
	Contact string
	Social  []Link
	Year    int
}

func NewFooter(now time.Time) Footer {
	return Footer{
		Brand:   "MobiBlog",
		Tagline: "A platform for knowledge and ideas.",
		Contact: "shubham@mobiblog.com",
		Social: []Link{
			{Label: "Linkedin", Path: "https://www.linkedin.com/in/shubham-teli-2415s"},
			{Label: "Github", Path: "https://github.com/shubh2415"},
			{Label: "Instagram", Path: "https://www.instagram.com/shubham_maratha9990/"},
		},
		Year: now.Year(),
	}
}

// Store is the part of a session store the shell watches.
type Store interface {
	Get() (models.Session, bool)
	Clear(ctx context.Context) error
	Subscribe(fn session.Observer) func()
}

// Shell keeps the navbar in step with a session store until Close.
type Shell struct {
	store       Store
	unsubscribe func()

	mu  sync.RWMutex
	nav Navbar
	// version counts observer updates; the initial snapshot only lands if
	// none arrived while it was read.
	version uint64
}

func Attach(store Store) *Shell {
	sh := &Shell{store: store}
	sh.unsubscribe = store.Subscribe(func(s models.Session, ok bool) {
		sh.mu.Lock()
		sh.version++
		sh.nav = BuildNavbar(s, ok)
		sh.mu.Unlock()
	})

	sh.mu.RLock()
	seen := sh.version
	sh.mu.RUnlock()

	s, ok := store.Get()
	sh.mu.Lock()
	if sh.version == seen {
		sh.nav = BuildNavbar(s, ok)
	}
	sh.mu.Unlock()
	return sh
}

func (sh *Shell) Navbar() Navbar {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return sh.nav
}

// SignOut clears the session; the visitor belongs on the login page next.
func (sh *Shell) SignOut(ctx context.Context) (string, error) {
	if err := sh.store.Clear(ctx); err != nil {
		return "", err
	}
	return access.LoginPath, nil
}

func (sh *Shell) Close() {
	sh.unsubscribe()
}
