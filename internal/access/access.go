package access

import "mobiblog/internal/models"

// Capability is an action a page or control may offer.
type Capability int

const (
	// None only requires a signed-in session.
	None Capability = iota
	Browse
	Comment
	EditProfile
	SubmitPost
	ViewOwnPosts
	CreatePost
	EditPost
	DeletePost
	ReviewPending
)

const (
	LoginPath = "/"
	HomePath  = "/home"

	PermissionWarning = "You do not have permission to access this page."
)

var capabilities = map[models.Role]map[Capability]bool{
	models.RoleReader: {
		Browse: true, Comment: true, EditProfile: true,
	},
	models.RoleGuestAuthor: {
		Browse: true, Comment: true, EditProfile: true,
		SubmitPost: true, ViewOwnPosts: true,
	},
	models.RoleAdmin: {
		Browse: true, Comment: true, EditProfile: true,
		CreatePost: true, EditPost: true, DeletePost: true, ReviewPending: true,
	},
}

// Can reports whether role grants c.
func Can(role models.Role, c Capability) bool {
	if c == None {
		return role != models.RoleUnknown
	}
	return capabilities[role][c]
}

// Decision is the outcome of a page guard.
type Decision struct {
	Allowed  bool
	Session  models.Session
	Redirect string
	Warning  string
}

// Check guards a page needing c. It only spares the visitor a form they
// cannot submit; the backend re-validates every mutation.
func Check(s models.Session, found bool, c Capability) Decision {
	if !found {
		return Decision{Redirect: LoginPath}
	}
	if !Can(s.Role, c) {
		return Decision{Session: s, Redirect: HomePath, Warning: PermissionWarning}
	}
	return Decision{Allowed: true, Session: s}
}
