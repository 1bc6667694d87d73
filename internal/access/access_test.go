package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"mobiblog/internal/models"
)

func TestCheck(t *testing.T) {
	reader := models.Session{ID: 1, Name: "Reader", Role: models.RoleReader}
	guest := models.Session{ID: 2, Name: "Guest", Role: models.RoleGuestAuthor}
	admin := models.Session{ID: 3, Name: "Admin", Role: models.RoleAdmin}

	tests := []struct {
		name         string
		session      models.Session
		found        bool
		need         Capability
		wantAllowed  bool
		wantRedirect string
		wantWarning  string
	}{
		{
			name:         "no session goes to login",
			need:         SubmitPost,
			wantRedirect: LoginPath,
		},
		{
			name:         "reader on guest submission goes home with a warning",
			session:      reader,
			found:        true,
			need:         SubmitPost,
			wantRedirect: HomePath,
			wantWarning:  PermissionWarning,
		},
		{
			name:        "guest author may submit",
			session:     guest,
			found:       true,
			need:        SubmitPost,
			wantAllowed: true,
		},
		{
			name:         "guest author may not use the admin editor",
			session:      guest,
			found:        true,
			need:         CreatePost,
			wantRedirect: HomePath,
			wantWarning:  PermissionWarning,
		},
		{
			name:         "admin may not submit for review",
			session:      admin,
			found:        true,
			need:         SubmitPost,
			wantRedirect: HomePath,
			wantWarning:  PermissionWarning,
		},
		{
			name:        "admin reviews pending posts",
			session:     admin,
			found:       true,
			need:        ReviewPending,
			wantAllowed: true,
		},
		{
			name:        "any session opens the profile",
			session:     reader,
			found:       true,
			need:        None,
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Check(tt.session, tt.found, tt.need)

			assert.Equal(t, tt.wantAllowed, d.Allowed)
			assert.Equal(t, tt.wantRedirect, d.Redirect)
			assert.Equal(t, tt.wantWarning, d.Warning)
		})
	}
}

func TestCanUnknownRole(t *testing.T) {
	assert.False(t, Can(models.RoleUnknown, None))
	assert.False(t, Can(models.RoleUnknown, Browse))
}
