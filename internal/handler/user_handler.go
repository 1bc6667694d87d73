package handlers

import (
	"errors"
	"net/http"

	"mobiblog/internal/models"
	"mobiblog/internal/view"
)

type profilePage struct {
	User      models.Session
	MaxUpload int64
}

func (h *Handlers) profile(r *http.Request) profilePage {
	user, _ := storeFrom(r).Get()
	return profilePage{User: user, MaxUpload: h.MaxUpload}
}

func (h *Handlers) ProfilePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "profile", Page{Title: "Profile", Data: h.profile(r)})
}

// UploadProfileImage replaces the avatar; the navbar rendered with the
// response already shows the new one.
func (h *Handlers) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.parseUpload(w, r, "profileImage")
	if err == nil && image == nil {
		err = &view.ValidationError{Message: "Please select an image."}
	}

	var msg string
	if err == nil {
		msg, err = h.Views.UploadAvatar(r.Context(), storeFrom(r), *image)
	}
	if errors.Is(err, view.ErrNotAuthenticated) || errors.Is(err, view.ErrForbidden) {
		h.fail(w, r, err)
		return
	}

	page := Page{Title: "Profile", Error: view.Message(err), Data: h.profile(r)}
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
	} else if msg != "" {
		page.Notices = []string{msg}
	}
	h.render(w, r, status, "profile", page)
}
