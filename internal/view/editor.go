package view

import (
	"context"
	"strings"

	"github.com/dustin/go-humanize"
	"mobiblog/internal/access"
	"mobiblog/internal/api"
	"mobiblog/internal/models"
)

type EditorMode int

const (
	// ModeSubmit files a guest author's post for review.
	ModeSubmit EditorMode = iota
	// ModeCreate publishes an admin's post immediately.
	ModeCreate
	// ModeUpdate rewrites a published post.
	ModeUpdate
)

// Capability is what the session must be granted to use the mode.
func (m EditorMode) Capability() access.Capability {
	switch m {
	case ModeCreate:
		return access.CreatePost
	case ModeUpdate:
		return access.EditPost
	}
	return access.SubmitPost
}

// Redirect is where a successful save lands.
func (m EditorMode) Redirect() string {
	if m == ModeSubmit {
		return access.HomePath
	}
	return "/admin-dashboard"
}

type PostForm struct {
	Title    string `validate:"required,max=255"`
	Content  string `validate:"required"`
	Category string `validate:"required"`
	Image    *api.File
}

// Editor drives the post form in one of its three modes.
type Editor struct {
	views  *Views
	store  SessionStore
	mode   EditorMode
	postID int64

	form         PostForm
	currentImage string
}

func (v *Views) Editor(store SessionStore, mode EditorMode, postID int64) *Editor {
	return &Editor{
		views:  v,
		store:  store,
		mode:   mode,
		postID: postID,
		form:   PostForm{Category: models.CategoryGeneral},
	}
}

func (e *Editor) Mode() EditorMode {
	return e.mode
}

func (e *Editor) Form() PostForm {
	return e.form
}

// CurrentImage is the image an update keeps when no new file is chosen.
func (e *Editor) CurrentImage() string {
	return e.currentImage
}

// Prefill loads the post being updated into the form. Other modes start
// from an empty form.
func (e *Editor) Prefill(ctx context.Context) error {
	if _, err := actor(e.store, e.mode.Capability()); err != nil {
		return err
	}
	if e.mode != ModeUpdate {
		return nil
	}

	post, err := e.views.backend.GetBlog(ctx, e.postID)
	if err != nil {
		return err
	}

	e.form = PostForm{Title: post.Title, Content: post.Content, Category: post.Category}
	if !models.ValidCategory(e.form.Category) {
		e.form.Category = models.CategoryGeneral
	}
	e.currentImage = post.ImageURL
	return nil
}

// Save validates form and sends it; the server's message is returned on
// success. The form is kept so a failed save can be shown again.
func (e *Editor) Save(ctx context.Context, form PostForm) (string, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Content = strings.TrimSpace(form.Content)
	e.form = form

	sess, err := actor(e.store, e.mode.Capability())
	if err != nil {
		return "", err
	}
	if err := e.validateForm(form); err != nil {
		return "", err
	}

	draft := api.PostDraft{
		Title:    form.Title,
		Content:  form.Content,
		Category: form.Category,
		Image:    form.Image,
	}

	switch e.mode {
	case ModeCreate:
		return e.views.backend.CreateBlog(ctx, sess.ID, draft)
	case ModeUpdate:
		return e.views.backend.UpdateBlog(ctx, sess.ID, e.postID, draft)
	default:
		return e.views.backend.SubmitBlog(ctx, sess.ID, draft)
	}
}

func (e *Editor) validateForm(form PostForm) error {
	if err := e.views.validate.Struct(form); err != nil {
		return validationError(err)
	}
	if !models.ValidCategory(form.Category) {
		return invalid("Please choose a category.")
	}

	if form.Image == nil {
		if e.mode == ModeUpdate {
			return nil
		}
		return invalid("Please select an image.")
	}
	return e.views.checkImage(*form.Image)
}

// checkImage accepts a file that sniffs as an image within the upload limit.
func (v *Views) checkImage(f api.File) error {
	if !f.IsImage() {
		return invalid("Only image files are allowed.")
	}
	if v.maxUpload > 0 && int64(len(f.Data)) > v.maxUpload {
		return invalid("Image must be %s or smaller.", humanize.Bytes(uint64(v.maxUpload)))
	}
	return nil
}
