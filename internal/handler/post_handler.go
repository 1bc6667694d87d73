package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"mobiblog/internal/access"
	"mobiblog/internal/api"
	"mobiblog/internal/middleware"
	"mobiblog/internal/models"
	"mobiblog/internal/view"
)

type homePage struct {
	State      view.HomeState
	Categories []string
}

var listingCategories = append([]string{models.CategoryAll}, models.Categories...)

// listing applies the query's filters to the visitor's listing and waits
// for it to settle.
func (h *Handlers) listing(r *http.Request) (view.HomeState, error) {
	home, created := h.Homes.Get(middleware.ContextID(r.Context()))

	q := r.URL.Query()
	_, hasSearch := q["q"]
	_, hasCategory := q["category"]
	if created || hasSearch || hasCategory {
		home.SetFilter(q.Get("q"), q.Get("category"))
	}
	if created {
		home.Refresh()
	}

	return home.Wait(r.Context())
}

func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	state, err := h.listing(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "home", Page{
		Title: "Home",
		Error: view.Message(state.Err),
		Data:  homePage{State: state, Categories: listingCategories},
	})
}

// HomeResults renders only the listing; the search box calls it on every
// keystroke.
func (h *Handlers) HomeResults(w http.ResponseWriter, r *http.Request) {
	state, err := h.listing(r)
	if err != nil {
		if r.Context().Err() == nil {
			http.Error(w, view.Message(err), http.StatusBadGateway)
		}
		return
	}

	t := h.pages["home"]
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "results", Page{Error: view.Message(state.Err), Data: homePage{State: state}}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type commentView struct {
	models.Comment
	Deletable bool
}

type blogPage struct {
	Post       models.Post
	Comments   []commentView
	Draft      string
	CanComment bool
	CanEdit    bool
}

func (h *Handlers) blogPage(r *http.Request, b *view.Blog) blogPage {
	post := b.Post()
	comments := make([]commentView, 0, len(post.Comments))
	for _, c := range post.Comments {
		comments = append(comments, commentView{Comment: c, Deletable: b.CanDeleteComment(c)})
	}

	user, _ := storeFrom(r).Get()
	return blogPage{
		Post:       post,
		Comments:   comments,
		Draft:      b.Draft(),
		CanComment: access.Can(user.Role, access.Comment),
		CanEdit:    access.Can(user.Role, access.EditPost),
	}
}

func (h *Handlers) BlogPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}

	b := h.Views.Blog(storeFrom(r), id)
	if err := b.Load(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "blog", Page{Title: b.Post().Title, Data: h.blogPage(r, b)})
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}

	b := h.Views.Blog(storeFrom(r), id)
	b.SetDraft(r.PostFormValue("content"))
	posted, err := b.SubmitComment(r.Context())
	if !posted && err == nil {
		err = b.Load(r.Context())
	}
	h.renderBlog(w, r, b, err)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	commentID, ok2 := pathID(r, "commentID")
	if !ok || !ok2 {
		h.notFound(w, r)
		return
	}

	b := h.Views.Blog(storeFrom(r), id)
	err := b.DeleteComment(r.Context(), commentID)
	h.renderBlog(w, r, b, err)
}

// renderBlog shows the post after a comment action; a failed action keeps
// the post as last loaded and the draft as typed.
func (h *Handlers) renderBlog(w http.ResponseWriter, r *http.Request, b *view.Blog, err error) {
	if b.Post().ID == 0 {
		if loadErr := b.Load(r.Context()); loadErr != nil {
			h.fail(w, r, loadErr)
			return
		}
	}

	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
	}
	h.render(w, r, status, "blog", Page{Title: b.Post().Title, Error: view.Message(err), Data: h.blogPage(r, b)})
}

type editorPage struct {
	Mode         view.EditorMode
	Action       string
	Heading      string
	Form         view.PostForm
	CurrentImage string
	Categories   []string
	MaxUpload    int64
}

var editorHeadings = map[view.EditorMode]string{
	view.ModeSubmit: "Submit a Blog for Review",
	view.ModeCreate: "Create a New Blog",
	view.ModeUpdate: "Update Blog",
}

func (h *Handlers) editor(r *http.Request, mode view.EditorMode) (*view.Editor, string, bool) {
	var id int64
	action := r.URL.Path
	if mode == view.ModeUpdate {
		var ok bool
		if id, ok = pathID(r, "id"); !ok {
			return nil, "", false
		}
	}
	return h.Views.Editor(storeFrom(r), mode, id), action, true
}

func (h *Handlers) editorPage(e *view.Editor, action string) editorPage {
	return editorPage{
		Mode:         e.Mode(),
		Action:       action,
		Heading:      editorHeadings[e.Mode()],
		Form:         e.Form(),
		CurrentImage: e.CurrentImage(),
		Categories:   models.Categories,
		MaxUpload:    h.MaxUpload,
	}
}

func (h *Handlers) EditorPage(mode view.EditorMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, action, ok := h.editor(r, mode)
		if !ok {
			h.notFound(w, r)
			return
		}
		if err := e.Prefill(r.Context()); err != nil {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, http.StatusOK, "editor", Page{Title: editorHeadings[mode], Data: h.editorPage(e, action)})
	}
}

func (h *Handlers) SaveEditor(mode view.EditorMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, action, ok := h.editor(r, mode)
		if !ok {
			h.notFound(w, r)
			return
		}
		if mode == view.ModeUpdate {
			// keeps the current image on display if the save fails
			if err := e.Prefill(r.Context()); err != nil {
				h.fail(w, r, err)
				return
			}
		}

		form, err := h.postForm(w, r)
		if err == nil {
			var msg string
			if msg, err = e.Save(r.Context(), form); err == nil {
				if msg != "" {
					middleware.AddNotice(w, r, h.Cookies, msg)
				}
				http.Redirect(w, r, mode.Redirect(), http.StatusSeeOther)
				return
			}
		}

		if errors.Is(err, view.ErrNotAuthenticated) || errors.Is(err, view.ErrForbidden) {
			h.fail(w, r, err)
			return
		}
		h.render(w, r, statusOf(err), "editor", Page{
			Title: editorHeadings[mode],
			Error: view.Message(err),
			Data:  h.editorPage(e, action),
		})
	}
}

// postForm reads the editor's multipart form.
func (h *Handlers) postForm(w http.ResponseWriter, r *http.Request) (view.PostForm, error) {
	image, err := h.parseUpload(w, r, "image")
	if err != nil {
		return view.PostForm{}, err
	}
	return view.PostForm{
		Title:    r.PostFormValue("title"),
		Content:  r.PostFormValue("content"),
		Category: r.PostFormValue("category"),
		Image:    image,
	}, nil
}

// parseUpload parses a multipart body no larger than the upload limit plus
// room for the text fields, and returns the named file, or nil when none was
// chosen.
func (h *Handlers) parseUpload(w http.ResponseWriter, r *http.Request, field string) (*api.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload+1<<20)
	if err := r.ParseMultipartForm(h.MaxUpload + 1<<20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &view.ValidationError{Message: fmt.Sprintf("Image must be %s or smaller.", humanize.Bytes(uint64(h.MaxUpload)))}
		}
		return nil, &view.ValidationError{Message: "Invalid form data."}
	}

	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, &view.ValidationError{Message: "Could not read the uploaded file."}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &api.File{Name: header.Filename, Data: data}, nil
}

type myPostsPage struct {
	Posts []models.PendingPost
}

func (h *Handlers) MyPostsPage(w http.ResponseWriter, r *http.Request) {
	m := h.Views.MyPosts(storeFrom(r))
	if err := m.Load(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "myposts", Page{Title: "My Posts", Data: myPostsPage{Posts: m.Posts()}})
}

func (h *Handlers) DeleteMyPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}

	m := h.Views.MyPosts(storeFrom(r))
	msg, err := m.Delete(r.Context(), id, r.PostFormValue("confirm") == "yes")
	if errors.Is(err, view.ErrNotAuthenticated) || errors.Is(err, view.ErrForbidden) {
		h.fail(w, r, err)
		return
	}
	if err != nil && m.Posts() == nil {
		if loadErr := m.Load(r.Context()); loadErr != nil {
			h.fail(w, r, loadErr)
			return
		}
	}

	page := Page{Title: "My Posts", Error: view.Message(err), Data: myPostsPage{Posts: m.Posts()}}
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
	} else if msg != "" {
		page.Notices = []string{msg}
	}
	h.render(w, r, status, "myposts", page)
}
