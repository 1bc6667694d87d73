package view

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"mobiblog/internal/access"
	"mobiblog/internal/api"
	"mobiblog/internal/config"
	"mobiblog/internal/models"
)

// Backend is the slice of the API gateway the screens use.
type Backend interface {
	Login(ctx context.Context, email, password string, role models.Role) (models.Session, string, error)
	Signup(ctx context.Context, req api.SignupRequest) (api.SignupResult, error)

	ListBlogs(ctx context.Context, filter api.BlogFilter) ([]models.PostSummary, error)
	GetBlog(ctx context.Context, id int64) (models.Post, error)
	CreateBlog(ctx context.Context, adminID int64, d api.PostDraft) (string, error)
	UpdateBlog(ctx context.Context, adminID, id int64, d api.PostDraft) (string, error)
	DeleteBlog(ctx context.Context, adminID, id int64) (string, error)
	SubmitBlog(ctx context.Context, authorID int64, d api.PostDraft) (string, error)
	AddComment(ctx context.Context, userID, blogID int64, content string) (string, error)
	DeleteComment(ctx context.Context, userID, commentID int64) (string, error)

	PendingBlogs(ctx context.Context) ([]models.PendingPost, error)
	PendingBlog(ctx context.Context, id int64) (models.PendingPost, error)
	ApprovePending(ctx context.Context, adminID, id int64) (string, error)
	RejectPending(ctx context.Context, adminID, id int64, reason string) (string, error)

	MyPosts(ctx context.Context, userID int64) ([]models.PendingPost, error)
	DeleteMyPost(ctx context.Context, userID, postID int64) (string, error)
	UploadProfileImage(ctx context.Context, userID int64, image api.File) (string, string, error)
}

// SessionStore is the session slot of the visitor being served.
type SessionStore interface {
	Get() (models.Session, bool)
	Set(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
}

// Views builds the per-screen controllers.
type Views struct {
	backend   Backend
	validate  *validator.Validate
	maxUpload int64
	debounce  time.Duration
}

func New(backend Backend, cfg *config.Config) *Views {
	return &Views{
		backend:   backend,
		validate:  validator.New(),
		maxUpload: cfg.MaxUploadSize,
		debounce:  cfg.SearchDebounce,
	}
}

// actor returns the signed-in session when its role grants need.
func actor(store SessionStore, need access.Capability) (models.Session, error) {
	sess, ok := store.Get()
	if !ok {
		return models.Session{}, ErrNotAuthenticated
	}
	if !access.Can(sess.Role, need) {
		return sess, ErrForbidden
	}
	return sess, nil
}
