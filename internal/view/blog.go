package view

import (
	"context"
	"strings"

	"mobiblog/internal/access"
	"mobiblog/internal/models"
)

// Blog is the single-post screen with its comment thread. It serves one
// request and is not safe for concurrent use.
type Blog struct {
	backend Backend
	store   SessionStore
	id      int64

	post   models.Post
	loaded bool
	draft  string
}

func (v *Views) Blog(store SessionStore, id int64) *Blog {
	return &Blog{backend: v.backend, store: store, id: id}
}

func (b *Blog) Load(ctx context.Context) error {
	if _, err := actor(b.store, access.Browse); err != nil {
		return err
	}

	post, err := b.backend.GetBlog(ctx, b.id)
	if err != nil {
		return err
	}
	b.post, b.loaded = post, true
	return nil
}

// Post returns the loaded post; comments keep the backend's order.
func (b *Blog) Post() models.Post {
	return b.post
}

func (b *Blog) SetDraft(content string) {
	b.draft = content
}

func (b *Blog) Draft() string {
	return b.draft
}

// SubmitComment posts the draft. A blank draft is ignored and reports false.
// The draft is cleared only once the backend accepted it.
func (b *Blog) SubmitComment(ctx context.Context) (bool, error) {
	content := strings.TrimSpace(b.draft)
	if content == "" {
		return false, nil
	}

	sess, err := actor(b.store, access.Comment)
	if err != nil {
		return false, err
	}

	if _, err := b.backend.AddComment(ctx, sess.ID, b.id, content); err != nil {
		return false, err
	}
	b.draft = ""

	return true, b.Load(ctx)
}

// CanDeleteComment reports whether the signed-in visitor wrote c.
func (b *Blog) CanDeleteComment(c models.Comment) bool {
	sess, ok := b.store.Get()
	return ok && c.CommenterID == sess.ID
}

func (b *Blog) DeleteComment(ctx context.Context, commentID int64) error {
	sess, err := actor(b.store, access.Comment)
	if err != nil {
		return err
	}

	if !b.loaded {
		if err := b.Load(ctx); err != nil {
			return err
		}
	}
	comment, ok := b.comment(commentID)
	if !ok || !b.CanDeleteComment(comment) {
		return ErrNotCommentAuthor
	}

	if _, err := b.backend.DeleteComment(ctx, sess.ID, commentID); err != nil {
		return &actionError{action: "Error", err: err}
	}
	return b.Load(ctx)
}

func (b *Blog) comment(id int64) (models.Comment, bool) {
	for _, c := range b.post.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return models.Comment{}, false
}
