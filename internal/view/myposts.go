package view

import (
	"context"

	"mobiblog/internal/access"
	"mobiblog/internal/models"
)

// StatusClass is the badge class of a submission status.
func StatusClass(status string) string {
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected:
		return "status-" + status
	}
	return "status-unknown"
}

// MyPosts lists the signed-in guest author's submissions.
type MyPosts struct {
	backend Backend
	store   SessionStore
	posts   []models.PendingPost
}

func (v *Views) MyPosts(store SessionStore) *MyPosts {
	return &MyPosts{backend: v.backend, store: store}
}

func (m *MyPosts) Posts() []models.PendingPost {
	return m.posts
}

func (m *MyPosts) Load(ctx context.Context) error {
	sess, err := actor(m.store, access.ViewOwnPosts)
	if err != nil {
		return err
	}

	posts, err := m.backend.MyPosts(ctx, sess.ID)
	if err != nil {
		return err
	}
	m.posts = posts
	return nil
}

// Delete withdraws a pending or rejected submission, then reloads.
func (m *MyPosts) Delete(ctx context.Context, id int64, confirmed bool) (string, error) {
	if !confirmed {
		return "", ErrNotConfirmed
	}
	sess, err := actor(m.store, access.ViewOwnPosts)
	if err != nil {
		return "", err
	}

	if m.posts == nil {
		if err := m.Load(ctx); err != nil {
			return "", err
		}
	}
	if !m.deletable(id) {
		return "", invalid("Only pending or rejected posts can be deleted.")
	}

	msg, err := m.backend.DeleteMyPost(ctx, sess.ID, id)
	if err != nil {
		return "", err
	}
	m.Load(ctx)
	return msg, nil
}

func (m *MyPosts) deletable(id int64) bool {
	for _, p := range m.posts {
		if p.ID == id {
			return p.Deletable()
		}
	}
	return false
}
