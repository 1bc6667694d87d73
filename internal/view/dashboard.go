package view

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"mobiblog/internal/access"
	"mobiblog/internal/api"
	"mobiblog/internal/models"
)

type DashboardState struct {
	Pending      []models.PendingPost
	Published    []models.PostSummary
	PendingErr   error
	PublishedErr error
	Loaded       bool
}

// Dashboard is the admin review screen. Both collections are reloaded after
// every successful action, and only once its response arrived.
type Dashboard struct {
	backend Backend
	store   SessionStore
	state   DashboardState
}

func (v *Views) Dashboard(store SessionStore) *Dashboard {
	return &Dashboard{backend: v.backend, store: store}
}

func (d *Dashboard) State() DashboardState {
	return d.state
}

// Load fetches pending and published posts concurrently and returns once
// both finished. A collection that fails keeps its previous rows.
func (d *Dashboard) Load(ctx context.Context) error {
	if _, err := actor(d.store, access.ReviewPending); err != nil {
		return err
	}

	var (
		g            errgroup.Group
		pending      []models.PendingPost
		published    []models.PostSummary
		pendingErr   error
		publishedErr error
	)

	g.Go(func() error {
		pending, pendingErr = d.backend.PendingBlogs(ctx)
		return pendingErr
	})
	g.Go(func() error {
		published, publishedErr = d.backend.ListBlogs(ctx, api.BlogFilter{})
		return publishedErr
	})
	err := g.Wait()

	if pendingErr == nil {
		d.state.Pending = pending
	}
	if publishedErr == nil {
		d.state.Published = published
	}
	d.state.PendingErr, d.state.PublishedErr = pendingErr, publishedErr
	d.state.Loaded = true
	return err
}

func (d *Dashboard) Approve(ctx context.Context, id int64, confirmed bool) (string, error) {
	if !confirmed {
		return "", ErrNotConfirmed
	}
	sess, err := actor(d.store, access.ReviewPending)
	if err != nil {
		return "", err
	}

	msg, err := d.backend.ApprovePending(ctx, sess.ID, id)
	if err != nil {
		return "", err
	}
	d.Load(ctx)
	return msg, nil
}

// Reject needs a reason; a blank one sends nothing.
func (d *Dashboard) Reject(ctx context.Context, id int64, reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", invalid("Please give a reason for rejecting this blog.")
	}
	sess, err := actor(d.store, access.ReviewPending)
	if err != nil {
		return "", err
	}

	msg, err := d.backend.RejectPending(ctx, sess.ID, id, reason)
	if err != nil {
		return "", err
	}
	d.Load(ctx)
	return msg, nil
}

func (d *Dashboard) DeletePublished(ctx context.Context, id int64, confirmed bool) (string, error) {
	if !confirmed {
		return "", ErrNotConfirmed
	}
	sess, err := actor(d.store, access.DeletePost)
	if err != nil {
		return "", err
	}

	msg, err := d.backend.DeleteBlog(ctx, sess.ID, id)
	if err != nil {
		return "", &actionError{action: "Failed to delete blog", err: err}
	}
	d.Load(ctx)
	return msg, nil
}
