package view

import (
	"context"

	"mobiblog/internal/access"
	"mobiblog/internal/models"
)

// PendingPreview loads a submission for an admin to review.
func (v *Views) PendingPreview(ctx context.Context, store SessionStore, id int64) (models.PendingPost, error) {
	if _, err := actor(store, access.ReviewPending); err != nil {
		return models.PendingPost{}, err
	}
	return v.backend.PendingBlog(ctx, id)
}
