package view

import (
	"context"
	"fmt"

	"mobiblog/internal/access"
	"mobiblog/internal/api"
)

// UploadAvatar replaces the visitor's profile image and writes the new URL
// back to the session, which refreshes every view showing it.
func (v *Views) UploadAvatar(ctx context.Context, store SessionStore, image api.File) (string, error) {
	sess, err := actor(store, access.EditProfile)
	if err != nil {
		return "", err
	}
	if err := v.checkImage(image); err != nil {
		return "", err
	}

	url, msg, err := v.backend.UploadProfileImage(ctx, sess.ID, image)
	if err != nil {
		return "", err
	}

	sess.AvatarURL = url
	if err := store.Set(ctx, sess); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return msg, nil
}
