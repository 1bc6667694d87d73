package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"mobiblog/internal/models"
)

func (c *Client) PendingBlogs(ctx context.Context) ([]models.PendingPost, error) {
	res := c.Send(ctx, Request{Method: http.MethodGet, Path: "/api/admin/pending-blogs"})
	if err := res.Err(); err != nil {
		return nil, err
	}

	var out struct {
		PendingBlogs []models.PendingPost `json:"pending_blogs"`
	}
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	return out.PendingBlogs, nil
}

func (c *Client) PendingBlog(ctx context.Context, id int64) (models.PendingPost, error) {
	res := c.Send(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/api/admin/pending-blogs/%d", id)})
	if err := res.Err(); err != nil {
		return models.PendingPost{}, err
	}

	var post models.PendingPost
	if err := res.Decode(&post); err != nil {
		return models.PendingPost{}, err
	}
	return post, nil
}

func (c *Client) ApprovePending(ctx context.Context, adminID, id int64) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/admin/blogs/approve/%d", id),
		Body:   map[string]int64{"adminUserId": adminID},
	})
}

func (c *Client) RejectPending(ctx context.Context, adminID, id int64, reason string) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/admin/blogs/reject/%d", id),
		Body: struct {
			Reason      string `json:"reason"`
			AdminUserID int64  `json:"adminUserId"`
		}{Reason: reason, AdminUserID: adminID},
	})
}

func (c *Client) MyPosts(ctx context.Context, userID int64) ([]models.PendingPost, error) {
	res := c.Send(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/api/author/my-posts/%d", userID)})
	if err := res.Err(); err != nil {
		return nil, err
	}

	var out struct {
		MyPosts []models.PendingPost `json:"my_posts"`
	}
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	return out.MyPosts, nil
}

func (c *Client) DeleteMyPost(ctx context.Context, userID, postID int64) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/author/my-posts/%d", postID),
		Body:   map[string]int64{"userId": userID},
	})
}

// UploadProfileImage replaces the user's avatar and returns its new URL.
func (c *Client) UploadProfileImage(ctx context.Context, userID int64, image File) (string, string, error) {
	res := c.Send(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/user/profile-image",
		Form: NewForm().
			Set("userId", strconv.FormatInt(userID, 10)).
			Attach("profileImage", image),
	})
	if err := res.Err(); err != nil {
		return "", "", err
	}

	var out struct {
		Message         string `json:"message"`
		ProfileImageURL string `json:"profile_image_url"`
	}
	if err := res.Decode(&out); err != nil {
		return "", "", err
	}
	return out.ProfileImageURL, out.Message, nil
}
