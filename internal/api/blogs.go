package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mobiblog/internal/models"
)

// BlogFilter narrows the published listing. Both dimensions apply together.
type BlogFilter struct {
	Search   string
	Category string
}

// Query returns the listing query: q when a search term is set, category
// unless it is empty or All.
func (f BlogFilter) Query() url.Values {
	q := url.Values{}
	if term := strings.TrimSpace(f.Search); term != "" {
		q.Set("q", term)
	}
	if f.Category != "" && f.Category != models.CategoryAll {
		q.Set("category", f.Category)
	}
	return q
}

// PostDraft is the editor's payload. Image may be nil when updating.
type PostDraft struct {
	Title    string
	Content  string
	Category string
	Image    *File
}

func (d PostDraft) form(actorField string, actorID int64) *Form {
	form := NewForm().
		Set("title", d.Title).
		Set("content", d.Content).
		Set("category", d.Category).
		Set(actorField, strconv.FormatInt(actorID, 10))
	if d.Image != nil {
		form.Attach("image", *d.Image)
	}
	return form
}

func (c *Client) mutate(ctx context.Context, req Request) (string, error) {
	res := c.Send(ctx, req)
	if err := res.Err(); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) ListBlogs(ctx context.Context, filter BlogFilter) ([]models.PostSummary, error) {
	res := c.Send(ctx, Request{Method: http.MethodGet, Path: "/api/blogs", Query: filter.Query()})
	if err := res.Err(); err != nil {
		return nil, err
	}

	var out struct {
		Blogs []models.PostSummary `json:"blogs"`
	}
	if err := res.Decode(&out); err != nil {
		return nil, err
	}
	return out.Blogs, nil
}

func (c *Client) GetBlog(ctx context.Context, id int64) (models.Post, error) {
	res := c.Send(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/api/blogs/%d", id)})
	if err := res.Err(); err != nil {
		return models.Post{}, err
	}

	var post models.Post
	if err := res.Decode(&post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// CreateBlog publishes a post directly; admin only.
func (c *Client) CreateBlog(ctx context.Context, adminID int64, d PostDraft) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/blogs",
		Form:   d.form("userId", adminID),
	})
}

func (c *Client) UpdateBlog(ctx context.Context, adminID, id int64, d PostDraft) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/api/blogs/%d", id),
		Form:   d.form("adminUserId", adminID),
	})
}

func (c *Client) DeleteBlog(ctx context.Context, adminID, id int64) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/blogs/%d", id),
		Body:   map[string]int64{"adminUserId": adminID},
	})
}

// SubmitBlog files a guest author's post for review.
func (c *Client) SubmitBlog(ctx context.Context, authorID int64, d PostDraft) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodPost,
		Path:   "/api/blogs/submit",
		Form:   d.form("userId", authorID),
	})
}

func (c *Client) AddComment(ctx context.Context, userID, blogID int64, content string) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/blogs/%d/comments", blogID),
		Body: struct {
			Content string `json:"content"`
			UserID  int64  `json:"userId"`
		}{Content: content, UserID: userID},
	})
}

func (c *Client) DeleteComment(ctx context.Context, userID, commentID int64) (string, error) {
	return c.mutate(ctx, Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/api/comments/%d", commentID),
		Body:   map[string]int64{"userId": userID},
	})
}
