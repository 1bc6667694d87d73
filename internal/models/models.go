package models

import (
	"strings"
	"unicode/utf8"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	CategoryAll       = "All"
	CategoryGeneral   = "General"
	CategoryTech      = "Tech"
	CategoryLifestyle = "Lifestyle"
	CategoryNews      = "News"
)

// Categories lists the categories a post can be filed under, in display order.
var Categories = []string{CategoryTech, CategoryLifestyle, CategoryNews, CategoryGeneral}

const snippetLength = 150

// Session is the authenticated identity held by one browser context.
type Session struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"user_type"`
	AvatarURL string `json:"profile_image_url"`
}

type PostSummary struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Content        string `json:"content,omitempty"`
	ContentSnippet string `json:"content_snippet"`
	Category       string `json:"category"`
	ImageURL       string `json:"image_url"`
	AuthorName     string `json:"author_name"`
	PublishDate    string `json:"pub_date"`
}

// Snippet returns the listing excerpt, deriving it from the content when the
// backend did not send one.
func (p PostSummary) Snippet() string {
	if p.ContentSnippet != "" {
		return p.ContentSnippet
	}
	return Snippet(p.Content)
}

type Post struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	AuthorName  string    `json:"author_name"`
	PublishDate string    `json:"pub_date"`
	Comments    []Comment `json:"comments"`
}

type PendingPost struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	Category        string `json:"category"`
	ImageURL        string `json:"image_url"`
	AuthorName      string `json:"author_name"`
	AuthorImageURL  string `json:"author_image_url"`
	SubmittedDate   string `json:"submitted_date"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

// Deletable reports whether the author may still withdraw the submission.
func (p PendingPost) Deletable() bool {
	return p.Status == StatusPending || p.Status == StatusRejected
}

type Comment struct {
	ID                int64  `json:"id"`
	Content           string `json:"content"`
	CommenterID       int64  `json:"commenter_id"`
	CommenterName     string `json:"commenter_name"`
	CommenterImageURL string `json:"commenter_image_url"`
	PublishDate       string `json:"pub_date"`
}

// Snippet cuts content down to a word boundary near snippetLength runes.
func Snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= snippetLength {
		return content
	}

	runes := []rune(content)[:snippetLength]
	cut := string(runes)
	if i := strings.LastIndex(cut, " "); i >= 0 && utf8.RuneCountInString(cut[:i]) > snippetLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// ValidCategory reports whether c is a category a post can be filed under.
func ValidCategory(c string) bool {
	for _, category := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
