package view

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"mobiblog/internal/api"
	"mobiblog/internal/models"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Login(ctx context.Context, email, password string, role models.Role) (models.Session, string, error) {
	args := m.Called(ctx, email, password, role)
	return args.Get(0).(models.Session), args.String(1), args.Error(2)
}

func (m *MockBackend) Signup(ctx context.Context, req api.SignupRequest) (api.SignupResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(api.SignupResult), args.Error(1)
}

func (m *MockBackend) ListBlogs(ctx context.Context, filter api.BlogFilter) ([]models.PostSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PostSummary), args.Error(1)
}

func (m *MockBackend) GetBlog(ctx context.Context, id int64) (models.Post, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Post), args.Error(1)
}

func (m *MockBackend) CreateBlog(ctx context.Context, adminID int64, d api.PostDraft) (string, error) {
	args := m.Called(ctx, adminID, d)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) UpdateBlog(ctx context.Context, adminID, id int64, d api.PostDraft) (string, error) {
	args := m.Called(ctx, adminID, id, d)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) DeleteBlog(ctx context.Context, adminID, id int64) (string, error) {
	args := m.Called(ctx, adminID, id)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) SubmitBlog(ctx context.Context, authorID int64, d api.PostDraft) (string, error) {
	args := m.Called(ctx, authorID, d)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) AddComment(ctx context.Context, userID, blogID int64, content string) (string, error) {
	args := m.Called(ctx, userID, blogID, content)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) DeleteComment(ctx context.Context, userID, commentID int64) (string, error) {
	args := m.Called(ctx, userID, commentID)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) PendingBlogs(ctx context.Context) ([]models.PendingPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingPost), args.Error(1)
}

func (m *MockBackend) PendingBlog(ctx context.Context, id int64) (models.PendingPost, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.PendingPost), args.Error(1)
}

func (m *MockBackend) ApprovePending(ctx context.Context, adminID, id int64) (string, error) {
	args := m.Called(ctx, adminID, id)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) RejectPending(ctx context.Context, adminID, id int64, reason string) (string, error) {
	args := m.Called(ctx, adminID, id, reason)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) MyPosts(ctx context.Context, userID int64) ([]models.PendingPost, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingPost), args.Error(1)
}

func (m *MockBackend) DeleteMyPost(ctx context.Context, userID, postID int64) (string, error) {
	args := m.Called(ctx, userID, postID)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) UploadProfileImage(ctx context.Context, userID int64, image api.File) (string, string, error) {
	args := m.Called(ctx, userID, image)
	return args.String(0), args.String(1), args.Error(2)
}

type memStore struct {
	mu   sync.Mutex
	sess models.Session
	ok   bool
}

func storeWith(s models.Session) *memStore {
	return &memStore{sess: s, ok: true}
}

func (m *memStore) Get() (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, m.ok
}

func (m *memStore) Set(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess, m.ok = s, true
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess, m.ok = models.Session{}, false
	return nil
}

var (
	reader = models.Session{ID: 1, Name: "Rita Reader", Email: "rita@example.com", Role: models.RoleReader}
	guest  = models.Session{ID: 2, Name: "Gus Author", Email: "gus@example.com", Role: models.RoleGuestAuthor}
	admin  = models.Session{ID: 3, Name: "Ada Admin", Email: "ada@example.com", Role: models.RoleAdmin}
)

// 1x1 transparent PNG.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
