package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mobiblog/internal/models"
	"mobiblog/internal/storage"
)

const testSecret = "test-secret"

func guestAuthor() models.Session {
	return models.Session{
		ID:        7,
		Name:      "Guest Author One",
		Email:     "guest@example.com",
		Role:      models.RoleGuestAuthor,
		AvatarURL: "https://cdn.example.com/avatar.png",
	}
}

func openStore(t *testing.T, st storage.LocalStorage) *Store {
	t.Helper()
	m := NewManager(st, NewTokenCodec(testSecret, 0))
	s, err := m.Open(context.Background(), "ctx-1")
	require.NoError(t, err)
	return s
}

func TestStoreGetAfterSetAndClear(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryStorage())

	_, ok := s.Get()
	assert.False(t, ok)

	sess := guestAuthor()
	require.NoError(t, s.Set(ctx, sess))

	got, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, sess, got)

	require.NoError(t, s.Clear(ctx))
	_, ok = s.Get()
	assert.False(t, ok)
}

func TestStoreRejectsSessionWithoutRole(t *testing.T) {
	s := openStore(t, storage.NewMemoryStorage())

	err := s.Set(context.Background(), models.Session{ID: 1, Name: "Nobody"})

	assert.Error(t, err)
	_, ok := s.Get()
	assert.False(t, ok)
}

func TestStoreNotifiesObservers(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, storage.NewMemoryStorage())

	var seen []bool
	var last models.Session
	unsubscribe := s.Subscribe(func(sess models.Session, ok bool) {
		seen = append(seen, ok)
		last = sess
	})

	require.NoError(t, s.Set(ctx, guestAuthor()))
	// notification is synchronous: visible right after Set returns
	assert.Equal(t, []bool{true}, seen)
	assert.Equal(t, "Guest Author One", last.Name)

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, []bool{true, false}, seen)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.Set(ctx, guestAuthor()))
	assert.Len(t, seen, 2)
}

func TestStorePersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	first := openStore(t, st)
	require.NoError(t, first.Set(ctx, guestAuthor()))

	second := openStore(t, st)
	got, ok := second.Get()
	assert.True(t, ok)
	assert.Equal(t, guestAuthor(), got)
}

func TestStoreDiscardsTamperedRecord(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	forged, _, err := NewTokenCodec("another-secret", 0).Encode(models.Session{ID: 1, Name: "Mallory", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, st.SetItem(ctx, Key("ctx-1"), forged))

	s := openStore(t, st)

	_, ok := s.Get()
	assert.False(t, ok)
	_, found, err := st.GetItem(ctx, Key("ctx-1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCodecExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec(testSecret, time.Hour)
	codec.now = func() time.Time { return now }

	record, expires, err := codec.Encode(guestAuthor())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	got, decodedExpiry, err := codec.Decode(record)
	require.NoError(t, err)
	assert.Equal(t, guestAuthor(), got)
	assert.True(t, expires.Equal(decodedExpiry))

	now = now.Add(2 * time.Hour)
	_, _, err = codec.Decode(record)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestStoreExpiresCachedSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewTokenCodec(testSecret, time.Hour)
	codec.now = func() time.Time { return now }
	st := storage.NewMemoryStorage()
	m := NewManager(st, codec)

	s, err := m.Open(ctx, "ctx-1")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, guestAuthor()))

	var seen []bool
	s.Subscribe(func(_ models.Session, ok bool) { seen = append(seen, ok) })

	now = now.Add(2 * time.Hour)

	_, ok := s.Get()
	assert.False(t, ok)

	again, err := m.Open(ctx, "ctx-1")
	require.NoError(t, err)
	assert.Same(t, s, again)
	_, ok = again.Get()
	assert.False(t, ok)
	assert.Equal(t, []bool{false}, seen)

	_, found, err := st.GetItem(ctx, Key("ctx-1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestManagerRereadsSlotWithoutChangeFeed(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	nodeA := NewManager(st, NewTokenCodec(testSecret, 0))
	nodeB := NewManager(st, NewTokenCodec(testSecret, 0))

	a, err := nodeA.Open(ctx, "ctx-1")
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, guestAuthor()))

	b, err := nodeB.Open(ctx, "ctx-1")
	require.NoError(t, err)
	_, ok := b.Get()
	require.True(t, ok)

	var seen []bool
	b.Subscribe(func(_ models.Session, ok bool) { seen = append(seen, ok) })

	require.NoError(t, a.Clear(ctx))

	b, err = nodeB.Open(ctx, "ctx-1")
	require.NoError(t, err)
	_, ok = b.Get()
	assert.False(t, ok)
	assert.Equal(t, []bool{false}, seen)

	renamed := guestAuthor()
	renamed.Name = "Renamed Author"
	require.NoError(t, a.Set(ctx, renamed))

	b, err = nodeB.Open(ctx, "ctx-1")
	require.NoError(t, err)
	got, ok := b.Get()
	assert.True(t, ok)
	assert.Equal(t, "Renamed Author", got.Name)

	// an unchanged record does not notify again
	_, err = nodeB.Open(ctx, "ctx-1")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, seen)
}

func TestManagerAppliesRemoteChanges(t *testing.T) {
	codec := NewTokenCodec(testSecret, 0)
	m := NewManager(storage.NewMemoryStorage(), codec)
	s, err := m.Open(context.Background(), "ctx-1")
	require.NoError(t, err)

	notified := 0
	s.Subscribe(func(models.Session, bool) { notified++ })

	record, _, err := codec.Encode(guestAuthor())
	require.NoError(t, err)

	m.handle(storage.Event{Key: Key("ctx-1"), Value: record, Origin: "node-b"})
	got, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, guestAuthor(), got)

	m.handle(storage.Event{Key: Key("ctx-1"), Removed: true, Origin: "node-b"})
	_, ok = s.Get()
	assert.False(t, ok)

	m.handle(storage.Event{Key: Key("ctx-2"), Removed: true, Origin: "node-b"})
	assert.Equal(t, 2, notified)
}

func TestManagerOpenReturnsSameStore(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), NewTokenCodec(testSecret, 0))

	a, err := m.Open(context.Background(), "ctx-1")
	require.NoError(t, err)
	b, err := m.Open(context.Background(), "ctx-1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = m.Open(context.Background(), "bad:id")
	assert.Error(t, err)
}

func TestManagerSweepKeepsObservedStores(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), NewTokenCodec(testSecret, 0))

	_, err := m.Open(context.Background(), "idle")
	require.NoError(t, err)
	watched, err := m.Open(context.Background(), "watched")
	require.NoError(t, err)
	watched.Subscribe(func(models.Session, bool) {})

	evicted := m.Sweep(-time.Second)

	assert.Equal(t, 1, evicted)
	assert.Len(t, m.stores, 1)
}
