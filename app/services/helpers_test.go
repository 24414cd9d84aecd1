package services

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"

	"yatube/app/apperr"
	"yatube/app/blobstore"
	"yatube/app/models"
	"yatube/app/repositories/mock"

	"github.com/stretchr/testify/require"
)

// memBlobs is a blobstore.Store keeping images in a map.
type memBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
	n     int
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: map[string][]byte{}} }

func (m *memBlobs) Put(_ context.Context, data []byte) (string, error) {
	_, ext, err := blobstore.Validate(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	path := "posts/" + string(rune('a'+m.n)) + ext
	m.blobs[path] = data
	return path, nil
}

func (m *memBlobs) Get(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[path]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return b, nil
}

func (m *memBlobs) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, path)
	return nil
}

func (m *memBlobs) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

type fixture struct {
	store    *mock.Store
	blobs    *memBlobs
	posts    *PostService
	comments *CommentService
	follows  *FollowService
	groups   *GroupService
	users    *UserService
}

func newFixture() *fixture {
	store := mock.NewStore()
	blobs := newMemBlobs()
	return &fixture{
		store:    store,
		blobs:    blobs,
		posts:    NewPostService(store.Posts(), store.Groups(), store.Users(), blobs),
		comments: NewCommentService(store.Comments(), store.Posts(), store.Users()),
		follows:  NewFollowService(store.Follows()),
		groups:   NewGroupService(store.Groups()),
		users:    NewUserService(store.Users()).WithCost(4).WithBlobs(store.Posts(), blobs),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name}
	require.NoError(t, f.store.Users().Create(u))
	return u
}
