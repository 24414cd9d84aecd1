package repositories

import (
	"testing"
	"time"

	"yatube/app/apperr"
	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	repo := newTestRepo(t)
	users := repo.Users()

	t.Run("create and lookup", func(t *testing.T) {
		u := &models.User{Username: "leo", Email: "leo@example.com", PasswordHash: []byte("hash")}
		require.NoError(t, users.Create(u))

		byName, err := users.GetByUsername("leo")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byName.ID)
		assert.Equal(t, []byte("hash"), byName.PasswordHash)

		byID, err := users.GetByID(u.ID)
		require.NoError(t, err)
		assert.Equal(t, "leo@example.com", byID.Email)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := users.Create(&models.User{Username: "leo"})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})

	t.Run("invalid username", func(t *testing.T) {
		err := users.Create(&models.User{Username: "no spaces"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("update cannot rename", func(t *testing.T) {
		u, err := users.GetByUsername("leo")
		require.NoError(t, err)
		u.Username = "leon"
		u.IsStaff = true
		require.NoError(t, users.Update(u))

		got, err := users.GetByUsername("leo")
		require.NoError(t, err)
		assert.True(t, got.IsStaff)
		_, err = users.GetByUsername("leon")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserDeleteCascades(t *testing.T) {
	repo := newTestRepo(t)
	leo := mustUser(t, repo, "leo")
	ann := mustUser(t, repo, "ann")

	leoPost := mustPost(t, repo, leo, "leo writes", time.Now())
	annPost := mustPost(t, repo, ann, "ann writes", time.Now())

	onOwn := &models.Comment{Text: "self reply", AuthorID: leo.ID, PostID: leoPost.ID}
	onAnn := &models.Comment{Text: "leo was here", AuthorID: leo.ID, PostID: annPost.ID}
	annOnLeo := &models.Comment{Text: "ann replies", AuthorID: ann.ID, PostID: leoPost.ID}
	for _, c := range []*models.Comment{onOwn, onAnn, annOnLeo} {
		require.NoError(t, repo.Comments().Create(c))
	}
	require.NoError(t, repo.Follows().Create(&models.Follow{UserID: leo.ID, AuthorID: ann.ID}))
	require.NoError(t, repo.Follows().Create(&models.Follow{UserID: ann.ID, AuthorID: leo.ID}))

	require.NoError(t, repo.Users().Delete(leo.ID))

	_, err := repo.Users().GetByUsername("leo")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Posts().GetByID(leoPost.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, countKeys(t, repo, CommentKeyPrefix))
	assert.Zero(t, countKeys(t, repo, commentByAuthorPrefix))

	// Ann's own post survives, without leo's comment.
	left, err := repo.Comments().ListByPost(annPost.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	n, err := repo.Follows().CountFollowers(ann.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = repo.Follows().CountFollowing(ann.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// The username is free again.
	assert.NoError(t, repo.Users().Create(&models.User{Username: "leo"}))
}
