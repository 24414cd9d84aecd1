package services

import (
	"context"
	"testing"

	"yatube/app/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	f := newFixture()
	leo := f.user(t, "leo")
	ann := f.user(t, "ann")
	post, err := f.posts.CreatePost(context.Background(), leo, PostInput{Text: "discuss"})
	require.NoError(t, err)

	t.Run("valid comment", func(t *testing.T) {
		c, err := f.comments.AddComment(ann, post.ID, " nice ")
		require.NoError(t, err)
		assert.Equal(t, "nice", c.Text)
		assert.Equal(t, ann.ID, c.AuthorID)
		assert.Equal(t, post.ID, c.PostID)
	})

	t.Run("short text", func(t *testing.T) {
		_, err := f.comments.AddComment(ann, post.ID, "?")
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := f.comments.AddComment(ann, 999, "hello?")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.comments.AddComment(nil, post.ID, "hello")
		assert.ErrorIs(t, err, apperr.ErrAuthorization)
	})

	t.Run("list attaches authors", func(t *testing.T) {
		_, err := f.comments.AddComment(leo, post.ID, "thanks")
		require.NoError(t, err)

		comments, err := f.comments.ListComments(post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		for _, c := range comments {
			require.NotNil(t, c.Author)
			assert.Equal(t, c.AuthorID, c.Author.ID)
		}
	})
}
