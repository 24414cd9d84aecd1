package views

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"yatube/app/feed"
	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePosts() []*models.Post {
	leo := &models.User{ID: 1, Username: "leo"}
	cats := &models.Group{ID: 1, Title: "Cats", Slug: "cats"}
	at := time.Date(2024, 2, 3, 4, 5, 0, 0, time.UTC)
	return []*models.Post{
		{ID: 2, Text: "<b>bold</b> claim", Author: leo, Group: cats, CreatedAt: at},
		{ID: 1, Text: "plain post", Author: leo, CreatedAt: at},
	}
}

func TestFragment(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	out, err := r.Fragment("post_list", feed.Paginate(samplePosts(), 10, "1"))
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `id="post-2"`)
	assert.Contains(t, html, "&lt;b&gt;bold&lt;/b&gt; claim")
	assert.Contains(t, html, `href="/group/cats/"`)
	assert.Contains(t, html, "03 Feb 2024 04:05")
	assert.NotContains(t, html, "pagination")
}

func TestFragmentPaginator(t *testing.T) {
	r, err := New("")
	require.NoError(t, err)

	posts := append(samplePosts(), samplePosts()...)
	out, err := r.Fragment("post_list", feed.Paginate(posts, 1, "2"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Page 2 of 4")
	assert.Contains(t, string(out), `href="?page=3"`)
}

func TestPage(t *testing.T) {
	r, err := New("/blog")
	require.NoError(t, err)

	t.Run("anonymous chrome", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.Page(&buf, "index", PageData{Data: IndexView{Listing: template.HTML("<p>cached</p>")}})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "<p>cached</p>")
		assert.Contains(t, buf.String(), `href="/blog/auth/login/"`)
	})

	t.Run("signed in chrome", func(t *testing.T) {
		var buf bytes.Buffer
		user := &models.User{ID: 1, Username: "leo"}
		err := r.Page(&buf, "index", PageData{User: user, Data: IndexView{}})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `href="/blog/profile/leo/"`)
		assert.NotContains(t, buf.String(), "Sign up")
	})

	t.Run("profile follow button", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.Page(&buf, "profile", PageData{Data: ProfileView{
			Author:   &models.User{ID: 2, Username: "ann"},
			Page:     feed.Paginate([]*models.Post{}, 10, ""),
			Relation: models.NotFollowing,
		}})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `action="/blog/profile/ann/follow/"`)
		assert.NotContains(t, buf.String(), "unfollow")
	})

	t.Run("form errors", func(t *testing.T) {
		var buf bytes.Buffer
		err := r.Page(&buf, "post_form", PageData{Data: PostFormView{
			Action: "/blog/posts/create/",
			Text:   "x",
			Errors: map[string]string{"text": "text must be at least 2 characters in length"},
		}})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "text must be at least 2 characters in length")
	})

	t.Run("every page parses", func(t *testing.T) {
		for _, name := range []string{"index", "group", "follow", "profile", "post_detail", "post_form", "login", "signup", "error"} {
			assert.Contains(t, r.pages, name)
		}
	})

	t.Run("unknown page", func(t *testing.T) {
		assert.Error(t, r.Page(&bytes.Buffer{}, "missing", PageData{}))
	})
}
