package authz

import (
	"testing"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
)

var (
	leo = &models.User{ID: 1, Username: "leo"}
	ann = &models.User{ID: 2, Username: "ann"}
)

func TestCanEditPost(t *testing.T) {
	post := &models.Post{ID: 10, AuthorID: leo.ID}

	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"author", leo, true},
		{"someone else", ann, false},
		{"anonymous", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditPost(tt.actor, post))
		})
	}

	t.Run("nil post", func(t *testing.T) {
		assert.False(t, CanEditPost(leo, nil))
	})
}

func TestCanFollow(t *testing.T) {
	tests := []struct {
		name      string
		actor     *models.User
		target    *models.User
		following bool
		want      bool
	}{
		{"new follow", leo, ann, false, true},
		{"already following", leo, ann, true, false},
		{"self", leo, leo, false, false},
		{"anonymous", nil, ann, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanFollow(tt.actor, tt.target, tt.following))
		})
	}
}

func TestCanUnfollow(t *testing.T) {
	assert.True(t, CanUnfollow(leo, true))
	assert.False(t, CanUnfollow(leo, false))
	assert.False(t, CanUnfollow(nil, true))
}

func TestRelationOf(t *testing.T) {
	tests := []struct {
		name      string
		viewer    *models.User
		following bool
		want      models.Relation
	}{
		{"anonymous", nil, false, models.NoRelation},
		{"owner", leo, false, models.NoRelation},
		{"stranger", ann, false, models.NotFollowing},
		{"follower", ann, true, models.Following},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelationOf(tt.viewer, leo, tt.following)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got == models.NotFollowing, got.CanFollow())
			assert.Equal(t, got == models.Following, got.CanUnfollow())
		})
	}
}
