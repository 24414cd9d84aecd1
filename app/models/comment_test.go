package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommentValidation(t *testing.T) {
	tests := []struct {
		name    string
		comment *Comment
		wantErr bool
	}{
		{
			name: "valid comment",
			comment: &Comment{
				ID:        1,
				PostID:    1,
				AuthorID:  2,
				Text:      "This is a valid comment",
				CreatedAt: time.Now(),
			},
			wantErr: false,
		},
		{
			name: "text too short",
			comment: &Comment{
				PostID:    1,
				AuthorID:  2,
				Text:      "a",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "missing post",
			comment: &Comment{
				AuthorID:  2,
				Text:      "Valid content",
				CreatedAt: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "zero creation time",
			comment: &Comment{
				PostID:   1,
				AuthorID: 2,
				Text:     "Valid content",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCommentBeforeCreate(t *testing.T) {
	comment := &Comment{
		PostID:   1,
		AuthorID: 1,
		Text:     " Test Comment ",
	}

	assert.True(t, comment.CreatedAt.IsZero())
	comment.BeforeCreate()
	assert.False(t, comment.CreatedAt.IsZero())
	assert.Equal(t, "Test Comment", comment.Text)
}

func TestCommentSetPost(t *testing.T) {
	comment := &Comment{
		AuthorID: 1,
		Text:     "Test Comment",
	}

	t.Run("set valid post", func(t *testing.T) {
		err := comment.SetPost(&Post{ID: 4, Text: "Test Content"})
		assert.NoError(t, err)
		assert.Equal(t, 4, comment.PostID)
	})

	t.Run("set nil post", func(t *testing.T) {
		err := comment.SetPost(nil)
		assert.Error(t, err)
	})
}
