package controllers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"yatube/app/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want bool
	}{
		{"/follow/", true},
		{"/profile/a/?page=2", true},
		{"", false},
		{"//evil.example.com", false},
		{"/\\evil.example.com", false},
		{"https://evil.example.com/", false},
		{"follow/", false},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next))
		})
	}
}

func TestRequestedPage(t *testing.T) {
	tests := map[string]int{
		"":         1,
		"?page=3":  3,
		"?page=0":  1,
		"?page=-2": 1,
		"?page=x":  1,
	}
	for query, want := range tests {
		t.Run(query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/"+query, nil)
			assert.Equal(t, want, requestedPage(r))
		})
	}
}

func TestParsePostForm(t *testing.T) {
	urlencoded := func(v url.Values) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/posts/create/", strings.NewReader(v.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return r
	}

	t.Run("text and group", func(t *testing.T) {
		in, clear, err := parsePostForm(urlencoded(url.Values{"text": {"hello"}, "group": {"4"}}))
		require.NoError(t, err)
		assert.Equal(t, "hello", in.Text)
		require.NotNil(t, in.GroupID)
		assert.Equal(t, 4, *in.GroupID)
		assert.False(t, clear)
		assert.Nil(t, in.Image)
	})

	t.Run("empty group means none", func(t *testing.T) {
		in, _, err := parsePostForm(urlencoded(url.Values{"text": {"hello"}, "group": {""}}))
		require.NoError(t, err)
		assert.Nil(t, in.GroupID)
		assert.Equal(t, 0, groupValue(in.GroupID))
	})

	for _, bad := range []string{"abc", "0", "-1"} {
		t.Run("bad group "+bad, func(t *testing.T) {
			_, _, err := parsePostForm(urlencoded(url.Values{"text": {"hello"}, "group": {bad}}))
			assert.True(t, errors.Is(err, apperr.ErrValidation))
			assert.Equal(t, invalidGroupMessage, apperr.FieldErrors(err)["group"])
		})
	}

	t.Run("multipart with image and clear flag", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("text", "with file"))
		require.NoError(t, mw.WriteField("image-clear", "on"))
		fw, err := mw.CreateFormFile("image", "a.bin")
		require.NoError(t, err)
		_, err = fw.Write([]byte("payload"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/posts/1/edit/", &body)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		in, clear, err := parsePostForm(r)
		require.NoError(t, err)
		assert.Equal(t, "with file", in.Text)
		assert.Equal(t, []byte("payload"), in.Image)
		assert.True(t, clear)
	})
}
