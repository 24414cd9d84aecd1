package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"yatube/app/models"
	"yatube/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

// whoami echoes the current username, or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u, ok := CurrentUser(r); ok {
		w.Write([]byte(u.Username))
		return
	}
	w.Write([]byte("anonymous"))
})

func setup(t *testing.T) (*Provider, *mock.Store, *models.User) {
	t.Helper()
	store := mock.NewStore()
	leo := &models.User{Username: "leo"}
	require.NoError(t, store.Users().Create(leo))
	return New(Options{Key: testKey}, store.Users(), nil), store, leo
}

// signedInCookies signs u in and returns the cookies set on the response.
func signedInCookies(t *testing.T, p *Provider, u *models.User) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, p.SignIn(rec, httptest.NewRequest(http.MethodPost, "/auth/login/", nil), u))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestLoadUser(t *testing.T) {
	p, store, leo := setup(t)
	handler := p.LoadUser(whoami)

	t.Run("anonymous without cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("signed in", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range signedInCookies(t, p, leo) {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "leo", rec.Body.String())
	})

	t.Run("tampered cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionName, Value: "garbage"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("cookie signed with another key", func(t *testing.T) {
		other := New(Options{Key: "ffffffffffffffffffffffffffffffff"}, store.Users(), nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range signedInCookies(t, other, leo) {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("deleted account", func(t *testing.T) {
		ann := &models.User{Username: "ann"}
		require.NoError(t, store.Users().Create(ann))
		cookies := signedInCookies(t, p, ann)
		require.NoError(t, store.Users().Delete(ann.ID))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "anonymous", rec.Body.String())
	})
}

func TestRequireLogin(t *testing.T) {
	p, _, leo := setup(t)
	handler := p.RequireLogin(whoami)

	t.Run("anonymous is redirected with next", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profile/leo/follow/", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/auth/login/?next=/profile/leo/follow/", rec.Header().Get("Location"))
	})

	t.Run("query string is kept", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/follow/?page=2", nil))
		assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", rec.Header().Get("Location"))
	})

	t.Run("signed in passes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := WithUser(httptest.NewRequest(http.MethodGet, "/follow/", nil), leo)
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "leo", rec.Body.String())
	})
}

func TestSignOut(t *testing.T) {
	p, _, leo := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout/", nil)
	for _, c := range signedInCookies(t, p, leo) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, p.SignOut(rec, req))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestNewWithoutKey(t *testing.T) {
	p := New(Options{}, mock.NewStore().Users(), nil)
	assert.NotNil(t, p.store)
	assert.Equal(t, "/auth/login/?next=/", p.LoginRedirect("/"))
}
