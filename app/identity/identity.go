// Package identity resolves the signed-in user from a session cookie.
package identity

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	SessionName = "yatube-session"

	userIDKey = "user_id"
)

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Options configures the session cookie.
type Options struct {
	// Key signs the cookie. Empty means a random per-process key.
	Key    string
	Secure bool
	MaxAge int
	// LoginURL is where RequireLogin sends anonymous visitors.
	LoginURL string
}

// Provider loads users from the session and guards routes.
type Provider struct {
	store    *sessions.CookieStore
	users    repositories.UserRepository
	loginURL string
	logger   *zap.Logger
}

// New builds a Provider backed by a signed cookie store.
func New(opts Options, users repositories.UserRepository, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(opts.Key)
	if len(key) == 0 {
		logger.Warn("session key not configured; generating a random one, sessions will not survive a restart")
		key = securecookie.GenerateRandomKey(32)
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	loginURL := opts.LoginURL
	if loginURL == "" {
		loginURL = "/auth/login/"
	}
	return &Provider{store: store, users: users, loginURL: loginURL, logger: logger}
}

// CurrentUser returns the signed-in user put in context by LoadUser.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok && u != nil
}

// WithUser returns r carrying u as the current user.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// LoadUser injects the session's user into the request context. A
// session naming a deleted account is treated as anonymous.
func (p *Provider) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := p.store.Get(r, SessionName)
		if err != nil {
			// Tampered or stale cookie; carry on anonymous.
			p.logger.Debug("session decode failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		id, ok := sess.Values[userIDKey].(int)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		u, err := p.users.GetByID(id)
		if err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				p.logger.Error("session user lookup failed", zap.Int("user_id", id), zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, WithUser(r, u))
	})
}

// RequireLogin sends anonymous visitors to the login page with the
// requested path in ?next=.
func (p *Provider) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		http.Redirect(w, r, p.LoginRedirect(r.URL.RequestURI()), http.StatusSeeOther)
	})
}

// LoginRedirect builds the login URL returning to next afterwards.
// Slashes are left unescaped so the target stays readable.
func (p *Provider) LoginRedirect(next string) string {
	return p.loginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SignIn stores u's id in the session cookie.
func (p *Provider) SignIn(w http.ResponseWriter, r *http.Request, u *models.User) error {
	sess, _ := p.store.Get(r, SessionName)
	sess.Values[userIDKey] = u.ID
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (p *Provider) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := p.store.Get(r, SessionName)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
