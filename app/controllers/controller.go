package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"yatube/app/apperr"
	"yatube/app/blobstore"
	"yatube/app/cache"
	"yatube/app/identity"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Deps carries everything the controllers need. It is built once in
// routes.SetupRoutes.
type Deps struct {
	Posts    *services.PostService
	Comments *services.CommentService
	Follows  *services.FollowService
	Users    *services.UserService
	Blobs    blobstore.Store
	Cache    *cache.ListingCache
	CacheTTL time.Duration
	PageSize int
	Views    *views.Renderer
	Identity *identity.Provider
	Logger   *zap.Logger
}

// base holds the helpers shared by every controller.
type base struct {
	*Deps
}

// render writes a full page with the current user in the layout.
func (b base) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	user, _ := identity.CurrentUser(r)
	var buf bytes.Buffer
	if err := b.Views.Page(&buf, page, views.PageData{User: user, Data: data}); err != nil {
		b.Logger.Error("template error", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect sends a 303 to an application path.
func (b base) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, b.Views.URL(path), http.StatusSeeOther)
}

func (b base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	b.render(w, r, status, "error", views.ErrorView{Status: status, Message: message})
}

// NotFound renders the 404 page.
func (b base) NotFound(w http.ResponseWriter, r *http.Request) {
	b.sendError(w, r, "Page not found", http.StatusNotFound)
}

// fail maps an error that has no friendlier handling to a response.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		b.NotFound(w, r)
	case errors.Is(err, apperr.ErrAuthorization):
		b.sendError(w, r, "Forbidden", http.StatusForbidden)
	default:
		b.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		b.sendError(w, r, "Internal server error", http.StatusInternalServerError)
	}
}

// pathID reads a numeric route variable. The routes only match digits.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}

// requestedPage normalizes the page query value the way feed.Paginate
// does for the lower bound, so that equivalent requests share a cache key.
func requestedPage(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
