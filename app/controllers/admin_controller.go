package controllers

import (
	"net/http"
	"strconv"

	"yatube/app/blobstore"
	"yatube/app/cache"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// AdminController holds staff-only operations and media serving
type AdminController struct {
	base
}

// NewAdminController creates a new AdminController
func NewAdminController(deps *Deps) *AdminController {
	return &AdminController{base{deps}}
}

// InvalidateCache drops every cached page of the home listing
func (ac *AdminController) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil || !user.IsStaff {
		ac.sendError(w, r, "Forbidden", http.StatusForbidden)
		return
	}
	if err := ac.Cache.Invalidate(r.Context(), cache.HomeKey); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.Logger.Info("home listing cache flushed", zap.String("by", user.Username))
	ac.redirect(w, r, "/")
}

// Media serves a stored image
func (ac *AdminController) Media(w http.ResponseWriter, r *http.Request) {
	data, err := ac.Blobs.Get(r.Context(), mux.Vars(r)["path"])
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", blobstore.ContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
