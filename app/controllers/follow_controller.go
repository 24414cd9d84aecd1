package controllers

import (
	"errors"
	"net/http"

	"yatube/app/apperr"
	"yatube/app/authz"
	"yatube/app/feed"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

// FollowController handles subscriptions and the personal feed
type FollowController struct {
	base
}

// NewFollowController creates a new FollowController
func NewFollowController(deps *Deps) *FollowController {
	return &FollowController{base{deps}}
}

// Index renders posts by the authors the user follows. Not cached.
func (fc *FollowController) Index(w http.ResponseWriter, r *http.Request) {
	ids, err := fc.Follows.FollowedAuthorIDs(currentUser(r))
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	posts, err := fc.Posts.PostsByAuthors(ids)
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	fc.render(w, r, http.StatusOK, "follow", views.FollowView{
		Page: feed.Paginate(posts, fc.PageSize, r.URL.Query().Get("page")),
	})
}

// Follow subscribes the user to the profile owner. Following yourself or
// someone already followed is silently skipped.
func (fc *FollowController) Follow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	author, err := fc.Users.GetByUsername(username)
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	user := currentUser(r)

	following, err := fc.Follows.IsFollowing(user, author)
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if authz.CanFollow(user, author, following) {
		// A concurrent request may have won the race; that is fine.
		if _, err := fc.Follows.CreateFollow(user, author); err != nil && !errors.Is(err, apperr.ErrConflict) {
			fc.fail(w, r, err)
			return
		}
	}

	fc.redirect(w, r, "/profile/"+author.Username+"/")
}

// Unfollow removes the subscription if there is one
func (fc *FollowController) Unfollow(w http.ResponseWriter, r *http.Request) {
	author, err := fc.Users.GetByUsername(mux.Vars(r)["username"])
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	user := currentUser(r)

	following, err := fc.Follows.IsFollowing(user, author)
	if err != nil {
		fc.fail(w, r, err)
		return
	}
	if authz.CanUnfollow(user, following) {
		if err := fc.Follows.DeleteFollow(user, author); err != nil {
			fc.fail(w, r, err)
			return
		}
	}

	fc.redirect(w, r, "/profile/"+author.Username+"/")
}
