package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"yatube/app/apperr"

	"go.uber.org/zap"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	base
}

// NewCommentController creates a new CommentController
func NewCommentController(deps *Deps) *CommentController {
	return &CommentController{base{deps}}
}

// Create adds a comment and always returns to the post. Invalid text is
// dropped without a message.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		cc.fail(w, r, err)
		return
	}

	_, err = cc.Comments.AddComment(currentUser(r), postID, r.FormValue("text"))
	switch {
	case err == nil, errors.Is(err, apperr.ErrValidation):
	case errors.Is(err, apperr.ErrNotFound):
		cc.NotFound(w, r)
		return
	default:
		cc.Logger.Error("add comment failed", zap.Int("post_id", postID), zap.Error(err))
	}

	cc.redirect(w, r, "/posts/"+strconv.Itoa(postID)+"/")
}
