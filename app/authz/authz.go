// Package authz holds the rules deciding who may edit and follow. The
// functions do no I/O; callers look up whatever state they need first.
package authz

import "yatube/app/models"

// CanEditPost reports whether actor wrote post. Anonymous actors never can.
func CanEditPost(actor *models.User, post *models.Post) bool {
	return actor != nil && post != nil && actor.ID == post.AuthorID
}

// CanFollow reports whether actor may start following target.
func CanFollow(actor, target *models.User, alreadyFollowing bool) bool {
	return actor != nil && target != nil && actor.ID != target.ID && !alreadyFollowing
}

// CanUnfollow reports whether actor has a follow to remove.
func CanUnfollow(actor *models.User, alreadyFollowing bool) bool {
	return actor != nil && alreadyFollowing
}

// RelationOf classifies the viewer of owner's profile.
func RelationOf(viewer, owner *models.User, following bool) models.Relation {
	if viewer == nil || owner == nil || viewer.Is(owner) {
		return models.NoRelation
	}
	if following {
		return models.Following
	}
	return models.NotFollowing
}
