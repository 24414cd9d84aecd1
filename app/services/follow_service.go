package services

import (
	"fmt"

	"yatube/app/apperr"
	"yatube/app/authz"
	"yatube/app/models"
	"yatube/app/repositories"
)

// FollowService manages subscriptions between users
type FollowService struct {
	followRepo repositories.FollowRepository
}

// NewFollowService creates a new FollowService
func NewFollowService(followRepo repositories.FollowRepository) *FollowService {
	return &FollowService{followRepo: followRepo}
}

// CreateFollow subscribes user to author. An existing subscription yields
// apperr.ErrConflict; following yourself yields apperr.ErrAuthorization.
func (s *FollowService) CreateFollow(user, author *models.User) (*models.Follow, error) {
	if user == nil || author == nil {
		return nil, fmt.Errorf("follow: %w", apperr.ErrAuthorization)
	}
	if user.Is(author) {
		return nil, fmt.Errorf("follow self: %w", apperr.ErrAuthorization)
	}
	follow := &models.Follow{UserID: user.ID, AuthorID: author.ID}
	if err := s.followRepo.Create(follow); err != nil {
		return nil, err
	}
	return follow, nil
}

// DeleteFollow unsubscribes user from author. Not following is a no-op.
func (s *FollowService) DeleteFollow(user, author *models.User) error {
	if user == nil || author == nil {
		return nil
	}
	return s.followRepo.Delete(user.ID, author.ID)
}

// IsFollowing reports whether user follows author. Anonymous users follow nobody.
func (s *FollowService) IsFollowing(user, author *models.User) (bool, error) {
	if user == nil || author == nil {
		return false, nil
	}
	return s.followRepo.Exists(user.ID, author.ID)
}

// Relation classifies viewer with respect to owner's profile
func (s *FollowService) Relation(viewer, owner *models.User) (models.Relation, error) {
	following, err := s.IsFollowing(viewer, owner)
	if err != nil {
		return models.NoRelation, err
	}
	return authz.RelationOf(viewer, owner, following), nil
}

// FollowedAuthorIDs lists the authors user follows
func (s *FollowService) FollowedAuthorIDs(user *models.User) ([]int, error) {
	return s.followRepo.ListAuthorIDs(user.ID)
}

// Counts returns how many users follow u and how many u follows
func (s *FollowService) Counts(u *models.User) (followers, following int, err error) {
	if followers, err = s.followRepo.CountFollowers(u.ID); err != nil {
		return 0, 0, err
	}
	if following, err = s.followRepo.CountFollowing(u.ID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
