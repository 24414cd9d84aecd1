package repositories

import "yatube/app/models"

// PostRepository defines the interface for post data access.
// Every list is ordered newest first.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List() ([]*models.Post, error)
	ListByAuthor(authorID int) ([]*models.Post, error)
	ListByGroup(groupID int) ([]*models.Post, error)
	ListByAuthors(authorIDs []int) ([]*models.Post, error)
	CountByAuthor(authorID int) (int, error)
	Update(post *models.Post) error
	Delete(id int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	ListByPost(postID int) ([]*models.Comment, error)
}

// FollowRepository stores follower -> author edges. Create fails with
// apperr.ErrConflict when the pair already exists.
type FollowRepository interface {
	Create(follow *models.Follow) error
	Delete(userID, authorID int) error
	Exists(userID, authorID int) (bool, error)
	ListAuthorIDs(userID int) ([]int, error)
	CountFollowers(authorID int) (int, error)
	CountFollowing(userID int) (int, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id int) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
	Update(group *models.Group) error
	Delete(id int) error
}

// UserRepository defines the interface for account data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id int) error
}
