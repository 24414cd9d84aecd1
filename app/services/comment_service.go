package services

import (
	"fmt"

	"yatube/app/apperr"
	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
	userRepo    repositories.UserRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
	}
}

// AddComment stores a comment by author on postID
func (s *CommentService) AddComment(author *models.User, postID int, text string) (*models.Comment, error) {
	if author == nil {
		return nil, fmt.Errorf("add comment: %w", apperr.ErrAuthorization)
	}
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}

	comment := &models.Comment{Text: text, AuthorID: author.ID, PostID: postID}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}
	comment.Author = author
	return comment, nil
}

// ListComments returns a post's comments newest first, authors attached
func (s *CommentService) ListComments(postID int) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	users := map[int]*models.User{}
	for _, c := range comments {
		u, ok := users[c.AuthorID]
		if !ok {
			if u, err = s.userRepo.GetByID(c.AuthorID); err != nil {
				return nil, fmt.Errorf("author of comment %d: %w", c.ID, err)
			}
			users[c.AuthorID] = u
		}
		c.Author = u
	}
	return comments, nil
}
