package services

import (
	"context"
	"errors"
	"fmt"

	"yatube/app/apperr"
	"yatube/app/authz"
	"yatube/app/blobstore"
	"yatube/app/models"
	"yatube/app/repositories"
)

// PostInput is what a user submits on the post form. The author always
// comes from the session, never from the form.
type PostInput struct {
	Text    string
	GroupID *int
	Image   []byte
}

// PostService handles business logic for blog posts
type PostService struct {
	postRepo  repositories.PostRepository
	groupRepo repositories.GroupRepository
	userRepo  repositories.UserRepository
	blobs     blobstore.Store
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repositories.PostRepository,
	groupRepo repositories.GroupRepository,
	userRepo repositories.UserRepository,
	blobs blobstore.Store,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		blobs:     blobs,
	}
}

// CreatePost validates and stores a post written by author. The image, if
// any, is stored only once text and group have passed validation.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, in PostInput) (*models.Post, error) {
	if author == nil {
		return nil, fmt.Errorf("create post: %w", apperr.ErrAuthorization)
	}

	post := &models.Post{Text: in.Text, AuthorID: author.ID, GroupID: in.GroupID}
	post.BeforeCreate()
	if err := s.check(post, in.Image); err != nil {
		return nil, err
	}

	var stored string
	if len(in.Image) > 0 {
		path, err := s.blobs.Put(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image, stored = path, path
	}

	if err := s.postRepo.Create(post); err != nil {
		s.discard(ctx, stored)
		return nil, err
	}
	return s.hydrate(post)
}

// UpdatePost rewrites text, group and image of postID. Only the author may
// edit; anyone else gets apperr.ErrAuthorization and nothing changes.
// clearImage drops the current image when no new one is uploaded.
func (s *PostService) UpdatePost(ctx context.Context, actor *models.User, postID int, in PostInput, clearImage bool) (*models.Post, error) {
	existing, err := s.postRepo.GetByID(postID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditPost(actor, existing) {
		return nil, fmt.Errorf("edit post %d: %w", postID, apperr.ErrAuthorization)
	}

	post := *existing
	post.Text = models.NormalizeText(in.Text)
	post.GroupID = in.GroupID
	if err := s.check(&post, in.Image); err != nil {
		return nil, err
	}

	var stored string
	switch {
	case len(in.Image) > 0:
		path, err := s.blobs.Put(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image, stored = path, path
	case clearImage:
		post.Image = ""
	}

	if err := s.postRepo.Update(&post); err != nil {
		s.discard(ctx, stored)
		return nil, err
	}
	if existing.Image != "" && existing.Image != post.Image {
		s.discard(ctx, existing.Image)
	}
	return s.hydrate(&post)
}

// DeletePost removes a post and its comments. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, actor *models.User, postID int) error {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		return err
	}
	if !authz.CanEditPost(actor, post) {
		return fmt.Errorf("delete post %d: %w", postID, apperr.ErrAuthorization)
	}
	if err := s.postRepo.Delete(postID); err != nil {
		return err
	}
	s.discard(ctx, post.Image)
	return nil
}

// GetPost retrieves a post with its author and group attached
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.hydrate(post)
}

// ListPosts returns every post, newest first
func (s *PostService) ListPosts() ([]*models.Post, error) {
	posts, err := s.postRepo.List()
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(posts)
}

// GroupPosts returns the group named by slug and its posts
func (s *PostService) GroupPosts(slug string) (*models.Group, []*models.Post, error) {
	group, err := s.groupRepo.GetBySlug(slug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.postRepo.ListByGroup(group.ID)
	if err != nil {
		return nil, nil, err
	}
	posts, err = s.hydrateAll(posts)
	return group, posts, err
}

// AuthorPosts returns the user named username and the posts they wrote
func (s *PostService) AuthorPosts(username string) (*models.User, []*models.Post, error) {
	author, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.postRepo.ListByAuthor(author.ID)
	if err != nil {
		return nil, nil, err
	}
	posts, err = s.hydrateAll(posts)
	return author, posts, err
}

// PostsByAuthors returns the posts of the given authors, newest first
func (s *PostService) PostsByAuthors(authorIDs []int) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByAuthors(authorIDs)
	if err != nil {
		return nil, err
	}
	return s.hydrateAll(posts)
}

// CountByAuthor counts the posts written by authorID
func (s *PostService) CountByAuthor(authorID int) (int, error) {
	return s.postRepo.CountByAuthor(authorID)
}

// Groups lists the groups a post can be tagged with
func (s *PostService) Groups() ([]*models.Group, error) {
	return s.groupRepo.List()
}

// check validates post fields and the image payload together so the form
// can report every problem at once.
func (s *PostService) check(post *models.Post, image []byte) error {
	fields := map[string]string{}

	if err := post.Validate(); err != nil {
		if fe := apperr.FieldErrors(err); fe != nil {
			for k, v := range fe {
				fields[k] = v
			}
		} else {
			return err
		}
	}
	if post.GroupID != nil {
		if _, err := s.groupRepo.GetByID(*post.GroupID); errors.Is(err, apperr.ErrNotFound) {
			fields["group"] = "Select a valid choice. That choice is not one of the available choices."
		} else if err != nil {
			return err
		}
	}
	if len(image) > 0 {
		if _, _, err := blobstore.Validate(image); err != nil {
			fields["image"] = apperr.FieldErrors(err)["image"]
		}
	}

	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// discard removes a blob that is no longer referenced. Failures leave an
// orphan behind, which is harmless.
func (s *PostService) discard(ctx context.Context, path string) {
	if path == "" || s.blobs == nil {
		return
	}
	_ = s.blobs.Delete(ctx, path)
}

func (s *PostService) hydrate(post *models.Post) (*models.Post, error) {
	posts, err := s.hydrateAll([]*models.Post{post})
	if err != nil {
		return nil, err
	}
	return posts[0], nil
}

// hydrateAll attaches Author and Group to each post, looking each one up once.
func (s *PostService) hydrateAll(posts []*models.Post) ([]*models.Post, error) {
	users := map[int]*models.User{}
	groups := map[int]*models.Group{}
	for _, p := range posts {
		u, ok := users[p.AuthorID]
		if !ok {
			var err error
			if u, err = s.userRepo.GetByID(p.AuthorID); err != nil {
				return nil, fmt.Errorf("author of post %d: %w", p.ID, err)
			}
			users[p.AuthorID] = u
		}
		p.Author = u

		if p.GroupID == nil {
			continue
		}
		g, ok := groups[*p.GroupID]
		if !ok {
			var err error
			if g, err = s.groupRepo.GetByID(*p.GroupID); err != nil {
				return nil, fmt.Errorf("group of post %d: %w", p.ID, err)
			}
			groups[*p.GroupID] = g
		}
		p.Group = g
	}
	return posts, nil
}
