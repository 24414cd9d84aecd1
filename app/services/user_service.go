package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"yatube/app/apperr"
	"yatube/app/blobstore"
	"yatube/app/models"
	"yatube/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// ErrBadCredentials is returned by Authenticate for an unknown user or a
// wrong password; callers cannot tell which.
var ErrBadCredentials = fmt.Errorf("invalid username or password: %w", apperr.ErrAuthorization)

// UserService handles accounts and credentials
type UserService struct {
	userRepo repositories.UserRepository
	postRepo repositories.PostRepository
	blobs    blobstore.Store
	cost     int
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithCost(cost int) *UserService {
	s.cost = cost
	return s
}

// WithBlobs lets DeleteUser remove the images of the posts it cascades.
func (s *UserService) WithBlobs(postRepo repositories.PostRepository, blobs blobstore.Store) *UserService {
	s.postRepo = postRepo
	s.blobs = blobs
	return s
}

// Register creates an account. A taken username is reported as a form
// error on the username field.
func (s *UserService) Register(username, email, password string) (*models.User, error) {
	user := &models.User{Username: username, Email: email}
	user.BeforeCreate()

	fields := apperr.FieldErrors(user.Validate())
	if fields == nil {
		fields = map[string]string{}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters in length", MinPasswordLength)
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.NewValidation("username", "A user with that username already exists.")
		}
		return nil, err
	}
	return user, nil
}

// Authenticate checks username and password
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.userRepo.GetByUsername(username)
}

// Promote grants staff rights to username
func (s *UserService) Promote(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	user.IsStaff = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account and everything it owns: posts, their
// comments, its own comments and follow edges in both directions.
// Post images are removed once the records are gone.
func (s *UserService) DeleteUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("delete account: %w", apperr.ErrAuthorization)
	}
	var images []string
	if s.postRepo != nil && s.blobs != nil {
		posts, err := s.postRepo.ListByAuthor(user.ID)
		if err != nil {
			return err
		}
		for _, post := range posts {
			if post.Image != "" {
				images = append(images, post.Image)
			}
		}
	}
	if err := s.userRepo.Delete(user.ID); err != nil {
		return err
	}
	for _, path := range images {
		// An orphaned blob is harmless.
		_ = s.blobs.Delete(ctx, path)
	}
	return nil
}
