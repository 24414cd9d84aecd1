package models

import "time"

// User is a registered account. Credentials are handled by the identity
// layer; the store only keeps the bcrypt hash.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username" form:"username" validate:"required,min=3,max=150,username"`
	Email        string    `json:"email,omitempty" form:"email" validate:"omitempty,email,max=254"`
	PasswordHash []byte    `json:"password_hash,omitempty" validate:"-"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

// Group is a topic that posts may be tagged with.
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Slug        string `json:"slug" form:"slug" validate:"required,max=200,slug"`
	Description string `json:"description,omitempty" form:"description"`
}

// Post is a blog entry owned by its author and optionally tagged to a group.
type Post struct {
	ID        int       `json:"id"`
	Text      string    `json:"text" form:"text" validate:"required,min=2"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  int       `json:"author_id" form:"author" validate:"required,gt=0"`
	GroupID   *int      `json:"group_id,omitempty" form:"group" validate:"omitempty,gt=0"`
	Image     string    `json:"image,omitempty" form:"image"`

	// Populated by the services layer for rendering; never persisted.
	Author *User  `json:"-" validate:"-"`
	Group  *Group `json:"-" validate:"-"`
}

// Comment is a reader's reply to a post.
type Comment struct {
	ID        int       `json:"id"`
	Text      string    `json:"text" form:"text" validate:"required,min=2"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  int       `json:"author_id" form:"author" validate:"required,gt=0"`
	PostID    int       `json:"post_id" form:"post" validate:"required,gt=0"`

	Author *User `json:"-" validate:"-"`
}

// Follow is a directed subscription from UserID (the follower) to AuthorID.
type Follow struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id" validate:"required,gt=0"`
	AuthorID  int       `json:"author_id" validate:"required,gt=0"`
	CreatedAt time.Time `json:"created_at"`
}
