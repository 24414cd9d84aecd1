package models

import (
	"strings"
	"time"
)

// Validate checks username and email.
func (u *User) Validate() error {
	return validateStruct(u)
}

// BeforeCreate normalizes fields and stamps the creation time.
func (u *User) BeforeCreate() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
}

// Is reports whether u and other are the same account. A nil user is anonymous.
func (u *User) Is(other *User) bool {
	return u != nil && other != nil && u.ID == other.ID
}

func (u *User) String() string {
	return u.Username
}
