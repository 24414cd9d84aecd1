package models

import "time"

// Validate checks both ends of the follow are set.
func (f *Follow) Validate() error {
	return validateStruct(f)
}

// BeforeCreate stamps the creation time.
func (f *Follow) BeforeCreate() {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
}

// Relation describes how a viewer relates to a profile owner.
type Relation int

const (
	// NoRelation: the viewer is anonymous or is the owner; following is not offered.
	NoRelation Relation = iota
	NotFollowing
	Following
)

func (r Relation) String() string {
	switch r {
	case NotFollowing:
		return "not_following"
	case Following:
		return "following"
	default:
		return "no_relation"
	}
}

// CanFollow reports whether a follow control should be offered.
func (r Relation) CanFollow() bool { return r == NotFollowing }

// CanUnfollow reports whether an unfollow control should be offered.
func (r Relation) CanUnfollow() bool { return r == Following }
