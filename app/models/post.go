package models

import (
	"errors"
	"time"
	"unicode/utf8"
)

// PreviewChars is how much of the text String() shows.
const PreviewChars = 30

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	p.Text = NormalizeText(p.Text)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
}

// HasGroup reports whether the post is tagged to a group.
func (p *Post) HasGroup() bool {
	return p.GroupID != nil
}

// SetGroup tags the post with g, or clears the tag when g is nil.
func (p *Post) SetGroup(g *Group) {
	p.Group = g
	if g == nil {
		p.GroupID = nil
		return
	}
	id := g.ID
	p.GroupID = &id
}

func (p *Post) String() string {
	return preview(p.Text)
}

func preview(text string) string {
	if utf8.RuneCountInString(text) > PreviewChars {
		text = string([]rune(text)[:PreviewChars])
	}
	return text + "....."
}
