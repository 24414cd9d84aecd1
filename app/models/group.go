package models

import "strings"

// Validate checks title and slug.
func (g *Group) Validate() error {
	return validateStruct(g)
}

// BeforeCreate trims user-entered fields.
func (g *Group) BeforeCreate() {
	g.Title = strings.TrimSpace(g.Title)
	g.Slug = strings.TrimSpace(g.Slug)
	g.Description = strings.TrimSpace(g.Description)
}

func (g *Group) String() string {
	return g.Title
}
