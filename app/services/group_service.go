package services

import (
	"yatube/app/models"
	"yatube/app/repositories"
)

// GroupService manages groups. Groups are created by administrators.
type GroupService struct {
	groupRepo repositories.GroupRepository
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repositories.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// CreateGroup stores a new group; the slug must be unused
func (s *GroupService) CreateGroup(title, slug, description string) (*models.Group, error) {
	group := &models.Group{Title: title, Slug: slug, Description: description}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) GetBySlug(slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(slug)
}

func (s *GroupService) ListGroups() ([]*models.Group, error) {
	return s.groupRepo.List()
}

// DeleteGroup removes a group; its posts stay, untagged.
func (s *GroupService) DeleteGroup(slug string) error {
	group, err := s.groupRepo.GetBySlug(slug)
	if err != nil {
		return err
	}
	return s.groupRepo.Delete(group.ID)
}
