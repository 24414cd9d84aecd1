// Package mock provides map-backed repositories for service tests.
package mock

import (
	"fmt"
	"sort"
	"sync"

	"yatube/app/apperr"
	"yatube/app/models"
	"yatube/app/repositories"
)

// Store holds every entity behind one mutex, mirroring the shared badger
// handle, and hands out per-entity views.
type Store struct {
	mutex    sync.RWMutex
	users    map[int]*models.User
	groups   map[int]*models.Group
	posts    map[int]*models.Post
	comments map[int]*models.Comment
	follows  map[[2]int]*models.Follow
	nextID   int
}

type (
	PostRepository    struct{ s *Store }
	CommentRepository struct{ s *Store }
	FollowRepository  struct{ s *Store }
	GroupRepository   struct{ s *Store }
	UserRepository    struct{ s *Store }
)

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
	_ repositories.FollowRepository  = (*FollowRepository)(nil)
	_ repositories.GroupRepository   = (*GroupRepository)(nil)
	_ repositories.UserRepository    = (*UserRepository)(nil)
)

func NewStore() *Store {
	s := &Store{}
	s.Clear()
	return s
}

func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.users = make(map[int]*models.User)
	s.groups = make(map[int]*models.Group)
	s.posts = make(map[int]*models.Post)
	s.comments = make(map[int]*models.Comment)
	s.follows = make(map[[2]int]*models.Follow)
	s.nextID = 1
}

func (s *Store) Posts() *PostRepository       { return &PostRepository{s} }
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s} }
func (s *Store) Follows() *FollowRepository   { return &FollowRepository{s} }
func (s *Store) Groups() *GroupRepository     { return &GroupRepository{s} }
func (s *Store) Users() *UserRepository       { return &UserRepository{s} }

func (s *Store) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func sortPosts(posts []*models.Post) []*models.Post {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	if p.GroupID != nil {
		g := *p.GroupID
		cp.GroupID = &g
	}
	cp.Author, cp.Group = nil, nil
	return &cp
}

// PostRepository implementation

func (m *PostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return err
	}
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if _, ok := m.s.users[post.AuthorID]; !ok {
		return fmt.Errorf("user %d: %w", post.AuthorID, repositories.ErrNotFound)
	}
	if err := m.s.requireGroup(post.GroupID); err != nil {
		return err
	}
	post.ID = m.s.id()
	m.s.posts[post.ID] = copyPost(post)
	return nil
}

func (m *PostRepository) GetByID(id int) (*models.Post, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	post, ok := m.s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyPost(post), nil
}

func (m *PostRepository) filter(keep func(*models.Post) bool) []*models.Post {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	out := []*models.Post{}
	for _, p := range m.s.posts {
		if keep(p) {
			out = append(out, copyPost(p))
		}
	}
	return sortPosts(out)
}

func (m *PostRepository) List() ([]*models.Post, error) {
	return m.filter(func(*models.Post) bool { return true }), nil
}

func (m *PostRepository) ListByAuthor(authorID int) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

func (m *PostRepository) ListByGroup(groupID int) ([]*models.Post, error) {
	return m.filter(func(p *models.Post) bool { return p.GroupID != nil && *p.GroupID == groupID }), nil
}

func (m *PostRepository) ListByAuthors(authorIDs []int) ([]*models.Post, error) {
	set := make(map[int]bool, len(authorIDs))
	for _, id := range authorIDs {
		set[id] = true
	}
	return m.filter(func(p *models.Post) bool { return set[p.AuthorID] }), nil
}

func (m *PostRepository) CountByAuthor(authorID int) (int, error) {
	list, _ := m.ListByAuthor(authorID)
	return len(list), nil
}

func (m *PostRepository) Update(post *models.Post) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	existing, ok := m.s.posts[post.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	post.AuthorID = existing.AuthorID
	post.CreatedAt = existing.CreatedAt
	post.Text = models.NormalizeText(post.Text)
	if err := post.Validate(); err != nil {
		return err
	}
	if err := m.s.requireGroup(post.GroupID); err != nil {
		return err
	}
	m.s.posts[post.ID] = copyPost(post)
	return nil
}

func (m *PostRepository) Delete(id int) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if _, ok := m.s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	m.s.deletePost(id)
	return nil
}

func (s *Store) deletePost(id int) {
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.posts, id)
}

func (s *Store) requireGroup(id *int) error {
	if id == nil {
		return nil
	}
	if _, ok := s.groups[*id]; !ok {
		return apperr.NewValidation("group", "Select a valid choice. That choice is not one of the available choices.")
	}
	return nil
}

// CommentRepository implementation

func (m *CommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return err
	}
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if _, ok := m.s.posts[comment.PostID]; !ok {
		return fmt.Errorf("post %d: %w", comment.PostID, repositories.ErrNotFound)
	}
	comment.ID = m.s.id()
	cp := *comment
	cp.Author = nil
	m.s.comments[comment.ID] = &cp
	return nil
}

func (m *CommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	out := []*models.Comment{}
	for _, c := range m.s.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// FollowRepository implementation

func (m *FollowRepository) Create(follow *models.Follow) error {
	follow.BeforeCreate()
	if err := follow.Validate(); err != nil {
		return err
	}
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	key := [2]int{follow.UserID, follow.AuthorID}
	if _, ok := m.s.follows[key]; ok {
		return fmt.Errorf("user %d already follows %d: %w", follow.UserID, follow.AuthorID, apperr.ErrConflict)
	}
	follow.ID = m.s.id()
	cp := *follow
	m.s.follows[key] = &cp
	return nil
}

func (m *FollowRepository) Delete(userID, authorID int) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	delete(m.s.follows, [2]int{userID, authorID})
	return nil
}

func (m *FollowRepository) Exists(userID, authorID int) (bool, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	_, ok := m.s.follows[[2]int{userID, authorID}]
	return ok, nil
}

func (m *FollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	var ids []int
	for k := range m.s.follows {
		if k[0] == userID {
			ids = append(ids, k[1])
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (m *FollowRepository) CountFollowers(authorID int) (int, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	n := 0
	for k := range m.s.follows {
		if k[1] == authorID {
			n++
		}
	}
	return n, nil
}

func (m *FollowRepository) CountFollowing(userID int) (int, error) {
	ids, _ := m.ListAuthorIDs(userID)
	return len(ids), nil
}

// GroupRepository implementation

func (m *GroupRepository) Create(group *models.Group) error {
	group.BeforeCreate()
	if err := group.Validate(); err != nil {
		return err
	}
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	for _, g := range m.s.groups {
		if g.Slug == group.Slug {
			return fmt.Errorf("group slug %q: %w", group.Slug, apperr.ErrConflict)
		}
	}
	group.ID = m.s.id()
	cp := *group
	m.s.groups[group.ID] = &cp
	return nil
}

func (m *GroupRepository) GetByID(id int) (*models.Group, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	g, ok := m.s.groups[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (m *GroupRepository) GetBySlug(slug string) (*models.Group, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	for _, g := range m.s.groups {
		if g.Slug == slug {
			cp := *g
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *GroupRepository) List() ([]*models.Group, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	out := []*models.Group{}
	for _, g := range m.s.groups {
		cp := *g
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *GroupRepository) Update(group *models.Group) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	existing, ok := m.s.groups[group.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	group.Slug = existing.Slug
	if err := group.Validate(); err != nil {
		return err
	}
	cp := *group
	m.s.groups[group.ID] = &cp
	return nil
}

func (m *GroupRepository) Delete(id int) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if _, ok := m.s.groups[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, p := range m.s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
		}
	}
	delete(m.s.groups, id)
	return nil
}

// UserRepository implementation

func (m *UserRepository) Create(user *models.User) error {
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return err
	}
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	for _, u := range m.s.users {
		if u.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, apperr.ErrConflict)
		}
	}
	user.ID = m.s.id()
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m *UserRepository) GetByID(id int) (*models.User, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *UserRepository) GetByUsername(username string) (*models.User, error) {
	m.s.mutex.RLock()
	defer m.s.mutex.RUnlock()
	for _, u := range m.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) Update(user *models.User) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	existing, ok := m.s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Username = existing.Username
	user.CreatedAt = existing.CreatedAt
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m *UserRepository) Delete(id int) error {
	m.s.mutex.Lock()
	defer m.s.mutex.Unlock()
	if _, ok := m.s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	for pid, p := range m.s.posts {
		if p.AuthorID == id {
			m.s.deletePost(pid)
		}
	}
	for cid, c := range m.s.comments {
		if c.AuthorID == id {
			delete(m.s.comments, cid)
		}
	}
	for k := range m.s.follows {
		if k[0] == id || k[1] == id {
			delete(m.s.follows, k)
		}
	}
	delete(m.s.users, id)
	return nil
}
