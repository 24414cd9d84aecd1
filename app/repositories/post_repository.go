package repositories

import (
	"fmt"

	"yatube/app/apperr"
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerDB-backed post repository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create stores a new post. The author must exist and the group, when set,
// must exist too.
func (r *BadgerPostRepository) Create(post *models.Post) error {
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return err
	}

	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		if err := requireUser(txn, post.AuthorID); err != nil {
			return err
		}
		if err := requireGroup(txn, post.GroupID); err != nil {
			return err
		}

		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := setEntity(txn, idKey(PostKeyPrefix, post.ID), post); err != nil {
			return err
		}
		return indexPost(txn, post)
	})
}

// GetByID retrieves a post by its ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves every post
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(PostKeyPrefix)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

// ListByAuthor retrieves the posts written by one author
func (r *BadgerPostRepository) ListByAuthor(authorID int) ([]*models.Post, error) {
	return r.listByIndex(scanPrefix(postByAuthorPrefix, authorID))
}

// ListByGroup retrieves the posts tagged with one group
func (r *BadgerPostRepository) ListByGroup(groupID int) ([]*models.Post, error) {
	return r.listByIndex(scanPrefix(postByGroupPrefix, groupID))
}

// ListByAuthors retrieves the posts of any of the given authors
func (r *BadgerPostRepository) ListByAuthors(authorIDs []int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		for _, authorID := range authorIDs {
			batch, err := loadPostsByIndex(txn, scanPrefix(postByAuthorPrefix, authorID))
			if err != nil {
				return err
			}
			posts = append(posts, batch...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

// CountByAuthor counts an author's posts without loading them
func (r *BadgerPostRepository) CountByAuthor(authorID int) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, scanPrefix(postByAuthorPrefix, authorID))
		return nil
	})
	return n, err
}

// Update rewrites text, group and image. ID, author and creation time are
// taken from the stored post and cannot change.
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		var existing models.Post
		if err := getEntity(txn, idKey(PostKeyPrefix, post.ID), &existing); err != nil {
			return err
		}
		post.AuthorID = existing.AuthorID
		post.CreatedAt = existing.CreatedAt
		post.Text = models.NormalizeText(post.Text)
		if err := post.Validate(); err != nil {
			return err
		}
		if err := requireGroup(txn, post.GroupID); err != nil {
			return err
		}

		if existing.GroupID != nil {
			if err := txn.Delete(idKey(postByGroupPrefix, *existing.GroupID, existing.ID)); err != nil {
				return err
			}
		}
		if err := setEntity(txn, idKey(PostKeyPrefix, post.ID), post); err != nil {
			return err
		}
		return indexPost(txn, post)
	})
}

// Delete removes a post together with its comments
func (r *BadgerPostRepository) Delete(id int) error {
	return txnError(r.db.Update(func(txn *badger.Txn) error {
		return deletePostTx(txn, id)
	}))
}

func (r *BadgerPostRepository) listByIndex(prefix []byte) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		posts, err = loadPostsByIndex(txn, prefix)
		return err
	})
	if err != nil {
		return nil, err
	}
	sortPostsNewestFirst(posts)
	return posts, nil
}

func loadPostsByIndex(txn *badger.Txn, prefix []byte) ([]*models.Post, error) {
	ids, err := idsWithPrefix(txn, prefix)
	if err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		var post models.Post
		if err := getEntity(txn, idKey(PostKeyPrefix, id), &post); err != nil {
			return nil, fmt.Errorf("index points at post %d: %w", id, err)
		}
		posts = append(posts, &post)
	}
	return posts, nil
}

func indexPost(txn *badger.Txn, post *models.Post) error {
	if err := txn.Set(idKey(postByAuthorPrefix, post.AuthorID, post.ID), nil); err != nil {
		return err
	}
	if post.GroupID != nil {
		return txn.Set(idKey(postByGroupPrefix, *post.GroupID, post.ID), nil)
	}
	return nil
}

func requireUser(txn *badger.Txn, id int) error {
	ok, err := exists(txn, idKey(UserKeyPrefix, id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// requireGroup reports an unknown group as a form error on the group field.
func requireGroup(txn *badger.Txn, id *int) error {
	if id == nil {
		return nil
	}
	ok, err := exists(txn, idKey(GroupKeyPrefix, *id))
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NewValidation("group", "Select a valid choice. That choice is not one of the available choices.")
	}
	return nil
}
