package repositories

import (
	"fmt"
	"sort"
	"strconv"

	"yatube/app/apperr"
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGroupRepository implements GroupRepository using BadgerDB
type BadgerGroupRepository struct {
	db *badger.DB
}

// NewBadgerGroupRepository creates a new BadgerDB-backed group repository
func NewBadgerGroupRepository(db *badger.DB) *BadgerGroupRepository {
	return &BadgerGroupRepository{db: db}
}

// Create stores a group; the slug must be unused.
func (r *BadgerGroupRepository) Create(group *models.Group) error {
	group.BeforeCreate()
	if err := group.Validate(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		slugKey := nameKey(groupSlugPrefix, group.Slug)
		taken, err := exists(txn, slugKey)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("group slug %q: %w", group.Slug, apperr.ErrConflict)
		}

		id, err := getNextID(txn, GroupSeqKey)
		if err != nil {
			return err
		}
		group.ID = id

		if err := setEntity(txn, idKey(GroupKeyPrefix, group.ID), group); err != nil {
			return err
		}
		return txn.Set(slugKey, []byte(strconv.Itoa(group.ID)))
	})
	return txnError(err)
}

// GetByID retrieves a group by its ID
func (r *BadgerGroupRepository) GetByID(id int) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetBySlug retrieves a group through the slug index
func (r *BadgerGroupRepository) GetBySlug(slug string) (*models.Group, error) {
	var group models.Group
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupName(txn, nameKey(groupSlugPrefix, slug))
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(GroupKeyPrefix, id), &group)
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns every group ordered by title
func (r *BadgerGroupRepository) List() ([]*models.Group, error) {
	groups := []*models.Group{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(GroupKeyPrefix)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var group models.Group
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &group)
			})
			if err != nil {
				return err
			}
			groups = append(groups, &group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

// Update rewrites title and description. The slug is fixed at creation.
func (r *BadgerGroupRepository) Update(group *models.Group) error {
	return txnError(r.db.Update(func(txn *badger.Txn) error {
		var existing models.Group
		if err := getEntity(txn, idKey(GroupKeyPrefix, group.ID), &existing); err != nil {
			return err
		}
		group.Slug = existing.Slug
		group.BeforeCreate()
		if err := group.Validate(); err != nil {
			return err
		}
		return setEntity(txn, idKey(GroupKeyPrefix, group.ID), group)
	}))
}

// Delete removes the group and untags its posts; the posts themselves stay.
func (r *BadgerGroupRepository) Delete(id int) error {
	return txnError(r.db.Update(func(txn *badger.Txn) error {
		var group models.Group
		if err := getEntity(txn, idKey(GroupKeyPrefix, id), &group); err != nil {
			return err
		}

		postIDs, err := idsWithPrefix(txn, scanPrefix(postByGroupPrefix, id))
		if err != nil {
			return err
		}
		for _, postID := range postIDs {
			var post models.Post
			if err := getEntity(txn, idKey(PostKeyPrefix, postID), &post); err != nil {
				return err
			}
			post.GroupID = nil
			if err := setEntity(txn, idKey(PostKeyPrefix, postID), &post); err != nil {
				return err
			}
			if err := txn.Delete(idKey(postByGroupPrefix, id, postID)); err != nil {
				return err
			}
		}

		if err := txn.Delete(nameKey(groupSlugPrefix, group.Slug)); err != nil {
			return err
		}
		return txn.Delete(idKey(GroupKeyPrefix, id))
	}))
}

// lookupName resolves a unique-name index entry to the id it stores.
func lookupName(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, err
}
