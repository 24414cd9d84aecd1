package repositories

import (
	"fmt"

	"yatube/app/apperr"
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFollowRepository implements FollowRepository using BadgerDB.
// The primary key is follow:<user>:<author>, which makes the pair unique;
// idx:follow:author:<author>:<user> answers follower counts.
type BadgerFollowRepository struct {
	db *badger.DB
}

// NewBadgerFollowRepository creates a new BadgerDB-backed follow repository
func NewBadgerFollowRepository(db *badger.DB) *BadgerFollowRepository {
	return &BadgerFollowRepository{db: db}
}

// Create stores the edge or fails with apperr.ErrConflict if it exists,
// including when a concurrent transaction wrote it first.
func (r *BadgerFollowRepository) Create(follow *models.Follow) error {
	follow.BeforeCreate()
	if err := follow.Validate(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		key := idKey(FollowKeyPrefix, follow.UserID, follow.AuthorID)
		ok, err := exists(txn, key)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("user %d already follows %d: %w", follow.UserID, follow.AuthorID, apperr.ErrConflict)
		}
		if err := requireUser(txn, follow.UserID); err != nil {
			return err
		}
		if err := requireUser(txn, follow.AuthorID); err != nil {
			return err
		}

		id, err := getNextID(txn, FollowSeqKey)
		if err != nil {
			return err
		}
		follow.ID = id

		if err := setEntity(txn, key, follow); err != nil {
			return err
		}
		return txn.Set(idKey(followerPrefix, follow.AuthorID, follow.UserID), nil)
	})
	return txnError(err)
}

// Delete removes the edge; a missing edge is not an error.
func (r *BadgerFollowRepository) Delete(userID, authorID int) error {
	return txnError(r.db.Update(func(txn *badger.Txn) error {
		return deleteFollowTx(txn, userID, authorID)
	}))
}

// Exists reports whether userID follows authorID
func (r *BadgerFollowRepository) Exists(userID, authorID int) (bool, error) {
	var ok bool
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ok, err = exists(txn, idKey(FollowKeyPrefix, userID, authorID))
		return err
	})
	return ok, err
}

// ListAuthorIDs returns the ids of the authors userID follows
func (r *BadgerFollowRepository) ListAuthorIDs(userID int) ([]int, error) {
	var ids []int
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ids, err = idsWithPrefix(txn, scanPrefix(FollowKeyPrefix, userID))
		return err
	})
	return ids, err
}

// CountFollowers counts the users following authorID
func (r *BadgerFollowRepository) CountFollowers(authorID int) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, scanPrefix(followerPrefix, authorID))
		return nil
	})
	return n, err
}

// CountFollowing counts the authors userID follows
func (r *BadgerFollowRepository) CountFollowing(userID int) (int, error) {
	var n int
	err := r.db.View(func(txn *badger.Txn) error {
		n = countPrefix(txn, scanPrefix(FollowKeyPrefix, userID))
		return nil
	})
	return n, err
}
