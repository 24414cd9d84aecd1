package repositories

import (
	"fmt"
	"strconv"

	"yatube/app/apperr"
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerDB-backed user repository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create stores an account; usernames are unique.
func (r *BadgerUserRepository) Create(user *models.User) error {
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		nk := nameKey(userNamePrefix, user.Username)
		taken, err := exists(txn, nk)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("username %q: %w", user.Username, apperr.ErrConflict)
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		if err := setEntity(txn, idKey(UserKeyPrefix, user.ID), user); err != nil {
			return err
		}
		return txn.Set(nk, []byte(strconv.Itoa(user.ID)))
	})
	return txnError(err)
}

// GetByID retrieves an account by its ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves an account through the username index
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupName(txn, nameKey(userNamePrefix, username))
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(UserKeyPrefix, id), &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update rewrites email, password hash and staff flag. Username and
// creation time are fixed.
func (r *BadgerUserRepository) Update(user *models.User) error {
	return txnError(r.db.Update(func(txn *badger.Txn) error {
		var existing models.User
		if err := getEntity(txn, idKey(UserKeyPrefix, user.ID), &existing); err != nil {
			return err
		}
		user.Username = existing.Username
		user.CreatedAt = existing.CreatedAt
		if err := user.Validate(); err != nil {
			return err
		}
		return setEntity(txn, idKey(UserKeyPrefix, user.ID), user)
	}))
}

// Delete removes the account with its posts, their comments, the comments
// it wrote elsewhere and every follow edge it takes part in.
func (r *BadgerUserRepository) Delete(id int) error {
	return txnError(r.db.Update(func(txn *badger.Txn) error {
		return deleteUserTx(txn, id)
	}))
}
