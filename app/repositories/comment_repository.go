package repositories

import (
	"fmt"

	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerDB-backed comment repository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create stores a comment under its post. The post and the author must exist.
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return err
	}

	return updateWithRetry(r.db, func(txn *badger.Txn) error {
		ok, err := exists(txn, idKey(PostKeyPrefix, comment.PostID))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("post %d: %w", comment.PostID, ErrNotFound)
		}
		if err := requireUser(txn, comment.AuthorID); err != nil {
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id

		if err := setEntity(txn, idKey(CommentKeyPrefix, comment.PostID, comment.ID), comment); err != nil {
			return err
		}
		return txn.Set(idKey(commentByAuthorPrefix, comment.AuthorID, comment.PostID, comment.ID), nil)
	})
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := scanPrefix(CommentKeyPrefix, postID)
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return err
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortCommentsNewestFirst(comments)
	return comments, nil
}
