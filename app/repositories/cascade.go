package repositories

import (
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

// The helpers below run inside a caller's transaction so that each cascade
// commits or fails as a whole.

func deletePostTx(txn *badger.Txn, id int) error {
	var post models.Post
	if err := getEntity(txn, idKey(PostKeyPrefix, id), &post); err != nil {
		return err
	}

	for _, key := range keysWithPrefix(txn, scanPrefix(CommentKeyPrefix, id)) {
		var comment models.Comment
		if err := getEntity(txn, key, &comment); err != nil {
			return err
		}
		if err := txn.Delete(idKey(commentByAuthorPrefix, comment.AuthorID, id, comment.ID)); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
	}

	if err := txn.Delete(idKey(postByAuthorPrefix, post.AuthorID, id)); err != nil {
		return err
	}
	if post.GroupID != nil {
		if err := txn.Delete(idKey(postByGroupPrefix, *post.GroupID, id)); err != nil {
			return err
		}
	}
	return txn.Delete(idKey(PostKeyPrefix, id))
}

func deleteFollowTx(txn *badger.Txn, userID, authorID int) error {
	key := idKey(FollowKeyPrefix, userID, authorID)
	ok, err := exists(txn, key)
	if err != nil || !ok {
		return err
	}
	if err := txn.Delete(idKey(followerPrefix, authorID, userID)); err != nil {
		return err
	}
	return txn.Delete(key)
}

func deleteUserTx(txn *badger.Txn, id int) error {
	var user models.User
	if err := getEntity(txn, idKey(UserKeyPrefix, id), &user); err != nil {
		return err
	}

	postIDs, err := idsWithPrefix(txn, scanPrefix(postByAuthorPrefix, id))
	if err != nil {
		return err
	}
	for _, postID := range postIDs {
		if err := deletePostTx(txn, postID); err != nil {
			return err
		}
	}

	// Comments left on other people's posts. The index key carries
	// <author>:<post>:<comment>; the post cascade above may already have
	// removed some of them.
	for _, key := range keysWithPrefix(txn, scanPrefix(commentByAuthorPrefix, id)) {
		postID, commentID, err := postAndCommentIDs(key)
		if err != nil {
			return err
		}
		if err := txn.Delete(idKey(CommentKeyPrefix, postID, commentID)); err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
	}

	authorIDs, err := idsWithPrefix(txn, scanPrefix(FollowKeyPrefix, id))
	if err != nil {
		return err
	}
	for _, authorID := range authorIDs {
		if err := deleteFollowTx(txn, id, authorID); err != nil {
			return err
		}
	}
	followerIDs, err := idsWithPrefix(txn, scanPrefix(followerPrefix, id))
	if err != nil {
		return err
	}
	for _, followerID := range followerIDs {
		if err := deleteFollowTx(txn, followerID, id); err != nil {
			return err
		}
	}

	if err := txn.Delete(nameKey(userNamePrefix, user.Username)); err != nil {
		return err
	}
	return txn.Delete(idKey(UserKeyPrefix, id))
}

func postAndCommentIDs(indexKey []byte) (int, int, error) {
	commentID, err := trailingID(indexKey)
	if err != nil {
		return 0, 0, err
	}
	rest := indexKey[:len(indexKey)-11] // drop ":<10 digits>"
	postID, err := trailingID(rest)
	if err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}
