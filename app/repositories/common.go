package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"yatube/app/apperr"
	"yatube/app/models"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"
	FollowKeyPrefix  = "follow:"
	GroupKeyPrefix   = "group:"
	UserKeyPrefix    = "user:"

	// Secondary indexes; the value is empty unless noted
	postByAuthorPrefix    = "idx:post:author:"
	postByGroupPrefix     = "idx:post:group:"
	commentByAuthorPrefix = "idx:comment:author:"
	followerPrefix        = "idx:follow:author:"
	groupSlugPrefix       = "idx:group:slug:" // value: group id
	userNamePrefix        = "idx:user:name:"  // value: user id

	// Sequence keys for auto-incrementing IDs
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
	FollowSeqKey  = "seq:follow"
	GroupSeqKey   = "seq:group"
	UserSeqKey    = "seq:user"
)

// ErrNotFound is kept here so callers of the store need not import apperr.
var ErrNotFound = apperr.ErrNotFound

// idKey builds prefix + zero-padded ids joined by ':' so that lexical key
// order matches numeric order.
func idKey(prefix string, ids ...int) []byte {
	var b strings.Builder
	b.WriteString(prefix)
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%010d", id)
	}
	return []byte(b.String())
}

// scanPrefix is idKey with a trailing separator, for iterating children.
func scanPrefix(prefix string, ids ...int) []byte {
	return append(idKey(prefix, ids...), ':')
}

func nameKey(prefix, name string) []byte {
	return []byte(prefix + name)
}

// trailingID parses the last ':'-separated segment of a key.
func trailingID(key []byte) (int, error) {
	s := string(key)
	i := strings.LastIndexByte(s, ':')
	id, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return 0, fmt.Errorf("malformed key %q: %v", s, err)
	}
	return id, nil
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %v", err)
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("failed to parse sequence %q", seqKey)
			}
			id = binary.BigEndian.Uint64(val) + 1
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	// Store new ID
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	if err := txn.Set([]byte(seqKey), buf[:]); err != nil {
		return 0, fmt.Errorf("failed to update sequence: %v", err)
	}

	return int(id), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %v", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %v", err)
	}
	return nil
}

// getEntity loads key into entity, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// keysWithPrefix returns copies of every key under prefix without loading values.
func keysWithPrefix(txn *badger.Txn, prefix []byte) [][]byte {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys
}

func countPrefix(txn *badger.Txn, prefix []byte) int {
	return len(keysWithPrefix(txn, prefix))
}

// idsWithPrefix returns the trailing id of every index key under prefix.
func idsWithPrefix(txn *badger.Txn, prefix []byte) ([]int, error) {
	keys := keysWithPrefix(txn, prefix)
	ids := make([]int, 0, len(keys))
	for _, k := range keys {
		id, err := trailingID(k)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// txnError maps badger's optimistic-concurrency failure to apperr.ErrConflict.
func txnError(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("concurrent write: %w", apperr.ErrConflict)
	}
	return err
}

// updateWithRetry reruns fn when a concurrent sequence bump made the commit
// conflict. Only used where a retry cannot violate a uniqueness rule.
func updateWithRetry(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return txnError(err)
}

// sortPostsNewestFirst orders by CreatedAt descending, newest id first on ties.
func sortPostsNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}

func sortCommentsNewestFirst(comments []*models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
}
