package blobstore

import (
	"context"
	"fmt"

	"yatube/app/apperr"

	"github.com/dgraph-io/badger/v4"
)

const blobKeyPrefix = "blob:"

// BadgerStore keeps blobs in the application database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Put(_ context.Context, data []byte) (string, error) {
	_, ext, err := Validate(data)
	if err != nil {
		return "", err
	}
	path := newPath(ext)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(blobKeyPrefix+path), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store blob: %v", err)
	}
	return path, nil
}

func (s *BadgerStore) Get(_ context.Context, path string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blobKeyPrefix + path))
		if err == badger.ErrKeyNotFound {
			return apperr.ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BadgerStore) Delete(_ context.Context, path string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(blobKeyPrefix + path))
	})
}
