package repositories

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Options controls how the badger database is opened.
type Options struct {
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// Repository owns the badger handle and hands out the per-entity stores
// that share it.
type Repository struct {
	db       *badger.DB
	mutex    sync.RWMutex
	dbPath   string
	isTestDB bool

	posts    *BadgerPostRepository
	comments *BadgerCommentRepository
	follows  *BadgerFollowRepository
	groups   *BadgerGroupRepository
	users    *BadgerUserRepository
}

// NewRepository opens a database at path. An empty path or "test_db"
// opens an isolated temporary database that is removed on Close.
func NewRepository(path string) (*Repository, error) {
	isTest := false
	if path == "" || path == "test_db" {
		tempPath, err := os.MkdirTemp("", "yatube_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %v", err)
		}
		path = tempPath
		isTest = true
	}
	r, err := Open(Options{Path: path})
	if err != nil {
		return nil, err
	}
	r.isTestDB = isTest
	return r, nil
}

// Open opens the database described by opts.
func Open(opts Options) (*Repository, error) {
	bopts := badger.DefaultOptions(opts.Path).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1).
		WithNumGoroutines(1)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if opts.Logger != nil {
		bopts = bopts.WithLogger(newBadgerLogger(opts.Logger))
	} else {
		bopts = bopts.WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}
	return newRepository(db, opts.Path), nil
}

// NewFromDB wraps an already open database. Used by tests.
func NewFromDB(db *badger.DB) *Repository {
	return newRepository(db, "")
}

func newRepository(db *badger.DB, path string) *Repository {
	return &Repository{
		db:       db,
		dbPath:   path,
		posts:    NewBadgerPostRepository(db),
		comments: NewBadgerCommentRepository(db),
		follows:  NewBadgerFollowRepository(db),
		groups:   NewBadgerGroupRepository(db),
		users:    NewBadgerUserRepository(db),
	}
}

func (r *Repository) DB() *badger.DB                     { return r.db }
func (r *Repository) Posts() *BadgerPostRepository       { return r.posts }
func (r *Repository) Comments() *BadgerCommentRepository { return r.comments }
func (r *Repository) Follows() *BadgerFollowRepository   { return r.follows }
func (r *Repository) Groups() *BadgerGroupRepository     { return r.groups }
func (r *Repository) Users() *BadgerUserRepository       { return r.users }

// Clear drops every key, sequences included.
func (r *Repository) Clear() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.db.DropAll(); err != nil {
		return fmt.Errorf("failed to drop all keys: %v", err)
	}
	return nil
}

// Backup writes a full dump of the database to w.
func (r *Repository) Backup(w io.Writer) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if _, err := r.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup failed: %v", err)
	}
	return nil
}

// Restore loads a dump produced by Backup.
func (r *Repository) Restore(rd io.Reader) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.db.Load(rd, 4); err != nil {
		return fmt.Errorf("restore failed: %v", err)
	}
	return nil
}

func (r *Repository) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.db.Close(); err != nil {
		return err
	}

	// Clean up test database
	if r.isTestDB {
		if err := os.RemoveAll(r.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %v", err)
		}
	}
	return nil
}

// badgerLogger routes badger's internal logging into zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func newBadgerLogger(l *zap.Logger) *badgerLogger {
	return &badgerLogger{s: l.Named("badger").Sugar()}
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.s.Infof(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
