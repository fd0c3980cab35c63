// Package filestore persists collections as gzip-compressed JSON snapshots
// on disk.
//
// Each collection is guarded by its own mutex: a mutation acquires exclusive
// access, applies its change to the in-memory copy, writes the full updated
// collection to a temporary file, and renames it into place before releasing.
// Concurrent creates therefore linearize instead of racing on the
// read-modify-write, and the file on disk is always a complete prior
// snapshot, never a half-written one.
package filestore

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/adventureworks/storefront/internal/domain/identity"
	"github.com/adventureworks/storefront/internal/domain/order"
)

// Store bundles the flat-file collections under one data directory.
type Store struct {
	users  *collection[identity.User]
	orders *collection[order.Order]
}

// Open loads (or initializes) the collections under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}

	s := &Store{
		users:  newCollection[identity.User](filepath.Join(dir, "users.json.gz")),
		orders: newCollection[order.Order](filepath.Join(dir, "orders.json.gz")),
	}

	var g errgroup.Group
	g.Go(s.users.load)
	g.Go(s.orders.load)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s, nil
}

// Users returns the user repository backed by this store.
func (s *Store) Users() *UserRepository {
	return &UserRepository{c: s.users}
}

// Orders returns the order repository backed by this store.
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{c: s.orders}
}

// collection holds one JSON-array file and its in-memory copy.
type collection[T any] struct {
	path string

	mu    sync.RWMutex
	items []T
}

func newCollection[T any](path string) *collection[T] {
	return &collection[T]{path: path}
}

// load reads the snapshot from disk. A missing file is an empty collection.
func (c *collection[T]) load() error {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "open %s", c.path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "gzip reader for %s", c.path)
	}
	defer func() { _ = gz.Close() }()

	var items []T
	if err := json.NewDecoder(gz).Decode(&items); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "decode %s", c.path)
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// update applies fn to the current items under the exclusive lock and
// persists the result before making it visible. When fn or the write fails,
// the in-memory and on-disk state both remain at the prior snapshot.
func (c *collection[T]) update(fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.items)
	if err != nil {
		return err
	}
	if err := c.persist(next); err != nil {
		return err
	}
	c.items = next
	return nil
}

// snapshot returns a copy of the current items.
func (c *collection[T]) snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// persist writes items to a temporary file and renames it over the
// collection path. Callers must hold the exclusive lock.
func (c *collection[T]) persist(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encode %s", c.path)
	}

	tmp := c.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}

	gz := pgzip.NewWriter(f)
	if _, err := gz.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "flush %s", tmp)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		return errors.Wrapf(err, "replace %s", c.path)
	}
	return nil
}
