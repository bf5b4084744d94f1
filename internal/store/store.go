// Package store persists a hub.Snapshot to a single-file BoltDB database,
// grounded on cuemby-warren's pkg/storage/boltdb.go bucket-per-kind layout.
// Since a hub.Snapshot is one value rather than a keyed collection, the
// snapshot bucket holds a single fixed key, gob-encoded rather than
// JSON-encoded so the array-shaped Principal and byte-slice Field values
// round-trip without custom marshaling.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"

	hub "github.com/seniorjoinu/ic-event-hub"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketSnapshot = []byte("snapshot")
	keySnapshot    = []byte("current")
)

// Store is a BoltDB-backed holder of a single hub.Snapshot, used to persist
// and restore an EventHub's state across process restarts (standing in for
// the actor runtime's pre/post-upgrade hooks).
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the BoltDB file at path and ensures
// the snapshot bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshot)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save gob-encodes snap and writes it under the fixed snapshot key,
// replacing whatever was previously saved.
func (s *Store) Save(snap hub.Snapshot) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("store: encoding snapshot: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshot)
		return b.Put(keySnapshot, buf.Bytes())
	})
}

// Load reads and gob-decodes the saved snapshot. ok is false if nothing has
// ever been saved, distinguishing an empty hub from a fresh database file.
func (s *Store) Load() (snap hub.Snapshot, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshot)
		data := b.Get(keySnapshot)
		if data == nil {
			return nil
		}
		ok = true
		return gob.NewDecoder(bytes.NewReader(data)).Decode(&snap)
	})
	if err != nil {
		return hub.Snapshot{}, false, fmt.Errorf("store: loading snapshot: %w", err)
	}
	return snap, ok, nil
}
