package store

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/encoding/json"
	bolt "go.etcd.io/bbolt"
)

var bucketScenes = []byte("scenes")

// Bolt is a Store backed by a bbolt database file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the database at path.
func OpenBolt(path string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, wrap("open", fmt.Errorf("creating store directory: %w", err))
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, wrap("open", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketScenes)
		return err
	})
	if err != nil {
		db.Close()
		return nil, wrap("open", err)
	}
	return &Bolt{db: db}, nil
}

// Path returns the database file path.
func (s *Bolt) Path() string {
	return s.db.Path()
}

// Put stores data under a new sequence id.
func (s *Bolt) Put(ctx context.Context, name string, data []byte) (ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrap("put", err)
	}

	var id ID
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketScenes)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id = ID(seq)

		val, err := json.Marshal(Record{ID: id, Name: name, Data: data})
		if err != nil {
			return err
		}
		return b.Put(key(id), val)
	})
	if err != nil {
		return 0, wrap("put", err)
	}
	return id, nil
}

// Get loads the record stored under id.
func (s *Bolt) Get(ctx context.Context, id ID) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, wrap("get", err)
	}

	var rec Record
	err := s.db.View(func(tx *bolt.Tx) error {
		val := tx.Bucket(bucketScenes).Get(key(id))
		if val == nil {
			return ErrNotFound
		}
		// val is only valid inside the transaction; Unmarshal copies it.
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return Record{}, wrap("get", err)
	}
	return rec, nil
}

// Clear drops every record. The id sequence is kept so ids are not reused.
func (s *Bolt) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return wrap("clear", err)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketScenes)
		seq := b.Sequence()
		if err := tx.DeleteBucket(bucketScenes); err != nil {
			return err
		}
		nb, err := tx.CreateBucket(bucketScenes)
		if err != nil {
			return err
		}
		return nb.SetSequence(seq)
	})
	return wrap("clear", err)
}

// Close closes the database file.
func (s *Bolt) Close() error {
	return wrap("close", s.db.Close())
}

func key(id ID) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}
