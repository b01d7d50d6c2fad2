package repository

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/andres10976/keyword-service/internal/model"
)

var keywordsBucket = []byte("keywords")

// Bolt stores one JSON record per key in a bbolt bucket. Keys are the
// bucket sequence encoded big-endian, so cursor order is insertion order.
type Bolt struct {
	db *bolt.DB
}

func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(keywordsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) All(_ context.Context) ([]model.Keyword, error) {
	keywords := []model.Keyword{}
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(keywordsBucket).ForEach(func(k, v []byte) error {
			var kw model.Keyword
			if err := json.Unmarshal(v, &kw); err != nil {
				return fmt.Errorf("decode record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			keywords = append(keywords, kw)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keywords, nil
}

func (b *Bolt) Append(_ context.Context, kw model.Keyword) error {
	value, err := json.Marshal(kw)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(keywordsBucket)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		return bucket.Put(sequenceKey(seq), value)
	})
}

func (b *Bolt) Replace(_ context.Context, pos int, kw model.Keyword) error {
	value, err := json.Marshal(kw)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(keywordsBucket)
		c := bucket.Cursor()
		i := 0
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if i == pos {
				// Copy: k is only valid for the life of the transaction and
				// Put may reuse its page.
				key := append([]byte(nil), k...)
				return bucket.Put(key, value)
			}
			i++
		}
		return fmt.Errorf("position %d out of range [0,%d)", pos, i)
	})
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
