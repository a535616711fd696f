// Package store keeps published viewer configurations in a local bolt
// key-value database.
package store

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned when a key is not present in a bucket.
var ErrNotFound = errors.New("not found")

// KVPair is a set of key-value pair.
type KVPair struct {
	Key   []byte
	Value []byte
}

// KVStore provides interface to interact with a local database for
// bookkeeping configuration revisions.
type KVStore struct {
	Path  string
	mutex sync.Mutex
	db    *bolt.DB
}

// Connect establishes the bolt db connection.
func (s *KVStore) Connect() (err error) {
	if s.db != nil {
		return nil
	}

	if s.db, err = bolt.Open(s.Path, 0600, nil); err != nil {
		return errors.Wrapf(err, "cannot connect bolt db %s", s.Path)
	}
	return nil
}

// Disconnect closes the bolt db connection.
func (s *KVStore) Disconnect() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Init initialize given buckets in the BOLT key-value store.
func (s *KVStore) Init(buckets []string) error {

	if s.db == nil {
		return errors.New("no connected db")
	}

	// initialize buckets if they don't exist
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, bucket := range buckets {
		if err := s.db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			if err != nil {
				return errors.Wrap(err, "create bucket")
			}
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a value of the given key within the given bucket
// in the bolt database.
func (s *KVStore) Get(bucket string, key []byte) ([]byte, error) {

	if s.db == nil {
		return nil, errors.New("no connected db")
	}

	var v []byte

	if err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return errors.Errorf("bucket %s not initialized", bucket)
		}
		if bv := b.Get(key); bv != nil {
			// values are only valid within the transaction
			v = append([]byte(nil), bv...)
			return nil
		}
		return errors.Wrapf(ErrNotFound, "key %x in bucket %s", key, bucket)
	}); err != nil {
		return nil, err
	}

	return v, nil
}

// GetAll retrieves all key-value pairs from a bucket, in key order.
func (s *KVStore) GetAll(bucket string) ([]KVPair, error) {

	if s.db == nil {
		return nil, errors.New("no connected db")
	}

	var data []KVPair

	if err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return errors.Errorf("bucket %s not initialized", bucket)
		}
		c := b.Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			data = append(data, KVPair{
				Key:   append([]byte(nil), k...),
				Value: append([]byte(nil), v...),
			})
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return data, nil
}

// Last returns the key-value pair with the largest key in the bucket.
func (s *KVStore) Last(bucket string) (*KVPair, error) {

	if s.db == nil {
		return nil, errors.New("no connected db")
	}

	var kv *KVPair

	if err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return errors.Errorf("bucket %s not initialized", bucket)
		}
		k, v := b.Cursor().Last()
		if k == nil {
			return errors.Wrapf(ErrNotFound, "bucket %s is empty", bucket)
		}
		kv = &KVPair{
			Key:   append([]byte(nil), k...),
			Value: append([]byte(nil), v...),
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return kv, nil
}

// Set insert/update a key-value pair in the given bucket.
func (s *KVStore) Set(bucket string, key []byte, value []byte) error {

	if s.db == nil {
		return errors.New("no connected db")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return errors.Errorf("bucket %s not initialized", bucket)
		}
		return b.Put(key, value)
	})
}

// Append stores `value` under the next sequence number of the bucket and
// returns that number. Keys are big-endian so that cursor order is
// insertion order.
//
// The function `value` is called within the write transaction with the
// assigned sequence number; returning an error aborts the append.
func (s *KVStore) Append(bucket string, value func(seq uint64) ([]byte, error)) (uint64, error) {

	if s.db == nil {
		return 0, errors.New("no connected db")
	}

	var seq uint64

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return errors.Errorf("bucket %s not initialized", bucket)
		}

		var err error
		if seq, err = b.NextSequence(); err != nil {
			return err
		}

		v, err := value(seq)
		if err != nil {
			return err
		}
		return b.Put(SeqKey(seq), v)
	}); err != nil {
		return 0, err
	}

	return seq, nil
}

// SeqKey encodes a sequence number as a bucket key.
func SeqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
