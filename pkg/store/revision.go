package store

import (
	"encoding/json"
	"time"

	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/pkg/errors"
)

const bucketRevisions = "revisions"

// Revision is a published viewer configuration.
type Revision struct {
	Seq       uint64        `json:"seq"`
	Digest    string        `json:"digest"`
	CreatedAt time.Time     `json:"createdAt"`
	Config    viewer.Config `json:"config"`
}

// Revisions records the history of published viewer configurations.
type Revisions struct {
	kv *KVStore
}

// OpenRevisions connects to the bolt database at `path` and prepares it for
// revision bookkeeping.
func OpenRevisions(path string) (*Revisions, error) {
	kv := &KVStore{Path: path}
	if err := kv.Connect(); err != nil {
		return nil, err
	}
	if err := kv.Init([]string{bucketRevisions}); err != nil {
		kv.Disconnect()
		return nil, err
	}
	return &Revisions{kv: kv}, nil
}

// Close releases the database.
func (r *Revisions) Close() error {
	return r.kv.Disconnect()
}

// Record stores `cfg` as a new revision unless it renders identically to
// the latest one. The returned bool tells whether a revision was added; in
// both cases the returned Revision is the latest.
func (r *Revisions) Record(cfg viewer.Config) (Revision, bool, error) {

	digest := cfg.Digest()

	latest, err := r.Latest()
	switch {
	case err == nil && latest.Digest == digest:
		return latest, false, nil
	case err != nil && errors.Cause(err) != ErrNotFound:
		return Revision{}, false, err
	}

	rev := Revision{
		Digest:    digest,
		CreatedAt: time.Now().UTC(),
		Config:    cfg.Normalize(),
	}

	if _, err := r.kv.Append(bucketRevisions, func(seq uint64) ([]byte, error) {
		rev.Seq = seq
		return json.Marshal(rev)
	}); err != nil {
		return Revision{}, false, errors.Wrap(err, "cannot record revision")
	}

	return rev, true, nil
}

// Latest returns the most recent revision, or an error wrapping ErrNotFound.
func (r *Revisions) Latest() (Revision, error) {
	kv, err := r.kv.Last(bucketRevisions)
	if err != nil {
		return Revision{}, err
	}
	return unmarshalRevision(kv.Value)
}

// Get returns the revision with sequence number `seq`.
func (r *Revisions) Get(seq uint64) (Revision, error) {
	v, err := r.kv.Get(bucketRevisions, SeqKey(seq))
	if err != nil {
		return Revision{}, err
	}
	return unmarshalRevision(v)
}

// List returns all revisions, oldest first.
func (r *Revisions) List() ([]Revision, error) {
	kvs, err := r.kv.GetAll(bucketRevisions)
	if err != nil {
		return nil, err
	}

	revs := make([]Revision, 0, len(kvs))
	for _, kv := range kvs {
		rev, err := unmarshalRevision(kv.Value)
		if err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	return revs, nil
}

func unmarshalRevision(v []byte) (Revision, error) {
	var rev Revision
	if err := json.Unmarshal(v, &rev); err != nil {
		return Revision{}, errors.Wrap(err, "corrupted revision")
	}
	rev.Config = rev.Config.Normalize()
	return rev, nil
}
