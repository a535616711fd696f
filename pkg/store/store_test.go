package store

import (
	"path/filepath"
	"testing"

	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

func TestKVStoreSetGet(t *testing.T) {
	store := KVStore{
		Path: filepath.Join(t.TempDir(), "testKVStoreSetGet.db"),
	}

	err := store.Connect()
	if err != nil {
		t.Fatalf("%s", err)
	}
	defer store.Disconnect()

	if err := store.Init([]string{"sources"}); err != nil {
		t.Fatalf("%s", err)
	}

	if err := store.Set("sources", []byte("dicomweb"), []byte("DCM4CHEE")); err != nil {
		t.Errorf("%s", err)
	}

	v, err := store.Get("sources", []byte("dicomweb"))
	if err != nil {
		t.Errorf("%s", err)
	}
	if string(v) != "DCM4CHEE" {
		t.Errorf("unexpected value: %s", v)
	}

	if _, err := store.Get("sources", []byte("orthanc")); errors.Cause(err) != ErrNotFound {
		t.Errorf("expect ErrNotFound, got %v", err)
	}

	if _, err := store.Get("unknown", []byte("dicomweb")); err == nil {
		t.Errorf("expect error on uninitialized bucket")
	}
}

func TestKVStoreAppend(t *testing.T) {
	store := KVStore{
		Path: filepath.Join(t.TempDir(), "testKVStoreAppend.db"),
	}

	if err := store.Connect(); err != nil {
		t.Fatalf("%s", err)
	}
	defer store.Disconnect()

	if err := store.Init([]string{"log"}); err != nil {
		t.Fatalf("%s", err)
	}

	// more than 255 entries to make sure the key order follows the sequence
	for i := 0; i < 300; i++ {
		seq, err := store.Append("log", func(seq uint64) ([]byte, error) {
			return []byte{byte(seq)}, nil
		})
		if err != nil {
			t.Fatalf("%s", err)
		}
		if seq != uint64(i+1) {
			t.Fatalf("unexpected sequence %d at %d", seq, i)
		}
	}

	kvpairs, err := store.GetAll("log")
	if err != nil {
		t.Fatalf("%s", err)
	}
	if len(kvpairs) != 300 {
		t.Errorf("size mismatch on returned kvpairs: %d", len(kvpairs))
	}

	last, err := store.Last("log")
	if err != nil {
		t.Fatalf("%s", err)
	}
	if string(last.Key) != string(SeqKey(300)) {
		t.Errorf("unexpected last key: %x", last.Key)
	}
}

func TestRevisionsRecord(t *testing.T) {
	revs, err := OpenRevisions(filepath.Join(t.TempDir(), "revisions.db"))
	if err != nil {
		t.Fatalf("%s", err)
	}
	defer revs.Close()

	if _, err := revs.Latest(); errors.Cause(err) != ErrNotFound {
		t.Errorf("expect ErrNotFound on empty history, got %v", err)
	}

	cfg := viewer.Default()

	r1, added, err := revs.Record(cfg)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !added || r1.Seq != 1 {
		t.Errorf("expect first revision to be added: %+v", r1)
	}

	// identical configuration is not recorded twice
	r, added, err := revs.Record(cfg.Clone())
	if err != nil {
		t.Fatalf("%s", err)
	}
	if added || r.Seq != 1 {
		t.Errorf("identical configuration recorded again: seq %d", r.Seq)
	}

	cfg2 := cfg.Clone()
	cfg2.ShowStudyList = false
	r2, added, err := revs.Record(cfg2)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if !added || r2.Seq != 2 {
		t.Errorf("expect second revision to be added: seq %d", r2.Seq)
	}

	list, err := revs.List()
	if err != nil {
		t.Fatalf("%s", err)
	}
	if len(list) != 2 {
		t.Fatalf("expect 2 revisions, got %d", len(list))
	}

	got, err := revs.Get(1)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if diff := cmp.Diff(r1, got); diff != "" {
		t.Errorf("revision mismatch (-want +got):\n%s", diff)
	}

	latest, err := revs.Latest()
	if err != nil {
		t.Fatalf("%s", err)
	}
	if latest.Digest != cfg2.Digest() || latest.Config.ShowStudyList {
		t.Errorf("unexpected latest revision: %+v", latest)
	}
}
