package kv

import (
	"github.com/gavelchain/gavel/core/store"
	"golang.org/x/xerrors"
)

// BucketSnapshot exposes a database bucket as a store snapshot so that a
// contract can be executed directly inside a database transaction. The
// atomicity of the snapshot is then the atomicity of the enclosing
// transaction.
//
// - implements store.Snapshot
type bucketSnapshot struct {
	bucket Bucket
}

// NewSnapshot returns a store snapshot backed by the given bucket.
func NewSnapshot(bucket Bucket) store.Snapshot {
	return bucketSnapshot{bucket: bucket}
}

// Get implements store.Readable. It returns the value of the key, or nil
// if it is not set.
func (snap bucketSnapshot) Get(key []byte) ([]byte, error) {
	return snap.bucket.Get(key), nil
}

// Set implements store.Writable. It stores the value by its key.
func (snap bucketSnapshot) Set(key, value []byte) error {
	err := snap.bucket.Set(key, value)
	if err != nil {
		return xerrors.Errorf("failed to set key: %v", err)
	}

	return nil
}

// Delete implements store.Writable. It removes the key from the bucket.
func (snap bucketSnapshot) Delete(key []byte) error {
	err := snap.bucket.Delete(key)
	if err != nil {
		return xerrors.Errorf("failed to delete key: %v", err)
	}

	return nil
}
