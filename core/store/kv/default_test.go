package kv

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoltDB(t *testing.T) {
	db, clean := makeDB(t)
	defer clean()

	committed := false

	err := db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate([]byte("test"))
		require.NoError(t, err)

		tx.OnCommit(func() { committed = true })

		require.NoError(t, bucket.Set([]byte("ping"), []byte("pong")))
		require.NoError(t, bucket.Set([]byte("pang"), []byte("pung")))

		return nil
	})
	require.NoError(t, err)
	require.True(t, committed)

	err = db.View(func(tx ReadableTx) error {
		require.Nil(t, tx.GetBucket([]byte("unknown")))

		bucket := tx.GetBucket([]byte("test"))
		require.NotNil(t, bucket)

		require.Equal(t, []byte("pong"), bucket.Get([]byte("ping")))
		require.Nil(t, bucket.Get([]byte("unknown")))

		count := 0
		err := bucket.ForEach(func(k, v []byte) error {
			count++
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, count)

		return nil
	})
	require.NoError(t, err)

	err = db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate([]byte("test"))
		require.NoError(t, err)

		return bucket.Delete([]byte("ping"))
	})
	require.NoError(t, err)

	err = db.View(func(tx ReadableTx) error {
		require.Nil(t, tx.GetBucket([]byte("test")).Get([]byte("ping")))

		return nil
	})
	require.NoError(t, err)
}

func TestBoltBucket_Scan(t *testing.T) {
	db, clean := makeDB(t)
	defer clean()

	err := db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate([]byte("test"))
		require.NoError(t, err)

		require.NoError(t, bucket.Set([]byte("bid:b"), []byte{2}))
		require.NoError(t, bucket.Set([]byte("bid:a"), []byte{1}))
		require.NoError(t, bucket.Set([]byte("meta"), []byte{3}))

		keys := [][]byte{}
		err = bucket.Scan([]byte("bid:"), func(k, v []byte) error {
			keys = append(keys, append([]byte{}, k...))
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, [][]byte{[]byte("bid:a"), []byte("bid:b")}, keys)

		return nil
	})
	require.NoError(t, err)
}

func TestBucketSnapshot(t *testing.T) {
	db, clean := makeDB(t)
	defer clean()

	err := db.Update(func(tx WritableTx) error {
		bucket, err := tx.GetBucketOrCreate([]byte("test"))
		require.NoError(t, err)

		snap := NewSnapshot(bucket)

		require.NoError(t, snap.Set([]byte("ping"), []byte("pong")))

		value, err := snap.Get([]byte("ping"))
		require.NoError(t, err)
		require.Equal(t, []byte("pong"), value)

		value, err = snap.Get([]byte("unknown"))
		require.NoError(t, err)
		require.Nil(t, value)

		require.NoError(t, snap.Delete([]byte("ping")))

		value, err = snap.Get([]byte("ping"))
		require.NoError(t, err)
		require.Nil(t, value)

		return nil
	})
	require.NoError(t, err)
}

// -----------------------------------------------------------------------------
// Utility functions

func makeDB(t *testing.T) (DB, func()) {
	dir, err := ioutil.TempDir(os.TempDir(), "gavel-kv")
	require.NoError(t, err)

	db, err := New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	return db, func() {
		db.Close()
		os.RemoveAll(dir)
	}
}
