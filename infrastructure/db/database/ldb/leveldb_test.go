package ldb

import (
	"bytes"
	"testing"

	"github.com/ringnet/ringd/infrastructure/db/database"
)

func prepareDatabaseForTest(t *testing.T, testName string) (ldb *LevelDB, teardownFunc func()) {
	path := t.TempDir()
	ldb, err := NewLevelDB(path, 8)
	if err != nil {
		t.Fatalf("%s: NewLevelDB unexpectedly failed: %+v", testName, err)
	}
	teardownFunc = func() {
		err = ldb.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %+v", testName, err)
		}
	}
	return ldb, teardownFunc
}

func TestLevelDBSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestLevelDBSanity")
	defer teardownFunc()

	key := database.MakeBucket([]byte("outputs")).Key([]byte("key"))
	putData := []byte("Hello world!")
	err := ldb.Put(key, putData)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Put returned unexpected error: %+v", err)
	}

	getData, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Get returned unexpected error: %+v", err)
	}
	if !bytes.Equal(getData, putData) {
		t.Fatalf("TestLevelDBSanity: get data and put data are not equal. Put: %s, got: %s",
			string(putData), string(getData))
	}

	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Delete returned unexpected error: %+v", err)
	}
	exists, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("TestLevelDBSanity: Has returned unexpected error: %+v", err)
	}
	if exists {
		t.Fatalf("TestLevelDBSanity: the key still exists after Delete")
	}
	_, err = ldb.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestLevelDBSanity: expected ErrNotFound from Get, got: %+v", err)
	}
}

func TestTransactionCommitAndRollback(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestTransactionCommitAndRollback")
	defer teardownFunc()

	bucket := database.MakeBucket([]byte("keyimages"))
	committedKey := bucket.Key([]byte("committed"))
	rolledBackKey := bucket.Key([]byte("rolledback"))

	dbTx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	err = dbTx.Put(committedKey, []byte{1})
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}

	// Writes are not visible before the transaction is committed
	exists, err := ldb.Has(committedKey)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if exists {
		t.Fatalf("An uncommitted write is visible outside its transaction")
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("Commit: %+v", err)
	}
	exists, err = ldb.Has(committedKey)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if !exists {
		t.Fatalf("A committed write is not visible")
	}

	dbTx, err = ldb.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	err = dbTx.Put(rolledBackKey, []byte{1})
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}
	err = dbTx.Rollback()
	if err != nil {
		t.Fatalf("Rollback: %+v", err)
	}
	err = dbTx.RollbackUnlessClosed()
	if err != nil {
		t.Fatalf("RollbackUnlessClosed: %+v", err)
	}
	err = dbTx.Put(rolledBackKey, []byte{1})
	if err == nil {
		t.Fatalf("Put into a closed transaction unexpectedly succeeded")
	}
	exists, err = ldb.Has(rolledBackKey)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if exists {
		t.Fatalf("A rolled back write is visible")
	}
}
