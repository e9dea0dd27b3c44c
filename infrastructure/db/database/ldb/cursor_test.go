package ldb

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/ringnet/ringd/infrastructure/db/database"
)

func validateCurrentCursorKeyAndValue(t *testing.T, testName string, cursor database.Cursor,
	expectedKey *database.Key, expectedValue []byte) {

	cursorKey, err := cursor.Key()
	if err != nil {
		t.Fatalf("%s: Key unexpectedly failed: %+v", testName, err)
	}
	if !bytes.Equal(cursorKey.Bytes(), expectedKey.Bytes()) {
		t.Fatalf("%s: Key returned wrong key. Want: %s, got: %s",
			testName, expectedKey, cursorKey)
	}
	cursorValue, err := cursor.Value()
	if err != nil {
		t.Fatalf("%s: Value unexpectedly failed for key %s: %+v", testName, cursorKey, err)
	}
	if !bytes.Equal(cursorValue, expectedValue) {
		t.Fatalf("%s: Value returned wrong value for key %s. Want: %s, got: %s",
			testName, cursorKey, string(expectedValue), string(cursorValue))
	}
}

func TestCursorSanity(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorSanity")
	defer teardownFunc()

	bucket := database.MakeBucket([]byte("bucket"))
	for i := 0; i < 10; i++ {
		err := ldb.Put(bucket.Key([]byte(fmt.Sprintf("key%d", i))), []byte(fmt.Sprintf("value%d", i)))
		if err != nil {
			t.Fatalf("TestCursorSanity: Put unexpectedly failed: %+v", err)
		}
	}
	// Entries of other buckets are not visited
	err := ldb.Put(database.MakeBucket([]byte("other")).Key([]byte("key0")), []byte("other"))
	if err != nil {
		t.Fatalf("TestCursorSanity: Put unexpectedly failed: %+v", err)
	}

	cursor, err := ldb.Cursor(bucket)
	if err != nil {
		t.Fatalf("TestCursorSanity: Cursor unexpectedly failed: %+v", err)
	}
	defer func() {
		err := cursor.Close()
		if err != nil {
			t.Fatalf("TestCursorSanity: Close unexpectedly failed: %+v", err)
		}
	}()

	if !cursor.First() {
		t.Fatalf("TestCursorSanity: First unexpectedly returned non-existence")
	}
	validateCurrentCursorKeyAndValue(t, "TestCursorSanity", cursor, bucket.Key([]byte("key0")), []byte("value0"))

	err = cursor.Seek(database.MakeBucket().Key([]byte("doesn't exist")))
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestCursorSanity: Seek to a missing key returned wrong error: %+v", err)
	}

	err = cursor.Seek(bucket.Key([]byte("key9")))
	if err != nil {
		t.Fatalf("TestCursorSanity: Seek unexpectedly failed: %+v", err)
	}
	validateCurrentCursorKeyAndValue(t, "TestCursorSanity", cursor, bucket.Key([]byte("key9")), []byte("value9"))

	if cursor.Next() {
		t.Fatalf("TestCursorSanity: Next after the last value is unexpectedly not done")
	}
	_, err = cursor.Key()
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestCursorSanity: Key of an exhausted cursor returned wrong error: %+v", err)
	}
	_, err = cursor.Value()
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestCursorSanity: Value of an exhausted cursor returned wrong error: %+v", err)
	}
}

func TestCursorCloseErrors(t *testing.T) {
	tests := []struct {
		name     string
		function func(cursor database.Cursor) error
	}{
		{
			name: "Seek",
			function: func(cursor database.Cursor) error {
				return cursor.Seek(database.MakeBucket().Key([]byte{}))
			},
		},
		{
			name: "Key",
			function: func(cursor database.Cursor) error {
				_, err := cursor.Key()
				return err
			},
		},
		{
			name: "Value",
			function: func(cursor database.Cursor) error {
				_, err := cursor.Value()
				return err
			},
		},
		{
			name: "Close",
			function: func(cursor database.Cursor) error {
				return cursor.Close()
			},
		},
	}

	for _, test := range tests {
		func() {
			ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorCloseErrors")
			defer teardownFunc()

			cursor, err := ldb.Cursor(database.MakeBucket())
			if err != nil {
				t.Fatalf("TestCursorCloseErrors: Cursor unexpectedly failed: %+v", err)
			}
			err = cursor.Close()
			if err != nil {
				t.Fatalf("TestCursorCloseErrors: Close unexpectedly failed: %+v", err)
			}

			err = test.function(cursor)
			if err == nil || !strings.Contains(err.Error(), "closed cursor") {
				t.Fatalf("TestCursorCloseErrors: %s returned wrong error: %v", test.name, err)
			}
		}()
	}
}

func TestCursorCloseFirstAndNext(t *testing.T) {
	ldb, teardownFunc := prepareDatabaseForTest(t, "TestCursorCloseFirstAndNext")
	defer teardownFunc()

	cursor, err := ldb.Cursor(database.MakeBucket([]byte("bucket")))
	if err != nil {
		t.Fatalf("TestCursorCloseFirstAndNext: Cursor unexpectedly failed: %+v", err)
	}
	err = cursor.Close()
	if err != nil {
		t.Fatalf("TestCursorCloseFirstAndNext: Close unexpectedly failed: %+v", err)
	}

	for name, move := range map[string]func() bool{"First": cursor.First, "Next": cursor.Next} {
		func() {
			defer func() {
				panicErr := recover()
				if panicErr == nil || !strings.Contains(fmt.Sprintf("%v", panicErr), "closed cursor") {
					t.Fatalf("TestCursorCloseFirstAndNext: %s did not panic with a closed cursor error: %v",
						name, panicErr)
				}
			}()
			move()
		}()
	}
}
