package storage

import (
	"bytes"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"github.com/nspcc-dev/zkp-registry/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbSetup struct {
	name   string
	create func(testing.TB) Store
}

type dbTestFunction func(*testing.T, Store)

func newBoltStoreForTesting(t testing.TB) Store {
	d := t.TempDir()
	testFileName := filepath.Join(d, "test_bolt_db")
	boltDBStore, err := NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: testFileName})
	require.NoError(t, err)
	return boltDBStore
}

func newLevelDBForTesting(t testing.TB) Store {
	ldbDir := t.TempDir()
	newLevelStore, err := NewLevelDBStore(dbconfig.LevelDBOptions{DataDirectoryPath: ldbDir})
	require.Nil(t, err, "NewLevelDBStore error")
	return newLevelStore
}

func newMemoryStoreForTesting(t testing.TB) Store {
	return NewMemoryStore()
}

func newMemCachedStoreForTesting(t testing.TB) Store {
	return NewMemCachedStore(NewMemoryStore())
}

func testStoreGetNonExistent(t *testing.T, s Store) {
	key := []byte("sparse")

	_, err := s.Get(key)
	assert.Equal(t, err, ErrKeyNotFound)
}

func testStorePutChangeSet(t *testing.T, s Store) {
	require.NoError(t, s.PutChangeSet(map[string][]byte{
		"foo": []byte("bar"),
		"baz": []byte("qux"),
	}))
	v, err := s.Get([]byte("foo"))
	require.NoError(t, err)
	require.Equal(t, []byte("bar"), v)

	require.NoError(t, s.PutChangeSet(map[string][]byte{
		"foo": nil,
		"baz": []byte("quux"),
	}))
	_, err = s.Get([]byte("foo"))
	require.ErrorIs(t, err, ErrKeyNotFound)
	v, err = s.Get([]byte("baz"))
	require.NoError(t, err)
	require.Equal(t, []byte("quux"), v)

	// Deleting missing key is not an error.
	require.NoError(t, s.PutChangeSet(map[string][]byte{"missing": nil}))
}

func pushSeekDataSet(t *testing.T, s Store) []KeyValue {
	// Use the same set of kvs to test Seek with different prefix/start values.
	kvs := []KeyValue{
		{[]byte("10"), []byte("bar")},
		{[]byte("11"), []byte("bara")},
		{[]byte("20"), []byte("barb")},
		{[]byte("21"), []byte("barc")},
		{[]byte("22"), []byte("bard")},
		{[]byte("30"), []byte("bare")},
		{[]byte("31"), []byte("barf")},
	}
	up := NewMemCachedStore(s)
	for _, v := range kvs {
		up.Put(v.Key, v.Value)
	}
	_, err := up.Persist()
	require.NoError(t, err)
	return kvs
}

func testStoreSeek(t *testing.T, s Store) {
	kvs := pushSeekDataSet(t, s)
	check := func(t *testing.T, prefix, start []byte, goodkvs []KeyValue, cont func(k, v []byte) bool) {
		actual := make([]KeyValue, 0, len(goodkvs))
		s.Seek(SeekRange{Prefix: prefix, Start: start}, func(k, v []byte) bool {
			actual = append(actual, KeyValue{
				Key:   bytes.Clone(k),
				Value: bytes.Clone(v),
			})
			if cont == nil {
				return true
			}
			return cont(k, v)
		})
		assert.Equal(t, goodkvs, actual)
	}

	t.Run("prefix, empty start", func(t *testing.T) {
		check(t, []byte("2"), nil, kvs[2:5], nil)
	})
	t.Run("no matching items", func(t *testing.T) {
		check(t, []byte("0"), nil, []KeyValue{}, nil)
	})
	t.Run("early stop", func(t *testing.T) {
		check(t, []byte("2"), nil, kvs[2:4], func(k, v []byte) bool {
			return string(k) < "21"
		})
	})
	t.Run("prefix and start", func(t *testing.T) {
		// start is appended to the prefix to start seek from.
		check(t, []byte("2"), []byte("1"), kvs[3:5], nil)
	})
	t.Run("start after all keys", func(t *testing.T) {
		check(t, []byte("2"), []byte("3"), []KeyValue{}, nil)
	})
	t.Run("empty prefix", func(t *testing.T) {
		check(t, nil, nil, kvs, nil)
	})
	t.Run("empty prefix with start", func(t *testing.T) {
		check(t, nil, []byte("30"), kvs[5:], nil)
	})
}

func TestAllDBs(t *testing.T) {
	var DBs = []dbSetup{
		{"BoltDB", newBoltStoreForTesting},
		{"LevelDB", newLevelDBForTesting},
		{"MemCached", newMemCachedStoreForTesting},
		{"Memory", newMemoryStoreForTesting},
	}
	var tests = []dbTestFunction{testStoreGetNonExistent, testStorePutChangeSet, testStoreSeek}
	for _, db := range DBs {
		for _, test := range tests {
			s := db.create(t)
			twrapper := func(t *testing.T) {
				test(t, s)
			}
			fname := runtime.FuncForPC(reflect.ValueOf(test).Pointer()).Name()
			t.Run(db.name+"/"+fname, twrapper)
			require.NoError(t, s.Close())
		}
	}
}

func TestNewStore(t *testing.T) {
	t.Run("inmemory", func(t *testing.T) {
		s, err := NewStore(dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB})
		require.NoError(t, err)
		require.IsType(t, &MemoryStore{}, s)
		require.NoError(t, s.Close())
	})
	t.Run("leveldb", func(t *testing.T) {
		s, err := NewStore(dbconfig.DBConfiguration{
			Type:           dbconfig.LevelDB,
			LevelDBOptions: dbconfig.LevelDBOptions{DataDirectoryPath: t.TempDir()},
		})
		require.NoError(t, err)
		require.IsType(t, &LevelDBStore{}, s)
		require.NoError(t, s.Close())
	})
	t.Run("boltdb", func(t *testing.T) {
		s, err := NewStore(dbconfig.DBConfiguration{
			Type:          dbconfig.BoltDB,
			BoltDBOptions: dbconfig.BoltDBOptions{FilePath: filepath.Join(t.TempDir(), "sub", "zkreg.bolt")},
		})
		require.NoError(t, err)
		require.IsType(t, &BoltDBStore{}, s)
		require.NoError(t, s.Close())
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := NewStore(dbconfig.DBConfiguration{Type: "redis"})
		require.Error(t, err)
	})
}

func TestBoltDBReopen(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "zkreg.bolt")
	s, err := NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: fileName})
	require.NoError(t, err)
	require.NoError(t, s.PutChangeSet(map[string][]byte{"key": []byte("value")}))
	require.NoError(t, s.Close())

	ro, err := NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: fileName, ReadOnly: true})
	require.NoError(t, err)
	v, err := ro.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
	require.NoError(t, ro.Close())
}

func TestLevelDBReadOnlyMissing(t *testing.T) {
	_, err := NewLevelDBStore(dbconfig.LevelDBOptions{
		DataDirectoryPath: filepath.Join(t.TempDir(), "missing"),
		ReadOnly:          true,
	})
	require.Error(t, err)
}
