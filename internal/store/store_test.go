package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// fakeBlob implements BlobStore in memory with the same compare-and-swap
// discipline as the real remote: writes must present the version they replace
type fakeBlob struct {
	mu      sync.Mutex
	content []byte
	version int
	exists  bool

	gets     int
	puts     int
	getErr   error
	putErr   error
	badBytes bool
}

func (f *fakeBlob) Get(path string) ([]byte, string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, "", false, f.getErr
	}
	if !f.exists {
		return nil, "", false, nil
	}
	if f.badBytes {
		return []byte("{not json"), fmt.Sprint(f.version), true, nil
	}
	return f.content, fmt.Sprint(f.version), true, nil
}

func (f *fakeBlob) Put(path string, content []byte, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	current := ""
	if f.exists {
		current = fmt.Sprint(f.version)
	}
	if version != current {
		return errors.New("stale version token")
	}
	f.content = append([]byte{}, content...)
	f.version++
	f.exists = true
	return nil
}

func newTestStore(t *testing.T, remote BlobStore) *Store[record] {
	t.Helper()
	return NewStore[record]("doc.json", filepath.Join(t.TempDir(), "doc.json"), remote)
}

func TestRoundTripLocalOnly(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "doc.json")

	s := NewStore[record]("doc.json", filename, nil)
	s.Set("a", record{Name: "alpha", Count: 3})
	s.Set("b", record{Name: "beta", Count: 1})
	s.Flush()
	require.NoError(t, s.Save())

	// Simulate a process restart: a fresh store over the same file
	fresh := NewStore[record]("doc.json", filename, nil)
	document := fresh.Load()
	assert.Equal(t, map[string]record{
		"a": {Name: "alpha", Count: 3},
		"b": {Name: "beta", Count: 1},
	}, document)
}

func TestReadsAreCacheFirst(t *testing.T) {
	remote := &fakeBlob{}
	s := newTestStore(t, remote)

	s.Set("a", record{Name: "alpha"})
	s.Flush()
	gets := remote.gets
	for i := 0; i < 10; i++ {
		_, ok := s.Get("a")
		require.True(t, ok)
	}
	// No further remote traffic once the cache is populated
	assert.Equal(t, gets, remote.gets)
}

func TestLoadPrefersRemote(t *testing.T) {
	content, err := json.Marshal(map[string]record{"x": {Name: "remote", Count: 7}})
	require.NoError(t, err)
	remote := &fakeBlob{content: content, exists: true}

	filename := filepath.Join(t.TempDir(), "doc.json")
	s := NewStore[record]("doc.json", filename, remote)

	document := s.Load()
	assert.Equal(t, map[string]record{"x": {Name: "remote", Count: 7}}, document)

	// The remote content is mirrored to the local file
	mirrored, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.JSONEq(t, string(content), string(mirrored))
}

func TestMalformedRemoteFallsBackToLocal(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "doc.json")
	local, err := json.MarshalIndent(map[string]record{"y": {Name: "local"}}, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filename, local, 0o644))

	remote := &fakeBlob{exists: true, badBytes: true}
	s := NewStore[record]("doc.json", filename, remote)

	document := s.Load()
	assert.Equal(t, map[string]record{"y": {Name: "local"}}, document)
}

func TestFirstRunCreatesEmptyDocument(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "doc.json")
	s := NewStore[record]("doc.json", filename, nil)

	assert.Empty(t, s.Load())
	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))
}

// seed puts a record in the cache without scheduling a background save,
// so tests can observe exactly the saves they trigger themselves
func seed(s *Store[record], key string, value record) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.ensureLoaded()
	s.cache[key] = value
}

func TestSavePresentsFreshVersionToken(t *testing.T) {
	remote := &fakeBlob{}
	s := newTestStore(t, remote)

	seed(s, "a", record{Count: 1})
	require.NoError(t, s.Save())
	assert.Equal(t, 1, remote.version)

	// A second save must fetch and present the new token, or the
	// remote rejects it
	seed(s, "a", record{Count: 2})
	require.NoError(t, s.Save())
	assert.Equal(t, 2, remote.version)
}

func TestSaveRemoteFailureKeepsLocalAndCache(t *testing.T) {
	remote := &fakeBlob{putErr: errors.New("boom")}
	filename := filepath.Join(t.TempDir(), "doc.json")
	s := NewStore[record]("doc.json", filename, remote)

	seed(s, "a", record{Name: "alpha"})
	err := s.Save()
	require.Error(t, err)

	// The cache is not rolled back and the local mirror holds the data
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", got.Name)

	fresh := NewStore[record]("doc.json", filename, nil)
	assert.Equal(t, map[string]record{"a": {Name: "alpha"}}, fresh.Load())
}

func TestRequestSaveIsCoalescedAndDurable(t *testing.T) {
	remote := &fakeBlob{}
	s := newTestStore(t, remote)

	// Hold the remote lock so the first save blocks in its
	// read-before-write step while the other mutations arrive
	remote.mu.Lock()
	for i := 0; i < 25; i++ {
		s.Set("a", record{Count: i})
	}
	remote.mu.Unlock()
	s.Flush()

	require.True(t, remote.exists)
	var document map[string]record
	require.NoError(t, json.Unmarshal(remote.content, &document))
	assert.Equal(t, 24, document["a"].Count)
	// One in-flight save plus exactly one coalesced follow-up
	assert.Equal(t, 2, remote.puts)
}

func TestDeleteReturnsRemovedRecord(t *testing.T) {
	s := newTestStore(t, nil)
	s.Set("a", record{Name: "alpha"})

	removed, ok := s.Delete("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", removed.Name)

	_, ok = s.Delete("a")
	assert.False(t, ok)
	s.Flush()
}
