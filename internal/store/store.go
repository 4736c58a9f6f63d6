package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bedbot/internal/metrics"

	"github.com/rs/zerolog/log"
)

// BlobStore is the remote tier of the store: an opaque key-value service
// that hands out a version token with every read and requires the token
// of the version being replaced on every write
type BlobStore interface {
	// Get returns the current content and version token of the document.
	// found is false when the document does not exist yet
	Get(path string) (content []byte, version string, found bool, err error)
	// Put replaces the document. An empty version creates it
	Put(path string, content []byte, version string) error
}

// Store keeps one JSON document as a map of entity key to record.
// Reads are served from the in-memory cache; the remote store and a local
// file mirror are only consulted when the cache has not been loaded yet.
// Saves are asynchronous and coalesced: at most one save is in flight per
// document, and mutations arriving during a save schedule exactly one more
type Store[T any] struct {
	path     string // document path in the remote store
	filename string // local file mirror
	remote   BlobStore

	mutex  sync.Mutex
	cache  map[string]T
	loaded bool
	saving bool
	dirty  bool
	wg     sync.WaitGroup
}

// Create a store for one document. A nil remote degrades the store
// to local-file-only persistence; that is not an error
func NewStore[T any](path string, filename string, remote BlobStore) *Store[T] {
	return &Store[T]{path: path, filename: filename, remote: remote, cache: map[string]T{}}
}

// Load returns a snapshot of the full document, loading it from the
// remote store or the local file if the cache is not populated yet.
// Cheap to call defensively before every read
func (s *Store[T]) Load() map[string]T {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.ensureLoaded()
	snapshot := make(map[string]T, len(s.cache))
	for key, record := range s.cache {
		snapshot[key] = record
	}
	return snapshot
}

func (s *Store[T]) Get(key string) (T, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.ensureLoaded()
	record, ok := s.cache[key]
	return record, ok
}

func (s *Store[T]) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Set inserts or overwrites a record and schedules a save
func (s *Store[T]) Set(key string, record T) {
	s.mutex.Lock()
	s.ensureLoaded()
	s.cache[key] = record
	s.mutex.Unlock()
	s.RequestSave()
}

// Delete removes a record if present, returning it, and schedules a save
func (s *Store[T]) Delete(key string) (T, bool) {
	s.mutex.Lock()
	s.ensureLoaded()
	record, ok := s.cache[key]
	if ok {
		delete(s.cache, key)
	}
	s.mutex.Unlock()
	if ok {
		s.RequestSave()
	}
	return record, ok
}

func (s *Store[T]) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.ensureLoaded()
	return len(s.cache)
}

// RequestSave persists the document in the background. The caller does not
// wait for durability; the in-memory cache stays authoritative regardless
// of the outcome
func (s *Store[T]) RequestSave() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.saving {
		s.dirty = true
		return
	}
	s.saving = true
	s.wg.Add(1)
	go s.saveLoop()
}

// Flush blocks until no save is in flight. Only used at shutdown and in tests
func (s *Store[T]) Flush() {
	s.wg.Wait()
}

func (s *Store[T]) saveLoop() {
	defer s.wg.Done()
	for {
		err := s.Save()
		metrics.IncSave(s.path, err)
		if err != nil {
			log.Error().Err(err).Msg(fmt.Sprintf("Could not persist document %s remotely", s.path))
		}
		s.mutex.Lock()
		if !s.dirty {
			s.saving = false
			s.mutex.Unlock()
			return
		}
		s.dirty = false
		s.mutex.Unlock()
	}
}

// Save persists the current cache synchronously: remote first (read the
// current version token, then write presenting it), then the local mirror.
// On any remote failure the local file is still written and the error is
// returned; the cache is never rolled back
func (s *Store[T]) Save() error {
	s.mutex.Lock()
	data, err := json.MarshalIndent(s.cache, "", "  ")
	s.mutex.Unlock()
	if err != nil {
		return err
	}

	if s.remote == nil {
		return s.writeLocal(data)
	}

	// The remote store rejects writes that do not present the token of the
	// version being replaced, so a fresh fetch is required before every write
	_, version, found, err := s.remote.Get(s.path)
	if err != nil {
		metrics.RemoteStoreErrors.Inc()
		s.writeLocal(data)
		return fmt.Errorf("could not read current version of %s: %w", s.path, err)
	}
	if !found {
		version = ""
	}
	if err := s.remote.Put(s.path, data, version); err != nil {
		metrics.RemoteStoreErrors.Inc()
		s.writeLocal(data)
		return fmt.Errorf("could not write %s: %w", s.path, err)
	}
	return s.writeLocal(data)
}

func (s *Store[T]) writeLocal(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.filename), 0o755); err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not create directory for %s", s.filename))
		return err
	}
	if err := os.WriteFile(s.filename, data, 0o644); err != nil {
		log.Error().Err(err).Msg(fmt.Sprintf("Could not write local file %s", s.filename))
		return err
	}
	return nil
}

// Load the document into the cache, trying the remote store first and the
// local file second. Malformed content at any tier counts as the tier being
// unavailable. Must be called with the mutex held
func (s *Store[T]) ensureLoaded() {
	if s.loaded {
		return
	}
	s.loaded = true

	if s.remote != nil {
		content, _, found, err := s.remote.Get(s.path)
		if err != nil {
			log.Warn().Err(err).Msg(fmt.Sprintf("Remote store unavailable for %s", s.path))
		} else if found {
			var document map[string]T
			if err := json.Unmarshal(content, &document); err != nil {
				log.Warn().Err(err).Msg(fmt.Sprintf("Malformed remote document %s", s.path))
			} else {
				s.cache = document
				if s.cache == nil {
					s.cache = map[string]T{}
				}
				s.writeLocal(content)
				return
			}
		}
	}

	s.loadLocal()
}

// Read the local mirror, creating an empty document on first-ever run.
// Must be called with the mutex held
func (s *Store[T]) loadLocal() {
	data, err := os.ReadFile(s.filename)
	if os.IsNotExist(err) {
		s.cache = map[string]T{}
		s.writeLocal([]byte("{}"))
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not read local file %s", s.filename))
		s.cache = map[string]T{}
		return
	}
	var document map[string]T
	if err := json.Unmarshal(data, &document); err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Malformed local file %s", s.filename))
		s.cache = map[string]T{}
		return
	}
	s.cache = document
	if s.cache == nil {
		s.cache = map[string]T{}
	}
}
