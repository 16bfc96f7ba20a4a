package surface

import (
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// Blob is binary content exposed to the host through a blob URL.
type Blob struct {
	MIME string
	Data []byte
}

// BlobStore hands out content addressed blob URLs. Identical content shares
// one URL; each Create must be paired with a Revoke.
type BlobStore struct {
	mu    sync.Mutex
	blobs map[string]*blobEntry
}

type blobEntry struct {
	blob Blob
	refs int
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]*blobEntry)}
}

// Create registers data and returns its URL.
func (s *BlobStore) Create(data []byte, mime string) string {
	sum := blake2b.Sum256(data)
	url := "blob:docview/" + hex.EncodeToString(sum[:16])

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.blobs[url]; ok {
		e.refs++
		return url
	}
	s.blobs[url] = &blobEntry{blob: Blob{MIME: mime, Data: data}, refs: 1}
	return url
}

// Get resolves a live blob URL.
func (s *BlobStore) Get(url string) (Blob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.blobs[url]
	if !ok {
		return Blob{}, false
	}
	return e.blob, true
}

// Revoke releases one reference to url.
func (s *BlobStore) Revoke(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.blobs[url]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(s.blobs, url)
	}
}

// RevokeAll drops every blob.
func (s *BlobStore) RevokeAll() {
	s.mu.Lock()
	s.blobs = make(map[string]*blobEntry)
	s.mu.Unlock()
}

func (s *BlobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
