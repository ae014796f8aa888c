package docregistry

import (
	"encoding/json"
	"time"

	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

// Meta holds a document's registration record.
type Meta struct {
	DocID       string `json:"docId"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

var (
	docMetaPrefix    = []byte("docmeta/")
	pendingBlobPrefix = []byte("pendingblob/")
)

func docMetaKey(docID string) []byte {
	k := make([]byte, 0, len(docMetaPrefix)+len(docID))
	k = append(k, docMetaPrefix...)
	return append(k, docID...)
}

func pendingBlobKey(docID string) []byte {
	k := make([]byte, 0, len(pendingBlobPrefix)+len(docID))
	k = append(k, pendingBlobPrefix...)
	return append(k, docID...)
}

// EnsureDocument creates a document's metadata record if absent.
// Idempotent: returns the existing record if already present.
func EnsureDocument(db *pebblestore.DB, docID string) (Meta, error) {
	key := docMetaKey(docID)
	if b, err := db.Get(key); err == nil && len(b) > 0 {
		var m Meta
		if err := json.Unmarshal(b, &m); err == nil {
			return m, nil
		}
	}
	m := Meta{DocID: docID, CreatedAtMs: time.Now().UnixMilli()}
	b, err := json.Marshal(m)
	if err != nil {
		return Meta{}, err
	}
	if err := db.Set(key, b); err != nil {
		return Meta{}, err
	}
	return m, nil
}

// SavePendingBlob persists (or, if blob is nil, clears) the pending-op
// handoff blob for docID.
func SavePendingBlob(db *pebblestore.DB, docID string, blob []byte) error {
	key := pendingBlobKey(docID)
	if len(blob) == 0 {
		return db.Delete(key)
	}
	return db.Set(key, blob)
}

// LoadPendingBlob returns the previously saved handoff blob for docID, or
// nil if none was saved.
func LoadPendingBlob(db *pebblestore.DB, docID string) ([]byte, error) {
	b, err := db.Get(pendingBlobKey(docID))
	if err != nil {
		return nil, nil
	}
	return b, nil
}
