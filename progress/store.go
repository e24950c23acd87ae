package progress

import (
	"encoding/json"
	"log"
)

// Backend persists one serialized document per user+course.
type Backend interface {
	Get(userID int, courseKey string) (raw string, ok bool, err error)
	Put(userID int, courseKey string, raw string) error
}

// Store reads and writes course progress documents. Reads never fail from
// the caller's perspective: a missing or corrupt record degrades to an
// empty document so the course pages always render. Writes shallow-merge
// the partial update into the existing record, last write wins.
type Store struct {
	backend Backend
}

func NewStore(b Backend) *Store { return &Store{backend: b} }

// Load returns the progress document for a user+course, or an empty
// document when none exists or the stored payload cannot be decoded.
func (s *Store) Load(userID int, courseKey string) Document {
	raw, ok, err := s.backend.Get(userID, courseKey)
	if err != nil {
		log.Printf("[PROGRESS][load] backend read failed user=%d course=%s err=%v", userID, courseKey, err)
		return Document{}
	}
	if !ok {
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc == nil {
		log.Printf("[PROGRESS][load] corrupt document user=%d course=%s err=%v", userID, courseKey, err)
		return Document{}
	}
	return migrate(doc)
}

// Save merges partial into the stored document and persists the full
// merged record. The merge is shallow: each top-level key in partial
// replaces the stored value wholesale.
func (s *Store) Save(userID int, courseKey string, partial Document) (Document, error) {
	doc := s.Load(userID, courseKey)
	for k, v := range partial {
		doc[k] = v
	}
	doc[keyVersion] = SchemaVersion
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Put(userID, courseKey, string(raw)); err != nil {
		log.Printf("[PROGRESS][save] backend write failed user=%d course=%s err=%v", userID, courseKey, err)
		return nil, err
	}
	return doc, nil
}
