// Package localstore persists the dashboard's three documents (categories,
// settings, search engines) as whole JSON documents in SQLite. Every save
// rewrites the full document under its key; there are no field-level writes.
package localstore

import (
	"encoding/json"
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrNoBinding is returned by Store methods when the store was constructed
// without a database, mirroring a missing KV binding in the proxy function.
var ErrNoBinding = errors.New("localstore: no database binding")

// Document is one persisted key/value row. Value holds the JSON encoding of
// the whole document.
type Document struct {
	Key       string `gorm:"primarykey"`
	Value     string `gorm:"not null"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}

// Store reads and writes documents synchronously. A nil-db Store is valid
// and reports ErrNoBinding on writes and misses on reads.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dsn and migrates the document
// table. Use ":memory:" for tests.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an existing connection, migrating the document table.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save serializes value to JSON and upserts it under key. Serialization or
// write failures are returned to the caller; in-memory state stays ahead of
// the store in that case and the caller decides how loudly to degrade.
func (s *Store) Save(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.SetRaw(key, raw)
}

// Get deserializes the document under key into out. It reports false on a
// missing key or any decode error and never panics or returns an error:
// a corrupt document reads the same as an absent one.
func (s *Store) Get(key string, out any) bool {
	raw, err := s.GetRaw(key)
	if err != nil || raw == nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// SetRaw writes an already-encoded JSON document under key. This is the
// binding the storage proxy endpoint uses.
func (s *Store) SetRaw(key string, raw json.RawMessage) error {
	if s == nil || s.db == nil {
		return ErrNoBinding
	}
	doc := Document{Key: key, Value: string(raw)}
	return s.db.Save(&doc).Error
}

// GetRaw returns the stored JSON for key, or (nil, nil) when absent.
func (s *Store) GetRaw(key string) (json.RawMessage, error) {
	if s == nil || s.db == nil {
		return nil, ErrNoBinding
	}
	var doc Document
	if err := s.db.First(&doc, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return json.RawMessage(doc.Value), nil
}

// Delete removes the document under key. Deleting an absent key is not an
// error.
func (s *Store) Delete(key string) error {
	if s == nil || s.db == nil {
		return ErrNoBinding
	}
	return s.db.Delete(&Document{}, "key = ?", key).Error
}
