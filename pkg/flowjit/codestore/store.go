// Package codestore records the code generated for each compiled graph.
//
// Generation is deterministic: the same graph and boundary sockets always
// produce the same dump. A Store keyed by the graph fingerprint makes that
// auditable: Record reports drift when a fingerprint's code changes.
package codestore

import (
	"errors"
	"fmt"
	"time"
)

// Store persists generated code dumps by key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores the dump for key, replacing any previous one. The
	// revision is bumped when the code differs from the stored copy, and
	// changed reports exactly that. The compare and the write are one
	// atomic step.
	Save(key, function, code string) (changed bool, err error)

	// Load returns the entry for key, or ErrNotFound.
	Load(key string) (Entry, error)

	// List returns metadata for every entry ordered by key.
	List() ([]Info, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases resources. Closing twice is a no-op.
	Close() error
}

// Info describes a stored entry without its code.
type Info struct {
	Key      string
	Function string
	Revision int
	Saved    time.Time
	Size     int
}

// Entry is a stored dump.
type Entry struct {
	Info
	Code string
}

var (
	// ErrNotFound indicates no entry exists for a key.
	ErrNotFound = errors.New("code not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("code store closed")
)

// Record saves code under key and reports whether it differs from a
// previously stored dump for the same key. Concurrent Records of one key
// each see the dump written just before their own.
func Record(s Store, key, function, code string) (drifted bool, err error) {
	drifted, err = s.Save(key, function, code)
	if err != nil {
		return false, fmt.Errorf("record %s: %w", key, err)
	}
	return drifted, nil
}
