package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Adapter is a synchronous key-value store for JSON documents.
//
// Load reports absent (false) for a missing key, an unreachable medium or a
// stored value that is not valid JSON. Save and Remove surface failures as
// *StorageError and never retry.
type Adapter interface {
	Load(ctx context.Context, key string) (json.RawMessage, bool)
	Save(ctx context.Context, key string, value json.RawMessage) error
	Remove(ctx context.Context, key string) error
}

// Lister is implemented by adapters that can enumerate their keys.
type Lister interface {
	// Keys lists stored keys with the given prefix, ordered by key.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// StorageError indicates that the underlying medium rejected an operation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err (or any error in its chain) is a
// StorageError.
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}

// ErrInvalidJSON is wrapped by Save when the value is not a JSON document.
var ErrInvalidJSON = errors.New("value is not valid JSON")

// IdentityKey is the key of the signed-in identity record.
func IdentityKey(namespace string) string {
	return namespace + "/identity"
}

// TasksKey is the key of the task collection scoped to one identity.
func TasksKey(namespace, identityID string) string {
	return namespace + "/" + identityID + "/tasks"
}

// LoadJSON decodes the document at key into v. It reports false when the
// key is absent or the document does not decode into v.
func LoadJSON(ctx context.Context, a Adapter, key string, v any) bool {
	raw, ok := a.Load(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// SaveJSON encodes v and saves it at key.
func SaveJSON(ctx context.Context, a Adapter, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	return a.Save(ctx, key, raw)
}

// checkJSON validates a value before it reaches the medium.
func checkJSON(key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return &StorageError{Op: "save", Key: key, Err: ErrInvalidJSON}
	}
	return nil
}
