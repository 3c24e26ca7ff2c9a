package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "tasknest"

// KeyringStore keeps documents in the system keyring. It is meant for small
// records such as the signed-in identity.
type KeyringStore struct {
	ring keyring.Keyring
}

// OpenKeyringStore opens the system keyring, falling back to an encrypted
// file under fileDir when no native backend is available.
func OpenKeyringStore(fileDir string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("tasknest-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStore(ring), nil
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// Load retrieves the document stored under key.
func (k *KeyringStore) Load(_ context.Context, key string) (json.RawMessage, bool) {
	item, err := k.ring.Get(key)
	if err != nil {
		return nil, false
	}
	if !json.Valid(item.Data) {
		return nil, false
	}
	return json.RawMessage(item.Data), true
}

// Save stores the document under key.
func (k *KeyringStore) Save(_ context.Context, key string, value json.RawMessage) error {
	if err := checkJSON(key, value); err != nil {
		return err
	}

	err := k.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "TaskNest " + key,
	})
	if err != nil {
		return &StorageError{Op: "save", Key: key, Err: err}
	}
	return nil
}

// Remove deletes key. A missing key is not an error.
func (k *KeyringStore) Remove(_ context.Context, key string) error {
	err := k.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

// Keys lists stored keys with the given prefix, ordered by key.
func (k *KeyringStore) Keys(_ context.Context, prefix string) ([]string, error) {
	all, err := k.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing keyring keys: %w", err)
	}
	var keys []string
	for _, key := range all {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}
