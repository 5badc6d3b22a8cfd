package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AdminKeyStore handles admin API key lookups (API key → key name).
type AdminKeyStore struct {
	Base
}

// NewAdminKeyStore creates an AdminKeyStore.
func NewAdminKeyStore(base Base) *AdminKeyStore {
	return &AdminKeyStore{Base: base}
}

// hashAPIKey returns the hex SHA-256 of an API key; raw keys are never stored.
func hashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}

// GetAdminByAPIKey returns the name of the active admin key matching apiKey
// and records its use.
func (s *AdminKeyStore) GetAdminByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var name string

	err := s.Pool.QueryRow(ctx, `
		UPDATE admin_keys SET last_used_at = now()
		WHERE key_hash = $1 AND revoked_at IS NULL
		RETURNING name`, hashAPIKey(apiKey),
	).Scan(&name)
	if err != nil {
		return "", fmt.Errorf("looking up admin by API key: %w", err)
	}

	return name, nil
}

// EnsureAdminKey registers apiKey under name if no key with the same hash
// exists. Used to bootstrap the key given in configuration.
func (s *AdminKeyStore) EnsureAdminKey(ctx context.Context, name, apiKey string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO admin_keys (name, key_hash) VALUES ($1, $2)
		ON CONFLICT (key_hash) DO NOTHING`, name, hashAPIKey(apiKey))
	if err != nil {
		return fmt.Errorf("registering admin key: %w", err)
	}

	return nil
}
