// Package secrets stores credentials either in the region database,
// encrypted, or in a Vault KV v2 mount.
package secrets

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("secret not found")

// Service reads and writes JSON encodable values by path.
type Service interface {
	// Get decodes the value stored at path into out, or returns ErrNotFound.
	Get(ctx context.Context, path string, out any) error
	Set(ctx context.Context, path string, value any) error
	// Delete is a no-op for unknown paths.
	Delete(ctx context.Context, path string) error
}

type simple struct {
	Secret string `json:"secret"`
}

// GetSimple reads a secret stored by SetSimple.
func GetSimple(ctx context.Context, s Service, path string) (string, error) {
	var v simple
	if err := s.Get(ctx, path, &v); err != nil {
		return "", err
	}
	return v.Secret, nil
}

func SetSimple(ctx context.Context, s Service, path, value string) error {
	return s.Set(ctx, path, simple{Secret: value})
}
