package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	vault "github.com/hashicorp/vault/api"
)

type VaultOptions struct {
	Address  string
	Token    string
	Mount    string
	CacheTTL time.Duration
}

// VaultStore keeps secrets in a KV v2 mount. Reads are cached for
// CacheTTL; writes and deletes through this store invalidate the entry.
type VaultStore struct {
	kv    *vault.KVv2
	cache *expirable.LRU[string, []byte]
}

func NewVaultStore(opts VaultOptions) (*VaultStore, error) {
	cfg := vault.DefaultConfig()
	cfg.Address = opts.Address
	c, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	c.SetToken(opts.Token)

	mount := opts.Mount
	if mount == "" {
		mount = "secret"
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &VaultStore{
		kv:    c.KVv2(mount),
		cache: expirable.NewLRU[string, []byte](256, nil, ttl),
	}, nil
}

func (s *VaultStore) Get(ctx context.Context, path string, out any) error {
	if raw, ok := s.cache.Get(path); ok {
		return json.Unmarshal(raw, out)
	}
	sec, err := s.kv.Get(ctx, path)
	if errors.Is(err, vault.ErrSecretNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("vault read %s: %w", path, err)
	}
	v, ok := sec.Data["value"]
	if !ok {
		return ErrNotFound
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.cache.Add(path, raw)
	return json.Unmarshal(raw, out)
}

func (s *VaultStore) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	s.cache.Remove(path)
	if _, err := s.kv.Put(ctx, path, map[string]any{"value": generic}); err != nil {
		return fmt.Errorf("vault write %s: %w", path, err)
	}
	return nil
}

func (s *VaultStore) Delete(ctx context.Context, path string) error {
	s.cache.Remove(path)
	if err := s.kv.DeleteMetadata(ctx, path); err != nil {
		return fmt.Errorf("vault delete %s: %w", path, err)
	}
	return nil
}
