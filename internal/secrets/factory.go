package secrets

import (
	"fmt"
	"sync"

	"gorm.io/gorm"
)

const (
	BackendLocal = "local"
	BackendVault = "vault"
)

type Options struct {
	Backend string
	// Key seals secrets of the local backend.
	Key   []byte
	Vault VaultOptions
}

// Factory builds the configured backend on first use and then keeps
// returning it.
type Factory struct {
	opts Options
	db   *gorm.DB

	mu  sync.Mutex
	svc Service
}

func NewFactory(opts Options, db *gorm.DB) *Factory {
	return &Factory{opts: opts, db: db}
}

func (f *Factory) Get() (Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.svc != nil {
		return f.svc, nil
	}
	var (
		svc Service
		err error
	)
	switch f.opts.Backend {
	case BackendVault:
		svc, err = NewVaultStore(f.opts.Vault)
	case BackendLocal, "":
		svc, err = NewLocalStore(f.db, f.opts.Key)
	default:
		err = fmt.Errorf("unknown secrets backend %q", f.opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	f.svc = svc
	return svc, nil
}

// Clear forgets the backend so the next Get builds it again.
func (f *Factory) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.svc = nil
}
