package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskgate/internal/filex"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

var ErrUnknownBackend = errors.New("unknown store backend")

// Open returns the store for backend. path is ignored by the memory backend.
func Open(ctx context.Context, backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		p, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(ctx, p)
	case BackendBolt:
		p, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, err
		}
		return OpenBolt(p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
