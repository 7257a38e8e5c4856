package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/turnupspot/turnupspot-client/config"
	"github.com/turnupspot/turnupspot-client/internal/session"
	"github.com/turnupspot/turnupspot-client/internal/session/boltstore"
	"github.com/turnupspot/turnupspot-client/internal/session/redisstore"
)

type TokenStoreOptions struct {
	Session   config.SessionConfig
	ConnectTO time.Duration
}

// TokenStore is a session.TokenStore that may hold a resource
type TokenStore interface {
	session.TokenStore
	Close() error
}

type memoryStore struct{ *session.MemoryStore }

func (memoryStore) Close() error { return nil }

// OpenTokenStore opens the configured persistence for the session token
func OpenTokenStore(ctx context.Context, opt TokenStoreOptions) (TokenStore, error) {
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}

	switch opt.Session.Store {
	case config.StoreMemory:
		return memoryStore{session.NewMemoryStore()}, nil
	case config.StoreRedis:
		cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
		defer cancel()
		store, err := redisstore.Dial(cctx, opt.Session.RedisURL, opt.Session.RedisKeyPrefix, opt.Session.RedisTTL)
		if err != nil {
			return nil, fmt.Errorf("token store: %w", err)
		}
		return store, nil
	case config.StoreBolt, "":
		store, err := boltstore.Open(opt.Session.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("token store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", opt.Session.Store)
	}
}
