package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/cache"
	"github.com/ArturoRiosMock/CRMAIRE/internal/client"
	"github.com/ArturoRiosMock/CRMAIRE/internal/config"
	"github.com/ArturoRiosMock/CRMAIRE/internal/gateway"
	"github.com/ArturoRiosMock/CRMAIRE/internal/logger"
	"github.com/ArturoRiosMock/CRMAIRE/internal/mdns"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

// discoverTimeout bounds the mDNS lookup when no remote URL is configured.
const discoverTimeout = 3 * time.Second

// CacheHandle wraps the local cache slot with shutdown capability.
type CacheHandle struct {
	store.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideCache opens the cache slot selected by the cache driver.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Cache.Driver {
	case config.CacheRedis:
		c, err := cache.OpenRedis(cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return &CacheHandle{Cache: c}, nil

	case config.CacheBadger:
		c, err := cache.OpenBadger(cfg.Cache.Path, log.Component("cache").Logger)
		if err != nil {
			return nil, err
		}
		return &CacheHandle{Cache: c}, nil

	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}

// ProvideRemote provides the HTTP client of the board server. Without a
// configured URL the server is looked up over mDNS, falling back to the
// local port.
func ProvideRemote(i do.Injector) (*client.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	baseURL := cfg.Gateway.RemoteURL
	if baseURL == "" {
		ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout)
		defer cancel()
		found, err := mdns.Discover(ctx, discoverTimeout, log.Component("mdns").Logger)
		if err != nil {
			baseURL = "http://localhost:" + cfg.Server.Port
			log.Debug("Board server discovery failed, using local server", "url", baseURL, "error", err)
		} else {
			log.Debug("Discovered board server", "name", found.Name, "url", found.URL)
			baseURL = found.URL
		}
	}

	return client.New(baseURL, log.Component("client").Logger), nil
}

// SessionHandle wraps a gateway session; shutdown flushes pending saves.
type SessionHandle struct {
	*gateway.Session
}

// Shutdown implements do.Shutdownable.
func (h *SessionHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Close(ctx)
}

// ProvideSession provides an unstarted session over the remote and the cache.
func ProvideSession(i do.Injector) (*SessionHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	remote := do.MustInvoke[*client.Client](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	s := gateway.NewSession(remote, cacheHandle.Cache, log.Component("gateway").Logger,
		gateway.Options{Debounce: cfg.Gateway.Debounce})
	return &SessionHandle{Session: s}, nil
}
