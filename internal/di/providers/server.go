package providers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/samber/do/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/api"
	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
	"github.com/ArturoRiosMock/CRMAIRE/internal/config"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/logger"
	"github.com/ArturoRiosMock/CRMAIRE/internal/mdns"
	"github.com/ArturoRiosMock/CRMAIRE/internal/ratelimit"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// WriteLimiterHandle wraps the per-IP write limiter with Shutdownable.
type WriteLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *WriteLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideWriteLimiter provides the limiter applied to board writes.
func ProvideWriteLimiter(i do.Injector) (*WriteLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	l := ratelimit.New(ratelimit.PerMinute(cfg.RateLimit.WritesPerMinute), cfg.RateLimit.Burst)
	return &WriteLimiterHandle{KeyedRateLimiter: l}, nil
}

// ProvideBackupService provides the snapshot service.
func ProvideBackupService(i do.Injector) (*backup.BackupService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewBackupService(storeHandle.BoardStore, cfg.Backup.Dir, log.Component("backup").Logger,
		backup.Options{Keep: cfg.Backup.Keep}), nil
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	imports := do.MustInvoke[*importer.Importer](i)
	limiter := do.MustInvoke[*WriteLimiterHandle](i)
	backups := do.MustInvoke[*backup.BackupService](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(storeHandle.BoardStore, imports, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		WriteLimiter:   limiter.KeyedRateLimiter,
		RequestLog:     cfg.App.Environment == "development",
		Backups:        backups,
	}, log.Component("api").Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}

// MDNSServiceHandle wraps mdns.Service with Shutdownable.
type MDNSServiceHandle struct {
	*mdns.Service
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	if h.started && h.Service != nil {
		h.Stop()
	}
	return nil
}

// ProvideMDNSService advertises the board server on the local network.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Server.AdvertiseMDNS {
		log.Info("mDNS advertisement disabled by configuration")
		return &MDNSServiceHandle{}, nil
	}

	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		log.Warn("Failed to parse server port for mDNS, using default", "port", cfg.Server.Port)
		port = 3000
	}

	svc := mdns.NewService(log.Component("mdns").Logger)
	if err := svc.Start(mdns.Announcement{Name: cfg.Server.Name, Port: port}); err != nil {
		// Non-fatal: the board is still served, only discovery is lost.
		log.Warn("mDNS advertisement unavailable", "error", err)
		return &MDNSServiceHandle{Service: svc}, nil
	}

	return &MDNSServiceHandle{Service: svc, started: true}, nil
}
