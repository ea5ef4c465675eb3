// Package mdns advertises the board server on the local network and lets
// the command line tool find it without a configured URL.
package mdns

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	// ServiceType is the mDNS service type of board servers.
	ServiceType = "_crmboard._tcp"

	// APIPath is advertised so clients know where the board lives.
	APIPath = "/api/board"

	// ServerVersion is advertised in TXT records.
	ServerVersion = "1.0.0"
)

// Announcement describes the server being advertised.
type Announcement struct {
	Name string
	Port int
}

// Service manages mDNS advertisement for the board server.
type Service struct {
	server *mdns.Server
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// txtRecords builds the TXT metadata for an announcement.
func txtRecords(a Announcement) []string {
	return []string{
		"name=" + a.Name,
		"version=" + ServerVersion,
		"path=" + APIPath,
	}
}

// Start begins advertising the server. It should be called after the HTTP
// listener is up. Errors are usually environmental (no multicast in a
// container) and callers treat them as non-fatal.
func (s *Service) Start(a Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
	}

	host, err := os.Hostname()
	if err != nil {
		host = "crm-board"
	}

	service, err := mdns.NewMDNSService(
		host,
		ServiceType,
		"", // .local
		"", // system hostname
		a.Port,
		nil, // all interfaces
		txtRecords(a),
	)
	if err != nil {
		return fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("start mDNS server: %w", err)
	}
	s.server = server

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", a.Port,
		"name", a.Name,
	)
	return nil
}

// Stop stops advertising. Safe to call multiple times or if not started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}

// Found is a board server seen on the network.
type Found struct {
	Name string
	URL  string
}

// query is swapped in tests.
var query = mdns.Query

// Discover queries the local network for board servers and returns the
// first one answering within timeout. It returns early when ctx ends.
func Discover(ctx context.Context, timeout time.Duration, logger *slog.Logger) (*Found, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	// The query keeps running until timeout; its sends never block.
	errc := make(chan error, 1)
	go func() {
		errc <- query(params)
	}()

	match := func(entry *mdns.ServiceEntry) *Found {
		if entry == nil || !strings.Contains(entry.Name, ServiceType) {
			return nil
		}
		found := fromEntry(entry)
		logger.Debug("board server discovered", "name", found.Name, "url", found.URL)
		return found
	}

	for {
		select {
		case entry := <-entries:
			if found := match(entry); found != nil {
				return found, nil
			}
		case err := <-errc:
			// Entries sent just before the query returned are still buffered.
			for len(entries) > 0 {
				if found := match(<-entries); found != nil {
					return found, nil
				}
			}
			if err != nil {
				return nil, fmt.Errorf("mDNS query: %w", err)
			}
			return nil, fmt.Errorf("no board server answered within %s", timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func fromEntry(entry *mdns.ServiceEntry) *Found {
	f := &Found{Name: entry.Host}
	for _, field := range entry.InfoFields {
		if name, ok := strings.CutPrefix(field, "name="); ok {
			f.Name = name
		}
	}
	var ip net.IP
	switch {
	case entry.AddrV4 != nil:
		ip = entry.AddrV4
	case entry.AddrV6 != nil:
		ip = entry.AddrV6
	}
	host := strings.TrimSuffix(entry.Host, ".")
	if ip != nil {
		host = ip.String()
	}
	f.URL = "http://" + net.JoinHostPort(host, strconv.Itoa(entry.Port))
	return f
}
