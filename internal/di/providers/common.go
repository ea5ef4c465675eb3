package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// openTimeout bounds connecting to network stores at startup.
	openTimeout = 10 * time.Second
)
