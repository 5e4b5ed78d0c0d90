package appctx

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/kart-io/logger"
)

// Run blocks until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then ejects every service within shutdownTimeout.
func (c *Context) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Infow("Application shutting down...", "services", c.Names())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return c.EjectAllServices(shutdownCtx)
}
