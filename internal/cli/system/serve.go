package system

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/julianstephens/habitquest/internal/api"
	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/metrics"
	"github.com/julianstephens/habitquest/internal/notifier"
)

type ServeCmd struct {
	Addr      string `help:"Listen address (defaults to server.addr from config)."`
	NoMetrics bool   `help:"Do not expose /metrics."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}

	opts := []api.Option{api.WithSecret(uuid.NewString())}
	if ctx.Config.Server.Metrics && !c.NoMetrics {
		opts = append(opts, api.WithMetrics(metrics.New()))
	}
	srv := api.NewServer(ctx.Store, opts...)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lockPath := ""
	if ctx.ConfigDir != "" {
		lockPath = notifier.LockPath(ctx.ConfigDir)
	}

	ready := make(chan net.Addr, 1)
	go func() {
		select {
		case a := <-ready:
			ctx.Printf("Serving progress on http://%s (Ctrl+C to stop)\n", a)
		case <-sigCtx.Done():
		}
	}()

	return srv.Serve(sigCtx, addr, lockPath, ready)
}
