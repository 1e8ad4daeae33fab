package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/desertthunder/moodify/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	d, err := r.wire(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Flow:    d.flow.WithNavigator(nil),
		Engine:  d.engine,
		History: d.history,
		Genres:  d.provider,
		Logger:  r.logger,
	})

	r.writePlain("→ Serving on http://%s (login at /login)\n", addr)
	return srv.ListenAndServe(ctx, addr)
}
