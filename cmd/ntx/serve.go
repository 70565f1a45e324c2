package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/the-maldridge/ntx/pkg/http"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transaction API over HTTP",
	}

	var bind string
	cmd.Flags().StringVar(&bind, "bind", "", "Address to listen on, overrides the config")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		e, err := setup(root, true)
		if err != nil {
			return err
		}
		defer e.Close()
		if bind == "" {
			bind = e.cfg.Bind
		}

		srv, err := http.New(e.l)
		if err != nil {
			e.l.Error("Error initializing webserver", "error", err)
			return err
		}
		srv.Mount("/api/txn", e.p.HTTPEntry())

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Serve(bind) }()

		stop := make(chan os.Signal, 2)
		signal.Notify(stop, os.Interrupt)

		select {
		case err := <-errCh:
			return err
		case <-stop:
		}

		e.l.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			e.l.Warn("Error shutting down webserver", "error", err)
		}
		e.l.Info("Goodbye!")
		return nil
	}

	return cmd
}
