package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saha-erp/internal/router"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.App.SeedDefaultBatch {
				n, err := a.svc.Batches.EnsureDefaultBatches(cmd.Context())
				if err != nil {
					return fmt.Errorf("seed batches: %w", err)
				}
				if n > 0 {
					a.log.Info().Int("count", n).Msg("default batches created")
				}
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Address, a.cfg.Server.Port),
				Handler:           router.SetupRouter(a.cfg, a.svc, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", srv.Addr).Msg("server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
