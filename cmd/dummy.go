package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blazehammer/internal/dummy"

	"github.com/spf13/cobra"
)

func newDummyCmd() *cobra.Command {
	dummyCmd := &cobra.Command{
		Use:   "dummy",
		Short: "Run the built-in target server",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetInt("port")
			server := dummy.Start(dummy.ServerConfig{Port: port})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		},
	}

	dummyCmd.Flags().IntP("port", "p", 8080, "Port to run dummy server on")

	return dummyCmd
}
