package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/twin"
)

var (
	twinPort    int
	twinVerbose bool
)

func init() {
	twinCmd.Flags().IntVarP(&twinPort, "port", "p", 8080, "Port to listen on")
	twinCmd.Flags().BoolVarP(&twinVerbose, "verbose", "v", false, "Log request and response bodies")
	rootCmd.AddCommand(twinCmd)
}

var twinCmd = &cobra.Command{
	Use:   "twin",
	Short: "Serve the in-memory Connect API twin",
	Long: "Serves a stateful fake of the Connect API for local runs. Point\n" +
		"CONNECT_ENDPOINT_URL at it and use the default client credentials.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if twinVerbose {
			level = "debug"
		}
		logger, err := newLogger(level)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		logger.Info("default clients",
			zap.String("merchant_id", twin.DefaultMerchantID),
			zap.String("merchant_secret", twin.DefaultMerchantSecret),
			zap.String("fulfiller_id", twin.DefaultFulfillerID),
			zap.String("fulfiller_secret", twin.DefaultFulfillerSecret),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return twin.New(twin.Options{Port: twinPort, Verbose: twinVerbose, Logger: logger}).Serve(ctx)
	},
}
