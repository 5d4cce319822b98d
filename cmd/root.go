package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	addressCmd "github.com/greenbasket/grocer/address/cmd"
	checkoutCmd "github.com/greenbasket/grocer/checkout/cmd"
	"github.com/greenbasket/grocer/internal/constants"
	"github.com/greenbasket/grocer/internal/log"
	userCmd "github.com/greenbasket/grocer/user/cmd"
)

func Start() {
	logger := log.InitLogger("/var/log/grocer.log").
		With().
		Str(log.KeyAppName, constants.AppMainGrocer).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{}
	commands := []*cobra.Command{
		{
			Use:   "address",
			Short: "Run address service",
			Run: func(cmd *cobra.Command, args []string) {
				addressCmd.RunAddressService(cmd.Context())
			},
		},
		{
			Use:   "checkout",
			Short: "Run checkout service",
			Run: func(cmd *cobra.Command, args []string) {
				checkoutCmd.RunCheckoutService(cmd.Context())
			},
		},
		{
			Use:   "user",
			Short: "Run user service",
			Run: func(cmd *cobra.Command, args []string) {
				userCmd.RunUserService(cmd.Context())
			},
		},
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
