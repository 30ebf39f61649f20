package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/revery-project/revery/internal/bridge"
	"github.com/revery-project/revery/internal/session"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the engine for a UI shell",
	Long: `Run the engine as a subprocess for a UI shell. Commands are
read from stdin and events are written to stdout, one JSON object per
line. Logs go to stderr.

Commands: host_session, join_session, send_message, disconnect_session.
Events: session_update, connection_status, message_received, message_sent.`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	log := newLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	provider, err := newProvider(ctx, log)
	if err != nil {
		return err
	}
	defer provider.Close()

	ctrl := session.NewController(session.Config{
		Provider: provider,
		Logger:   log,
	})
	defer ctrl.Disconnect()

	b := bridge.NewStdioBridge(bridge.New(ctrl), os.Stdin, os.Stdout, log)
	go b.Pump(ctx, ctrl.Updates())

	return b.Run(ctx)
}
