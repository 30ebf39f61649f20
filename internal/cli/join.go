package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/revery-project/revery/internal/session"
)

var joinSecret string

var joinCmd = &cobra.Command{
	Use:   "join <address>",
	Short: "Join a hosted session",
	Long: `Join a session hosted by a peer. The address and the
passphrase both come from the host, out-of-band.

Examples:
  revery join exampleonionaddress.onion:7358
  revery join --transport tcp 127.0.0.1:48222`,
	Args: cobra.ExactArgs(1),
	RunE: runJoin,
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVar(&joinSecret, "secret", "", "session passphrase (prompted if empty)")
}

func runJoin(cmd *cobra.Command, args []string) error {
	address := args[0]

	secret := []byte(joinSecret)
	if len(secret) == 0 {
		var err error
		secret, err = readSecret("Session passphrase: ")
		if err != nil {
			return err
		}
	}

	log := newLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	infoColor.Println("Starting transport...")
	provider, err := newProvider(ctx, log)
	if err != nil {
		return fmt.Errorf("start transport: %w", err)
	}
	defer provider.Close()

	ctrl := session.NewController(session.Config{
		Provider: provider,
		Logger:   log,
	})

	if err := ctrl.Join(ctx, address, secret); err != nil {
		return err
	}
	defer ctrl.Disconnect()

	return runChat(ctx, ctrl)
}
