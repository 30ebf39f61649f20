package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/revery-project/revery/internal/session"
	"github.com/revery-project/revery/internal/wordlist"
)

var (
	hostSecret  string
	hostSuggest bool
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Host a session and wait for a peer",
	Long: `Host a session: publish a fresh onion address, print it so you
can share it with your peer out-of-band, and wait for them to join with
the same passphrase.

Examples:
  # Host and be prompted for the passphrase
  revery host

  # Host with a suggested passphrase
  revery host --suggest-secret`,
	Args: cobra.NoArgs,
	RunE: runHost,
}

func init() {
	rootCmd.AddCommand(hostCmd)

	hostCmd.Flags().StringVar(&hostSecret, "secret", "", "session passphrase (prompted if empty)")
	hostCmd.Flags().BoolVar(&hostSuggest, "suggest-secret", false, "generate and print a passphrase suggestion")
}

func runHost(cmd *cobra.Command, args []string) error {
	secret, err := hostPassphrase()
	if err != nil {
		return err
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

	if err := ctrl.Host(ctx, secret); err != nil {
		return err
	}
	defer ctrl.Disconnect()

	return runChat(ctx, ctrl)
}

// hostPassphrase resolves the session passphrase: flag, suggestion, or
// interactive prompt.
func hostPassphrase() ([]byte, error) {
	if hostSuggest {
		suggestion, err := wordlist.GeneratePassphrase(wordlist.DefaultWords)
		if err != nil {
			return nil, err
		}
		fmt.Println()
		successColor.Printf("Passphrase: %s\n", suggestion)
		infoColor.Printf("(%d bits; share it out-of-band along with the address)\n", wordlist.EntropyBits(wordlist.DefaultWords))
		fmt.Println()
		return []byte(suggestion), nil
	}
	if hostSecret != "" {
		return []byte(hostSecret), nil
	}
	return readSecret("Session passphrase: ")
}
