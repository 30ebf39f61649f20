package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/revery-project/revery/internal/session"
	"github.com/revery-project/revery/pkg/protocol"
)

var (
	peerColor    = color.New(color.FgMagenta, color.Bold)
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errColor     = color.New(color.FgRed, color.Bold)
)

// readSecret prompts for the passphrase without echoing it.
func readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("empty passphrase")
	}
	return secret, nil
}

// runChat drives the interactive loop: stdin lines become text messages,
// "/image <path>" sends a file's bytes, "/quit" disconnects. It returns
// when the session closes.
func runChat(ctx context.Context, ctrl *session.Controller) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			ctrl.Disconnect()
			drainUpdates(ctrl)
			return nil

		case u, ok := <-ctrl.Updates():
			if !ok {
				return nil
			}
			printUpdate(u)
			if u.Connection != nil && u.Connection.State == session.ConnDisconnected {
				return nil
			}

		case line, ok := <-lines:
			if !ok {
				ctrl.Disconnect()
				drainUpdates(ctrl)
				return nil
			}
			if done := handleLine(ctrl, line); done {
				drainUpdates(ctrl)
				return nil
			}
		}
	}
}

// handleLine dispatches one input line. Returns true when the user quit.
func handleLine(ctrl *session.Controller, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false

	case line == "/quit" || line == "/q":
		ctrl.Disconnect()
		return true

	case strings.HasPrefix(line, "/image "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/image "))
		data, err := os.ReadFile(path)
		if err != nil {
			errColor.Printf("cannot read image: %v\n", err)
			return false
		}
		// Errors surface through the update stream.
		ctrl.Send(protocol.ImageContent(data))
		return false

	default:
		ctrl.Send(protocol.TextContent(line))
		return false
	}
}

// printUpdate renders one controller update.
func printUpdate(u session.Update) {
	switch u.Type {
	case session.UpdateMessageReceived:
		if u.Content != nil {
			if u.Content.Type == protocol.ContentTypeImage {
				peerColor.Printf("peer> ")
				fmt.Printf("[image, %d bytes]\n", len(u.Content.Data))
			} else {
				peerColor.Printf("peer> ")
				fmt.Println(u.Content.Text())
			}
		}
	case session.UpdateMessageSent:
		// Already on the user's screen; nothing to echo.
	case session.UpdateSuccess:
		successColor.Println(u.Message)
	case session.UpdateWarning:
		warnColor.Println(u.Message)
	case session.UpdateError:
		errColor.Println(u.Message)
	case session.UpdateDebug:
		if IsVerbose() {
			fmt.Fprintln(os.Stderr, u.Message)
		}
	default:
		if u.Message != "" {
			infoColor.Println(u.Message)
		}
	}

	if u.Connection != nil && u.Connection.State == session.ConnWaiting {
		fmt.Println()
		successColor.Printf("Share this address: %s\n", u.Connection.OnionAddress)
		fmt.Println()
	}
}

// drainUpdates flushes buffered updates so the final status lines are
// printed before exit.
func drainUpdates(ctrl *session.Controller) {
	for {
		select {
		case u := <-ctrl.Updates():
			printUpdate(u)
		default:
			return
		}
	}
}
