package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cretz/bine/tor"
	"github.com/rs/zerolog"
)

// Default Tor settings.
const (
	// DefaultOnionPort is the virtual port the onion service exposes.
	DefaultOnionPort = 7358
	// DefaultStartupTimeout bounds Tor bootstrap.
	DefaultStartupTimeout = 3 * time.Minute
)

// TorConfig configures the Tor provider.
type TorConfig struct {
	// TorPath is the tor executable; empty means "tor" on PATH.
	TorPath string
	// DataDir is a scratch directory for the managed tor process. Empty
	// means a fresh temporary directory, removed on Close.
	DataDir string
	// OnionPort is the virtual port for hosted services.
	OnionPort int
	// StartupTimeout bounds tor bootstrap.
	StartupTimeout time.Duration
}

// TorProvider runs a managed tor process and exposes it as a Provider.
// Hosting publishes a fresh v3 onion service whose key pair lives only in
// the tor process for the lifetime of the session.
type TorProvider struct {
	t   *tor.Tor
	cfg TorConfig
	log zerolog.Logger
}

// StartTor launches and bootstraps a tor process.
func StartTor(ctx context.Context, cfg TorConfig, log zerolog.Logger) (*TorProvider, error) {
	if cfg.OnionPort == 0 {
		cfg.OnionPort = DefaultOnionPort
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = DefaultStartupTimeout
	}

	startCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()

	t, err := tor.Start(startCtx, &tor.StartConf{
		ExePath: cfg.TorPath,
		DataDir: cfg.DataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("start tor: %w", err)
	}

	log.Debug().Str("component", "transport").Msg("tor bootstrapped")
	return &TorProvider{t: t, cfg: cfg, log: log}, nil
}

// Listen publishes a fresh v3 onion service. The announced address is
// "<id>.onion:<port>".
func (p *TorProvider) Listen(ctx context.Context) (Listener, error) {
	onion, err := p.t.Listen(ctx, &tor.ListenConf{
		RemotePorts: []int{p.cfg.OnionPort},
		Version3:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("publish onion service: %w", err)
	}

	addr := fmt.Sprintf("%s.onion:%d", strings.ToLower(onion.ID), p.cfg.OnionPort)
	p.log.Debug().Str("component", "transport").Str("address", addr).Msg("onion service published")

	return &onionListener{onion: onion, address: addr}, nil
}

// Dial connects to an onion address through the managed tor process.
func (p *TorProvider) Dial(ctx context.Context, address string) (net.Conn, error) {
	dialer, err := p.t.Dialer(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("tor dialer: %w", err)
	}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDialFailed, err)
	}
	return NewConn(conn), nil
}

// Close stops the managed tor process, discarding the onion service and
// its key material.
func (p *TorProvider) Close() error {
	return p.t.Close()
}

type onionListener struct {
	onion   *tor.OnionService
	address string
}

// Address returns the announced onion address.
func (l *onionListener) Address() string {
	return l.address
}

// Accept accepts a new connection from the onion service.
func (l *onionListener) Accept() (net.Conn, error) {
	conn, err := l.onion.Accept()
	if err != nil {
		return nil, err
	}
	return NewConn(conn), nil
}

// Close tears down the onion service.
func (l *onionListener) Close() error {
	return l.onion.Close()
}
