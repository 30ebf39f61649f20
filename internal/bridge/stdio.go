package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/revery-project/revery/internal/session"
)

// StdioBridge speaks the command/event surface as newline-delimited JSON
// over a byte stream pair, so a desktop shell can run the engine as a
// subprocess.
type StdioBridge struct {
	bridge *Bridge
	in     io.Reader
	out    io.Writer
	outMu  sync.Mutex
	log    zerolog.Logger
}

// NewStdioBridge creates an NDJSON bridge over in/out.
func NewStdioBridge(b *Bridge, in io.Reader, out io.Writer, log zerolog.Logger) *StdioBridge {
	return &StdioBridge{
		bridge: b,
		in:     in,
		out:    out,
		log:    log.With().Str("component", "bridge").Logger(),
	}
}

// Run pumps commands from the input stream until it ends or the context
// is cancelled. Start Pump in its own goroutine before calling Run.
func (s *StdioBridge) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var cmd Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			s.log.Warn().Err(err).Msg("bad command line")
			s.WriteEvent(Event{
				Name:    EventSessionUpdate,
				Type:    "error",
				Message: "malformed command",
			})
			continue
		}

		if err := s.bridge.Handle(ctx, cmd); err != nil {
			s.WriteEvent(Event{
				Name:    EventSessionUpdate,
				Type:    "error",
				Message: err.Error(),
			})
		}
	}
	return scanner.Err()
}

// Pump drains controller updates into NDJSON events until the context
// ends.
func (s *StdioBridge) Pump(ctx context.Context, updates <-chan session.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			for _, e := range Events(u) {
				s.WriteEvent(e)
			}
		}
	}
}

// WriteEvent writes one event line. Safe for concurrent use.
func (s *StdioBridge) WriteEvent(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal event")
		return
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	s.out.Write(data)
	s.out.Write([]byte("\n"))
}
