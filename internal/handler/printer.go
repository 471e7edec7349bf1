package handler

import (
	"context"
	"io"
	"sync"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/rs/zerolog"
)

// Printer writes Text bodies verbatim to its output.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
	log zerolog.Logger
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out: out,
		log: logging.Component("handler.print"),
	}
}

func (p *Printer) Handle(_ context.Context, msg protocol.Message) protocol.Message {
	text, ok := msg.(protocol.Text)
	if !ok {
		return protocol.Failure{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.out, text.Body); err != nil {
		p.log.Error().Err(err).Msg("write text")
		return protocol.Failure{}
	}
	return protocol.Acknowledge{}
}
