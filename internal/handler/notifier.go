package handler

import (
	"context"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/codemob-dev/mc-connect/internal/tools"
	"github.com/rs/zerolog"
)

// Notifier raises Notify requests through an external command, called as
// command... title body. With no command configured it only logs them.
type Notifier struct {
	command []string
	runner  tools.CommandRunner
	log     zerolog.Logger
}

func NewNotifier(command []string, runner tools.CommandRunner) *Notifier {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &Notifier{
		command: append([]string(nil), command...),
		runner:  runner,
		log:     logging.Component("handler.notify"),
	}
}

func (n *Notifier) Handle(_ context.Context, msg protocol.Message) protocol.Message {
	note, ok := msg.(protocol.Notify)
	if !ok {
		return protocol.Failure{}
	}
	if len(n.command) == 0 {
		n.log.Info().Str("title", note.Title).Str("body", note.Body).Msg("notification")
		return protocol.Acknowledge{}
	}

	args := append(append([]string(nil), n.command[1:]...), note.Title, note.Body)
	_, stderr, code, err := n.runner.Run(n.command[0], args...)
	if err != nil {
		n.log.Error().Err(err).Int32("exit_code", code).Bytes("stderr", stderr).Msg("notify command failed")
		return protocol.Failure{}
	}
	return protocol.Acknowledge{}
}
