package handler

import (
	"context"

	"github.com/codemob-dev/mc-connect/internal/logging"
	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/codemob-dev/mc-connect/internal/tools"
	"github.com/rs/zerolog"
)

// Launcher starts the program named by a Launch request. With Wait set it
// answers after the process exits and reports a non-zero exit as Failure;
// otherwise it answers as soon as the process has started.
type Launcher struct {
	runner tools.ProcessRunner
	wait   bool
	log    zerolog.Logger
}

func NewLauncher(runner tools.ProcessRunner, wait bool) *Launcher {
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	return &Launcher{
		runner: runner,
		wait:   wait,
		log:    logging.Component("handler.launch"),
	}
}

func (l *Launcher) Handle(ctx context.Context, msg protocol.Message) protocol.Message {
	req, ok := msg.(protocol.Launch)
	if !ok {
		return protocol.Failure{}
	}
	spec := tools.ProcessSpec{
		Path: req.Path,
		Args: req.Args,
		Dir:  req.Dir,
		Env:  req.Env,
	}
	log := l.log.With().Str("path", req.Path).Strs("args", req.Args).Logger()

	if !l.wait {
		pid, err := l.runner.StartProcess(spec)
		if err != nil {
			log.Error().Err(err).Msg("start failed")
			return protocol.Failure{}
		}
		log.Info().Int("pid", pid).Msg("started")
		return protocol.Acknowledge{}
	}

	res, err := l.runner.RunProcess(ctx, spec)
	if err != nil {
		log.Error().Err(err).Int32("exit_code", res.ExitCode).Msg("process failed")
		return protocol.Failure{}
	}
	log.Info().Msg("process exited")
	return protocol.Acknowledge{}
}
