package handler

import (
	"io"

	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/codemob-dev/mc-connect/internal/tools"
)

// Options selects the built-in handlers an agent serves.
type Options struct {
	Out           io.Writer
	NotifyCommand []string
	AllowLaunch   bool
	LaunchWait    bool
	Runner        interface {
		tools.CommandRunner
		tools.ProcessRunner
	}
}

// NewAgentMux wires the built-in handlers. Invoke has no built-in target and
// stays unregistered.
func NewAgentMux(opts Options) *Mux {
	var runner interface {
		tools.CommandRunner
		tools.ProcessRunner
	} = tools.ExecRunner{}
	if opts.Runner != nil {
		runner = opts.Runner
	}

	mux := NewMux()
	if opts.Out != nil {
		_ = mux.Register(protocol.TagText, NewPrinter(opts.Out))
	}
	_ = mux.Register(protocol.TagNotify, NewNotifier(opts.NotifyCommand, runner))
	if opts.AllowLaunch {
		_ = mux.Register(protocol.TagLaunch, NewLauncher(runner, opts.LaunchWait))
	}
	return mux
}
