package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

var ErrEmptyPath = errors.New("tools: empty program path")

// CommandRunner abstracts shell command execution for runtime adapters.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
}

// ProcessSpec describes one program launch. Env entries overlay the agent's
// own environment; a nil value removes the variable.
type ProcessSpec struct {
	Path string
	Args []string
	Dir  string
	Env  map[string]*string
}

// ProcessResult is the outcome of a process that ran to completion.
type ProcessResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int32
}

// ProcessRunner runs ProcessSpecs either to completion or detached.
type ProcessRunner interface {
	RunProcess(ctx context.Context, spec ProcessSpec) (ProcessResult, error)
	StartProcess(spec ProcessSpec) (int, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	res, err := r.RunProcess(context.Background(), ProcessSpec{Path: name, Args: args})
	return res.Stdout, res.Stderr, res.ExitCode, err
}

// RunProcess runs spec and waits for it to exit. A non-zero exit is returned
// as an error alongside the captured output.
func (r ExecRunner) RunProcess(ctx context.Context, spec ProcessSpec) (ProcessResult, error) {
	cmd, err := command(ctx, spec)
	if err != nil {
		return ProcessResult{ExitCode: 127}, err
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res := ProcessResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = int32(exitErr.ExitCode())
		return res, err
	}

	res.ExitCode = 1
	var execErr *exec.Error
	if errors.As(err, &execErr) || errors.Is(err, os.ErrNotExist) {
		res.ExitCode = 127
	}
	return res, err
}

// StartProcess starts spec without waiting and returns its pid. The process
// is reaped in the background.
func (r ExecRunner) StartProcess(spec ProcessSpec) (int, error) {
	cmd, err := command(context.Background(), spec)
	if err != nil {
		return 0, err
	}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	go func() {
		_ = cmd.Wait()
	}()
	return pid, nil
}

func command(ctx context.Context, spec ProcessSpec) (*exec.Cmd, error) {
	if strings.TrimSpace(spec.Path) == "" {
		return nil, ErrEmptyPath
	}
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = MergeEnv(os.Environ(), spec.Env)
	}
	return cmd, nil
}

// MergeEnv applies overrides to base (KEY=VALUE entries). Existing keys keep
// their position; new keys are appended in sorted order.
func MergeEnv(base []string, overrides map[string]*string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	seen := make(map[string]bool, len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		v, ok := overrides[key]
		if !ok {
			out = append(out, kv)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		if v != nil {
			out = append(out, fmt.Sprintf("%s=%s", key, *v))
		}
	}

	added := make([]string, 0, len(overrides))
	for key, v := range overrides {
		if !seen[key] && v != nil {
			added = append(added, key)
		}
	}
	sort.Strings(added)
	for _, key := range added {
		out = append(out, fmt.Sprintf("%s=%s", key, *overrides[key]))
	}
	return out
}
