package rotate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	ps "github.com/mitchellh/go-ps"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

var (
	ErrInvocationInFlight = errors.New("rotate: previous invocation still running")
	ErrToolBusy           = errors.New("rotate: rotation tool already running on this host")
)

// Result captures one finished tool invocation.
type Result struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// Invoker runs the rotation tool against a published config file. One
// invocation at a time: a call that would overlap an unfinished one
// returns ErrInvocationInFlight without running anything.
type Invoker struct {
	runner       Runner
	toolPath     string
	toolFlags    []string
	guardForeign bool

	inFlight atomic.Bool
}

func NewInvoker(runner Runner, toolPath string, toolFlags []string, guardForeign bool) *Invoker {
	return &Invoker{
		runner:       runner,
		toolPath:     toolPath,
		toolFlags:    toolFlags,
		guardForeign: guardForeign,
	}
}

// Run invokes the tool with the published config path as the only
// positional argument, after any configured flags.
func (inv *Invoker) Run(ctx context.Context, configPath string) (Result, error) {
	if !inv.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrInvocationInFlight
	}
	defer inv.inFlight.Store(false)

	if inv.guardForeign {
		busy, err := foreignToolRunning(inv.toolPath)
		if err != nil {
			log.Warn().Err(err).Msg("process listing unavailable, skipping busy check")
		} else if busy {
			return Result{}, ErrToolBusy
		}
	}

	args := make([]string, 0, len(inv.toolFlags)+1)
	args = append(args, inv.toolFlags...)
	args = append(args, configPath)

	started := time.Now()
	out, err := inv.runner.Run(ctx, inv.toolPath, args...)
	res := Result{Output: out, Duration: time.Since(started)}
	if err != nil {
		res.ExitCode = exitCode(err)
		return res, fmt.Errorf("rotate: %s: %w", inv.toolPath, err)
	}
	return res, nil
}

// foreignToolRunning reports whether some other process on this host is
// already an instance of the tool binary.
func foreignToolRunning(toolPath string) (bool, error) {
	procs, err := ps.Processes()
	if err != nil {
		return false, err
	}
	self := os.Getpid()
	want := filepath.Base(strings.TrimSpace(toolPath))
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if p.Executable() == want {
			return true, nil
		}
	}
	return false, nil
}

func exitCode(err error) int {
	var execErr *exec.ExitError
	if errors.As(err, &execErr) {
		return execErr.ExitCode()
	}
	var sshErr *ssh.ExitError
	if errors.As(err, &sshErr) {
		return sshErr.ExitStatus()
	}
	return -1
}
