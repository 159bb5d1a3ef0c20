package runner

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/testini/testini/packages/core/config"
)

// killGrace is how long the signal method waits between SIGTERM and
// SIGKILL.
const killGrace = 5 * time.Second

type execResult struct {
	Stdout   string
	Stderr   string
	TimedOut bool
	Err      error
}

// exec runs a case script through `sh -c` in the suite file's
// directory. Scripts run in their own process group so that a timeout
// takes the whole pipeline down, not just the shell.
func (r *Runner) exec(ctx context.Context, script, suitePath string, timeout time.Duration) *execResult {
	res := &execResult{}

	cmd := exec.Command("sh", "-c", r.resolver.Resolve(script))
	cmd.Dir = filepath.Dir(suitePath)
	cmd.Env = r.resolver.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		res.Err = err
		return res
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-done:
		res.Err = err
	case <-expired:
		res.TimedOut = true
		r.kill(cmd, done)
	case <-ctx.Done():
		res.Err = ctx.Err()
		r.kill(cmd, done)
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}

// kill stops the case's process group. The signal method sends SIGTERM
// first and escalates to SIGKILL after the grace period; the thread
// method kills outright.
func (r *Runner) kill(cmd *exec.Cmd, done chan error) {
	pgid := -cmd.Process.Pid

	if r.config.TimeoutMethod == config.TimeoutSignal {
		_ = syscall.Kill(pgid, syscall.SIGTERM)
		select {
		case <-done:
			return
		case <-time.After(killGrace):
		}
	}

	_ = syscall.Kill(pgid, syscall.SIGKILL)
	<-done
}
